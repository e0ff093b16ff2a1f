package apply

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"buckgen/internal/types"
)

// SnapshotFileName is the snapshot's location relative to the project
// root.
const SnapshotFileName = "buckgen.snap"

// Snapshot is a persisted digest of one resolved graph, sufficient to
// compute the change set against a later graph without keeping the full
// node data around.
type Snapshot struct {
	WorkspaceRoot string                     `json:"workspace_root"`
	Digests       map[types.PackageID]string `json:"digests"`
}

// NewSnapshot digests every node of a resolved graph.
func NewSnapshot(nodes map[types.PackageID]types.Node, workspaceRoot string) Snapshot {
	digests := make(map[types.PackageID]string, len(nodes))
	for id, node := range nodes {
		digests[id] = digestNode(node)
	}
	return Snapshot{WorkspaceRoot: workspaceRoot, Digests: digests}
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read snapshot file").
			WithCause(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to decode snapshot file").
			WithCause(err)
	}
	return snap, nil
}

// Save writes the snapshot as a whole-file replace.
func (s Snapshot) Save(path string) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode snapshot").
			WithCause(err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write snapshot file " + path).
			WithCause(err)
	}
	return nil
}

// Diff computes the change set from an old snapshot to a new one.
func Diff(old Snapshot, current Snapshot) types.ChangeSet {
	changes := types.ChangeSet{}
	for id, digest := range current.Digests {
		previous, ok := old.Digests[id]
		switch {
		case !ok:
			changes[id] = types.ChangeAdded
		case previous != digest:
			changes[id] = types.ChangeChanged
		}
	}
	for id := range old.Digests {
		if _, ok := current.Digests[id]; !ok {
			changes[id] = types.ChangeRemoved
		}
	}
	return changes
}

// digestNode hashes a node's identity-relevant content in canonical
// order, so digests are stable across metadata orderings.
func digestNode(node types.Node) string {
	canonical := types.Node{
		ID:       node.ID,
		Deps:     append([]types.DependencyEdge(nil), node.Deps...),
		Features: append([]string(nil), node.Features...),
	}
	sort.Strings(canonical.Features)
	sort.Slice(canonical.Deps, func(i, j int) bool {
		return canonical.Deps[i].Pkg < canonical.Deps[j].Pkg
	})
	raw, err := json.Marshal(canonical)
	if err != nil {
		// Node is a plain data struct; marshaling cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
