package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"buckgen/internal/ports"
	"buckgen/internal/shared"
	"buckgen/internal/types"
)

// GraphMetadataAdapter loads the resolved graph by invoking the package
// manager's metadata command. The graph is trusted input; this adapter
// only decodes, validates shape, and rejects cyclic graphs.
type GraphMetadataAdapter struct {
	PackageManagerBin string
}

func NewGraphMetadataAdapter() GraphMetadataAdapter {
	return GraphMetadataAdapter{PackageManagerBin: "cargo"}
}

type metadataDoc struct {
	Packages []struct {
		ID           types.PackageID `json:"id"`
		Name         string          `json:"name"`
		Version      string          `json:"version"`
		ManifestPath string          `json:"manifest_path"`
		Source       *string         `json:"source"`
		Links        *string         `json:"links"`
		Edition      string          `json:"edition"`
		Targets      []struct {
			Name    string   `json:"name"`
			Kind    []string `json:"kind"`
			SrcPath string   `json:"src_path"`
			Test    bool     `json:"test"`
		} `json:"targets"`
	} `json:"packages"`
	Resolve *struct {
		Nodes []struct {
			ID   types.PackageID `json:"id"`
			Deps []struct {
				Name     string          `json:"name"`
				Pkg      types.PackageID `json:"pkg"`
				DepKinds []struct {
					Kind   *string `json:"kind"`
					Target *string `json:"target"`
				} `json:"dep_kinds"`
			} `json:"deps"`
			Features []string `json:"features"`
		} `json:"nodes"`
		Root types.PackageID `json:"root"`
	} `json:"resolve"`
	WorkspaceRoot string `json:"workspace_root"`
}

func (a GraphMetadataAdapter) Load(ctx context.Context) (types.ResolvedGraph, error) {
	output, err := exec.CommandContext(ctx, a.PackageManagerBin,
		"metadata", "--format-version", "1").Output()
	if err != nil {
		return types.ResolvedGraph{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to run package manager metadata command").
			WithCause(shared.CommandError(output, err))
	}
	return DecodeGraph(ctx, output)
}

// DecodeGraph parses a metadata document into the resolved-graph model.
func DecodeGraph(ctx context.Context, raw []byte) (types.ResolvedGraph, error) {
	var doc metadataDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return types.ResolvedGraph{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to decode metadata output").
			WithCause(err)
	}
	if doc.Resolve == nil {
		return types.ResolvedGraph{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("metadata output has no resolve section")
	}
	assert.NotEmpty(ctx, string(doc.Resolve.Root), "resolved graph must name a root package")
	assert.NotEmpty(ctx, doc.WorkspaceRoot, "resolved graph must name a workspace root")

	graph := types.ResolvedGraph{
		Root:          doc.Resolve.Root,
		WorkspaceRoot: doc.WorkspaceRoot,
	}
	for _, pkg := range doc.Packages {
		converted := types.Package{
			ID:           pkg.ID,
			Name:         pkg.Name,
			Version:      pkg.Version,
			ManifestPath: pkg.ManifestPath,
			Edition:      pkg.Edition,
		}
		if pkg.Source != nil {
			converted.Source = *pkg.Source
		}
		if pkg.Links != nil {
			converted.Links = *pkg.Links
		}
		for _, target := range pkg.Targets {
			kinds := make([]types.TargetKind, 0, len(target.Kind))
			for _, kind := range target.Kind {
				kinds = append(kinds, types.TargetKind(kind))
			}
			converted.Targets = append(converted.Targets, types.CompilationUnit{
				Name:    target.Name,
				Kinds:   kinds,
				SrcPath: target.SrcPath,
				Test:    target.Test,
			})
		}
		graph.Packages = append(graph.Packages, converted)
	}
	for _, node := range doc.Resolve.Nodes {
		converted := types.Node{ID: node.ID, Features: node.Features}
		for _, dep := range node.Deps {
			edge := types.DependencyEdge{Pkg: dep.Pkg, Name: dep.Name}
			for _, info := range dep.DepKinds {
				entry := types.DepKindInfo{Kind: types.DepKindNormal}
				if info.Kind != nil {
					entry.Kind = types.DepKind(*info.Kind)
				}
				if info.Target != nil {
					entry.Target = *info.Target
				}
				edge.Kinds = append(edge.Kinds, entry)
			}
			converted.Deps = append(converted.Deps, edge)
		}
		graph.Nodes = append(graph.Nodes, converted)
	}

	if err := checkAcyclic(graph); err != nil {
		return types.ResolvedGraph{}, err
	}
	return graph, nil
}

// checkAcyclic fails loudly when the dependency graph contains a cycle
// instead of letting translation loop.
func checkAcyclic(graph types.ResolvedGraph) error {
	nodes := graph.NodeMap()
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := map[types.PackageID]int{}

	var visit func(id types.PackageID) error
	visit = func(id types.PackageID) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("dependency cycle involving package %s", id))
		}
		state[id] = visiting
		for _, edge := range nodes[id].Deps {
			if err := visit(edge.Pkg); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for id := range nodes {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.GraphPort = GraphMetadataAdapter{}
