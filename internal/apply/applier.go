package apply

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"buckgen/internal/core"
	"buckgen/internal/ports"
	"buckgen/internal/rules"
	"buckgen/internal/types"
)

// RuleFileName is the generated rule file's name within a package
// directory.
const RuleFileName = "BUCK"

// Applier walks a change set and keeps vendor directories and rule
// files in sync with the resolved graph.
type Applier struct {
	Translator *core.Translator
	Vendor     ports.VendorPort
	RuleFiles  ports.RuleFilePort

	// WorkspaceRoot is the package manager's workspace root, used to
	// recognize the workspace's own locator during removal.
	WorkspaceRoot string

	// Separate skips first-party packages, leaving their rule files
	// under manual control.
	Separate bool

	// NoMerge disables field merging from existing rule files.
	NoMerge bool
}

// Apply processes every change entry. Entries are visited in identifier
// order so log output has a stable total order.
func (a *Applier) Apply(ctx context.Context, changes types.ChangeSet) error {
	ids := make([]types.PackageID, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		switch changes[id] {
		case types.ChangeAdded, types.ChangeChanged:
			if err := a.applyUpsert(ctx, id, changes[id]); err != nil {
				return err
			}
		case types.ChangeRemoved:
			if err := a.applyRemoval(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Applier) applyUpsert(ctx context.Context, id types.PackageID, change types.ChangeType) error {
	if id == a.Translator.Root {
		// The workspace root is flushed separately.
		return nil
	}
	node, ok := a.Translator.Nodes[id]
	if !ok {
		return nil
	}
	pkg := a.Translator.Packages[id]

	if a.Separate && pkg.FirstParty() {
		return nil
	}

	action := "adding"
	if change == types.ChangeChanged {
		action = "refreshing"
	}
	log.Ctx(ctx).Info().
		Str("package", pkg.Name).
		Str("version", pkg.Version).
		Msg(action + " package rules")

	var vendorDir string
	var generated []rules.Rule
	var err error
	if pkg.FirstParty() {
		vendorDir = filepath.Dir(pkg.ManifestPath)
		generated, err = a.Translator.TranslateRoot(ctx, pkg, node)
	} else {
		vendorDir, err = a.Vendor.Ensure(pkg.Name, pkg.Version)
		if err != nil {
			return err
		}
		generated, err = a.Translator.TranslateDependency(ctx, pkg, node)
	}
	if err != nil {
		return err
	}

	return a.writeRuleFile(filepath.Join(vendorDir, RuleFileName), generated)
}

// writeRuleFile merges the configured field subset from an existing
// rule file into the generated rules, then replaces the file wholesale.
func (a *Applier) writeRuleFile(path string, generated []rules.Rule) error {
	patchFields := a.Translator.Config.PatchFields
	if a.RuleFiles.Exists(path) && !a.NoMerge && len(patchFields) > 0 {
		existing, err := a.RuleFiles.Read(path)
		if err != nil {
			return err
		}
		rules.MergeFields(existing, generated, patchFields)
	}
	return a.RuleFiles.Write(path, rules.RenderFile(generated))
}

// applyRemoval deletes a removed package's vendor directory. An entry
// matching the workspace root's own locator is skipped, so the root's
// files are never deleted.
func (a *Applier) applyRemoval(ctx context.Context, id types.PackageID) error {
	if strings.HasPrefix(string(id), "path+file://"+a.WorkspaceRoot) {
		return nil
	}
	name, version, err := ParseIdentifier(id)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("package", name).
		Str("version", version).
		Msg("removing package rules")
	return a.Vendor.Remove(name, version)
}

// FlushRoot regenerates the workspace-root package's rule file and,
// when workspace dependency inheritance is enabled, the shared
// third-party alias file.
func (a *Applier) FlushRoot(ctx context.Context) error {
	root, ok := a.Translator.Packages[a.Translator.Root]
	if !ok {
		return nil
	}
	node := a.Translator.Nodes[a.Translator.Root]

	log.Ctx(ctx).Info().
		Str("package", root.Name).
		Str("version", root.Version).
		Msg("flushing workspace root rules")

	if a.Translator.Config.InheritWorkspaceDeps {
		aliases := a.Translator.AliasRules(ctx)
		aliasPath := filepath.Join(a.Translator.ProjectRoot, filepath.FromSlash(core.ThirdPartyDir), RuleFileName)
		if err := a.RuleFiles.Write(aliasPath, rules.RenderBareFile(aliases)); err != nil {
			return err
		}
	}

	generated, err := a.Translator.TranslateRoot(ctx, root, node)
	if err != nil {
		return err
	}
	return a.writeRuleFile(filepath.Join(filepath.Dir(root.ManifestPath), RuleFileName), generated)
}
