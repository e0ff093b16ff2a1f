package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"buckgen/internal/rules"
	"buckgen/internal/types"
)

// classifyDeps selects the node's edges applicable to a compilation
// unit of the given kind and records each as a positional or renamed
// dependency reference on the rule.
//
// Edge selection: Normal edges apply to every kind except CustomBuild;
// Build edges apply only to CustomBuild; Development edges apply only to
// Test (in addition to Normal). Each selected entry must also pass the
// platform predicate filter.
func (t *Translator) classifyDeps(ctx context.Context, rule rules.CompileRule, node types.Node, kind types.TargetKind, atRoot bool) error {
	for _, edge := range node.Deps {
		dep, ok := t.Packages[edge.Pkg]
		if !ok {
			continue
		}
		if !t.edgeApplies(ctx, edge, kind) {
			continue
		}

		var label string
		var err error
		if dep.FirstParty() {
			label, err = t.firstPartyLabel(ctx, dep, atRoot)
		} else {
			label, err = t.thirdPartyLabel(ctx, dep, node, atRoot)
		}
		if err != nil {
			return err
		}

		if edge.Name != CrateName(dep.Name) {
			rule.AddNamedDep(edge.Name, label)
		} else {
			rule.AddDep(label)
		}
	}
	return nil
}

func (t *Translator) edgeApplies(ctx context.Context, edge types.DependencyEdge, kind types.TargetKind) bool {
	switch {
	case kind == types.TargetKindCustomBuild:
		return t.edgeActive(ctx, edge, types.DepKindBuild)
	case kind == types.TargetKindTest:
		return t.edgeActive(ctx, edge, types.DepKindNormal) ||
			t.edgeActive(ctx, edge, types.DepKindDevelopment)
	default:
		return t.edgeActive(ctx, edge, types.DepKindNormal)
	}
}

// firstPartyLabel resolves a workspace-member dependency to its library
// rule: the package's manifest directory relative to the project root,
// plus the (possibly disambiguated) name of its single library unit.
func (t *Translator) firstPartyLabel(ctx context.Context, dep types.Package, atRoot bool) (string, error) {
	manifestDir := filepath.Dir(dep.ManifestPath)
	rel, err := filepath.Rel(t.ProjectRoot, manifestDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf(
				"package %s at %s is not inside the build project root %s",
				dep.Name, manifestDir, t.ProjectRoot)).
			WithCause(err)
	}

	libUnit, err := RequireLibraryUnit(dep)
	if err != nil {
		return "", err
	}

	ruleName := LibraryRuleName(dep, libUnit)
	label := fmt.Sprintf("//%s:%s", filepath.ToSlash(rel), ruleName)
	return t.rewrite(ctx, label, atRoot), nil
}

// thirdPartyLabel resolves a third-party dependency. When workspace
// dependency inheritance is enabled and the consumer is the workspace
// root, the shared alias rule is referenced; otherwise the dependency's
// own versioned rule is.
func (t *Translator) thirdPartyLabel(ctx context.Context, dep types.Package, node types.Node, atRoot bool) (string, error) {
	var label string
	if t.Config.InheritWorkspaceDeps && node.ID == t.Root {
		label = fmt.Sprintf("//%s:%s", ThirdPartyDir, dep.Name)
	} else {
		label = fmt.Sprintf("//%s/%s/%s:%s", CratesRoot, dep.Name, dep.Version, dep.Name)
	}
	return t.rewrite(ctx, label, atRoot), nil
}
