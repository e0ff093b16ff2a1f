package core

import (
	"context"
	"sort"

	debversion "github.com/knqyf263/go-deb-version"
	"github.com/rs/zerolog/log"

	"buckgen/internal/rules"
	"buckgen/internal/types"
)

// AliasRules emits one shared alias rule per third-party package that
// any workspace member depends on, pointing at the newest vendored
// version. The output is sorted by package name.
func (t *Translator) AliasRules(ctx context.Context) []rules.Rule {
	latest := map[string]types.Package{}
	for id, pkg := range t.Packages {
		if !pkg.FirstParty() {
			continue
		}
		node, ok := t.Nodes[id]
		if !ok {
			continue
		}
		for _, edge := range node.Deps {
			dep, ok := t.Packages[edge.Pkg]
			if !ok || dep.FirstParty() {
				continue
			}
			current, seen := latest[dep.Name]
			if !seen || versionLess(current.Version, dep.Version) {
				latest[dep.Name] = dep
			}
		}
	}

	names := make([]string, 0, len(latest))
	for name := range latest {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]rules.Rule, 0, len(names))
	for _, name := range names {
		dep := latest[name]
		actual := t.rewrite(ctx,
			"//"+CratesRoot+"/"+dep.Name+"/"+dep.Version+":"+dep.Name, false)
		out = append(out, &rules.Alias{
			Name:       name,
			Actual:     actual,
			Visibility: rules.NewStringSet("PUBLIC"),
		})
		log.Ctx(ctx).Debug().
			Str("package", name).
			Str("version", dep.Version).
			Msg("emitting third-party alias")
	}
	return out
}

// versionLess orders package versions, falling back to lexicographic
// comparison when a version does not parse.
func versionLess(a string, b string) bool {
	va, errA := debversion.NewVersion(a)
	vb, errB := debversion.NewVersion(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return va.LessThan(vb)
}
