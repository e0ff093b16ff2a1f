package rules

import (
	"fmt"
	"sort"
	"strings"
)

// GeneratedMarker is the first line of every generated rule file.
const GeneratedMarker = "# @generated by `buckgen`"

// loadStatements are the imports required by the rule macros the
// generated files call into.
var loadStatements = []struct {
	bzl   string
	items []string
}{
	{bzl: "@buckgen//:cargo_manifest.bzl", items: []string{"cargo_manifest"}},
	{bzl: "@buckgen//:wrapper.bzl", items: []string{"buildscript_run", "rust_binary", "rust_library"}},
}

// RenderFile serializes a rule list into a complete generated file:
// marker comment, load statements, then one block per rule in emission
// order.
func RenderFile(rs []Rule) string {
	var b strings.Builder
	b.WriteString(GeneratedMarker)
	b.WriteString("\n\n")
	for _, load := range loadStatements {
		b.WriteString(`load("`)
		b.WriteString(load.bzl)
		b.WriteString(`"`)
		for _, item := range load.items {
			b.WriteString(`, "`)
			b.WriteString(item)
			b.WriteString(`"`)
		}
		b.WriteString(")\n")
	}
	b.WriteString("\n")
	blocks := make([]string, 0, len(rs))
	for _, r := range rs {
		blocks = append(blocks, Render(r))
	}
	b.WriteString(strings.Join(blocks, "\n"))
	return b.String()
}

// RenderBareFile serializes rules that need no macro imports (e.g. the
// shared alias file): marker comment, then the rule blocks.
func RenderBareFile(rs []Rule) string {
	var b strings.Builder
	b.WriteString(GeneratedMarker)
	b.WriteString("\n\n")
	blocks := make([]string, 0, len(rs))
	for _, r := range rs {
		blocks = append(blocks, Render(r))
	}
	b.WriteString(strings.Join(blocks, "\n"))
	return b.String()
}

// Render serializes one rule as a Starlark call block. The switch is
// exhaustive over the closed variant set.
func Render(r Rule) string {
	w := &blockWriter{}
	w.open(r.RuleKind())
	switch rule := r.(type) {
	case *HTTPArchive:
		w.str("name", rule.Name)
		w.list("urls", rule.URLs.Sorted())
		w.str("sha256", rule.SHA256)
		w.str("type", rule.ArchiveType)
		w.str("strip_prefix", rule.StripPrefix)
		w.str("out", rule.Out)
	case *FileGroup:
		w.str("name", rule.Name)
		w.glob("srcs", rule.Include.Sorted())
		w.str("out", rule.Out)
	case *CargoManifest:
		w.str("name", rule.Name)
		w.str("vendor", rule.Vendor)
	case *RustLibrary:
		renderCompile(w, &rule.CompileCommon, rule.ProcMacro)
	case *RustBinary:
		renderCompile(w, &rule.CompileCommon, false)
	case *RustTest:
		renderCompile(w, &rule.CompileCommon, false)
	case *BuildscriptRun:
		w.str("name", rule.Name)
		w.str("package_name", rule.PackageName)
		w.str("buildscript_rule", rule.BuildscriptRule)
		w.list("env_srcs", rule.EnvSrcs.Sorted())
		w.list("features", rule.Features.Sorted())
		w.str("version", rule.Version)
		w.str("manifest_dir", rule.ManifestDir)
		w.list("visibility", rule.Visibility.Sorted())
	case *Alias:
		w.str("name", rule.Name)
		w.str("actual", rule.Actual)
		w.list("visibility", rule.Visibility.Sorted())
	default:
		panic(fmt.Sprintf("rules: unknown rule kind %q", r.RuleKind()))
	}
	return w.close()
}

func renderCompile(w *blockWriter, c *CompileCommon, procMacro bool) {
	w.str("name", c.Name)
	w.list("srcs", c.Srcs.Sorted())
	w.str("crate_name", c.CrateName)
	w.str("crate_root", c.CrateRoot)
	w.str("edition", c.Edition)
	w.list("features", c.Features.Sorted())
	w.list("rustc_flags", c.RustcFlags.Sorted())
	w.list("deps", c.Deps.Sorted())
	w.dict("named_deps", c.NamedDeps)
	w.dict("env", c.Env)
	w.list("compatible_with", c.CompatibleWith)
	if procMacro {
		w.boolean("proc_macro", true)
	}
	w.list("visibility", c.Visibility.Sorted())
}

// blockWriter accumulates one rule block. Empty attributes are omitted.
type blockWriter struct {
	b strings.Builder
}

func (w *blockWriter) open(kind string) {
	w.b.WriteString(kind)
	w.b.WriteString("(\n")
}

func (w *blockWriter) close() string {
	w.b.WriteString(")\n")
	return w.b.String()
}

func (w *blockWriter) str(key string, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(&w.b, "    %s = %s,\n", key, quote(value))
}

func (w *blockWriter) boolean(key string, value bool) {
	if !value {
		return
	}
	fmt.Fprintf(&w.b, "    %s = True,\n", key)
}

func (w *blockWriter) list(key string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(&w.b, "    %s = [\n", key)
	for _, v := range values {
		fmt.Fprintf(&w.b, "        %s,\n", quote(v))
	}
	w.b.WriteString("    ],\n")
}

func (w *blockWriter) dict(key string, values map[string]string) {
	if len(values) == 0 {
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(&w.b, "    %s = {\n", key)
	for _, k := range keys {
		fmt.Fprintf(&w.b, "        %s: %s,\n", quote(k), quote(values[k]))
	}
	w.b.WriteString("    },\n")
}

func (w *blockWriter) glob(key string, include []string) {
	if len(include) == 0 {
		return
	}
	fmt.Fprintf(&w.b, "    %s = glob(\n        include = [\n", key)
	for _, v := range include {
		fmt.Fprintf(&w.b, "            %s,\n", quote(v))
	}
	w.b.WriteString("        ],\n    ),\n")
}

func quote(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
