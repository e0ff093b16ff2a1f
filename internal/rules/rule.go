// Package rules models generated build rules as a closed set of
// variants, renders them as Starlark call blocks, parses existing rule
// files back into generic attribute maps, and merges a configured field
// subset from old rules into regenerated ones.
package rules

// Rule is one generated build rule. The set of implementations is
// closed; rendering is an exhaustive switch over it.
type Rule interface {
	RuleKind() string
	RuleName() string
}

// HTTPArchive vendors a third-party package from a remote archive.
type HTTPArchive struct {
	Name        string
	URLs        StringSet
	SHA256      string
	ArchiveType string
	StripPrefix string
	Out         string
}

func (r *HTTPArchive) RuleKind() string { return "http_archive" }
func (r *HTTPArchive) RuleName() string { return r.Name }

// FileGroup exposes a first-party package's sources as a vendor group.
type FileGroup struct {
	Name    string
	Include StringSet
	Out     string
}

func (r *FileGroup) RuleKind() string { return "filegroup" }
func (r *FileGroup) RuleName() string { return r.Name }

// CargoManifest derives compiler environment and flags from a vendored
// package manifest.
type CargoManifest struct {
	Name   string
	Vendor string
}

func (r *CargoManifest) RuleKind() string { return "cargo_manifest" }
func (r *CargoManifest) RuleName() string { return r.Name }

// CompileCommon holds the attributes shared by the compile rule
// variants. Attribute order here is the serialization order.
type CompileCommon struct {
	Name           string
	Srcs           StringSet
	CrateName      string
	CrateRoot      string
	Edition        string
	Features       StringSet
	RustcFlags     StringSet
	Deps           StringSet
	NamedDeps      map[string]string
	Env            map[string]string
	CompatibleWith []string
	Visibility     StringSet
}

// NewCompileCommon creates the shared attribute block with all
// collections initialized.
func NewCompileCommon(name string) CompileCommon {
	return CompileCommon{
		Name:       name,
		Srcs:       NewStringSet(),
		Features:   NewStringSet(),
		RustcFlags: NewStringSet(),
		Deps:       NewStringSet(),
		NamedDeps:  map[string]string{},
		Env:        map[string]string{},
		Visibility: NewStringSet(),
	}
}

func (c *CompileCommon) RuleName() string { return c.Name }

// AddDep records a positional dependency reference.
func (c *CompileCommon) AddDep(label string) { c.Deps.Add(label) }

// AddNamedDep records a renamed dependency reference.
func (c *CompileCommon) AddNamedDep(name string, label string) { c.NamedDeps[name] = label }

// SetEnv records an environment entry.
func (c *CompileCommon) SetEnv(key string, value string) { c.Env[key] = value }

// AddFlag records an extra compiler flag.
func (c *CompileCommon) AddFlag(flag string) { c.RustcFlags.Add(flag) }

func (c *CompileCommon) common() *CompileCommon { return c }

// CompileRule is implemented by the rule variants that compile code and
// therefore carry dependency, environment and flag sets.
type CompileRule interface {
	Rule
	AddDep(label string)
	AddNamedDep(name string, label string)
	SetEnv(key string, value string)
	AddFlag(flag string)
	common() *CompileCommon
}

// RustLibrary compiles a library-family unit.
type RustLibrary struct {
	CompileCommon
	ProcMacro bool
}

func (r *RustLibrary) RuleKind() string { return "rust_library" }

// RustBinary compiles a binary unit (including build scripts).
type RustBinary struct {
	CompileCommon
}

func (r *RustBinary) RuleKind() string { return "rust_binary" }

// RustTest compiles a test unit.
type RustTest struct {
	CompileCommon
}

func (r *RustTest) RuleKind() string { return "rust_test" }

// BuildscriptRun invokes a compiled build script and captures its
// declared outputs (out dir, extra flags, links metadata).
type BuildscriptRun struct {
	Name            string
	PackageName     string
	BuildscriptRule string
	EnvSrcs         StringSet
	Features        StringSet
	Version         string
	ManifestDir     string
	Visibility      StringSet
}

func (r *BuildscriptRun) RuleKind() string { return "buildscript_run" }
func (r *BuildscriptRun) RuleName() string { return r.Name }

// Alias points a stable shared name at a concrete versioned rule.
type Alias struct {
	Name       string
	Actual     string
	Visibility StringSet
}

func (r *Alias) RuleKind() string { return "alias" }
func (r *Alias) RuleName() string { return r.Name }

var (
	_ CompileRule = (*RustLibrary)(nil)
	_ CompileRule = (*RustBinary)(nil)
	_ CompileRule = (*RustTest)(nil)
)
