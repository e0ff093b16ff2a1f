// Package cells implements the cell-aware half of rule generation: an
// ordered parser for the build tool's ini-like cell configuration, a
// longest-prefix resolver from filesystem paths to owning cells, and an
// idempotent rewriter from bare rule labels to canonical cell-qualified
// labels.
package cells

import (
	"strings"
)

// Config is the parsed cell configuration file: named sections in file
// order, each holding its raw lines verbatim. Comment lines are dropped
// during parsing; everything else round-trips through Serialize.
type Config struct {
	sectionOrder []string
	sections     map[string][]string
}

// Parse reads an ini-like configuration into ordered sections of raw
// lines. Lines before the first section header are ignored.
func Parse(contents string) Config {
	cfg := Config{sections: map[string][]string{}}
	current := ""
	for _, line := range strings.Split(contents, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			current = trimmed[1 : len(trimmed)-1]
			cfg.sectionOrder = append(cfg.sectionOrder, current)
			if _, ok := cfg.sections[current]; !ok {
				cfg.sections[current] = nil
			}
		case strings.HasPrefix(trimmed, "#"):
			continue
		case line != "" && current != "":
			cfg.sections[current] = append(cfg.sections[current], line)
		}
	}
	return cfg
}

// Serialize renders the configuration back to text, preserving section
// order and raw lines.
func (c Config) Serialize() string {
	var b strings.Builder
	for _, section := range c.sectionOrder {
		b.WriteString("[")
		b.WriteString(section)
		b.WriteString("]\n")
		for _, line := range c.sections[section] {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Section returns the raw lines of a section, or nil when absent.
func (c Config) Section(name string) []string {
	return c.sections[name]
}

// HasSection reports whether the section exists.
func (c Config) HasSection(name string) bool {
	_, ok := c.sections[name]
	return ok
}

// SetSection replaces a section's lines, appending the section at the
// end of the file when it does not exist yet.
func (c *Config) SetSection(name string, lines []string) {
	if _, ok := c.sections[name]; !ok {
		c.sectionOrder = append(c.sectionOrder, name)
	}
	if c.sections == nil {
		c.sections = map[string][]string{}
	}
	c.sections[name] = lines
}

// AppendLine adds one raw line to a section, creating the section at the
// end of the file when needed.
func (c *Config) AppendLine(section string, line string) {
	if _, ok := c.sections[section]; !ok {
		c.SetSection(section, nil)
	}
	c.sections[section] = append(c.sections[section], line)
}

// NewSectionAfter inserts an empty section right after another one.
// When the anchor section is missing the new section goes to the end.
func (c *Config) NewSectionAfter(after string, name string) {
	if c.sections == nil {
		c.sections = map[string][]string{}
	}
	if _, ok := c.sections[name]; ok {
		return
	}
	c.sections[name] = nil
	for i, s := range c.sectionOrder {
		if s == after {
			c.sectionOrder = append(c.sectionOrder[:i+1],
				append([]string{name}, c.sectionOrder[i+1:]...)...)
			return
		}
	}
	c.sectionOrder = append(c.sectionOrder, name)
}

// Cells returns the derived cell-name → relative-path view of the
// [cells] section.
func (c Config) Cells() map[string]string {
	return c.keyValues("cells")
}

// CellAliases returns the derived alias → canonical-cell-name view of
// the [cell_aliases] section.
func (c Config) CellAliases() map[string]string {
	return c.keyValues("cell_aliases")
}

func (c Config) keyValues(section string) map[string]string {
	out := map[string]string{}
	for _, line := range c.sections[section] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		eq := strings.Index(trimmed, "=")
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(trimmed[:eq])
		value := strings.TrimSpace(trimmed[eq+1:])
		if key != "" && value != "" {
			out[key] = value
		}
	}
	return out
}
