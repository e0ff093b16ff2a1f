package rules

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ValueKind tags a parsed attribute value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueBool
	ValueList
	ValueDict
	ValueRaw
)

// Value is one attribute value read back from an existing rule file.
// Raw preserves constructs the parser does not model (e.g. glob calls)
// verbatim.
type Value struct {
	Kind ValueKind
	Str  string
	Bool bool
	List []string
	Dict map[string]string
	Raw  string
}

// ParsedRule is a rule block read back from an existing rule file,
// reduced to its kind and a generic attribute map.
type ParsedRule struct {
	Kind  string
	Attrs map[string]Value
}

// Name returns the rule's name attribute, or "" when absent.
func (p ParsedRule) Name() string {
	if v, ok := p.Attrs["name"]; ok && v.Kind == ValueString {
		return v.Str
	}
	return ""
}

// ParseFile reads a generated rule file back into rule blocks. Comment
// lines, blank lines and load statements are skipped. The parser accepts
// the renderer's own output plus hand-edited attributes of the same
// shapes.
func ParseFile(content string) ([]ParsedRule, error) {
	lines := strings.Split(content, "\n")
	var parsed []ParsedRule
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "load(") {
			i++
			continue
		}
		if !strings.HasSuffix(line, "(") || !isIdentifier(strings.TrimSuffix(line, "(")) {
			return nil, parseError(i+1, lines[i])
		}
		rule := ParsedRule{
			Kind:  strings.TrimSuffix(line, "("),
			Attrs: map[string]Value{},
		}
		i++
		for i < len(lines) {
			line = strings.TrimSpace(lines[i])
			if line == ")" {
				i++
				break
			}
			if line == "" || strings.HasPrefix(line, "#") {
				i++
				continue
			}
			key, rest, ok := splitAttr(line)
			if !ok {
				return nil, parseError(i+1, lines[i])
			}
			value, next, err := parseValue(lines, i, rest)
			if err != nil {
				return nil, err
			}
			rule.Attrs[key] = value
			i = next
		}
		parsed = append(parsed, rule)
	}
	return parsed, nil
}

func splitAttr(line string) (string, string, bool) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:eq])
	if !isIdentifier(key) {
		return "", "", false
	}
	return key, strings.TrimSpace(line[eq+1:]), true
}

// parseValue consumes one attribute value starting on line i (whose
// prefix up to "=" is already stripped into rest) and returns the value
// plus the index of the next unconsumed line.
func parseValue(lines []string, i int, rest string) (Value, int, error) {
	switch {
	case strings.HasPrefix(rest, `"`):
		return Value{Kind: ValueString, Str: unquote(strings.TrimSuffix(rest, ","))}, i + 1, nil
	case rest == "True," || rest == "True":
		return Value{Kind: ValueBool, Bool: true}, i + 1, nil
	case rest == "False," || rest == "False":
		return Value{Kind: ValueBool, Bool: false}, i + 1, nil
	case rest == "[":
		var items []string
		for j := i + 1; j < len(lines); j++ {
			line := strings.TrimSpace(lines[j])
			if line == "]," || line == "]" {
				return Value{Kind: ValueList, List: items}, j + 1, nil
			}
			items = append(items, unquote(strings.TrimSuffix(line, ",")))
		}
		return Value{}, 0, parseError(i+1, lines[i])
	case rest == "{":
		dict := map[string]string{}
		for j := i + 1; j < len(lines); j++ {
			line := strings.TrimSpace(lines[j])
			if line == "}," || line == "}" {
				return Value{Kind: ValueDict, Dict: dict}, j + 1, nil
			}
			colon := strings.Index(line, `":`)
			if colon < 0 {
				return Value{}, 0, parseError(j+1, lines[j])
			}
			key := unquote(line[:colon+1])
			val := unquote(strings.TrimSuffix(strings.TrimSpace(line[colon+2:]), ","))
			dict[key] = val
		}
		return Value{}, 0, parseError(i+1, lines[i])
	default:
		// Unmodeled construct (e.g. a glob call); capture verbatim
		// until the brackets balance again.
		depth := bracketDepth(rest)
		raw := []string{rest}
		j := i + 1
		for depth > 0 && j < len(lines) {
			raw = append(raw, lines[j])
			depth += bracketDepth(lines[j])
			j++
		}
		if depth > 0 {
			return Value{}, 0, parseError(i+1, lines[i])
		}
		return Value{Kind: ValueRaw, Raw: strings.Join(raw, "\n")}, j, nil
	}
}

func bracketDepth(line string) int {
	depth := 0
	inString := false
	for k := 0; k < len(line); k++ {
		c := line[k]
		switch {
		case c == '"' && (k == 0 || line[k-1] != '\\'):
			inString = !inString
		case inString:
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		}
	}
	return depth
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}

func parseError(lineNo int, line string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unparsable rule file at line %d: %q", lineNo, strings.TrimSpace(line)))
}
