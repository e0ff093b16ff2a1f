package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Cfg is one active configuration flag probed from the compiler: either
// a bare name (`unix`) or a key/value pair (`target_os="linux"`).
type Cfg struct {
	Name  string
	Value string
	Pair  bool
}

// ParseCfg parses one line of the compiler's cfg listing.
func ParseCfg(line string) (Cfg, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Cfg{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty cfg line")
	}
	eq := strings.Index(line, "=")
	if eq < 0 {
		return Cfg{Name: line}, nil
	}
	name := strings.TrimSpace(line[:eq])
	value := strings.TrimSpace(line[eq+1:])
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	if name == "" {
		return Cfg{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid cfg line: %q", line))
	}
	return Cfg{Name: name, Value: value, Pair: true}, nil
}

// ParseCfgs parses the full cfg listing, skipping blank lines.
func ParseCfgs(lines []string) ([]Cfg, error) {
	var cfgs []Cfg
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cfg, err := ParseCfg(line)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// MatchesPredicate evaluates a dependency edge's platform predicate
// against the active target triple and cfg flags. A predicate is either
// a bare target triple (exact match) or a cfg expression such as
// `cfg(all(target_os = "linux", not(target_env = "musl")))`. An empty
// predicate always matches.
func MatchesPredicate(predicate string, triple string, cfgs []Cfg) (bool, error) {
	predicate = strings.TrimSpace(predicate)
	if predicate == "" {
		return true, nil
	}
	if !strings.HasPrefix(predicate, "cfg(") {
		return predicate == triple, nil
	}
	if !strings.HasSuffix(predicate, ")") {
		return false, predicateError(predicate, "missing closing parenthesis")
	}
	p := &cfgParser{input: predicate[len("cfg(") : len(predicate)-1], cfgs: cfgs}
	result, err := p.expr()
	if err != nil {
		return false, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return false, predicateError(predicate, "trailing input")
	}
	return result, nil
}

// cfgParser is a recursive-descent evaluator over a cfg expression.
type cfgParser struct {
	input string
	pos   int
	cfgs  []Cfg
}

func (p *cfgParser) expr() (bool, error) {
	name, err := p.ident()
	if err != nil {
		return false, err
	}
	p.skipSpace()
	switch {
	case p.peek() == '(':
		p.pos++
		switch name {
		case "all":
			return p.exprList(name)
		case "any":
			return p.exprList(name)
		case "not":
			inner, err := p.expr()
			if err != nil {
				return false, err
			}
			if err := p.expect(')'); err != nil {
				return false, err
			}
			return !inner, nil
		default:
			return false, predicateError(p.input, fmt.Sprintf("unknown operator %q", name))
		}
	case p.peek() == '=':
		p.pos++
		value, err := p.stringLit()
		if err != nil {
			return false, err
		}
		return p.hasPair(name, value), nil
	default:
		return p.hasFlag(name), nil
	}
}

// exprList evaluates the comma-separated operands of all() or any().
// An empty all() is true; an empty any() is false, per cfg semantics.
func (p *cfgParser) exprList(op string) (bool, error) {
	result := op == "all"
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return result, nil
	}
	for {
		operand, err := p.expr()
		if err != nil {
			return false, err
		}
		if op == "all" {
			result = result && operand
		} else {
			result = result || operand
		}
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return result, nil
		default:
			return false, predicateError(p.input, "expected ',' or ')'")
		}
	}
}

func (p *cfgParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", predicateError(p.input, "expected identifier")
	}
	return p.input[start:p.pos], nil
}

func (p *cfgParser) stringLit() (string, error) {
	p.skipSpace()
	if p.peek() != '"' {
		return "", predicateError(p.input, "expected string literal")
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != '"' {
		p.pos++
	}
	if p.pos == len(p.input) {
		return "", predicateError(p.input, "unterminated string literal")
	}
	value := p.input[start:p.pos]
	p.pos++
	return value, nil
}

func (p *cfgParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return predicateError(p.input, fmt.Sprintf("expected %q", string(c)))
	}
	p.pos++
	return nil
}

func (p *cfgParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *cfgParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *cfgParser) hasFlag(name string) bool {
	for _, cfg := range p.cfgs {
		if !cfg.Pair && cfg.Name == name {
			return true
		}
	}
	return false
}

func (p *cfgParser) hasPair(name string, value string) bool {
	for _, cfg := range p.cfgs {
		if cfg.Pair && cfg.Name == name && cfg.Value == value {
			return true
		}
	}
	return false
}

func predicateError(predicate string, reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid platform predicate %q: %s", predicate, reason))
}
