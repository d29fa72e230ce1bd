package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// MarkerEnv holds the values of PEP 508 marker variables.
type MarkerEnv map[string]string

// MarkerEnvFor returns the marker environment of a CPython interpreter of the given version on p.
func MarkerEnvFor(p Platform, pythonVersion string) MarkerEnv {
	env := MarkerEnv{
		"python_version":                 ShortVersion(pythonVersion),
		"python_full_version":            pythonVersion,
		"implementation_name":            "cpython",
		"implementation_version":         pythonVersion,
		"platform_python_implementation": "CPython",
	}
	switch p.OS() {
	case "linux":
		env["sys_platform"] = "linux"
		env["platform_system"] = "Linux"
		env["os_name"] = "posix"
	case "osx":
		env["sys_platform"] = "darwin"
		env["platform_system"] = "Darwin"
		env["os_name"] = "posix"
	case "win":
		env["sys_platform"] = "win32"
		env["platform_system"] = "Windows"
		env["os_name"] = "nt"
	}
	env["platform_machine"] = platformMachine(p)
	return env
}

func platformMachine(p Platform) string {
	switch p {
	case PlatformLinux64, PlatformOsx64:
		return "x86_64"
	case PlatformLinux32:
		return "i686"
	case PlatformLinuxAarch64:
		return "aarch64"
	case PlatformOsxArm64:
		return "arm64"
	case PlatformLinuxPpc64le:
		return "ppc64le"
	case PlatformLinuxS390x:
		return "s390x"
	case PlatformWin64:
		return "AMD64"
	case PlatformWin32:
		return "x86"
	case PlatformWinArm64:
		return "ARM64"
	default:
		return ""
	}
}

// WithExtra returns a copy of the environment with the "extra" variable set.
func (e MarkerEnv) WithExtra(extra string) MarkerEnv {
	out := make(MarkerEnv, len(e)+1)
	for k, v := range e {
		out[k] = v
	}
	out["extra"] = extra
	return out
}

// Marker is a parsed PEP 508 environment marker.
type Marker struct {
	raw  string
	expr markerExpr
}

// ParseMarker parses a marker expression such as `python_version >= "3.8" and sys_platform != "win32"`.
func ParseMarker(s string) (Marker, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Marker{}, nil
	}
	tokens, err := tokenizeMarker(raw)
	if err != nil {
		return Marker{}, zerr.With(err, "marker", raw)
	}
	p := &markerParser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return Marker{}, zerr.With(err, "marker", raw)
	}
	if p.pos != len(p.tokens) {
		return Marker{}, zerr.With(ErrInvalidMarker, "marker", raw)
	}
	return Marker{raw: raw, expr: expr}, nil
}

// IsEmpty reports whether the marker is absent, which always evaluates to true.
func (m Marker) IsEmpty() bool {
	return m.expr == nil
}

// Evaluate evaluates the marker against env.
func (m Marker) Evaluate(env MarkerEnv) bool {
	if m.expr == nil {
		return true
	}
	return m.expr.eval(env)
}

// ReferencesExtra reports whether the marker tests the "extra" variable.
func (m Marker) ReferencesExtra() bool {
	return strings.Contains(m.raw, "extra")
}

func (m Marker) String() string {
	return m.raw
}

// EvalMarker parses and evaluates a marker in one step.
func EvalMarker(marker string, env MarkerEnv) (bool, error) {
	m, err := ParseMarker(marker)
	if err != nil {
		return false, err
	}
	return m.Evaluate(env), nil
}

type markerExpr interface {
	eval(env MarkerEnv) bool
}

type markerAnd struct{ left, right markerExpr }

func (e markerAnd) eval(env MarkerEnv) bool { return e.left.eval(env) && e.right.eval(env) }

type markerOr struct{ left, right markerExpr }

func (e markerOr) eval(env MarkerEnv) bool { return e.left.eval(env) || e.right.eval(env) }

type markerValue struct {
	literal  string
	variable string
}

func (v markerValue) resolve(env MarkerEnv) string {
	if v.variable != "" {
		return env[v.variable]
	}
	return v.literal
}

type markerCompare struct {
	left, right markerValue
	op          string
}

func (e markerCompare) eval(env MarkerEnv) bool {
	left, right := e.left.resolve(env), e.right.resolve(env)
	if e.left.variable == "extra" || e.right.variable == "extra" {
		left, right = normalizeExtra(left), normalizeExtra(right)
	}

	switch e.op {
	case "in":
		return strings.Contains(right, left)
	case "not in":
		return !strings.Contains(right, left)
	case "===":
		return left == right
	}

	if isVersionVariable(e.left.variable) || isVersionVariable(e.right.variable) {
		if ok, matched := compareMarkerVersions(left, e.op, right); ok {
			return matched
		}
	}

	switch e.op {
	case "==":
		return left == right
	case "!=":
		return left != right
	case "<":
		return left < right
	case "<=":
		return left <= right
	case ">":
		return left > right
	case ">=":
		return left >= right
	default:
		return false
	}
}

func isVersionVariable(name string) bool {
	return name == "python_version" || name == "python_full_version" || name == "implementation_version"
}

func compareMarkerVersions(left, op, right string) (ok, matched bool) {
	if op == "~=" {
		spec, err := ParseVersionSpec(op + right)
		if err != nil {
			return false, false
		}
		return true, spec.Matches(left)
	}
	if strings.HasSuffix(right, "*") && (op == "==" || op == "!=") {
		spec, err := ParseVersionSpec(op + right)
		if err != nil {
			return false, false
		}
		return true, spec.Matches(left)
	}
	if _, err := parseVersion(left); err != nil {
		return false, false
	}
	if _, err := parseVersion(right); err != nil {
		return false, false
	}
	cmp := CompareVersions(left, right)
	switch op {
	case "==":
		return true, cmp == 0
	case "!=":
		return true, cmp != 0
	case "<":
		return true, cmp < 0
	case "<=":
		return true, cmp <= 0
	case ">":
		return true, cmp > 0
	case ">=":
		return true, cmp >= 0
	default:
		return false, false
	}
}

func normalizeExtra(s string) string {
	if s == "" {
		return ""
	}
	return NormalizePackageName(s)
}

type markerToken struct {
	kind  byte // 's' string, 'i' identifier, 'o' operator, '(' or ')'
	value string
}

var markerOps = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

func tokenizeMarker(s string) ([]markerToken, error) {
	var tokens []markerToken
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(' || c == ')':
			tokens = append(tokens, markerToken{kind: c})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, ErrInvalidMarker
			}
			tokens = append(tokens, markerToken{kind: 's', value: s[i+1 : i+1+end]})
			i += end + 2
		case isMarkerIdentByte(c):
			start := i
			for i < len(s) && isMarkerIdentByte(s[i]) {
				i++
			}
			tokens = append(tokens, markerToken{kind: 'i', value: s[start:i]})
		default:
			matched := false
			for _, op := range markerOps {
				if strings.HasPrefix(s[i:], op) {
					tokens = append(tokens, markerToken{kind: 'o', value: op})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				return nil, ErrInvalidMarker
			}
		}
	}
	return tokens, nil
}

func isMarkerIdentByte(c byte) bool {
	return c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

type markerParser struct {
	tokens []markerToken
	pos    int
}

func (p *markerParser) peek() (markerToken, bool) {
	if p.pos >= len(p.tokens) {
		return markerToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *markerParser) peekKeyword(word string) bool {
	t, ok := p.peek()
	return ok && t.kind == 'i' && t.value == word
}

func (p *markerParser) parseOr() (markerExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peekKeyword("or") {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = markerOr{left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseAnd() (markerExpr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.peekKeyword("and") {
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = markerAnd{left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseAtom() (markerExpr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, ErrInvalidMarker
	}
	if t.kind == '(' {
		p.pos++
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing, ok := p.peek(); !ok || closing.kind != ')' {
			return nil, ErrInvalidMarker
		}
		p.pos++
		return expr, nil
	}

	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return markerCompare{left: left, op: op, right: right}, nil
}

func (p *markerParser) parseValue() (markerValue, error) {
	t, ok := p.peek()
	if !ok {
		return markerValue{}, ErrInvalidMarker
	}
	switch {
	case t.kind == 's':
		p.pos++
		return markerValue{literal: t.value}, nil
	case t.kind == 'i' && t.value != "and" && t.value != "or" && t.value != "in" && t.value != "not":
		p.pos++
		return markerValue{variable: t.value}, nil
	default:
		return markerValue{}, ErrInvalidMarker
	}
}

func (p *markerParser) parseOp() (string, error) {
	t, ok := p.peek()
	if !ok {
		return "", ErrInvalidMarker
	}
	switch {
	case t.kind == 'o':
		p.pos++
		return t.value, nil
	case t.kind == 'i' && t.value == "in":
		p.pos++
		return "in", nil
	case t.kind == 'i' && t.value == "not":
		p.pos++
		if !p.peekKeyword("in") {
			return "", ErrInvalidMarker
		}
		p.pos++
		return "not in", nil
	default:
		return "", ErrInvalidMarker
	}
}
