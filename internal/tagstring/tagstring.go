// Package tagstring compiles and evaluates TagString path patterns.
//
// A TagString describes a file path relative to a scan root:
//
//	{root}\{scene}\{layer}.{any}:reverse
//	{root}{\{any-folders}\{scene}\{layer}.{any}}:reverse
//
// Both '\' and '/' separate path segments. {name} is a named capture;
// {any-folders} must occupy a whole segment and absorbs zero or more
// folders. A brace that does not open a capture opens a group, and a group
// (or the whole pattern) followed by ":reverse" is matched rightmost-first:
// within each of its segments the right-most capture takes the shortest
// text instead of the left-most one.
package tagstring

import (
	"fmt"
	"regexp"
	"strings"

	serr "scenefuse/internal/errors"
)

// Capture names understood by the matcher.
const (
	Root       = "root"
	Scene      = "scene"
	Layer      = "layer"
	Any        = "any"
	AnyFolders = "any-folders"
)

const reverseSuffix = ":reverse"

var knownCaptures = map[string]bool{
	Root:       true,
	Scene:      true,
	Layer:      true,
	Any:        true,
	AnyFolders: true,
}

// Captures holds the values extracted by a successful match.
type Captures map[string]string

// Scene returns the {scene} capture.
func (c Captures) Scene() string { return c[Scene] }

// Layer returns the {layer} capture.
func (c Captures) Layer() string { return c[Layer] }

type elemKind int

const (
	elemLiteral elemKind = iota
	elemCapture
	elemSeparator
)

type element struct {
	kind     elemKind
	text     string
	reversed bool
}

type segment struct {
	folders  bool
	reversed bool
	re       *regexp.Regexp
	names    []string // capture names by submatch index - 1
}

// Pattern is a compiled TagString.
type Pattern struct {
	source   string
	segments []segment
	folders  int // index of the {any-folders} segment, -1 if absent
	reversed bool
	captures map[string]bool
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Pattern {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse compiles a TagString. Any syntax problem, and a pattern lacking
// exactly one {scene} and one {layer} capture, yields a MalformedPattern
// error.
func Parse(s string) (*Pattern, error) {
	src := strings.TrimSpace(s)
	if src == "" {
		return nil, serr.NewPatternError("malformed pattern", s, fmt.Errorf("empty pattern"))
	}

	elems, err := tokenize(src)
	if err != nil {
		return nil, serr.NewPatternError("malformed pattern", src, err)
	}

	p := &Pattern{
		source:   src,
		folders:  -1,
		captures: make(map[string]bool),
	}
	if err := p.build(elems); err != nil {
		return nil, serr.NewPatternError("malformed pattern", src, err)
	}

	p.reversed = true
	for _, seg := range p.segments {
		if !seg.folders && !seg.reversed {
			p.reversed = false
		}
	}
	return p, nil
}

// tokenize splits the pattern into literals, captures and separators and
// resolves group and :reverse markers.
func tokenize(s string) ([]element, error) {
	var elems []element
	var lit strings.Builder
	groupStart := -1

	flush := func() {
		if lit.Len() > 0 {
			elems = append(elems, element{kind: elemLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if name, n := captureAt(s[i:]); n > 0 {
				flush()
				elems = append(elems, element{kind: elemCapture, text: name})
				i += n - 1
				continue
			}
			if groupStart >= 0 {
				return nil, fmt.Errorf("nested group at offset %d", i)
			}
			flush()
			groupStart = len(elems)
		case '}':
			if groupStart < 0 {
				return nil, fmt.Errorf("unbalanced '}' at offset %d", i)
			}
			flush()
			if strings.HasPrefix(s[i+1:], reverseSuffix) {
				for j := groupStart; j < len(elems); j++ {
					elems[j].reversed = true
				}
				i += len(reverseSuffix)
			}
			groupStart = -1
		case '\\', '/':
			flush()
			elems = append(elems, element{kind: elemSeparator})
		default:
			if groupStart < 0 && s[i:] == reverseSuffix {
				flush()
				for j := range elems {
					elems[j].reversed = true
				}
				return elems, nil
			}
			lit.WriteByte(c)
		}
	}
	if groupStart >= 0 {
		return nil, fmt.Errorf("unterminated group")
	}
	flush()
	return elems, nil
}

// captureAt reports the capture name at the start of s and the number of
// bytes it spans, or 0 if s does not start with a capture.
func captureAt(s string) (string, int) {
	end := strings.IndexByte(s, '}')
	if end < 2 {
		return "", 0
	}
	name := s[1:end]
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			return "", 0
		}
	}
	return name, end + 1
}

func (p *Pattern) build(elems []element) error {
	if len(elems) == 0 || elems[0].kind != elemCapture || elems[0].text != Root {
		return fmt.Errorf("pattern must start with {root}")
	}
	p.captures[Root] = true
	rest := elems[1:]
	if len(rest) == 0 || rest[0].kind != elemSeparator {
		return fmt.Errorf("{root} must be followed by a path separator")
	}

	// Split on separators; each run between them is one segment.
	var current []element
	var runs [][]element
	for _, e := range rest[1:] {
		if e.kind == elemSeparator {
			runs = append(runs, current)
			current = nil
			continue
		}
		current = append(current, e)
	}
	runs = append(runs, current)

	counts := make(map[string]int)
	for i, run := range runs {
		if len(run) == 0 {
			return fmt.Errorf("empty path segment %d", i+1)
		}
		seg, err := compileSegment(run)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
		if seg.folders {
			if p.folders >= 0 {
				return fmt.Errorf("{%s} may appear only once", AnyFolders)
			}
			p.folders = i
			counts[AnyFolders]++
		}
		for _, name := range seg.names {
			counts[name]++
		}
		p.segments = append(p.segments, seg)
	}

	if counts[Root] > 0 {
		return fmt.Errorf("{root} may appear only at the start")
	}
	for _, required := range []string{Scene, Layer} {
		switch counts[required] {
		case 0:
			return fmt.Errorf("missing {%s} capture", required)
		case 1:
		default:
			return fmt.Errorf("{%s} captured more than once", required)
		}
	}
	for name := range counts {
		p.captures[name] = true
	}
	return nil
}

func compileSegment(run []element) (segment, error) {
	seg := segment{reversed: run[len(run)-1].reversed}

	if len(run) == 1 && run[0].kind == elemCapture && run[0].text == AnyFolders {
		seg.folders = true
		return seg, nil
	}

	quant := "(.+?)"
	if seg.reversed {
		quant = "(.+)"
	}

	var expr strings.Builder
	expr.WriteString("^")
	prevCapture := false
	for _, e := range run {
		switch e.kind {
		case elemLiteral:
			expr.WriteString(regexp.QuoteMeta(e.text))
			prevCapture = false
		case elemCapture:
			if !knownCaptures[e.text] {
				return seg, fmt.Errorf("unknown capture {%s}", e.text)
			}
			if e.text == AnyFolders {
				return seg, fmt.Errorf("{%s} must occupy a whole segment", AnyFolders)
			}
			if prevCapture {
				return seg, fmt.Errorf("adjacent captures before {%s} need a literal between them", e.text)
			}
			expr.WriteString(quant)
			seg.names = append(seg.names, e.text)
			prevCapture = true
		}
	}
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return seg, err
	}
	seg.re = re
	return seg, nil
}

// String returns the pattern source.
func (p *Pattern) String() string {
	return p.source
}

// Reverse reports whether every segment is matched rightmost-first, either
// through a trailing :reverse or a reversed group spanning the whole path.
func (p *Pattern) Reverse() bool {
	return p.reversed
}

// HasCapture reports whether the pattern captures name.
func (p *Pattern) HasCapture(name string) bool {
	return p.captures[name]
}

// HasAnyFolders reports whether the pattern contains {any-folders}.
func (p *Pattern) HasAnyFolders() bool {
	return p.folders >= 0
}

// Depth returns the number of fixed path segments below the root.
func (p *Pattern) Depth() int {
	if p.folders >= 0 {
		return len(p.segments) - 1
	}
	return len(p.segments)
}

// Match matches path against the pattern with {root} bound to root. Paths
// outside root never match.
func (p *Pattern) Match(root, path string) (Captures, bool) {
	rel, ok := relativeTo(root, path)
	if !ok {
		return nil, false
	}
	caps, ok := p.MatchRelative(rel)
	if !ok {
		return nil, false
	}
	caps[Root] = root
	return caps, true
}

// MatchRelative matches a path already relative to the scan root.
func (p *Pattern) MatchRelative(rel string) (Captures, bool) {
	parts := SplitPath(rel)
	if len(parts) == 0 {
		return nil, false
	}

	fixed := p.Depth()
	if p.folders < 0 && len(parts) != fixed {
		return nil, false
	}
	if p.folders >= 0 && len(parts) < fixed {
		return nil, false
	}

	// Pair each fixed pattern segment with its path segment. Segments
	// after {any-folders} anchor at the end of the path.
	type pair struct {
		seg  *segment
		part string
	}
	pairs := make([]pair, 0, fixed)
	for i := range p.segments {
		seg := &p.segments[i]
		if seg.folders {
			continue
		}
		idx := i
		if p.folders >= 0 && i > p.folders {
			idx = len(parts) - (len(p.segments) - i)
		}
		pairs = append(pairs, pair{seg: seg, part: parts[idx]})
	}

	caps := make(Captures)
	visit := func(pr pair) bool {
		m := pr.seg.re.FindStringSubmatch(pr.part)
		if m == nil {
			return false
		}
		for j, name := range pr.seg.names {
			caps[name] = m[j+1]
		}
		return true
	}

	if p.reversed {
		for i := len(pairs) - 1; i >= 0; i-- {
			if !visit(pairs[i]) {
				return nil, false
			}
		}
	} else {
		for _, pr := range pairs {
			if !visit(pr) {
				return nil, false
			}
		}
	}

	if p.folders >= 0 {
		tail := len(p.segments) - p.folders - 1
		caps[AnyFolders] = strings.Join(parts[p.folders:len(parts)-tail], "/")
	}
	return caps, true
}

// SplitPath splits a path on both '\' and '/', dropping empty segments.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '\\' || r == '/'
	})
}

// relativeTo returns path relative to root using separator-agnostic
// comparison. "." segments are dropped and ".." resolved on both sides, so
// "./data" and "data/" name the same root. An empty root accepts path as
// already relative.
func relativeTo(root, path string) (string, bool) {
	if root != "" && isRooted(root) != isRooted(path) {
		return "", false
	}
	rootParts := cleanParts(root)
	pathParts := cleanParts(path)
	if len(pathParts) <= len(rootParts) {
		return "", false
	}
	for i, part := range rootParts {
		if part != pathParts[i] {
			return "", false
		}
	}
	return strings.Join(pathParts[len(rootParts):], "/"), true
}

func isRooted(path string) bool {
	return strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`)
}

// cleanParts splits path like SplitPath and resolves "." and "..".
// Leading ".." segments of a relative path are kept.
func cleanParts(path string) []string {
	var out []string
	for _, part := range SplitPath(path) {
		switch {
		case part == ".":
		case part == ".." && len(out) > 0 && out[len(out)-1] != "..":
			out = out[:len(out)-1]
		default:
			out = append(out, part)
		}
	}
	return out
}
