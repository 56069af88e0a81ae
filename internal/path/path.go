// Package path parses and evaluates dot-separated path expressions such as
// "users.*.name" or "orders[0].total".
//
// Segments are split on '.' only; there is no escape for a literal dot, so
// keys containing '.' cannot be addressed.
package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/models"
)

// SegmentKind identifies the step a Segment performs.
type SegmentKind int

const (
	SegmentKey SegmentKind = iota
	SegmentWildcard
	SegmentIndexedKey
)

// Segment is one step of an Expression.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Index int
}

func (s Segment) String() string {
	switch s.Kind {
	case SegmentWildcard:
		return "*"
	case SegmentIndexedKey:
		return fmt.Sprintf("%s[%d]", s.Name, s.Index)
	default:
		return s.Name
	}
}

// Expression is a parsed path. It is immutable and may be resolved against
// any number of Values.
type Expression struct {
	segments []Segment
}

// Segments returns a copy of the parsed segments.
func (e Expression) Segments() []Segment {
	out := make([]Segment, len(e.segments))
	copy(out, e.segments)
	return out
}

// String renders the expression back to its textual form.
func (e Expression) String() string {
	parts := make([]string, len(e.segments))
	for i, s := range e.segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Parse compiles a path expression. Each dot-separated segment must be a
// non-empty key, "*", or key[digits].
func Parse(text string) (Expression, error) {
	if text == "" {
		return Expression{}, errors.NewPathError("path expression is empty", errors.ErrInvalidPath)
	}

	parts := strings.Split(text, ".")
	segments := make([]Segment, 0, len(parts))
	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Expression{}, errors.NewPathError(
				fmt.Sprintf("segment %d of %q: %s", i+1, text, err),
				errors.ErrInvalidPath,
			)
		}
		segments = append(segments, seg)
	}
	return Expression{segments: segments}, nil
}

// MustParse is like Parse but panics on error. Intended for constant paths.
func MustParse(text string) Expression {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, fmt.Errorf("empty segment")
	}
	if part == "*" {
		return Segment{Kind: SegmentWildcard}, nil
	}

	open := strings.IndexByte(part, '[')
	if open < 0 {
		if strings.ContainsAny(part, "]*") {
			return Segment{}, fmt.Errorf("unexpected character in key %q", part)
		}
		return Segment{Kind: SegmentKey, Name: part}, nil
	}

	name := part[:open]
	if name == "" {
		return Segment{}, fmt.Errorf("index %q has no key", part)
	}
	if strings.ContainsAny(name, "]*") {
		return Segment{}, fmt.Errorf("unexpected character in key %q", name)
	}
	if !strings.HasSuffix(part, "]") {
		return Segment{}, fmt.Errorf("unterminated index in %q", part)
	}
	digits := part[open+1 : len(part)-1]
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return Segment{}, fmt.Errorf("index in %q must be digits", part)
	}
	idx, err := strconv.Atoi(digits)
	if err != nil {
		return Segment{}, fmt.Errorf("index in %q out of range", part)
	}
	return Segment{Kind: SegmentIndexedKey, Name: name, Index: idx}, nil
}

// Resolve evaluates e against root and returns the matches in discovery
// order. Missing keys, wrong shapes and out-of-range indices prune a branch
// silently, so an empty result is not an error. The returned Values alias
// root; clone them before mutating.
func (e Expression) Resolve(root models.Value) []models.Value {
	frontier := []models.Value{root}
	for _, seg := range e.segments {
		next := make([]models.Value, 0, len(frontier))
		for _, cur := range frontier {
			next = step(next, cur, seg)
		}
		if len(next) == 0 {
			return nil
		}
		frontier = next
	}
	return frontier
}

// First returns the first match of e in root, or null and false.
func (e Expression) First(root models.Value) (models.Value, bool) {
	matches := e.Resolve(root)
	if len(matches) == 0 {
		return models.Null(), false
	}
	return matches[0], true
}

func step(out []models.Value, cur models.Value, seg Segment) []models.Value {
	switch seg.Kind {
	case SegmentKey:
		if v, ok := cur.AsObject().Get(seg.Name); ok {
			out = append(out, v)
		}
	case SegmentWildcard:
		switch cur.Kind() {
		case models.KindArray:
			out = append(out, cur.AsArray()...)
		case models.KindObject:
			cur.AsObject().Range(func(_ string, v models.Value) bool {
				out = append(out, v)
				return true
			})
		}
	case SegmentIndexedKey:
		v, ok := cur.AsObject().Get(seg.Name)
		if !ok || !v.IsArray() {
			break
		}
		if items := v.AsArray(); seg.Index < len(items) {
			out = append(out, items[seg.Index])
		}
	}
	return out
}

// Query parses text and resolves it against root, returning deep copies of
// every match.
func Query(root models.Value, text string) ([]models.Value, error) {
	e, err := Parse(text)
	if err != nil {
		return nil, err
	}
	matches := e.Resolve(root)
	out := make([]models.Value, len(matches))
	for i, m := range matches {
		out[i] = m.Clone()
	}
	return out, nil
}

// Match is a resolved value together with its concrete location, written in
// flatten notation ("a.b[0].c").
type Match struct {
	Location string
	Value    models.Value
}

// ResolveLocations is Resolve, but also reports where each match was found.
func (e Expression) ResolveLocations(root models.Value) []Match {
	frontier := []Match{{Value: root}}
	for _, seg := range e.segments {
		var next []Match
		for _, cur := range frontier {
			next = stepLocated(next, cur, seg)
		}
		if len(next) == 0 {
			return nil
		}
		frontier = next
	}
	return frontier
}

func stepLocated(out []Match, cur Match, seg Segment) []Match {
	switch seg.Kind {
	case SegmentKey:
		if v, ok := cur.Value.AsObject().Get(seg.Name); ok {
			out = append(out, Match{Location: JoinKey(cur.Location, seg.Name, "."), Value: v})
		}
	case SegmentWildcard:
		switch cur.Value.Kind() {
		case models.KindArray:
			for i, item := range cur.Value.AsArray() {
				out = append(out, Match{Location: JoinIndex(cur.Location, i), Value: item})
			}
		case models.KindObject:
			cur.Value.AsObject().Range(func(k string, v models.Value) bool {
				out = append(out, Match{Location: JoinKey(cur.Location, k, "."), Value: v})
				return true
			})
		}
	case SegmentIndexedKey:
		v, ok := cur.Value.AsObject().Get(seg.Name)
		if !ok || !v.IsArray() {
			break
		}
		if items := v.AsArray(); seg.Index < len(items) {
			loc := JoinIndex(JoinKey(cur.Location, seg.Name, "."), seg.Index)
			out = append(out, Match{Location: loc, Value: items[seg.Index]})
		}
	}
	return out
}

// JoinKey appends an object key to a location using sep.
func JoinKey(location, key, sep string) string {
	if location == "" {
		return key
	}
	return location + sep + key
}

// JoinIndex appends an array index to a location.
func JoinIndex(location string, i int) string {
	return location + "[" + strconv.Itoa(i) + "]"
}
