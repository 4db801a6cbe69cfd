package asl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grussorusso/stepflow/utils"
)

// Path is a reference path: the literal "$" for the whole document, or "$"
// followed by ".field" and "[index]" segments. Wildcards, filters and
// recursive descent of full JSONPath are not part of the dialect.
type Path string

type pathSegment struct {
	field   string
	index   int
	isIndex bool
}

// ErrPathNotFound is returned by Resolve when the traversal runs through a
// missing field or an out-of-range index.
type ErrPathNotFound struct {
	Path Path
}

func (e *ErrPathNotFound) Error() string {
	return fmt.Sprintf("reference path '%s' does not resolve", e.Path)
}

// NewReferencePath validates s as a reference path.
func NewReferencePath(s string) (Path, error) {
	p := Path(s)
	if _, err := p.segments(); err != nil {
		return "", err
	}
	return p, nil
}

// IsReferencePath checks whether s looks like a reference path (starts with '$').
func IsReferencePath(s string) bool {
	return strings.HasPrefix(s, "$")
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p Path) segments() ([]pathSegment, error) {
	s := string(p)
	if s == "" || s[0] != '$' {
		return nil, fmt.Errorf("a reference path must begin with '$': '%s'", s)
	}
	segs := make([]pathSegment, 0)
	i := 1
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			start := i
			for i < len(s) && isIdentChar(s[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("empty field name in reference path '%s'", s)
			}
			segs = append(segs, pathSegment{field: s[start:i]})
		case '[':
			i++
			start := i
			for i < len(s) && s[i] != ']' {
				i++
			}
			if i == len(s) {
				return nil, fmt.Errorf("unterminated index in reference path '%s'", s)
			}
			idx, err := strconv.Atoi(s[start:i])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("invalid array index '%s' in reference path '%s'", s[start:i], s)
			}
			segs = append(segs, pathSegment{index: idx, isIndex: true})
			i++ // skip ']'
		default:
			return nil, fmt.Errorf("unexpected character '%c' in reference path '%s'", s[i], s)
		}
	}
	return segs, nil
}

// Resolve looks the path up in doc. Traversal through a missing field or an
// out-of-range index yields ErrPathNotFound.
func (p Path) Resolve(doc interface{}) (interface{}, error) {
	segs, err := p.segments()
	if err != nil {
		return nil, err
	}
	current := doc
	for _, seg := range segs {
		if seg.isIndex {
			arr, ok := current.([]interface{})
			if !ok || seg.index >= len(arr) {
				return nil, &ErrPathNotFound{Path: p}
			}
			current = arr[seg.index]
		} else {
			obj, ok := current.(map[string]interface{})
			if !ok {
				return nil, &ErrPathNotFound{Path: p}
			}
			val, found := obj[seg.field]
			if !found {
				return nil, &ErrPathNotFound{Path: p}
			}
			current = val
		}
	}
	return current, nil
}

// Insert places value into root at the path, creating intermediate objects
// for missing fields, and returns the combined document. The input document
// is not mutated. Descending through a non-object (or a non-array for an
// index segment) is an error; "$" replaces the whole document.
func (p Path) Insert(root interface{}, value interface{}) (interface{}, error) {
	segs, err := p.segments()
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return value, nil
	}
	combined := utils.DeepCopyJSON(root)
	current := combined
	for i, seg := range segs {
		last := i == len(segs)-1
		if seg.isIndex {
			arr, ok := current.([]interface{})
			if !ok || seg.index >= len(arr) {
				return nil, fmt.Errorf("cannot place result at '%s': index %d does not exist", p, seg.index)
			}
			if last {
				arr[seg.index] = value
			} else {
				current = arr[seg.index]
			}
		} else {
			obj, ok := current.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("cannot place result at '%s': '%s' is not an object field", p, seg.field)
			}
			if last {
				obj[seg.field] = value
			} else {
				child, found := obj[seg.field]
				if !found {
					child = make(map[string]interface{})
					obj[seg.field] = child
				}
				current = child
			}
		}
	}
	return combined, nil
}

// OptionalPath distinguishes an absent path field (the default "$" applies)
// from an explicit null (the filter discards or replaces, depending on the
// pipeline stage).
type OptionalPath struct {
	IsSet  bool
	IsNull bool
	Path   Path
}

// Effective returns the path to apply, i.e. "$" when the field was absent.
func (op OptionalPath) Effective() Path {
	if !op.IsSet {
		return "$"
	}
	return op.Path
}
