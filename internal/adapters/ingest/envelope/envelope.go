// Package envelope locates the listing array inside a search response whose shape varies
package envelope

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Path is one candidate location: Key under the object at Parent ("" means top level)
type Path struct {
	Parent string
	Key    string
}

// String renders the path the way it shows up in logs, e.g. "data.items"
func (p Path) String() string {
	if p.Parent == "" {
		return p.Key
	}
	return p.Parent + "." + p.Key
}

// Bare marks a response that is itself the list
var Bare = Path{Key: "$"}

// Paths is the search order; the first path holding an array wins, even an empty one
var Paths = []Path{
	{"data", "items"},
	{"data", "list"},
	{"data", "results"},
	{"data", "listings"},
	{"", "items"},
	{"", "list"},
	{"", "data"},
	{"", "results"},
	{"", "listings"},
}

// Result is what Extract found. Matched=false means no known shape, which reads as end of data
type Result struct {
	Records []json.RawMessage
	Path    Path
	Matched bool
	Skipped int // array elements that were not objects
}

// Empty reports the end of data signal
func (r Result) Empty() bool { return len(r.Records) == 0 }

// Extract runs the ordered search over body. It never fails; anything unrecognized is empty
func Extract(body json.RawMessage) Result {
	switch firstByte(body) {
	case '[':
		return fromArray(body, Bare)
	case '{':
	default:
		return Result{}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return Result{}
	}
	var nested map[string]json.RawMessage
	if d, ok := top["data"]; ok && firstByte(d) == '{' {
		_ = json.Unmarshal(d, &nested)
	}

	for _, p := range Paths {
		obj := top
		if p.Parent != "" {
			if nested == nil {
				continue
			}
			obj = nested
		}
		v, ok := obj[p.Key]
		if !ok || firstByte(v) != '[' {
			continue
		}
		return fromArray(v, p)
	}
	return Result{}
}

// Shape summarizes an envelope for the probe report: sorted top-level keys and nested data keys
type Shape struct {
	Kind     string // object, array, other
	TopKeys  []string
	DataKeys []string
}

// Describe reports the outer shape of body
func Describe(body json.RawMessage) Shape {
	switch firstByte(body) {
	case '[':
		return Shape{Kind: "array"}
	case '{':
	default:
		return Shape{Kind: "other"}
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return Shape{Kind: "other"}
	}
	s := Shape{Kind: "object", TopKeys: keys(top)}
	if d, ok := top["data"]; ok && firstByte(d) == '{' {
		var nested map[string]json.RawMessage
		if json.Unmarshal(d, &nested) == nil {
			s.DataKeys = keys(nested)
		}
	}
	return s
}

func fromArray(raw json.RawMessage, p Path) Result {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return Result{}
	}
	res := Result{Path: p, Matched: true, Records: make([]json.RawMessage, 0, len(elems))}
	for _, e := range elems {
		if firstByte(e) != '{' {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, e)
	}
	return res
}

func firstByte(b []byte) byte {
	b = bytes.TrimLeft(b, " \t\r\n")
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
