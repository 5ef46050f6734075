// internal/action/action.go
package action

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the closed set of actions the agent understands. Names the model
// invents that are not in this set map to KindUnknown and keep their raw name
// on the Action.
type Kind int

const (
	KindUnknown Kind = iota
	KindClick
	KindLeftDouble
	KindRightSingle
	KindDrag
	KindHotkey
	KindType
	KindScroll
	KindWait
	KindFinished
	KindAuthenticate
	KindCallUser
)

var kindNames = map[Kind]string{
	KindClick:        "click",
	KindLeftDouble:   "left_double",
	KindRightSingle:  "right_single",
	KindDrag:         "drag",
	KindHotkey:       "hotkey",
	KindType:         "type",
	KindScroll:       "scroll",
	KindWait:         "wait",
	KindFinished:     "finished",
	KindAuthenticate: "authenticate",
	KindCallUser:     "call_user",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

// KindOf resolves an action name. Matching is case sensitive.
func KindOf(name string) Kind {
	if k, ok := kindsByName[name]; ok {
		return k
	}
	return KindUnknown
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Terminal reports whether the kind ends an instruction run on its own.
func (k Kind) Terminal() bool {
	return k == KindFinished || k == KindAuthenticate || k == KindCallUser
}

// ValueKind discriminates the payload of a Value.
type ValueKind uint8

const (
	// ValueText holds the raw text between the quotes.
	ValueText ValueKind = iota
	// ValuePoint holds a coordinate pair.
	ValuePoint
	// ValueNone marks a coordinate key whose value carried no pair.
	ValueNone
)

// Point is a screen coordinate in logical pixels.
type Point struct {
	X, Y int
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Value is a single action parameter.
type Value struct {
	Kind  ValueKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Point Point     `json:"point"`
}

// TextValue wraps raw text.
func TextValue(s string) Value { return Value{Kind: ValueText, Text: s} }

// PointValue wraps a coordinate pair.
func PointValue(x, y int) Value { return Value{Kind: ValuePoint, Point: Point{X: x, Y: y}} }

// NoneValue is the value of a coordinate key without a usable pair.
func NoneValue() Value { return Value{Kind: ValueNone} }

func (v Value) String() string {
	switch v.Kind {
	case ValuePoint:
		return v.Point.String()
	case ValueNone:
		return "<none>"
	default:
		return v.Text
	}
}

// Params maps parameter keys to their parsed values.
type Params map[string]Value

// Point returns the coordinate stored under key, if there is one.
func (p Params) Point(key string) (Point, bool) {
	v, ok := p[key]
	if !ok || v.Kind != ValuePoint {
		return Point{}, false
	}
	return v.Point, true
}

// Text returns the text stored under key, if there is one.
func (p Params) Text(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v.Kind != ValueText {
		return "", false
	}
	return v.Text, true
}

// Action is one structured command extracted from model output.
type Action struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"-"`
	Params Params `json:"params"`
}

// New builds an Action and resolves its Kind from name.
func New(name string, params Params) Action {
	if params == nil {
		params = Params{}
	}
	return Action{Name: name, Kind: KindOf(name), Params: params}
}

// String renders the action in call syntax with keys sorted.
func (a Action) String() string {
	keys := make([]string, 0, len(a.Params))
	for k := range a.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(a.Name)
	b.WriteByte('(')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s='%s'", k, a.Params[k])
	}
	b.WriteByte(')')
	return b.String()
}

// Parsed is the result of reading one model reply.
type Parsed struct {
	Reasoning string
	Action    *Action
}
