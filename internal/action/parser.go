// internal/action/parser.go
package action

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	thoughtMarker = "Thought:"
	actionMarker  = "Action:"
	fence         = "\x60\x60\x60"
)

var (
	// callRegex matches `name(...)` at the start of the action text. The
	// argument group is greedy up to the last closing paren on the line.
	callRegex = regexp.MustCompile(`^(\w+)\((.*)\)`)
	// paramRegex matches `key='value'`. Values cannot contain a single quote.
	paramRegex = regexp.MustCompile(`(\w+)\s*=\s*'([^']*)'`)
	// pairRegex finds `(x, y)` inside a coordinate value.
	pairRegex = regexp.MustCompile(`\((\d+,\s*\d+)\)`)
)

// Fallback pairs a literal that may appear anywhere in unparseable action
// text with the zero-argument action it stands for.
type Fallback struct {
	Literal string
	Name    string
}

// fallbacks is consulted in order; the first contained literal wins.
var fallbacks = []Fallback{
	{Literal: "wait()", Name: "wait"},
	{Literal: "finished()", Name: "finished"},
	{Literal: "authenticate()", Name: "authenticate"},
	{Literal: "call_user()", Name: "call_user"},
}

// Fallbacks returns a copy of the recovery table in priority order.
func Fallbacks() []Fallback {
	out := make([]Fallback, len(fallbacks))
	copy(out, fallbacks)
	return out
}

// Parse reads a model reply of the form
//
//	Thought: <reasoning>
//	Action: name(key='value', ...)
//
// Reasoning is empty when the Thought marker is absent. Action is nil when no
// Action marker is present or when neither the call grammar nor the fallback
// table recognizes the action text.
func Parse(output string) Parsed {
	var res Parsed

	if i := strings.Index(output, thoughtMarker); i >= 0 {
		rest := output[i+len(thoughtMarker):]
		if j := strings.Index(rest, actionMarker); j >= 0 {
			rest = rest[:j]
		}
		res.Reasoning = strings.TrimSpace(rest)
	}

	i := strings.Index(output, actionMarker)
	if i < 0 {
		return res
	}
	text := unfence(strings.TrimSpace(output[i+len(actionMarker):]))

	if a, ok := parseCall(text); ok {
		res.Action = &a
		return res
	}
	for _, fb := range fallbacks {
		if strings.Contains(text, fb.Literal) {
			a := New(fb.Name, nil)
			res.Action = &a
			return res
		}
	}
	return res
}

// unfence strips one pair of triple backtick fences when the text both starts
// and ends with one.
func unfence(text string) string {
	if !strings.HasPrefix(text, fence) || !strings.HasSuffix(text, fence) {
		return text
	}
	if len(text) < 2*len(fence) {
		return ""
	}
	return strings.TrimSpace(text[len(fence) : len(text)-len(fence)])
}

func parseCall(text string) (Action, bool) {
	m := callRegex.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Action{}, false
	}
	name, args := m[1], m[2]
	params := Params{}
	if args == "" {
		return New(name, params), true
	}

	for _, pm := range paramRegex.FindAllStringSubmatch(args, -1) {
		key := strings.TrimSpace(pm[1])
		raw := pm[2]
		if isCoordinateKey(key) {
			params[key] = parsePair(raw)
			continue
		}
		params[key] = TextValue(raw)
	}
	return New(name, params), true
}

func isCoordinateKey(key string) bool {
	return strings.Contains(key, "box") || strings.Contains(key, "point")
}

func parsePair(raw string) Value {
	m := pairRegex.FindStringSubmatch(raw)
	if m == nil {
		return NoneValue()
	}
	xs, ys, _ := strings.Cut(m[1], ",")
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return NoneValue()
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return NoneValue()
	}
	return PointValue(x, y)
}
