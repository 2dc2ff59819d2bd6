package analysis

import "fmt"

// Bindings maps assigned expressions to their values. Later assignments
// overwrite earlier ones.
type Bindings map[string]string

// Apply records every assign entry and reports how many were applied.
func (b Bindings) Apply(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if !e.Assign {
			continue
		}
		b[e.Expr] = e.Result
		n++
	}
	return n
}

// Clone returns an independent copy.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Result is an expression and its answer as shown on the board.
type Result struct {
	Expression string
	Answer     string
}

// Markup returns the typesetting source for r. The delimiters and size
// macro are what the renderer expects.
func (r Result) Markup() string {
	return fmt.Sprintf(`\(\LARGE{%s = %s}\)`, r.Expression, r.Answer)
}

// Text is the plain form used for the clipboard and exports.
func (r Result) Text() string {
	return r.Expression + " = " + r.Answer
}
