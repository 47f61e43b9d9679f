// Package ast defines the source-positioned syntax tree produced by the
// DML parser. Every node carries a Span so that later passes (type-alias
// resolution, lowering, validation) can keep reporting diagnostics against
// the original source text.
package ast

// Span is a half-open byte-offset range [Start, End) into the source text
// that produced a node.
type Span struct {
	Start int
	End   int
}

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}
