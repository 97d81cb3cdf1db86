package model

// Classification は検出したコンソール呼び出しの構文コンテキストを表す。
type Classification string

const (
	ClassArrowBody        Classification = "arrow-body"
	ClassTernaryThen      Classification = "ternary-consequent"
	ClassTernaryElse      Classification = "ternary-alternate"
	ClassReturnValue      Classification = "return-value"
	ClassLogicalOperand   Classification = "logical-operand"
	ClassCommaFirst       Classification = "comma-first"
	ClassCommaLast        Classification = "comma-last"
	ClassExpressionSlot   Classification = "expression-slot"
	ClassCallbackArgument Classification = "callback-argument"
	ClassWholeLine        Classification = "whole-line"
	ClassLineStart        Classification = "line-start"
	ClassLineEnd          Classification = "line-end"
	ClassExactSpan        Classification = "exact-span"
)

// Span は元テキストへの半開区間 [Start, End) を表す。
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether the offset lies inside the span.
func (s Span) Contains(off int) bool { return off >= s.Start && off < s.End }

// Overlaps reports whether two half-open spans intersect.
func (s Span) Overlaps(o Span) bool { return s.Start < o.End && o.Start < s.End }

// Match は検出された 1 件の console.<method>(...) 呼び出しを表す。
// Span は末尾のセミコロンを 1 つだけ含むことがある。
type Match struct {
	Span      Span
	StartLine int // 0-based
	Method    string
	Preview   string
}

// RemovalStrategy は 1 件の Match に対する削除・置換の判定結果を表す。
// Replacement が空文字列の場合は純粋な削除を意味する。
type RemovalStrategy struct {
	Range          Span
	Replacement    string
	HasReplacement bool
	Risky          bool
	Class          Classification
	Reason         string
}
