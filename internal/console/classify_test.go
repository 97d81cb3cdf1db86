package console

import (
	"strings"
	"testing"

	"github.com/example/delog/internal/model"
)

// planFirst scans src and classifies its first match.
func planFirst(t *testing.T, src string) (*model.RemovalStrategy, model.Match) {
	t.Helper()
	matches := ScanText(src, NewRuleset("", nil))
	if len(matches) == 0 {
		t.Fatalf("no match found in %q", src)
	}
	m := matches[0]
	return PlanRemoval(ContextFor(src, m.Span), m.Span), m
}

func TestPlanArrowBody(t *testing.T) {
	src := "const f = () => console.log('x');"
	strat, _ := planFirst(t, src)
	if strat == nil {
		t.Fatal("nil strategy")
	}
	if strat.Class != model.ClassArrowBody {
		t.Fatalf("class = %s", strat.Class)
	}
	if !strat.HasReplacement || strat.Replacement != "{};" {
		t.Fatalf("replacement = %q, want \"{};\"", strat.Replacement)
	}
	if !strat.Risky {
		t.Fatal("arrow body replacement must be risky")
	}
}

func TestPlanArrowBodyWithoutTerminator(t *testing.T) {
	src := "items.map(x => console.log(x))"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassArrowBody {
		t.Fatalf("strategy = %+v", strat)
	}
	if strat.Replacement != "{}" {
		t.Fatalf("replacement = %q, want \"{}\"", strat.Replacement)
	}
}

func TestPlanTernaryConsequent(t *testing.T) {
	src := "const v = cond ? console.log(a) : b;"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassTernaryThen {
		t.Fatalf("strategy = %+v", strat)
	}
	if strat.Replacement != "undefined" || !strat.Risky {
		t.Fatalf("replacement = %q risky = %v", strat.Replacement, strat.Risky)
	}
}

func TestPlanTernaryAlternate(t *testing.T) {
	src := "const v = cond ? a : console.log(b);"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassTernaryElse {
		t.Fatalf("strategy = %+v", strat)
	}
	if strat.Replacement != "undefined" {
		t.Fatalf("replacement = %q", strat.Replacement)
	}
}

func TestPlanObjectLiteralValueIsNotTernary(t *testing.T) {
	// ':' here is a property separator; the nearest '{' is closer than
	// any '?' so the ternary-alternate rule must not fire
	src := "const o = { debug: console.log(a) };"
	strat, _ := planFirst(t, src)
	if strat == nil {
		t.Fatal("nil strategy")
	}
	if strat.Class == model.ClassTernaryElse {
		t.Fatal("object literal value misclassified as ternary alternate")
	}
}

func TestPlanTernaryAlternateAcrossLines(t *testing.T) {
	src := "const v = cond\n  ? a\n  : console.log(b);"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassTernaryElse {
		t.Fatalf("strategy = %+v", strat)
	}
}

func TestPlanReturnValue(t *testing.T) {
	src := "function f() { return console.log(x) || fallback; }"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassReturnValue {
		t.Fatalf("strategy = %+v", strat)
	}
	if strat.Replacement != "undefined" || !strat.Risky {
		t.Fatalf("replacement = %q risky = %v", strat.Replacement, strat.Risky)
	}
}

func TestPlanReturnWordBoundary(t *testing.T) {
	src := "myreturn = console.log(x);"
	strat, _ := planFirst(t, src)
	if strat != nil && strat.Class == model.ClassReturnValue {
		t.Fatal("identifier ending in 'return' misclassified as return statement")
	}
}

func TestPlanLogicalOperand(t *testing.T) {
	for _, src := range []string{
		"ready || console.log(a);",
		"ready && console.log(a);",
		"cached ?? console.log(a);",
	} {
		strat, _ := planFirst(t, src)
		if strat == nil || strat.Class != model.ClassLogicalOperand {
			t.Fatalf("%q: strategy = %+v", src, strat)
		}
		if strat.Replacement != "undefined" {
			t.Fatalf("%q: replacement = %q", src, strat.Replacement)
		}
	}
}

func TestPlanNullishCoalescingIsNotTernary(t *testing.T) {
	// a trailing ?? ends in '?' but is not a ternary branch; the call is
	// a logical operand and keeps its undefined value
	src := "const v = a ?? console.log(x);"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassLogicalOperand {
		t.Fatalf("strategy = %+v", strat)
	}
	if strat.Replacement != "undefined" || !strat.Risky {
		t.Fatalf("replacement = %q risky = %v", strat.Replacement, strat.Risky)
	}
}

func TestPlanCommaFirst(t *testing.T) {
	src := "run((console.log(a), compute()));"
	matches := ScanText(src, NewRuleset("", nil))
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	strat := PlanRemoval(ContextFor(src, m.Span), m.Span)
	if strat == nil || strat.Class != model.ClassCommaFirst {
		t.Fatalf("strategy = %+v", strat)
	}
	if strat.HasReplacement {
		t.Fatal("comma-first must delete, not replace")
	}
	removed := src[strat.Range.Start:strat.Range.End]
	if !strings.HasSuffix(removed, ",") {
		t.Fatalf("removed text %q must absorb the following comma", removed)
	}
	if !strat.Risky {
		t.Fatal("comma-operator removal must be risky")
	}
}

func TestPlanCommaLast(t *testing.T) {
	src := "run((compute(), console.log(a)));"
	matches := ScanText(src, NewRuleset("", nil))
	m := matches[0]
	strat := PlanRemoval(ContextFor(src, m.Span), m.Span)
	if strat == nil || strat.Class != model.ClassCommaLast {
		t.Fatalf("strategy = %+v", strat)
	}
	removed := src[strat.Range.Start:strat.Range.End]
	if !strings.HasPrefix(removed, ",") {
		t.Fatalf("removed text %q must absorb the preceding comma", removed)
	}
}

func TestPlanExpressionSlot(t *testing.T) {
	src := "return <div>{ console.log(props) }</div>;"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassExpressionSlot {
		t.Fatalf("strategy = %+v", strat)
	}
	if strat.Replacement != "null" {
		t.Fatalf("replacement = %q, want \"null\"", strat.Replacement)
	}
}

func TestPlanCallbackArgument(t *testing.T) {
	src := "setTimeout( console.log(x) );"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassCallbackArgument {
		t.Fatalf("strategy = %+v", strat)
	}
	if strat.Replacement != "() => {}" {
		t.Fatalf("replacement = %q", strat.Replacement)
	}
}

func TestPlanIfConditionIsNotCallback(t *testing.T) {
	src := "if (console.log(x)) { y(); }"
	strat, _ := planFirst(t, src)
	if strat != nil && strat.Class == model.ClassCallbackArgument {
		t.Fatal("if condition misclassified as callback argument")
	}
}

func TestPlanWholeLine(t *testing.T) {
	src := "before();\n  console.log('x');\nafter();\n"
	matches := ScanText(src, NewRuleset("", nil))
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	strat := PlanRemoval(ContextFor(src, m.Span), m.Span)
	if strat == nil || strat.Class != model.ClassWholeLine {
		t.Fatalf("strategy = %+v", strat)
	}
	if strat.Risky {
		t.Fatal("whole-line deletion must not be risky")
	}
	if strat.HasReplacement {
		t.Fatal("whole-line deletion must not replace")
	}
	removed := src[strat.Range.Start:strat.Range.End]
	if removed != "  console.log('x');\n" {
		t.Fatalf("removed = %q", removed)
	}
	if Apply(src, []model.RemovalStrategy{*strat}) != "before();\nafter();\n" {
		t.Fatalf("apply result = %q", Apply(src, []model.RemovalStrategy{*strat}))
	}
}

func TestPlanLineStart(t *testing.T) {
	src := "  console.log('x'); after();\n"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassLineStart {
		t.Fatalf("strategy = %+v", strat)
	}
	got := Apply(src, []model.RemovalStrategy{*strat})
	if got != " after();\n" {
		t.Fatalf("apply result = %q", got)
	}
}

func TestPlanLineEnd(t *testing.T) {
	src := "before(); console.log('x');\nnext();\n"
	matches := ScanText(src, NewRuleset("", nil))
	m := matches[0]
	strat := PlanRemoval(ContextFor(src, m.Span), m.Span)
	if strat == nil || strat.Class != model.ClassLineEnd {
		t.Fatalf("strategy = %+v", strat)
	}
	got := Apply(src, []model.RemovalStrategy{*strat})
	if got != "before(); next();\n" {
		t.Fatalf("apply result = %q", got)
	}
}

func TestPlanTrailingCommentForcesFallback(t *testing.T) {
	src := "before(); console.log(x); // keep this note\n"
	strat, _ := planFirst(t, src)
	if strat == nil || strat.Class != model.ClassExactSpan {
		t.Fatalf("strategy = %+v", strat)
	}
	got := Apply(src, []model.RemovalStrategy{*strat})
	if !strings.Contains(got, "// keep this note") {
		t.Fatalf("trailing comment stripped: %q", got)
	}
}

func TestPlanStaleSpanReturnsNil(t *testing.T) {
	src := "console.log(x);"
	if strat := PlanRemoval(ContextFor(src, model.Span{Start: 5, End: 500}), model.Span{Start: 5, End: 500}); strat != nil {
		t.Fatalf("expected nil for out-of-range span, got %+v", strat)
	}
	if strat := PlanRemoval(ContextFor(src, model.Span{Start: 9, End: 3}), model.Span{Start: 9, End: 3}); strat != nil {
		t.Fatalf("expected nil for inverted span, got %+v", strat)
	}
}
