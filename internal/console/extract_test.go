package console

import (
	"strings"
	"testing"

	"github.com/example/delog/internal/model"
)

func scanDefault(t *testing.T, src string) []model.Match {
	t.Helper()
	return ScanText(src, NewRuleset("", nil))
}

func TestScanTextIgnoresStringsAndComments(t *testing.T) {
	srcs := []string{
		`const s = "console.log(x)";`,
		`const s = 'console.log(x)';`,
		"// console.log(x)",
		"/* console.log(x) */",
		"`plain console.log(x) text`",
	}
	for _, src := range srcs {
		if got := scanDefault(t, src); len(got) != 0 {
			t.Fatalf("%q: expected 0 matches, got %d", src, len(got))
		}
	}
}

func TestScanTextFindsCallInTemplateExpression(t *testing.T) {
	src := "`${console.log(x)}`"
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Method != "log" {
		t.Fatalf("method = %q", got[0].Method)
	}
}

func TestScanTextTemplateInterpolations(t *testing.T) {
	src := "const s = `a ${console.log(1)} b ${console.warn(`${console.error(2)}`)} c`;"
	got := scanDefault(t, src)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Method != "log" || got[1].Method != "warn" {
		t.Fatalf("methods = %q, %q", got[0].Method, got[1].Method)
	}
	for _, m := range got {
		if src[m.Span.Start:m.Span.End] == "" || !strings.HasPrefix(src[m.Span.Start:], "console.") {
			t.Fatalf("span %d-%d does not start at a call", m.Span.Start, m.Span.End)
		}
	}
}

func TestScanTextTemplateLineNumbers(t *testing.T) {
	src := "line1\n`x ${\nconsole.log(y)\n}`"
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].StartLine != 3 {
		t.Fatalf("start line = %d, want 3", got[0].StartLine)
	}
}

func TestScanTextUnterminatedInterpolation(t *testing.T) {
	src := "`oops ${ console.log(x)"
	if got := scanDefault(t, src); len(got) != 0 {
		t.Fatalf("expected 0 matches, got %d", len(got))
	}
}

func TestScanTextBalancedNesting(t *testing.T) {
	src := "console.log(foo(bar(1,2), [3,4]))"
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Span.Start != 0 || got[0].Span.End != len(src) {
		t.Fatalf("span = %d-%d, want 0-%d", got[0].Span.Start, got[0].Span.End, len(src))
	}
}

func TestScanTextAbsorbsTerminator(t *testing.T) {
	src := "console.log('x');  "
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	want := len("console.log('x');")
	if got[0].Span.End != want {
		t.Fatalf("span end = %d, want %d (semicolon, not trailing spaces)", got[0].Span.End, want)
	}
}

func TestScanTextParensInsideArgumentStrings(t *testing.T) {
	src := `console.log("a ) b", '(', ` + "`)${x}(`" + `)`
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Span.End != len(src) {
		t.Fatalf("span end = %d, want %d", got[0].Span.End, len(src))
	}
}

func TestScanTextSkipsUnknownMethods(t *testing.T) {
	src := "console.customThing(1); console.log(2);"
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Method != "log" {
		t.Fatalf("method = %q", got[0].Method)
	}
}

func TestScanTextChainedCallMatchesCallOnly(t *testing.T) {
	src := "console.log(a).foo()"
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	want := len("console.log(a)")
	if got[0].Span.End != want {
		t.Fatalf("span end = %d, want %d (trailing .foo() untouched)", got[0].Span.End, want)
	}
}

func TestScanTextDiscardsUnbalancedCall(t *testing.T) {
	src := "console.log(foo(1)"
	if got := scanDefault(t, src); len(got) != 0 {
		t.Fatalf("expected 0 matches for unbalanced call, got %d", len(got))
	}
}

func TestScanTextNestedCallCountedOnce(t *testing.T) {
	src := "console.log(console.warn(1))"
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match (outer call), got %d", len(got))
	}
	if got[0].Span.Start != 0 || got[0].Span.End != len(src) {
		t.Fatalf("matched inner call instead of outer: %d-%d", got[0].Span.Start, got[0].Span.End)
	}
}

func TestScanTextMatchesNeverOverlap(t *testing.T) {
	src := strings.Repeat("console.log(1); console.error('x');\n", 10) +
		"const a = cond ? console.warn(1) : console.info(2);\n"
	got := scanDefault(t, src)
	if len(got) != 22 {
		t.Fatalf("expected 22 matches, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Span.Overlaps(got[i].Span) {
			t.Fatalf("matches %d and %d overlap", i-1, i)
		}
		if got[i-1].Span.Start >= got[i].Span.Start {
			t.Fatalf("matches not in source order at %d", i)
		}
	}
}

func TestScanTextCommentBetweenReceiverAndMethod(t *testing.T) {
	src := "console /* why */ . log (1);"
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Span.End != len(src) {
		t.Fatalf("span end = %d, want %d", got[0].Span.End, len(src))
	}
}

func TestScanTextCustomReceiver(t *testing.T) {
	rs := NewRuleset("logger", []string{"debug"})
	src := "logger.debug(1); console.log(2);"
	got := ScanText(src, rs)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Method != "debug" {
		t.Fatalf("method = %q", got[0].Method)
	}
}

func TestScanTextShadowedReceiverStillMatches(t *testing.T) {
	// lexical identification only: a local variable named console is
	// indistinguishable from the global. Documented limitation.
	src := "const console = fake; console.log(1);"
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 (false positive) match, got %d", len(got))
	}
}

func TestScanTextPreviewIsCollapsed(t *testing.T) {
	src := "console.log(\n  'a',\n  'b'\n);"
	got := scanDefault(t, src)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if strings.ContainsAny(got[0].Preview, "\n\t") {
		t.Fatalf("preview not collapsed: %q", got[0].Preview)
	}
	if got[0].Preview != "console.log( 'a', 'b' );" {
		t.Fatalf("preview = %q", got[0].Preview)
	}
}
