package console

import (
	"strings"

	"github.com/example/delog/internal/model"
	"github.com/example/delog/internal/textutil"
)

// previewWidth caps the collapsed display rendering of a matched call.
const previewWidth = 80

// ScanText tokenizes text and returns every console.<method>(...) call as a
// Match, in source order and non-overlapping. It is total over any input:
// malformed source degrades to fewer (or zero) matches, never an error.
func ScanText(text string, rs *Ruleset) []model.Match {
	if rs == nil {
		rs = NewRuleset("", nil)
	}
	tokens := rs.Tokenize(text)
	var matches []model.Match

	for i := 0; i < len(tokens); i++ {
		if tokens[i].Kind == TokTemplate {
			matches = append(matches, templateMatches(text, tokens[i], rs)...)
			continue
		}
		if tokens[i].Kind != TokReceiver {
			continue
		}
		m, next, ok := matchAt(text, tokens, i)
		if !ok {
			continue
		}
		matches = append(matches, m)
		// resume after the close paren so nested calls in the argument
		// list are not double counted
		i = next - 1
	}
	return matches
}

// matchAt tries to read receiver '.' method '(' ... ')' [';'] starting at the
// receiver token. On success it returns the Match and the token index to
// resume scanning from.
func matchAt(text string, tokens []Token, recv int) (model.Match, int, bool) {
	dot, ok := nextCode(tokens, recv+1)
	if !ok || tokens[dot].Kind != TokDot {
		return model.Match{}, 0, false
	}
	meth, ok := nextCode(tokens, dot+1)
	if !ok || tokens[meth].Kind != TokMethod {
		return model.Match{}, 0, false
	}
	open, ok := nextCode(tokens, meth+1)
	if !ok || tokens[open].Kind != TokParenOpen {
		return model.Match{}, 0, false
	}

	depth := 1
	closeIdx := -1
	for j := open + 1; j < len(tokens); j++ {
		switch tokens[j].Kind {
		case TokParenOpen:
			depth++
		case TokParenClose:
			depth--
			if depth == 0 {
				closeIdx = j
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 {
		// unbalanced call, not a real statement to touch
		return model.Match{}, 0, false
	}

	end := tokens[closeIdx].End
	resume := closeIdx + 1
	if semi, ok := nextCode(tokens, closeIdx+1); ok && tokens[semi].Kind == TokOther && tokens[semi].Text == ";" {
		end = tokens[semi].End
		resume = semi + 1
	}

	start := tokens[recv].Start
	m := model.Match{
		Span:      model.Span{Start: start, End: end},
		StartLine: tokens[recv].StartLine,
		Method:    tokens[meth].Text,
		Preview:   textutil.CollapsePreview(text[start:end], previewWidth),
	}
	return m, resume, true
}

// templateMatches rescans the ${...} interpolations of a template literal
// token. The literal text is inert like any other string, but what sits
// inside an interpolation is real code and can hold calls of its own.
func templateMatches(text string, tok Token, rs *Ruleset) []model.Match {
	var matches []model.Match
	for _, sp := range templateExprSpans(tok.Text) {
		absStart := tok.Start + sp[0]
		inner := ScanText(text[absStart:tok.Start+sp[1]], rs)
		if len(inner) == 0 {
			continue
		}
		lineOff := tok.StartLine - 1 + strings.Count(tok.Text[:sp[0]], "\n")
		for _, m := range inner {
			m.Span.Start += absStart
			m.Span.End += absStart
			m.StartLine += lineOff
			matches = append(matches, m)
		}
	}
	return matches
}

// templateExprSpans returns the [start,end) offsets, relative to the raw
// token text (opening backtick included), of each top level ${...}
// expression. The walk mirrors the tokenizer's template state machine, so
// an interpolation left open at end of input yields no span.
func templateExprSpans(s string) [][2]int {
	var spans [][2]int
	depth := 0
	exprStart := -1
	for i := 1; i < len(s); {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i += 2
			continue
		}
		if c == '$' && i+1 < len(s) && s[i+1] == '{' {
			depth++
			if depth == 1 {
				exprStart = i + 2
			}
			i += 2
			continue
		}
		if c == '}' && depth > 0 {
			depth--
			if depth == 0 {
				spans = append(spans, [2]int{exprStart, i})
				exprStart = -1
			}
			i++
			continue
		}
		i++
		if c == '`' && depth == 0 {
			break
		}
	}
	return spans
}

// nextCode returns the index of the first token at or after from that is
// neither whitespace nor a comment.
func nextCode(tokens []Token, from int) (int, bool) {
	for j := from; j < len(tokens); j++ {
		switch tokens[j].Kind {
		case TokWhitespace, TokComment:
			continue
		default:
			return j, true
		}
	}
	return 0, false
}
