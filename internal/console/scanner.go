// Package console locates console.<method>(...) diagnostic calls in raw
// JavaScript/TypeScript source text and plans their safe removal. It works on
// unparsed text: a lossless lexical scan distinguishes real call expressions
// from look-alikes inside strings, comments and template literals, and a
// context classifier decides whether a match can be deleted outright or must
// be replaced by a syntactically neutral placeholder.
package console

import "strings"

// TokenKind はスキャナが出力する字句の種別。
type TokenKind int

const (
	TokReceiver TokenKind = iota
	TokMethod
	TokIdent
	TokDot
	TokParenOpen
	TokParenClose
	TokString
	TokTemplate
	TokComment
	TokWhitespace
	TokOther
)

// Token は元テキストの連続した部分文字列 1 つを表す。
// 全トークンの Text を順に連結すると元テキストが完全に復元される。
type Token struct {
	Kind      TokenKind
	Text      string
	Start     int
	End       int
	StartLine int // 0-based
}

// Ruleset fixes the receiver name and the method allow-list the scanner
// classifies against. Identification is purely lexical (no scope analysis):
// a local variable shadowing the receiver is indistinguishable from the real
// one.
type Ruleset struct {
	Receiver string
	methods  map[string]struct{}
}

// DefaultMethods is the set of console methods recognized as removable
// diagnostic calls.
var DefaultMethods = []string{
	"log", "info", "warn", "error", "debug", "trace",
	"table", "dir", "dirxml",
	"group", "groupCollapsed", "groupEnd",
	"time", "timeEnd", "timeLog", "timeStamp",
	"count", "countReset",
	"assert", "clear", "profile", "profileEnd",
}

// NewRuleset builds a Ruleset. Empty receiver defaults to "console";
// an empty method list defaults to DefaultMethods.
func NewRuleset(receiver string, methods []string) *Ruleset {
	if strings.TrimSpace(receiver) == "" {
		receiver = "console"
	}
	if len(methods) == 0 {
		methods = DefaultMethods
	}
	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		set[m] = struct{}{}
	}
	return &Ruleset{Receiver: receiver, methods: set}
}

// Methods returns the allow-list in unspecified order.
func (rs *Ruleset) Methods() []string {
	out := make([]string, 0, len(rs.methods))
	for m := range rs.methods {
		out = append(out, m)
	}
	return out
}

func (rs *Ruleset) isMethod(name string) bool {
	_, ok := rs.methods[name]
	return ok
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isInlineSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	}
	return false
}

// Tokenize runs a single left-to-right pass over text and returns the full
// token list. It never fails: unterminated comments, strings and template
// literals are consumed to end of input and still yield a lossless stream.
func (rs *Ruleset) Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text)/4+8)
	i := 0
	line := 0
	emit := func(kind TokenKind, start, end, startLine int) {
		tokens = append(tokens, Token{Kind: kind, Text: text[start:end], Start: start, End: end, StartLine: startLine})
	}
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\n':
			// newline is its own token so offset math stays per-line
			emit(TokWhitespace, i, i+1, line)
			line++
			i++
		case isInlineSpace(c):
			start := i
			for i < len(text) && isInlineSpace(text[i]) {
				i++
			}
			emit(TokWhitespace, start, i, line)
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			start := i
			for i < len(text) && text[i] != '\n' {
				i++
			}
			emit(TokComment, start, i, line)
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			start := i
			startLine := line
			i += 2
			for i < len(text) {
				if text[i] == '*' && i+1 < len(text) && text[i+1] == '/' {
					i += 2
					break
				}
				if text[i] == '\n' {
					line++
				}
				i++
			}
			emit(TokComment, start, i, startLine)
		case c == '\'' || c == '"':
			start := i
			startLine := line
			quote := c
			i++
			for i < len(text) {
				ch := text[i]
				if ch == '\\' && i+1 < len(text) {
					i += 2
					continue
				}
				if ch == '\n' {
					line++
				}
				i++
				if ch == quote {
					break
				}
			}
			emit(TokString, start, i, startLine)
		case c == '`':
			start := i
			startLine := line
			i++
			depth := 0 // ${ } expression nesting
			for i < len(text) {
				ch := text[i]
				if ch == '\\' && i+1 < len(text) {
					i += 2
					continue
				}
				if ch == '\n' {
					line++
					i++
					continue
				}
				if ch == '$' && i+1 < len(text) && text[i+1] == '{' {
					depth++
					i += 2
					continue
				}
				if ch == '}' && depth > 0 {
					depth--
					i++
					continue
				}
				i++
				if ch == '`' && depth == 0 {
					break
				}
			}
			emit(TokTemplate, start, i, startLine)
		case c == '(':
			emit(TokParenOpen, i, i+1, line)
			i++
		case c == ')':
			emit(TokParenClose, i, i+1, line)
			i++
		case c == '.':
			emit(TokDot, i, i+1, line)
			i++
		case isIdentStart(c):
			start := i
			for i < len(text) && isIdentPart(text[i]) {
				i++
			}
			word := text[start:i]
			kind := TokIdent
			if word == rs.Receiver {
				kind = TokReceiver
			} else if rs.isMethod(word) {
				kind = TokMethod
			}
			emit(kind, start, i, line)
		default:
			emit(TokOther, i, i+1, line)
			i++
		}
	}
	return tokens
}
