package sse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokVar    // ?name
	tokIRI    // <...>
	tokBNode  // _:label
	tokString // "..." with optional @lang or ^^datatype
	tokNumber
	tokSymbol // bare word: keyword, operator, prefixed name, "_"
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokVar:
		return "variable"
	case tokIRI:
		return "IRI"
	case tokBNode:
		return "blank node"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	default:
		return "symbol"
	}
}

// token is one lexeme. For strings, Text is the unescaped lexical form
// and Lang or Datatype carry the suffix (Datatype holds the raw IRI or
// prefixed-name text).
type token struct {
	Kind     tokenKind
	Text     string
	Lang     string
	Datatype string
	DTIsIRI  bool
	Line     int
	Col      int
}

// lexer tracks a byte offset plus the line start so columns can be
// computed in runes when a token is made.
type lexer struct {
	source    string
	start     int
	current   int
	line      int
	lineStart int
	startLine int
	startCol  int
}

func newLexer(source string) *lexer {
	return &lexer{source: source, line: 1}
}

func (l *lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return r
}

func (l *lexer) peekAt(n int) byte {
	if l.current+n >= len(l.source) {
		return 0
	}
	return l.source[l.current+n]
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	if r == '\n' {
		l.line++
		l.lineStart = l.current
	}
	return r
}

func (l *lexer) column() int {
	return utf8.RuneCountInString(l.source[l.lineStart:l.current]) + 1
}

func (l *lexer) errorf(code, format string, args ...any) error {
	return newSyntaxError(code, l.startLine, l.startCol, format, args...)
}

func (l *lexer) skipSpaceAndComments() {
	for !l.isAtEnd() {
		r := l.peek()
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '#' || r == ';':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *lexer) make(kind tokenKind, text string) token {
	return token{Kind: kind, Text: text, Line: l.startLine, Col: l.startCol}
}

// next scans one token.
func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	l.start = l.current
	l.startLine = l.line
	l.startCol = l.column()

	if l.isAtEnd() {
		return l.make(tokEOF, ""), nil
	}

	r := l.peek()
	switch {
	case r == '(':
		l.advance()
		return l.make(tokLParen, "("), nil
	case r == ')':
		l.advance()
		return l.make(tokRParen, ")"), nil
	case r == '[':
		l.advance()
		return l.make(tokLBracket, "["), nil
	case r == ']':
		l.advance()
		return l.make(tokRBracket, "]"), nil
	case r == '?':
		return l.scanVar()
	case r == '"':
		return l.scanString()
	case r == '<' && l.looksLikeIRI():
		return l.scanIRI()
	case r == '_' && l.peekAt(1) == ':':
		l.advance()
		l.advance()
		label := l.scanWord()
		if label == "" {
			return token{}, l.errorf(CodeBadTerm, "empty blank node label")
		}
		return l.make(tokBNode, label), nil
	case isDigit(r) || ((r == '-' || r == '+') && isDigit(rune(l.peekAt(1)))):
		return l.scanNumber(), nil
	default:
		word := l.scanWord()
		if word == "" {
			l.advance()
			return token{}, l.errorf(CodeUnexpected, "unexpected character %q", r)
		}
		return l.make(tokSymbol, word), nil
	}
}

// looksLikeIRI distinguishes "<http://x>" from the operators "<" and "<=".
func (l *lexer) looksLikeIRI() bool {
	for i := l.current + 1; i < len(l.source); i++ {
		c := l.source[i]
		switch {
		case c == '>':
			return i > l.current+1
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == '=':
			return false
		}
	}
	return false
}

func (l *lexer) scanIRI() (token, error) {
	l.advance() // '<'
	begin := l.current
	for !l.isAtEnd() && l.peek() != '>' {
		l.advance()
	}
	if l.isAtEnd() {
		return token{}, l.errorf(CodeUnterminated, "unterminated IRI")
	}
	text := l.source[begin:l.current]
	l.advance() // '>'
	return l.make(tokIRI, text), nil
}

func (l *lexer) scanVar() (token, error) {
	l.advance() // '?'
	name := l.scanWord()
	if name == "" {
		return token{}, l.errorf(CodeBadTerm, "variable with no name")
	}
	return l.make(tokVar, name), nil
}

// scanWord consumes a run of characters that are not whitespace,
// delimiters, or quote marks.
func (l *lexer) scanWord() string {
	begin := l.current
	for !l.isAtEnd() {
		r := l.peek()
		if unicode.IsSpace(r) || strings.ContainsRune("()[]\"", r) {
			break
		}
		l.advance()
	}
	return l.source[begin:l.current]
}

func (l *lexer) scanNumber() token {
	begin := l.current
	if r := l.peek(); r == '-' || r == '+' {
		l.advance()
	}
	for !l.isAtEnd() {
		r := l.peek()
		if isDigit(r) || r == '.' || r == 'e' || r == 'E' {
			l.advance()
			continue
		}
		if (r == '-' || r == '+') && (l.source[l.current-1] == 'e' || l.source[l.current-1] == 'E') {
			l.advance()
			continue
		}
		break
	}
	return l.make(tokNumber, l.source[begin:l.current])
}

func (l *lexer) scanString() (token, error) {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.isAtEnd() {
			return token{}, l.errorf(CodeUnterminated, "unterminated string")
		}
		r := l.advance()
		if r == '"' {
			break
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if l.isAtEnd() {
			return token{}, l.errorf(CodeUnterminated, "unterminated escape")
		}
		switch esc := l.advance(); esc {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"', '\\', '\'':
			b.WriteRune(esc)
		case 'u':
			cp, err := l.scanHex(4)
			if err != nil {
				return token{}, err
			}
			b.WriteRune(cp)
		default:
			return token{}, l.errorf(CodeBadTerm, "unknown escape \\%c", esc)
		}
	}

	tok := l.make(tokString, b.String())
	switch {
	case l.peek() == '@':
		l.advance()
		tok.Lang = l.scanWord()
		if tok.Lang == "" {
			return token{}, l.errorf(CodeBadTerm, "empty language tag")
		}
	case l.peek() == '^' && l.peekAt(1) == '^':
		l.advance()
		l.advance()
		if l.peek() == '<' {
			dt, err := l.scanIRI()
			if err != nil {
				return token{}, err
			}
			tok.Datatype, tok.DTIsIRI = dt.Text, true
		} else {
			tok.Datatype = l.scanWord()
		}
		if tok.Datatype == "" {
			return token{}, l.errorf(CodeBadTerm, "empty datatype")
		}
	}
	return tok, nil
}

func (l *lexer) scanHex(n int) (rune, error) {
	var cp rune
	for i := 0; i < n; i++ {
		if l.isAtEnd() {
			return 0, l.errorf(CodeUnterminated, "unterminated \\u escape")
		}
		c := l.advance()
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, l.errorf(CodeBadTerm, "bad hex digit %q", c)
		}
		cp = cp<<4 | d
	}
	return cp, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
