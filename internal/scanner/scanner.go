// Package scanner tokenizes Dalg source text.
//
// The state-function design follows Rob Pike's "Lexical Scanning in Go"
// talk (https://talks.golang.org/2011/lex.slide), the same lineage the
// teacher compiler's frontend lexer is built on. Unlike that lexer, this
// one does not run as a goroutine feeding a channel: spec.md calls for a
// single-threaded, synchronous compilation pipeline, so Scan walks the
// state machine to completion in the calling goroutine and returns the
// full token slice directly.
package scanner

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dalg/internal/token"
)

const eof = 0

// stateFn represents one state of the scanner.
type stateFn func(*Scanner) stateFn

// Scanner tokenizes a single source string, left to right, single pass,
// no backtracking.
type Scanner struct {
	input       string
	start       int // start of the current lexeme, byte offset.
	pos         int // current scan position, byte offset.
	width       int // width in bytes of the last rune returned by next.
	line        int // current 1-based line.
	startOnLine int // 1-based column of the lexeme currently being built.

	tokens   []token.Token
	warnings []string
}

// New returns a Scanner ready to tokenize src.
func New(src string) *Scanner {
	return &Scanner{
		input:       src,
		line:        1,
		startOnLine: 1,
		tokens:      make([]token.Token, 0, len(src)/4+1),
	}
}

// Scan runs the scanner to completion and returns the ordered token
// slice, always terminated by a Kind == token.EOF token, plus any
// non-fatal warnings collected along the way (unterminated strings,
// unknown runes). Scan never returns an error: per spec.md §7, lexical
// problems are warnings, and the parser is the place a malformed token
// sequence becomes fatal.
func (s *Scanner) Scan() ([]token.Token, []string) {
	for state := stateFn(lexGlobal); state != nil; {
		state = state(s)
	}
	s.emitRaw(token.Token{Kind: token.EOF, Line: s.line, Column: s.startOnLine})
	return s.tokens, s.warnings
}

// ----- low level rune cursor, same shape as the teacher's lexer -----

func (s *Scanner) next() rune {
	if s.pos >= len(s.input) {
		s.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(s.input[s.pos:])
	s.width = w
	s.pos += w
	return r
}

func (s *Scanner) backup() {
	if s.pos > s.start {
		s.pos -= s.width
	}
}

func (s *Scanner) peek() rune {
	r := s.next()
	s.backup()
	return r
}

func (s *Scanner) ignore() {
	s.startOnLine += s.pos - s.start
	s.start = s.pos
}

func (s *Scanner) acceptRun(valid string) {
	for strings.ContainsRune(valid, s.next()) {
	}
	s.backup()
}

// emit appends a token of kind k spanning [start, pos) and advances the
// lexeme cursor past it.
func (s *Scanner) emit(k token.Kind) {
	s.emitRaw(token.Token{
		Kind:   k,
		Lexeme: s.input[s.start:s.pos],
		Line:   s.line,
		Column: s.startOnLine,
	})
}

func (s *Scanner) emitRaw(t token.Token) {
	s.tokens = append(s.tokens, t)
	s.startOnLine += len(s.input[s.start:s.pos])
	s.start = s.pos
}

// warnf records a non-fatal scanner warning; scanning continues.
func (s *Scanner) warnf(format string, args ...interface{}) {
	s.warnings = append(s.warnings, fmt.Sprintf("line %d: %s", s.line, fmt.Sprintf(format, args...)))
}

func (s *Scanner) newline() {
	s.line++
	s.startOnLine = 1
}

// ----- helpers -----

func isAlpha(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' }
