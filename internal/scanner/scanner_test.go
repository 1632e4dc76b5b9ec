package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dalg/internal/token"
)

func TestScanFunctionHeader(t *testing.T) {
	tokens, warnings := New("fn add(a, b) {\n  a + b\n}\n").Scan()
	require.Empty(t, warnings)

	exp := []token.Kind{
		token.FN, token.IDENTIFIER, token.LPAREN, token.IDENTIFIER, token.COMMA,
		token.IDENTIFIER, token.RPAREN, token.LBRACE,
		token.IDENTIFIER, token.PLUS, token.IDENTIFIER,
		token.RBRACE, token.EOF,
	}
	var got []token.Kind
	for _, tok := range tokens {
		got = append(got, tok.Kind)
	}
	assert.Equal(t, exp, got)
}

func TestScanTwoCharOperators(t *testing.T) {
	tokens, warnings := New("a == b != c <= d >= e").Scan()
	require.Empty(t, warnings)

	var got []token.Kind
	for _, tok := range tokens {
		got = append(got, tok.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.IDENTIFIER, token.EQ, token.IDENTIFIER, token.NEQ, token.IDENTIFIER,
		token.LE, token.IDENTIFIER, token.GE, token.IDENTIFIER, token.EOF,
	}, got)
}

func TestScanKeywordsVersusIdentifiers(t *testing.T) {
	tokens, _ := New("for forever if iffy").Scan()
	require.Len(t, tokens, 5) // 4 words + EOF.
	assert.Equal(t, token.FOR, tokens[0].Kind)
	assert.Equal(t, token.IDENTIFIER, tokens[1].Kind)
	assert.Equal(t, token.IF, tokens[2].Kind)
	assert.Equal(t, token.IDENTIFIER, tokens[3].Kind)
}

func TestScanStringLiteral(t *testing.T) {
	tokens, warnings := New(`print("hi there")`).Scan()
	require.Empty(t, warnings)
	require.Len(t, tokens, 5) // print ( string ) EOF

	str := tokens[2]
	assert.Equal(t, token.STRING, str.Kind)
	assert.Equal(t, "hi there", str.Lexeme)
}

func TestScanUnterminatedStringWarns(t *testing.T) {
	_, warnings := New(`print("oops`).Scan()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unterminated string literal")
}

func TestScanUnknownCharacterWarns(t *testing.T) {
	tokens, warnings := New("a @ b").Scan()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unknown character")

	var kinds []token.Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, token.UNKNOWN)
}

func TestScanLineComment(t *testing.T) {
	tokens, warnings := New("a # trailing comment\nb").Scan()
	require.Empty(t, warnings)
	require.Len(t, tokens, 3) // a, b, EOF
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[1].Line)
}

func TestScanLineAndColumnTracking(t *testing.T) {
	tokens, warnings := New("fn f() {\n  x = 1;\n}\n").Scan()
	require.Empty(t, warnings)

	var assign token.Token
	for _, tok := range tokens {
		if tok.Kind == token.ASSIGN {
			assign = tok
		}
	}
	assert.Equal(t, 2, assign.Line)
	assert.Equal(t, 5, assign.Column)
}

func TestScanAlwaysTerminatesWithEOF(t *testing.T) {
	tokens, _ := New("").Scan()
	require.Len(t, tokens, 1)
	assert.Equal(t, token.EOF, tokens[0].Kind)
}
