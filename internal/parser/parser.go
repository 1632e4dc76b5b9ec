// Package parser is a top-down recursive-descent parser with precedence
// climbing for binary operators. It consumes the token sequence the
// scanner produces and builds the closed ast.Node family the emitter
// walks.
package parser

import (
	"fmt"
	"strconv"

	"dalg/internal/ast"
	"dalg/internal/token"
)

// precedence assigns a binding power to each binary operator kind, per
// spec.md §4.3's table. ==, !=, <=, >= are absent from the design-level
// table; DECISION D1 in SPEC_FULL.md §9 fixes them at 6, one below
// <, > (7), so a chain like `a < b == c < d` parses left-associatively
// without inverting the comparison grouping.
var precedence = map[token.Kind]int{
	token.STAR:  10,
	token.SLASH: 10,
	token.PLUS:  8,
	token.MINUS: 8,
	token.LT:    7,
	token.GT:    7,
	token.EQ:    6,
	token.NEQ:   6,
	token.LE:    6,
	token.GE:    6,
}

var opLexeme = map[token.Kind]string{
	token.STAR:  "*",
	token.SLASH: "/",
	token.PLUS:  "+",
	token.MINUS: "-",
	token.LT:    "<",
	token.GT:    ">",
	token.EQ:    "==",
	token.NEQ:   "!=",
	token.LE:    "<=",
	token.GE:    ">=",
}

// Error is a fatal parse error, formatted per spec.md §4.3's error
// policy.
type Error struct {
	Line  int
	Msg   string
	Token string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Line: %d | %s | Current token is => %s", e.Line, e.Msg, e.Token)
}

// Parser holds a single monotonic cursor into a token vector. Tokens
// are expected to already end with a synthetic token.EOF, the way
// scanner.Scan produces them.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New returns a Parser positioned at the start of tokens.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream and returns the program's list
// of function definitions, or the first fatal *Error encountered.
func Parse(tokens []token.Token) (*ast.Program, error) {
	p := New(tokens)
	return p.parseProgram()
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	cur := p.peek()
	return &Error{Line: cur.Line, Msg: fmt.Sprintf(format, args...), Token: cur.Lexeme}
}

// expect consumes the current token if it has kind k, else raises a
// fatal error naming what was expected.
func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.check(k) {
		return token.Token{}, p.errorf("expected %s", k)
	}
	return p.advance(), nil
}

// parseProgram implements `program := function*`.
func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.check(token.EOF) {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

// parseFunction implements `function := 'fn' prototype '{' block '}'`.
func (p *Parser) parseFunction() (*ast.Function, error) {
	if _, err := p.expect(token.FN); err != nil {
		return nil, err
	}
	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Function{Proto: proto, Body: body}, nil
}

// parsePrototype implements `prototype := IDENT '(' (IDENT (',' IDENT)*)? ')'`.
func (p *Parser) parsePrototype() (*ast.Prototype, error) {
	name, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var params []string
	if !p.check(token.RPAREN) {
		for {
			id, err := p.expect(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			params = append(params, id.Lexeme)
			if !p.check(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Prototype{Name: name.Lexeme, Params: params}, nil
}

// parseBlock implements `block := (statement)*`, consuming up to the
// next '}' or EOF.
func (p *Parser) parseBlock() (*ast.Block, error) {
	block := &ast.Block{}
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		n, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if n != nil {
			block.Exprs = append(block.Exprs, n)
		}
	}
	return block, nil
}

// parseStatement implements:
//
//	statement := ';' | if-expr | for-expr | expression
//
// A bare ';' is skipped and contributes no node.
func (p *Parser) parseStatement() (ast.Node, error) {
	switch p.peek().Kind {
	case token.SEMI:
		p.advance()
		return nil, nil
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	default:
		return p.parseExpressionStatement()
	}
}

// parseExpressionStatement implements `expression := assignment | binary(0)`,
// consuming the trailing ';' assignment requires. Non-assignment
// expressions at statement position may also be followed by a ';',
// which is skipped the same way a bare ';' statement is.
func (p *Parser) parseExpressionStatement() (ast.Node, error) {
	if p.check(token.IDENTIFIER) && p.tokens[p.pos+1].Kind == token.ASSIGN {
		name := p.advance()
		p.advance() // '='
		val, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.Assign{Name: name.Lexeme, Value: val}, nil
	}

	n, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.check(token.SEMI) {
		p.advance()
	}
	return n, nil
}

// parseBinary implements precedence climbing:
//
//	binary(n) := primary (BINOP binary(prec(BINOP)+1))*  while prec(BINOP) >= n
func (p *Parser) parseBinary(min int) (ast.Node, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		prec, ok := precedence[p.peek().Kind]
		if !ok || prec < min {
			return lhs, nil
		}
		opTok := p.advance()
		rhs, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryOp{Op: opLexeme[opTok.Kind], LHS: lhs, RHS: rhs}
	}
}

// parsePrimary implements `primary := NUMBER | STRING | call-or-var | print | if-expr`.
func (p *Parser) parsePrimary() (ast.Node, error) {
	switch p.peek().Kind {
	case token.NUMBER:
		return p.parseNumber()
	case token.STRING:
		t := p.advance()
		return &ast.String{Value: t.Lexeme}, nil
	case token.IDENTIFIER:
		return p.parseCallOrVar()
	case token.PRINT:
		return p.parsePrint()
	case token.IF:
		return p.parseIf()
	case token.LPAREN:
		p.advance()
		n, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, p.errorf("unknown primary")
	}
}

func (p *Parser) parseNumber() (ast.Node, error) {
	t := p.advance()
	v, err := strconv.ParseFloat(t.Lexeme, 64)
	if err != nil {
		return nil, p.errorf("malformed number %q", t.Lexeme)
	}
	return &ast.Number{Value: v}, nil
}

// parseCallOrVar implements `call-or-var := IDENT ('(' args? ')')?`.
func (p *Parser) parseCallOrVar() (ast.Node, error) {
	name := p.advance()
	if !p.check(token.LPAREN) {
		return &ast.Variable{Name: name.Lexeme}, nil
	}
	p.advance()

	var args []ast.Node
	if !p.check(token.RPAREN) {
		for {
			arg, err := p.parseBinary(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.check(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Call{Callee: name.Lexeme, Args: args}, nil
}

// parsePrint implements `print := 'print' '(' expression ')'`.
func (p *Parser) parsePrint() (ast.Node, error) {
	p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	inner, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Print{Inner: inner}, nil
}

// parseIf implements:
//
//	if-expr   := 'if' expression '{' block '}' else-tail?
//	else-tail := 'else' ( if-expr | '{' block '}' )
func (p *Parser) parseIf() (ast.Node, error) {
	p.advance()
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	n := &ast.If{Cond: cond, Then: then}
	if p.check(token.ELSE) {
		p.advance()
		if p.check(token.IF) {
			n.Else, err = p.parseIf()
			if err != nil {
				return nil, err
			}
		} else {
			if _, err := p.expect(token.LBRACE); err != nil {
				return nil, err
			}
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACE); err != nil {
				return nil, err
			}
			n.Else = elseBlock
		}
	}
	return n, nil
}

// parseFor implements:
//
//	for-expr := 'for' IDENT '=' expression ',' expression (',' expression)? '{' block '}'
func (p *Parser) parseFor() (ast.Node, error) {
	p.advance()
	id, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	start, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	end, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	var step ast.Node
	if p.check(token.COMMA) {
		p.advance()
		step, err = p.parseBinary(0)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	return &ast.For{Var: id.Lexeme, Start: start, End: end, Step: step, Body: body}, nil
}
