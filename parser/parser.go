// Package parser implements a Pratt parser for the formula grammar of
// spec.md §4.C, grounded on karl/parser/parser.go's prefix/infix table
// shape but scoped to the much smaller formula expression grammar (no
// statements, no let/if/for/lambda — just literals, references, operators,
// and calls).
package parser

import (
	"fmt"
	"strings"

	"gridcalc/address"
	"gridcalc/ast"
	"gridcalc/lexer"
	"gridcalc/token"
	"gridcalc/value"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

const (
	_ int = iota
	LOWEST
	COMPARISON
	CONCAT
	ADDITIVE
	MULTIPLICATIVE
	PREFIX
)

var precedences = map[token.Type]int{
	token.EQ:     COMPARISON,
	token.EQEQ:   COMPARISON,
	token.NOTEQ:  COMPARISON,
	token.BANGEQ: COMPARISON,
	token.LT:     COMPARISON,
	token.GT:     COMPARISON,
	token.LE:     COMPARISON,
	token.GE:     COMPARISON,
	token.AMP:    CONCAT,
	token.PLUS:   ADDITIVE,
	token.MINUS:  ADDITIVE,
	token.ASTERISK: MULTIPLICATIVE,
	token.SLASH:    MULTIPLICATIVE,
}

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []ParseError

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.ERRORLIT, p.parseErrorLiteral)
	p.registerPrefix(token.WORD, p.parseWord)
	p.registerPrefix(token.SHEETQ, p.parseQualifiedRef)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	for _, t := range []token.Type{
		token.EQ, token.EQEQ, token.NOTEQ, token.BANGEQ,
		token.LT, token.GT, token.LE, token.GE,
		token.AMP, token.PLUS, token.MINUS, token.ASTERISK, token.SLASH,
	} {
		p.registerInfix(t, p.parseBinaryExpression)
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{Message: fmt.Sprintf(format, args...), Token: tok})
}

// ParseFormula parses the full expression, requiring it to consume every
// token up to EOF. A malformed formula leaves outgoing == [] per spec.md
// §4.C; this is enforced by callers checking Errors() and not using the
// returned (possibly partial) tree.
func (p *Parser) ParseFormula() ast.Expression {
	expr := p.parseExpression(LOWEST)
	if p.peekToken.Type != token.EOF {
		p.errorf(p.peekToken, "unexpected trailing token %q", p.peekToken.Literal)
	}
	return expr
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		p.errorf(p.curToken, "unexpected token %q", p.curToken.Literal)
		p.nextToken()
		return nil
	}
	left := prefix()

	for p.peekToken.Type != token.EOF && precedence < p.peekPrecedence() {
		infix, ok := p.infixParseFns[p.peekToken.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	return &ast.NumberLiteral{Token: p.curToken, Text: p.curToken.Literal}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseErrorLiteral() ast.Expression {
	kind, ok := value.ParseErrorLiteral(p.curToken.Literal)
	if !ok {
		p.errorf(p.curToken, "unrecognized error literal %q", p.curToken.Literal)
		return &ast.ErrorLiteral{Token: p.curToken, Kind: value.ErrGeneric}
	}
	return &ast.ErrorLiteral{Token: p.curToken, Kind: kind.Kind_}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if p.peekToken.Type != token.RPAREN {
		p.errorf(p.peekToken, "expected ')', got %q", p.peekToken.Literal)
		return expr
	}
	p.nextToken()
	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.curToken
	op := p.curToken.Type
	p.nextToken()
	x := p.parseExpression(PREFIX)
	return &ast.UnaryExpr{Token: tok, Op: op, X: x}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := p.curToken.Type
	precedence := precedences[op]
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpr{Token: tok, Op: op, X: left, Y: right}
}

// parseWord handles a bareword WORD token: TRUE/FALSE, a function call, a
// bareword sheet qualifier followed by '!', or a plain cell/range
// reference.
func (p *Parser) parseWord() ast.Expression {
	tok := p.curToken
	word := tok.Literal

	switch strings.ToUpper(word) {
	case "TRUE":
		return &ast.BoolLiteral{Token: tok, Value: true}
	case "FALSE":
		return &ast.BoolLiteral{Token: tok, Value: false}
	}

	if p.peekToken.Type == token.LPAREN {
		return p.parseCall(tok, word)
	}

	if p.peekToken.Type == token.BANG {
		p.nextToken() // consume '!'
		return p.parseRefAfterSheet(tok, word)
	}

	addr, err := address.Parse(word)
	if err != nil {
		p.errorf(tok, "unexpected identifier %q", word)
		return nil
	}
	return p.maybeRange(&ast.CellRef{Token: tok, Addr: addr})
}

// parseQualifiedRef handles a '...' quoted sheet name, which must be
// followed by '!' and an address.
func (p *Parser) parseQualifiedRef() ast.Expression {
	tok := p.curToken
	sheet := tok.Literal
	if p.peekToken.Type != token.BANG {
		p.errorf(p.peekToken, "expected '!' after sheet name, got %q", p.peekToken.Literal)
		return nil
	}
	p.nextToken() // consume '!'
	return p.parseRefAfterSheet(tok, sheet)
}

func (p *Parser) parseRefAfterSheet(tok token.Token, sheet string) ast.Expression {
	if p.peekToken.Type != token.WORD {
		p.errorf(p.peekToken, "expected cell address after sheet qualifier, got %q", p.peekToken.Literal)
		return nil
	}
	p.nextToken()
	addr, err := address.Parse(p.curToken.Literal)
	if err != nil {
		p.errorf(p.curToken, "invalid cell address %q", p.curToken.Literal)
		return nil
	}
	return p.maybeRange(&ast.CellRef{Token: tok, HasSheet: true, Sheet: sheet, Addr: addr})
}

func (p *Parser) maybeRange(start *ast.CellRef) ast.Expression {
	if p.peekToken.Type != token.COLON {
		return start
	}
	p.nextToken() // consume ':'
	if p.peekToken.Type != token.WORD {
		p.errorf(p.peekToken, "expected cell address after ':', got %q", p.peekToken.Literal)
		return start
	}
	p.nextToken()
	endAddr, err := address.Parse(p.curToken.Literal)
	if err != nil {
		p.errorf(p.curToken, "invalid cell address %q", p.curToken.Literal)
		return start
	}
	end := &ast.CellRef{Token: p.curToken, HasSheet: start.HasSheet, Sheet: start.Sheet, Addr: endAddr}
	return &ast.RangeRef{Token: start.Token, Start: start, End: end}
}

func (p *Parser) parseCall(tok token.Token, name string) ast.Expression {
	p.nextToken() // move to '('
	args := p.parseCallArguments()
	return &ast.CallExpr{Token: tok, Name: name, Args: args}
}

func (p *Parser) parseCallArguments() []ast.Expression {
	var args []ast.Expression
	if p.peekToken.Type == token.RPAREN {
		p.nextToken()
		return args
	}
	p.nextToken()
	args = append(args, p.parseExpression(LOWEST))
	for p.peekToken.Type == token.COMMA {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(LOWEST))
	}
	if p.peekToken.Type != token.RPAREN {
		p.errorf(p.peekToken, "expected ')', got %q", p.peekToken.Literal)
		return args
	}
	p.nextToken()
	return args
}
