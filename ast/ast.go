// Package ast defines the formula abstract syntax tree (spec.md §4.C).
package ast

import (
	"gridcalc/address"
	"gridcalc/token"
	"gridcalc/value"
)

type Node interface {
	TokenLiteral() string
}

type Expression interface {
	Node
	expressionNode()
}

// NumberLiteral is a numeric atom, e.g. "42" or "3.14".
type NumberLiteral struct {
	Token token.Token
	Text  string
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }

// StringLiteral is a double-quoted string atom.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }

// BoolLiteral is the TRUE/FALSE keyword atom.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (b *BoolLiteral) expressionNode()      {}
func (b *BoolLiteral) TokenLiteral() string { return b.Token.Literal }

// ErrorLiteral is one of the six canonical error spellings used as an
// atom, e.g. "#REF!".
type ErrorLiteral struct {
	Token token.Token
	Kind  value.ErrorKind
}

func (e *ErrorLiteral) expressionNode()      {}
func (e *ErrorLiteral) TokenLiteral() string { return e.Token.Literal }

// CellRef is a single-cell reference, optionally sheet-qualified.
type CellRef struct {
	Token    token.Token
	HasSheet bool
	Sheet    string
	Addr     address.CellAddress
}

func (c *CellRef) expressionNode()      {}
func (c *CellRef) TokenLiteral() string { return c.Token.Literal }

// RangeRef is a "start:end" rectangular reference, optionally
// sheet-qualified (the qualifier binds to both corners).
type RangeRef struct {
	Token token.Token
	Start *CellRef
	End   *CellRef
}

func (r *RangeRef) expressionNode()      {}
func (r *RangeRef) TokenLiteral() string { return r.Token.Literal }

// UnaryExpr is a prefix +/- expression.
type UnaryExpr struct {
	Token token.Token
	Op    token.Type
	X     Expression
}

func (u *UnaryExpr) expressionNode()      {}
func (u *UnaryExpr) TokenLiteral() string { return u.Token.Literal }

// BinaryExpr covers arithmetic (+ - * /), concatenation (&), and
// comparison (= == <> != < > <= >=) operators — all left-associative.
// The parser chains comparisons like any other operator: 1<2<3 parses as
// (1<2)<3 and is not rejected.
type BinaryExpr struct {
	Token token.Token
	Op    token.Type
	X, Y  Expression
}

func (b *BinaryExpr) expressionNode()      {}
func (b *BinaryExpr) TokenLiteral() string { return b.Token.Literal }

// CallExpr is a function call, e.g. SUM(A1:A3, 2).
type CallExpr struct {
	Token token.Token
	Name  string
	Args  []Expression
}

func (c *CallExpr) expressionNode()      {}
func (c *CallExpr) TokenLiteral() string { return c.Token.Literal }
