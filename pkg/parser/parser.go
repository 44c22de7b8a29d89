// Package parser implements the blg language parser.
//
// The parser converts a stream of tokens (from pkg/lexer) into the AST
// defined in pkg/ast. It is a recursive-descent parser with a two-token
// lookahead window (cur, peek), climbing through six fixed precedence
// levels for expressions and handling juxtaposition (`f a b`) as
// left-associative function application at the tightest level.
//
// Token Management:
//
// The parser keeps two tokens at all times:
//   - cur:  the token being examined
//   - peek: the next token
//
// This lets the parser decide how to continue without consuming a token it
// turns out not to want — e.g. after parsing an expression, peeking at
// ASSIGN to decide whether it was actually an assignment's lvalue.
//
// Operator precedence (informal grammar), from loosest to
// tightest binding:
//
//	level 6: ':'        right-to-left (cons)
//	level 5: 'and' 'or' left-associative
//	level 4: 'not'      prefix
//	level 3: '== != < <= > >=' left-associative
//	level 2: '+ -'      left-associative
//	level 1: '* /'      left-associative
//	level 0: juxtaposition (function application), left-associative
//
// Example parse:
//
//	Source: x = 1 + 2 * f a;
//
//	parseStatement parses the expression "x", sees ASSIGN, takes the
//	already-parsed Identifier "x" as the assignment's lvalue, and then
//	parses "1 + 2 * f a" as the rvalue:
//
//	  Assignment{
//	    Lvalue: Identifier(x),
//	    Rvalue: BinaryOp(+, Int(1), BinaryOp(*, Int(2), Call(f; a))),
//	  }
//
// Operator juxtaposition and unary minus/plus:
//
// A run of factors with no operator between them is a function call:
// `f a b` parses as Call{Fn: f, Args: [a, b]}. This collides with unary
// sign handling unless the parser is careful about which characters
// continue a call-argument chain. factorAhead excludes '+' and '-' from
// that set, so they are only ever consumed as a sign inside parseFactor
// itself, called at true factor-start positions (start of an expression,
// right after '(', right after ',', right after another operator). So
// `f -1` parses as BinaryOp(-, f, Int(1)), and a negative argument has to
// be parenthesised: `f (-1)` is Call{Fn: f, Args: [Int(-1)]}. Likewise
// `f x - 1` parses '-' as the level-2 binary minus once the juxtaposition
// loop stops (since factorAhead refuses to treat '-' as another argument
// start).
//
// Error handling:
//
// The parser keeps only the first error it encounters — matching spec's
// "stores the first {message, location}" contract — and every parse
// function short-circuits once one has been recorded, returning nil nodes
// up the call stack rather than attempting recovery.
package parser

import (
	"fmt"

	"github.com/blg-lang/blg/pkg/ast"
	"github.com/blg-lang/blg/pkg/lexer"
	"github.com/blg-lang/blg/pkg/token"
)

// Error is the first parse failure encountered, with its source location.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at (%d,%d)", e.Message, e.Line, e.Column)
}

// Parser holds the token stream cursor and the first error seen so far.
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token
	err  *Error
}

// New creates a Parser over source text.
func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.Next()
}

func (p *Parser) pos() ast.Pos { return ast.Pos{Line: p.cur.Line, Column: p.cur.Column} }

func (p *Parser) fail(format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = &Error{Message: fmt.Sprintf(format, args...), Line: p.cur.Line, Column: p.cur.Column}
}

func (p *Parser) failed() bool { return p.err != nil }

func (p *Parser) expect(t token.Type) bool {
	if p.cur.Type != t {
		p.fail("expected %s but got %s", t, p.cur.Type)
		return false
	}
	p.next()
	return true
}

// Parse consumes the whole token stream and returns the top-level Program,
// or the first error recorded while doing so.
func (p *Parser) Parse() (*ast.Program, error) {
	start := p.pos()
	var stmts []ast.Node
	for p.cur.Type != token.EOF && !p.failed() {
		s := p.parseStatement()
		if p.failed() {
			break
		}
		stmts = append(stmts, s)
	}
	if p.failed() {
		return nil, p.err
	}
	return &ast.Program{P: start, Stmts: stmts}, nil
}

// parseStatement dispatches on the current token to one of the five
// statement forms named in the grammar.
func (p *Parser) parseStatement() ast.Node {
	switch p.cur.Type {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.ARROW:
		return p.parseReturn()
	default:
		return p.parseAssignmentOrExpr()
	}
}

// parseBlock parses statements until the current token is one of enders
// (which is left unconsumed) or EOF.
func (p *Parser) parseBlock(enders ...token.Type) *ast.Block {
	start := p.pos()
	var stmts []ast.Node
	for !p.failed() && !p.atAny(enders...) && p.cur.Type != token.EOF {
		stmts = append(stmts, p.parseStatement())
	}
	return &ast.Block{P: start, Stmts: stmts}
}

func (p *Parser) atAny(types ...token.Type) bool {
	for _, t := range types {
		if p.cur.Type == t {
			return true
		}
	}
	return false
}

// parseIf handles `if expr then block (elif expr then block)* (else block)? end`.
func (p *Parser) parseIf() ast.Node {
	start := p.pos()
	var branches []ast.IfBranch

	p.next() // past 'if'
	cond := p.parseExpr()
	p.expect(token.THEN)
	body := p.parseBlock(token.ELIF, token.ELSE, token.END)
	branches = append(branches, ast.IfBranch{Cond: cond, Body: body})

	for p.cur.Type == token.ELIF {
		p.next()
		c := p.parseExpr()
		p.expect(token.THEN)
		b := p.parseBlock(token.ELIF, token.ELSE, token.END)
		branches = append(branches, ast.IfBranch{Cond: c, Body: b})
	}

	if p.cur.Type == token.ELSE {
		p.next()
		b := p.parseBlock(token.END)
		branches = append(branches, ast.IfBranch{Cond: nil, Body: b})
	}

	p.expect(token.END)
	return &ast.If{P: start, Branches: branches}
}

// parseWhile handles `while expr do block end`.
func (p *Parser) parseWhile() ast.Node {
	start := p.pos()
	p.next() // past 'while'
	cond := p.parseExpr()
	p.expect(token.DO)
	body := p.parseBlock(token.END)
	p.expect(token.END)
	return &ast.While{P: start, Cond: cond, Body: body}
}

// parseFuncLiteral parses `'def' identifier* 'do' block 'end'` as an
// anonymous function expression: every identifier between 'def' and 'do'
// is a parameter, never a name — the hoisted function's debug name is
// assigned later, during closure extraction. The caller (whichever
// statement this expression ends up inside of) is responsible for the
// trailing ';'.
func (p *Parser) parseFuncLiteral() ast.Node {
	start := p.pos()
	p.next() // past 'def'

	var params []string
	for p.cur.Type == token.IDENT {
		params = append(params, p.cur.Literal)
		p.next()
	}

	p.expect(token.DO)
	body := p.parseBlock(token.END)
	p.expect(token.END)

	return &ast.Func{P: start, Params: params, Body: body}
}

// parseReturn handles `<- expr ;`.
func (p *Parser) parseReturn() ast.Node {
	start := p.pos()
	p.next() // past '<-'
	val := p.parseExpr()
	p.expect(token.SEMI)
	return &ast.Return{P: start, Value: val}
}

// parseAssignmentOrExpr parses a full expression; if it is immediately
// followed by '=', the expression just parsed is reinterpreted as the
// lvalue of an Assignment (tuples, cons patterns and object patterns are
// syntactically ordinary expressions, so this is all the grammar needs).
// Otherwise the expression stands alone as a statement.
func (p *Parser) parseAssignmentOrExpr() ast.Node {
	start := p.pos()
	lhs := p.parseExpr()
	if p.failed() {
		return nil
	}
	if p.cur.Type == token.ASSIGN {
		p.next()
		rhs := p.parseExpr()
		p.expect(token.SEMI)
		return &ast.Assignment{P: start, Lvalue: lhs, Rvalue: rhs}
	}
	p.expect(token.SEMI)
	return lhs
}

// parseExpr climbs the six precedence levels starting from the loosest.
func (p *Parser) parseExpr() ast.Node {
	return p.parseCons()
}

// level 6: ':' cons, right-to-left.
func (p *Parser) parseCons() ast.Node {
	left := p.parseAndOr()
	if p.cur.Type == token.COLON {
		pos := p.pos()
		p.next()
		right := p.parseCons() // right-associative: recurse at the same level
		return &ast.BinaryOp{P: pos, Op: ":", Left: left, Right: right}
	}
	return left
}

// level 5: 'and'/'or', left-associative.
func (p *Parser) parseAndOr() ast.Node {
	left := p.parseNot()
	for p.cur.Type == token.AND || p.cur.Type == token.OR {
		op := p.cur.Literal
		pos := p.pos()
		p.next()
		right := p.parseNot()
		left = &ast.BinaryOp{P: pos, Op: op, Left: left, Right: right}
	}
	return left
}

// level 4: 'not', prefix.
func (p *Parser) parseNot() ast.Node {
	if p.cur.Type == token.NOT {
		pos := p.pos()
		p.next()
		operand := p.parseNot()
		return &ast.UnaryOp{P: pos, Op: "not", Operand: operand}
	}
	return p.parseComparison()
}

// level 3: '== != < <= > >=', left-associative.
func (p *Parser) parseComparison() ast.Node {
	left := p.parseAddSub()
	for p.atAny(token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE) {
		op := p.cur.Literal
		pos := p.pos()
		p.next()
		right := p.parseAddSub()
		left = &ast.BinaryOp{P: pos, Op: op, Left: left, Right: right}
	}
	return left
}

// level 2: '+ -', left-associative.
func (p *Parser) parseAddSub() ast.Node {
	left := p.parseMulDiv()
	for p.cur.Type == token.PLUS || p.cur.Type == token.MINUS {
		op := p.cur.Literal
		pos := p.pos()
		p.next()
		right := p.parseMulDiv()
		left = &ast.BinaryOp{P: pos, Op: op, Left: left, Right: right}
	}
	return left
}

// level 1: '* /', left-associative.
func (p *Parser) parseMulDiv() ast.Node {
	left := p.parseCall()
	for p.cur.Type == token.STAR || p.cur.Type == token.SLASH {
		op := p.cur.Literal
		pos := p.pos()
		p.next()
		right := p.parseCall()
		left = &ast.BinaryOp{P: pos, Op: op, Left: left, Right: right}
	}
	return left
}

// level 0: juxtaposition-as-call, left-associative.
func (p *Parser) parseCall() ast.Node {
	pos := p.pos()
	fn := p.parseFactor()
	var args []ast.Node
	for p.factorAhead() {
		args = append(args, p.parseFactor())
	}
	if len(args) == 0 {
		return fn
	}
	return &ast.Call{P: pos, Fn: fn, Args: args}
}

// factorAhead reports whether the current token can begin another factor
// in call-argument position. '+' and '-' are deliberately excluded: they
// are only ever consumed as a sign inside parseFactor, never as the start
// of a fresh call argument (see the package doc's juxtaposition note).
func (p *Parser) factorAhead() bool {
	switch p.cur.Type {
	case token.IDENT, token.INT, token.FLOAT, token.STR,
		token.LPAREN, token.LBRACKET, token.LBRACE:
		return true
	default:
		return false
	}
}

// parseFactor parses one atom, honoring a leading sign.
func (p *Parser) parseFactor() ast.Node {
	if p.cur.Type == token.MINUS || p.cur.Type == token.PLUS {
		op := p.cur.Literal
		pos := p.pos()
		p.next()
		operand := p.parseFactor()
		if op == "+" {
			return operand
		}
		switch v := operand.(type) {
		case *ast.Int:
			return &ast.Int{P: pos, Value: -v.Value}
		case *ast.Float:
			return &ast.Float{P: pos, Value: -v.Value}
		default:
			return &ast.UnaryOp{P: pos, Op: "-", Operand: operand}
		}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Node {
	switch p.cur.Type {
	case token.INT:
		return p.parseIntLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	case token.STR:
		n := &ast.Literal{P: p.pos(), Value: p.cur.Literal}
		p.next()
		return n
	case token.IDENT:
		n := &ast.Identifier{P: p.pos(), Name: p.cur.Literal}
		p.next()
		return n
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.DEF:
		return p.parseFuncLiteral()
	default:
		p.fail("unexpected token %s", p.cur.Type)
		return nil
	}
}

func (p *Parser) parseIntLiteral() ast.Node {
	pos := p.pos()
	lit := p.cur.Literal
	p.next()
	var v int32
	for _, ch := range lit {
		if ch < '0' || ch > '9' {
			continue
		}
		v = v*10 + int32(ch-'0')
	}
	return &ast.Int{P: pos, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Node {
	pos := p.pos()
	lit := p.cur.Literal
	p.next()
	var whole, frac float64
	fracDiv := 1.0
	seenDot := false
	expSign := 1.0
	exp := 0.0
	seenExp := false
	i := 0
	for i < len(lit) {
		ch := lit[i]
		switch {
		case ch >= '0' && ch <= '9' && !seenExp:
			if seenDot {
				frac = frac*10 + float64(ch-'0')
				fracDiv *= 10
			} else {
				whole = whole*10 + float64(ch-'0')
			}
		case ch == '.':
			seenDot = true
		case ch == 'e' || ch == 'E':
			seenExp = true
			if i+1 < len(lit) && (lit[i+1] == '+' || lit[i+1] == '-') {
				if lit[i+1] == '-' {
					expSign = -1
				}
				i++
			}
		case ch >= '0' && ch <= '9' && seenExp:
			exp = exp*10 + float64(ch-'0')
		}
		i++
	}
	val := whole + frac/fracDiv
	if seenExp {
		val *= pow10(expSign * exp)
	}
	return &ast.Float{P: pos, Value: float32(val)}
}

func pow10(e float64) float64 {
	if e == 0 {
		return 1
	}
	neg := e < 0
	if neg {
		e = -e
	}
	r := 1.0
	for i := 0; i < int(e); i++ {
		r *= 10
	}
	if neg {
		return 1 / r
	}
	return r
}

// parseParenOrTuple handles `( expr )` (grouping) and `( expr, expr, ... )`
// (tuple literal — a tuple if a comma is present).
func (p *Parser) parseParenOrTuple() ast.Node {
	pos := p.pos()
	p.next() // past '('
	first := p.parseExpr()
	if p.cur.Type != token.COMMA {
		p.expect(token.RPAREN)
		return first
	}
	elems := []ast.Node{first}
	for p.cur.Type == token.COMMA {
		p.next()
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RPAREN)
	return &ast.Tuple{P: pos, Elements: elems}
}

// parseListLiteral handles `[ expr (',' expr)* ]`, including the empty list.
func (p *Parser) parseListLiteral() ast.Node {
	pos := p.pos()
	p.next() // past '['
	if p.cur.Type == token.RBRACKET {
		p.next()
		return &ast.List{P: pos}
	}
	var elems []ast.Node
	elems = append(elems, p.parseExpr())
	for p.cur.Type == token.COMMA {
		p.next()
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RBRACKET)
	return &ast.List{P: pos, Elements: elems}
}

// parseObjectLiteral handles `{ ident ':' expr (',' ident ':' expr)* }`.
func (p *Parser) parseObjectLiteral() ast.Node {
	pos := p.pos()
	p.next() // past '{'
	var pairs []ast.ObjectPair
	if p.cur.Type != token.RBRACE {
		pairs = append(pairs, p.parseObjectPair())
		for p.cur.Type == token.COMMA {
			p.next()
			pairs = append(pairs, p.parseObjectPair())
		}
	}
	p.expect(token.RBRACE)
	return &ast.Object{P: pos, Pairs: pairs}
}

func (p *Parser) parseObjectPair() ast.ObjectPair {
	if p.cur.Type != token.IDENT {
		p.fail("expected object key but got %s", p.cur.Type)
		return ast.ObjectPair{}
	}
	key := p.cur.Literal
	p.next()
	p.expect(token.COLON)
	val := p.parseExpr()
	return ast.ObjectPair{Key: key, Value: val}
}
