// Package parser is the recursive-descent front end that turns a token
// stream into the AST the analyzer, compiler and virtual machine consume.
// Like the lexer, it is an external collaborator of the core: nothing past
// this package needs to know Nuua's concrete syntax, only its AST shape.
package parser

import (
	"fmt"

	"github.com/nuua-io/nuua/internal/ast"
	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/token"
	"github.com/nuua-io/nuua/internal/types"
)

// Parser consumes a flat token slice (as produced by lexer.Tokens) and
// builds the statement list for one module.
type Parser struct {
	tokens []token.Token
	pos    int
	sink   *diagnostics.Sink
}

func New(tokens []token.Token, sink *diagnostics.Sink) *Parser {
	return &Parser{tokens: tokens, sink: sink}
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(t token.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(t token.Type, context string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	tok := p.peek()
	p.sink.Add(diagnostics.Syntactic, diagnostics.SynUnexpectedToken, tok,
		"expected %s %s, got %s %q", t, context, tok.Type, tok.Lexeme)
	return tok
}

// skipNewlines treats blank statement separators as insignificant; Nuua's
// block syntax uses braces, so newlines never carry grammatical weight.
func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) || p.check(token.SEMICOLON) {
		p.advance()
	}
}

// ParseProgram parses every top-level statement until EOF.
func (p *Parser) ParseProgram() []ast.Statement {
	var stmts []ast.Statement
	p.skipNewlines()
	for !p.check(token.EOF) {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		p.skipNewlines()
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.peek().Type {
	case token.USE:
		return p.parseUse()
	case token.EXPORT:
		return p.parseExport()
	case token.CLASS:
		return p.parseClass(false)
	case token.FUN:
		return p.parseFunction(false)
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.PRINT:
		return p.parsePrint()
	case token.RETURN:
		return p.parseReturn()
	case token.IDENTIFIER:
		if p.looksLikeDeclaration() {
			return p.parseDeclaration(false)
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// looksLikeDeclaration disambiguates `name: type = expr` (and bare `name:
// type`) from a plain expression statement starting with an identifier,
// without backtracking: only a COLON immediately following the identifier
// can start a declaration.
func (p *Parser) looksLikeDeclaration() bool {
	return p.peekAt(1).Type == token.COLON
}

func (p *Parser) parseDeclaration(noDeclare bool) *ast.Declaration {
	tok := p.peek()
	name := p.expect(token.IDENTIFIER, "in declaration").Lexeme
	p.expect(token.COLON, "after declaration name")
	declType := p.parseType()

	decl := &ast.Declaration{Token: tok, Name: name, Type: &declType, NoDeclare: noDeclare}
	if p.match(token.EQUAL) {
		decl.Initializer = p.parseExpression()
	}
	return decl
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.peek()
	expr := p.parseExpression()
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}

func (p *Parser) parsePrint() ast.Statement {
	tok := p.advance() // 'print'
	return &ast.Print{Token: tok, Value: p.parseExpression()}
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.advance() // 'return'
	ret := &ast.Return{Token: tok}
	if !p.check(token.NEWLINE) && !p.check(token.RIGHT_BRACE) && !p.check(token.SEMICOLON) && !p.check(token.EOF) {
		ret.Value = p.parseExpression()
	}
	return ret
}

func (p *Parser) parseBlock() []ast.Statement {
	p.expect(token.LEFT_BRACE, "to start a block")
	p.skipNewlines()
	var stmts []ast.Statement
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		p.skipNewlines()
	}
	p.expect(token.RIGHT_BRACE, "to close a block")
	return stmts
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.advance() // 'if'
	stmt := &ast.If{Token: tok}
	stmt.Then = ast.IfBranch{Condition: p.parseExpression(), Body: p.parseBlock()}
	p.skipNewlines()
	for p.check(token.ELIF) {
		p.advance()
		stmt.Elifs = append(stmt.Elifs, ast.IfBranch{Condition: p.parseExpression(), Body: p.parseBlock()})
		p.skipNewlines()
	}
	if p.check(token.ELSE) {
		p.advance()
		stmt.Else = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.advance() // 'while'
	cond := p.parseExpression()
	body := p.parseBlock()
	return &ast.While{Token: tok, Condition: cond, Body: body}
}

func (p *Parser) parseFor() ast.Statement {
	tok := p.advance() // 'for'
	first := p.expect(token.IDENTIFIER, "in for-loop binding").Lexeme
	variable, index := first, ""
	if p.match(token.COMMA) {
		index = p.expect(token.IDENTIFIER, "in for-loop binding").Lexeme
	}
	p.expect(token.IN, "in for loop")
	iterator := p.parseExpression()
	body := p.parseBlock()
	// Nuua's `for value, index in x` pairs the value first; a bare
	// `for value in dict` binds the value alone, matching a list's element,
	// with the key only reachable through the second binding.
	return &ast.For{Token: tok, Variable: variable, Index: index, Iterator: iterator, Body: body}
}

func (p *Parser) parseFunction(exported bool) ast.Statement {
	tok := p.advance() // 'fun'
	name := p.expect(token.IDENTIFIER, "as function name").Lexeme
	p.expect(token.LEFT_PAREN, "to start parameter list")
	var params []*ast.Declaration
	if !p.check(token.RIGHT_PAREN) {
		for {
			params = append(params, p.parseDeclaration(true))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RIGHT_PAREN, "to close parameter list")

	var retType *types.Type
	if p.match(token.COLON) {
		t := p.parseType()
		retType = &t
	}

	body := p.parseBlock()
	return &ast.Function{
		Token:      tok,
		Name:       name,
		Parameters: params,
		ReturnType: retType,
		Body:       body,
		Exported:   exported,
	}
}

func (p *Parser) parseClass(exported bool) ast.Statement {
	tok := p.advance() // 'class'
	name := p.expect(token.IDENTIFIER, "as class name").Lexeme
	p.expect(token.LEFT_BRACE, "to start class body")
	p.skipNewlines()
	var members []ast.ClassMember
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		if p.check(token.FUN) {
			fn := p.parseFunction(false).(*ast.Function)
			members = append(members, ast.ClassMember{Method: fn})
		} else {
			field := p.parseDeclaration(true)
			members = append(members, ast.ClassMember{Field: field})
		}
		p.skipNewlines()
	}
	p.expect(token.RIGHT_BRACE, "to close class body")
	return &ast.Class{Token: tok, Name: name, Members: members, Exported: exported}
}

func (p *Parser) parseUse() ast.Statement {
	tok := p.advance() // 'use'
	u := &ast.Use{Token: tok}
	if p.check(token.STRING) {
		u.ModulePath = p.advance().Lexeme
		return u
	}
	u.Targets = append(u.Targets, p.expect(token.IDENTIFIER, "in use list").Lexeme)
	for p.match(token.COMMA) {
		u.Targets = append(u.Targets, p.expect(token.IDENTIFIER, "in use list").Lexeme)
	}
	p.expect(token.FROM, "in use statement")
	u.ModulePath = p.expect(token.STRING, "as module path").Lexeme
	return u
}

func (p *Parser) parseExport() ast.Statement {
	tok := p.advance() // 'export'
	var inner ast.Statement
	switch p.peek().Type {
	case token.CLASS:
		inner = p.parseClass(true)
	case token.FUN:
		inner = p.parseFunction(true)
	case token.IDENTIFIER:
		if p.looksLikeDeclaration() {
			decl := p.parseDeclaration(false)
			decl.Exported = true
			inner = decl
		}
	}
	if inner == nil {
		tok2 := p.peek()
		p.sink.Add(diagnostics.Syntactic, diagnostics.SynUnexpectedToken, tok2,
			"export requires a declaration, function or class, got %s", tok2.Type)
		inner = p.parseExpressionStatement()
	}
	return &ast.Export{Token: tok, Inner: inner}
}

// parseType parses a type annotation: a primitive keyword, [T] for a list,
// {T} for a dict, or a bare identifier naming a class.
func (p *Parser) parseType() types.Type {
	tok := p.peek()
	switch tok.Type {
	case token.TYPE_INT:
		p.advance()
		return types.Simple(types.Int)
	case token.TYPE_FLOAT:
		p.advance()
		return types.Simple(types.Float)
	case token.TYPE_BOOL:
		p.advance()
		return types.Simple(types.Bool)
	case token.TYPE_STRING:
		p.advance()
		return types.Simple(types.String)
	case token.LEFT_BRACKET:
		p.advance()
		inner := p.parseType()
		p.expect(token.RIGHT_BRACKET, "to close list type")
		return types.NewList(inner)
	case token.LEFT_BRACE:
		p.advance()
		inner := p.parseType()
		p.expect(token.RIGHT_BRACE, "to close dict type")
		return types.NewDict(inner)
	case token.IDENTIFIER:
		p.advance()
		return types.NewObject(tok.Lexeme)
	default:
		p.sink.Add(diagnostics.Syntactic, diagnostics.SynUnexpectedToken, tok,
			"expected a type, got %s %q", tok.Type, tok.Lexeme)
		return types.NoTypeValue
	}
}

// --- Expressions, lowest to highest precedence ---

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expression {
	expr := p.parseOr()
	if p.check(token.EQUAL) {
		tok := p.advance()
		value := p.parseAssignment()
		isAccess := false
		switch expr.(type) {
		case *ast.Access:
			isAccess = true
		}
		return &ast.Assign{Token: tok, Target: expr, Value: value, IsAccess: isAccess}
	}
	return expr
}

func (p *Parser) parseOr() ast.Expression {
	expr := p.parseAnd()
	for p.check(token.OR) {
		tok := p.advance()
		right := p.parseAnd()
		expr = &ast.Logical{Token: tok, Left: expr, Op: "or", Right: right}
	}
	return expr
}

func (p *Parser) parseAnd() ast.Expression {
	expr := p.parseEquality()
	for p.check(token.AND) {
		tok := p.advance()
		right := p.parseEquality()
		expr = &ast.Logical{Token: tok, Left: expr, Op: "and", Right: right}
	}
	return expr
}

func (p *Parser) parseEquality() ast.Expression {
	expr := p.parseComparison()
	for p.check(token.EQUAL_EQUAL) || p.check(token.BANG_EQUAL) {
		tok := p.advance()
		op := types.Eq
		if tok.Type == token.BANG_EQUAL {
			op = types.Neq
		}
		right := p.parseComparison()
		expr = &ast.Binary{Token: tok, Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) parseComparison() ast.Expression {
	expr := p.parseRange()
	for p.check(token.LOWER) || p.check(token.LOWER_EQUAL) || p.check(token.HIGHER) || p.check(token.HIGHER_EQUAL) {
		tok := p.advance()
		var op types.BinaryOp
		switch tok.Type {
		case token.LOWER:
			op = types.Lt
		case token.LOWER_EQUAL:
			op = types.Lte
		case token.HIGHER:
			op = types.Gt
		case token.HIGHER_EQUAL:
			op = types.Gte
		}
		right := p.parseRange()
		expr = &ast.Binary{Token: tok, Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) parseRange() ast.Expression {
	expr := p.parseAdditive()
	if p.check(token.DOT_DOT) {
		tok := p.advance()
		end := p.parseAdditive()
		return &ast.Range{Token: tok, Start: expr, End: end, Inclusive: tok.Lexeme == "..="}
	}
	return expr
}

func (p *Parser) parseAdditive() ast.Expression {
	expr := p.parseMultiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		tok := p.advance()
		op := types.Add
		if tok.Type == token.MINUS {
			op = types.Sub
		}
		right := p.parseMultiplicative()
		expr = &ast.Binary{Token: tok, Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) parseMultiplicative() ast.Expression {
	expr := p.parseCast()
	for p.check(token.STAR) || p.check(token.SLASH) {
		tok := p.advance()
		op := types.Mul
		if tok.Type == token.SLASH {
			op = types.Div
		}
		right := p.parseCast()
		expr = &ast.Binary{Token: tok, Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) parseCast() ast.Expression {
	expr := p.parseUnary()
	for p.check(token.AS) {
		tok := p.advance()
		target := p.parseType()
		expr = &ast.Cast{Token: tok, Expr: expr, Target: target}
	}
	return expr
}

func (p *Parser) parseUnary() ast.Expression {
	if p.check(token.MINUS) || p.check(token.NOT) || p.check(token.BANG) {
		tok := p.advance()
		op := tok.Lexeme
		if tok.Type == token.BANG || tok.Type == token.NOT {
			op = "!"
		}
		right := p.parseUnary()
		return &ast.Unary{Token: tok, Op: op, Right: right}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.peek().Type {
		case token.LEFT_PAREN:
			expr = p.finishCall(expr)
		case token.LEFT_BRACKET:
			expr = p.finishAccessOrSlice(expr)
		case token.DOT:
			tok := p.advance()
			name := p.expect(token.IDENTIFIER, "as property name").Lexeme
			expr = &ast.Property{Token: tok, Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expression) ast.Expression {
	tok := p.advance() // '('
	var args []ast.Expression
	if !p.check(token.RIGHT_PAREN) {
		for {
			args = append(args, p.parseExpression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RIGHT_PAREN, "to close call arguments")
	return &ast.Call{Token: tok, Target: callee, Arguments: args}
}

func (p *Parser) finishAccessOrSlice(target ast.Expression) ast.Expression {
	tok := p.advance() // '['
	var start, end, step ast.Expression
	if !p.check(token.COLON) {
		start = p.parseExpression()
	}
	if p.check(token.COLON) {
		p.advance()
		if !p.check(token.COLON) && !p.check(token.RIGHT_BRACKET) {
			end = p.parseExpression()
		}
		if p.match(token.COLON) {
			if !p.check(token.RIGHT_BRACKET) {
				step = p.parseExpression()
			}
		}
		p.expect(token.RIGHT_BRACKET, "to close slice")
		return &ast.Slice{Token: tok, Target: target, Start: start, End: end, Step: step}
	}
	p.expect(token.RIGHT_BRACKET, "to close index")
	return &ast.Access{Token: tok, Target: target, Index: start}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()
	switch tok.Type {
	case token.INTEGER:
		p.advance()
		var v int64
		fmt.Sscanf(tok.Lexeme, "%d", &v)
		return &ast.Integer{Token: tok, Value: v}
	case token.FLOAT:
		p.advance()
		var v float64
		fmt.Sscanf(tok.Lexeme, "%g", &v)
		return &ast.Float{Token: tok, Value: v}
	case token.STRING:
		p.advance()
		return &ast.String{Token: tok, Value: tok.Lexeme}
	case token.TRUE:
		p.advance()
		return &ast.Boolean{Token: tok, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.Boolean{Token: tok, Value: false}
	case token.IDENTIFIER:
		p.advance()
		if p.check(token.LEFT_BRACE) && p.canStartObjectLiteral() {
			return p.finishObjectLiteral(tok)
		}
		return &ast.Variable{Token: tok, Name: tok.Lexeme}
	case token.LEFT_PAREN:
		p.advance()
		inner := p.parseExpression()
		p.expect(token.RIGHT_PAREN, "to close grouped expression")
		return &ast.Group{Token: tok, Inner: inner}
	case token.LEFT_BRACKET:
		return p.parseListLiteral()
	case token.LEFT_BRACE:
		return p.parseDictLiteral()
	default:
		p.sink.Add(diagnostics.Syntactic, diagnostics.SynUnexpectedToken, tok,
			"expected an expression, got %s %q", tok.Type, tok.Lexeme)
		p.advance()
		return &ast.Integer{Token: tok, Value: 0}
	}
}

// canStartObjectLiteral looks for `Name { ident :`, distinguishing an
// object literal from a name followed by an unrelated block. A one-line
// block whose first statement is a declaration (`if ok { x: int = 1 }`)
// matches too and is parsed as an object literal.
func (p *Parser) canStartObjectLiteral() bool {
	return p.peekAt(1).Type == token.IDENTIFIER && p.peekAt(2).Type == token.COLON
}

func (p *Parser) finishObjectLiteral(classTok token.Token) ast.Expression {
	p.advance() // '{'
	p.skipNewlines()
	obj := &ast.Object{Token: classTok, ClassName: classTok.Lexeme, Arguments: map[string]ast.Expression{}}
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		name := p.expect(token.IDENTIFIER, "as object field name").Lexeme
		p.expect(token.COLON, "after object field name")
		value := p.parseExpression()
		obj.Keys = append(obj.Keys, name)
		obj.Arguments[name] = value
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	p.expect(token.RIGHT_BRACE, "to close object literal")
	return obj
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.advance() // '['
	list := &ast.List{Token: tok}
	p.skipNewlines()
	if !p.check(token.RIGHT_BRACKET) {
		for {
			p.skipNewlines()
			list.Elements = append(list.Elements, p.parseExpression())
			p.skipNewlines()
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.skipNewlines()
	p.expect(token.RIGHT_BRACKET, "to close list literal")
	return list
}

func (p *Parser) parseDictLiteral() ast.Expression {
	tok := p.advance() // '{'
	dict := &ast.Dictionary{Token: tok, Values: map[string]ast.Expression{}}
	p.skipNewlines()
	if !p.check(token.RIGHT_BRACE) {
		for {
			p.skipNewlines()
			key := p.expect(token.IDENTIFIER, "as dictionary key").Lexeme
			p.expect(token.COLON, "after dictionary key")
			value := p.parseExpression()
			dict.Keys = append(dict.Keys, key)
			dict.Values[key] = value
			p.skipNewlines()
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.skipNewlines()
	p.expect(token.RIGHT_BRACE, "to close dictionary literal")
	return dict
}
