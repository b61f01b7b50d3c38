/*
<script>     -> <header> { <decl> | <stmt> }
<header>     -> strategy ( STRING ) | ε
<decl>       -> input IDENT = <literal> | var IDENT = <literal>
<stmt>       -> IDENT = <exprOr> | <ifstmt> | <call>
<ifstmt>     -> if <exprOr> <block> { else ( <block> | <ifstmt> ) }
<block>      -> { <stmts> }
<exprOr>     -> <exprAnd> { or <exprAnd> }
<exprAnd>    -> <exprNot> { and <exprNot> }
<exprNot>    -> not <exprNot> | <exprCmp>
<exprCmp>    -> <exprAdd> { ( == | != | < | <= | > | >= ) <exprAdd> }
<exprAdd>    -> <exprMult> { ( + | - ) <exprMult> }
<exprMult>   -> <exprNeg> { ( * | / | % ) <exprNeg> }
<exprNeg>    -> - <exprNeg> | <postfix>
<postfix>    -> <primary> { [ <exprAdd> ] }
<primary>    -> NUMBER | STRING | true | false | na | IDENT | <call> | ( <exprOr> )
<call>       -> IDENT ( <args> )
*/

package pine

import (
	"fmt"

	"github.com/oarkflow/errors"
)

// Parse scans and parses a strategy script into its tree form.
// The returned Strategy is syntactically valid; call Validate before
// evaluating it.
func Parse(src string) (*Strategy, error) {
	toks, err := scanTokens(src)
	if err != nil {
		return nil, errors.NewE(err, "unable to scan strategy script", "")
	}

	p := &parser{toks: toks}
	strat, err := p.parseScript()
	if err != nil {
		return nil, errors.NewE(err, "unable to parse strategy script", "")
	}
	return strat, nil
}

// recursive descent parser builds the strategy tree
type parser struct {
	toks   []Token
	pos    int
	nextID int
}

func (p *parser) tok() Token { return p.toks[p.pos] }

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if t.Kind != EOS {
		p.pos++
	}
	return t
}

func (p *parser) accept(kind TokenKind) bool {
	if p.tok().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	if p.tok().Kind != kind {
		return Token{}, p.errMsg("expected " + kindNames[kind] + ", got " + p.tok().name())
	}
	return p.advance(), nil
}

func (p *parser) errMsg(msg string) error {
	return fmt.Errorf("line %d: %s", p.tok().Line, msg)
}

func (p *parser) skipNewlines() {
	for p.tok().Kind == NEWLINE {
		p.advance()
	}
}

func (p *parser) parseScript() (*Strategy, error) {
	strat := &Strategy{}
	p.skipNewlines()

	if p.accept(KW_STRATEGY) {
		if _, err := p.expect(SP_LPAREN); err != nil {
			return nil, err
		}
		title, err := p.expect(STRING)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SP_RPAREN); err != nil {
			return nil, err
		}
		strat.Title = title.Val
	}
	p.skipNewlines()

	for p.tok().Kind != EOS {
		switch p.tok().Kind {
		case KW_INPUT:
			in, err := p.parseInput()
			if err != nil {
				return nil, err
			}
			strat.Inputs = append(strat.Inputs, in)
		case KW_VAR:
			vd, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			strat.Vars = append(strat.Vars, vd)
		default:
			st, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			strat.Body = append(strat.Body, st)
		}
		if p.tok().Kind != EOS {
			if _, err := p.expect(NEWLINE); err != nil {
				return nil, err
			}
		}
		p.skipNewlines()
	}

	strat.numCalls = p.nextID
	return strat, nil
}

func (p *parser) parseInput() (*Input, error) {
	kw := p.advance()
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SP_ASSIGN); err != nil {
		return nil, err
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &Input{Name: name.Val, Default: lit, Line: kw.Line}, nil
}

func (p *parser) parseVarDecl() (*VarDecl, error) {
	kw := p.advance()
	name, err := p.expect(IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SP_ASSIGN); err != nil {
		return nil, err
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &VarDecl{Name: name.Val, Init: lit, Line: kw.Line}, nil
}

// literals in declarations may carry a leading minus
func (p *parser) parseLiteral() (*Literal, error) {
	tok := p.advance()
	switch tok.Kind {
	case SP_MINUS:
		num, err := p.expect(NUMBER)
		if err != nil {
			return nil, err
		}
		return &Literal{Kind: LitNum, Num: -num.Num, Line: tok.Line}, nil
	case NUMBER:
		return &Literal{Kind: LitNum, Num: tok.Num, Line: tok.Line}, nil
	case STRING:
		return &Literal{Kind: LitStr, Str: tok.Val, Line: tok.Line}, nil
	case KW_TRUE:
		return &Literal{Kind: LitBool, Bool: true, Line: tok.Line}, nil
	case KW_FALSE:
		return &Literal{Kind: LitBool, Bool: false, Line: tok.Line}, nil
	case KW_NA:
		return &Literal{Kind: LitNa, Line: tok.Line}, nil
	}
	return nil, fmt.Errorf("line %d: expected literal, got %s", tok.Line, tok.name())
}

func (p *parser) parseStmt() (Stmt, error) {
	switch p.tok().Kind {
	case KW_IF:
		return p.parseIf()
	case IDENT:
		// lookahead distinguishes assignment from a signal call
		if p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == SP_ASSIGN {
			name := p.advance()
			p.advance() // '='
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &Assign{Name: name.Val, X: x, Line: name.Line}, nil
		}
		if p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == SP_LPAREN {
			return p.parseCall()
		}
	}
	return nil, p.errMsg("expected statement, got " + p.tok().name())
}

func (p *parser) parseIf() (*If, error) {
	kw := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &If{Cond: cond, Then: then, Line: kw.Line}
	if p.accept(KW_ELSE) {
		if p.tok().Kind == KW_IF {
			elif, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.Else = elif
		} else {
			blk, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = blk
		}
	}
	return stmt, nil
}

func (p *parser) parseBlock() (*Block, error) {
	if _, err := p.expect(SP_LBRACE); err != nil {
		return nil, err
	}
	blk := &Block{}
	p.skipNewlines()
	for p.tok().Kind != SP_RBRACE {
		if p.tok().Kind == EOS {
			return nil, p.errMsg("unterminated block")
		}
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, st)
		p.skipNewlines()
	}
	p.advance() // '}'
	return blk, nil
}

func (p *parser) parseCall() (*Call, error) {
	name := p.advance()
	if _, err := p.expect(SP_LPAREN); err != nil {
		return nil, err
	}
	call := &Call{ID: p.nextID, Name: name.Val, Line: name.Line}
	p.nextID++
	if p.tok().Kind != SP_RPAREN {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.accept(SP_COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(SP_RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (Expr, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok().Kind == KW_OR {
		line := p.advance().Line
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		x = &BinaryOp{Op: "or", X: x, Y: y, Line: line}
	}
	return x, nil
}

func (p *parser) parseAnd() (Expr, error) {
	x, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tok().Kind == KW_AND {
		line := p.advance().Line
		y, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		x = &BinaryOp{Op: "and", X: x, Y: y, Line: line}
	}
	return x, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.tok().Kind == KW_NOT {
		line := p.advance().Line
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: "not", X: x, Line: line}, nil
	}
	return p.parseCmp()
}

var cmpOps = map[TokenKind]string{
	SP_EQ: "==", SP_NOEQ: "!=",
	SP_LESS: "<", SP_LESSEQ: "<=",
	SP_GREAT: ">", SP_GREATEQ: ">=",
}

func (p *parser) parseCmp() (Expr, error) {
	x, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := cmpOps[p.tok().Kind]
		if !ok {
			return x, nil
		}
		line := p.advance().Line
		y, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		x = &BinaryOp{Op: op, X: x, Y: y, Line: line}
	}
}

func (p *parser) parseAdd() (Expr, error) {
	x, err := p.parseMult()
	if err != nil {
		return nil, err
	}
	for p.tok().Kind == SP_PLUS || p.tok().Kind == SP_MINUS {
		op := p.advance()
		y, err := p.parseMult()
		if err != nil {
			return nil, err
		}
		x = &BinaryOp{Op: op.Val, X: x, Y: y, Line: op.Line}
	}
	return x, nil
}

func (p *parser) parseMult() (Expr, error) {
	x, err := p.parseNeg()
	if err != nil {
		return nil, err
	}
	for p.tok().Kind == SP_STAR || p.tok().Kind == SP_DIV || p.tok().Kind == SP_MOD {
		op := p.advance()
		y, err := p.parseNeg()
		if err != nil {
			return nil, err
		}
		x = &BinaryOp{Op: op.Val, X: x, Y: y, Line: op.Line}
	}
	return x, nil
}

func (p *parser) parseNeg() (Expr, error) {
	if p.tok().Kind == SP_MINUS {
		line := p.advance().Line
		x, err := p.parseNeg()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: "-", X: x, Line: line}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.tok().Kind == SP_LBRACKET {
		line := p.advance().Line
		ref, ok := x.(*VarRef)
		if !ok {
			return nil, fmt.Errorf("line %d: history lookup requires a plain variable", line)
		}
		off, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SP_RBRACKET); err != nil {
			return nil, err
		}
		x = &HistoryRef{X: ref, Offset: off, Line: line}
	}
	return x, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.tok().Kind {
	case NUMBER, STRING, KW_TRUE, KW_FALSE, KW_NA:
		return p.parseLiteral()
	case IDENT:
		if p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == SP_LPAREN {
			return p.parseCall()
		}
		tok := p.advance()
		return &VarRef{Name: tok.Val, Line: tok.Line}, nil
	case SP_LPAREN:
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SP_RPAREN); err != nil {
			return nil, err
		}
		return x, nil
	}
	return nil, p.errMsg("expected expression, got " + p.tok().name())
}
