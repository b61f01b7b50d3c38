package pine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// scanTokens turns a script source into a flat token stream.
// Newlines are significant (they terminate statements) but runs of blank
// lines collapse into a single NEWLINE token.
func scanTokens(src string) ([]Token, error) {
	s := &scanner{src: []rune(src), line: 1}
	var toks []Token
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == NEWLINE && len(toks) > 0 && toks[len(toks)-1].Kind == NEWLINE {
			continue
		}
		toks = append(toks, tok)
		if tok.Kind == EOS {
			return toks, nil
		}
	}
}

type scanner struct {
	src  []rune
	pos  int
	line int
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) advance() rune {
	ch := s.src[s.pos]
	s.pos++
	return ch
}

func (s *scanner) next() (Token, error) {
	for s.pos < len(s.src) {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			s.pos++
		case ch == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for s.pos < len(s.src) && s.peek() != '\n' {
				s.pos++
			}
		default:
			goto scan
		}
	}
	return Token{Kind: EOS, Line: s.line}, nil

scan:
	line := s.line
	ch := s.advance()

	switch {
	case ch == '\n':
		s.line++
		return Token{Kind: NEWLINE, Line: line}, nil
	case unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(s.peek())):
		var sb strings.Builder
		sb.WriteRune(ch)
		for s.pos < len(s.src) && (unicode.IsDigit(s.peek()) || s.peek() == '.') {
			sb.WriteRune(s.advance())
		}
		num, err := strconv.ParseFloat(sb.String(), 64)
		if err != nil {
			return Token{}, fmt.Errorf("line %d: bad number %q", line, sb.String())
		}
		return Token{Kind: NUMBER, Val: sb.String(), Num: num, Line: line}, nil
	case unicode.IsLetter(ch) || ch == '_':
		var sb strings.Builder
		sb.WriteRune(ch)
		for s.pos < len(s.src) && (unicode.IsLetter(s.peek()) || unicode.IsDigit(s.peek()) || s.peek() == '_' || s.peek() == '.') {
			sb.WriteRune(s.advance())
		}
		word := sb.String()
		if kw, ok := keywordMap[word]; ok {
			return Token{Kind: kw, Val: word, Line: line}, nil
		}
		return Token{Kind: IDENT, Val: word, Line: line}, nil
	case ch == '"':
		var sb strings.Builder
		for {
			if s.pos >= len(s.src) || s.peek() == '\n' {
				return Token{}, fmt.Errorf("line %d: unterminated string", line)
			}
			c := s.advance()
			if c == '"' {
				break
			}
			sb.WriteRune(c)
		}
		return Token{Kind: STRING, Val: sb.String(), Line: line}, nil
	}

	single := map[rune]TokenKind{
		'+': SP_PLUS, '-': SP_MINUS, '*': SP_STAR, '/': SP_DIV, '%': SP_MOD,
		',': SP_COMMA, '(': SP_LPAREN, ')': SP_RPAREN,
		'{': SP_LBRACE, '}': SP_RBRACE, '[': SP_LBRACKET, ']': SP_RBRACKET,
	}
	if kind, ok := single[ch]; ok {
		return Token{Kind: kind, Val: string(ch), Line: line}, nil
	}

	switch ch {
	case '=':
		if s.peek() == '=' {
			s.pos++
			return Token{Kind: SP_EQ, Val: "==", Line: line}, nil
		}
		return Token{Kind: SP_ASSIGN, Val: "=", Line: line}, nil
	case '!':
		if s.peek() == '=' {
			s.pos++
			return Token{Kind: SP_NOEQ, Val: "!=", Line: line}, nil
		}
	case '<':
		if s.peek() == '=' {
			s.pos++
			return Token{Kind: SP_LESSEQ, Val: "<=", Line: line}, nil
		}
		return Token{Kind: SP_LESS, Val: "<", Line: line}, nil
	case '>':
		if s.peek() == '=' {
			s.pos++
			return Token{Kind: SP_GREATEQ, Val: ">=", Line: line}, nil
		}
		return Token{Kind: SP_GREAT, Val: ">", Line: line}, nil
	}

	return Token{}, fmt.Errorf("line %d: unexpected character %q", line, string(ch))
}
