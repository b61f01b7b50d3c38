package pine

// TokenKind identifies the lexical class of a scanned token.
type TokenKind int

// Token kinds produced by the scanner.
const (
	EOS TokenKind = iota
	NEWLINE
	IDENT
	NUMBER
	STRING
	// keywords
	KW_STRATEGY
	KW_INPUT
	KW_VAR
	KW_IF
	KW_ELSE
	KW_AND
	KW_OR
	KW_NOT
	KW_TRUE
	KW_FALSE
	KW_NA
	// operators and punctuation
	SP_ASSIGN
	SP_PLUS
	SP_MINUS
	SP_STAR
	SP_DIV
	SP_MOD
	SP_EQ
	SP_NOEQ
	SP_LESS
	SP_LESSEQ
	SP_GREAT
	SP_GREATEQ
	SP_COMMA
	SP_LPAREN
	SP_RPAREN
	SP_LBRACE
	SP_RBRACE
	SP_LBRACKET
	SP_RBRACKET
)

var keywordMap = map[string]TokenKind{
	"strategy": KW_STRATEGY,
	"input":    KW_INPUT,
	"var":      KW_VAR,
	"if":       KW_IF,
	"else":     KW_ELSE,
	"and":      KW_AND,
	"or":       KW_OR,
	"not":      KW_NOT,
	"true":     KW_TRUE,
	"false":    KW_FALSE,
	"na":       KW_NA,
}

var kindNames = map[TokenKind]string{
	EOS:         "end of script",
	NEWLINE:     "newline",
	IDENT:       "identifier",
	NUMBER:      "number",
	STRING:      "string",
	KW_STRATEGY: "'strategy'",
	KW_INPUT:    "'input'",
	KW_VAR:      "'var'",
	KW_IF:       "'if'",
	KW_ELSE:     "'else'",
	KW_AND:      "'and'",
	KW_OR:       "'or'",
	KW_NOT:      "'not'",
	KW_TRUE:     "'true'",
	KW_FALSE:    "'false'",
	KW_NA:       "'na'",
	SP_ASSIGN:   "'='",
	SP_PLUS:     "'+'",
	SP_MINUS:    "'-'",
	SP_STAR:     "'*'",
	SP_DIV:      "'/'",
	SP_MOD:      "'%'",
	SP_EQ:       "'=='",
	SP_NOEQ:     "'!='",
	SP_LESS:     "'<'",
	SP_LESSEQ:   "'<='",
	SP_GREAT:    "'>'",
	SP_GREATEQ:  "'>='",
	SP_COMMA:    "','",
	SP_LPAREN:   "'('",
	SP_RPAREN:   "')'",
	SP_LBRACE:   "'{'",
	SP_RBRACE:   "'}'",
	SP_LBRACKET: "'['",
	SP_RBRACKET: "']'",
}

// Token is one lexical unit of a strategy script.
type Token struct {
	Kind TokenKind
	Val  string
	Num  float64
	Line int
}

func (t Token) name() string {
	if n, ok := kindNames[t.Kind]; ok {
		return n
	}
	return t.Val
}
