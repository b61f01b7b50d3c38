package pine

// Node is any element of a parsed strategy tree.
type Node interface {
	node()
}

// Expr is a node that yields a value when evaluated.
type Expr interface {
	Node
	expr()
}

// Stmt is a node executed for its effect.
type Stmt interface {
	Node
	stmt()
}

// LitKind tags the payload of a Literal.
type LitKind int

// Literal payload kinds.
const (
	LitNum LitKind = iota
	LitBool
	LitStr
	LitNa
)

// Literal is a constant number, boolean, string, or the na value.
type Literal struct {
	Kind LitKind
	Num  float64
	Str  string
	Bool bool
	Line int
}

// VarRef reads a named binding: a series field, input, persistent var,
// or a local assigned earlier in the script.
type VarRef struct {
	Name string
	Line int
}

// HistoryRef reads the value of X as of Offset bars ago, written x[n].
type HistoryRef struct {
	X      *VarRef
	Offset Expr
	Line   int
}

// BinaryOp applies an infix operator. Op is the source spelling
// ("+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "and", "or").
type BinaryOp struct {
	Op   string
	X, Y Expr
	Line int
}

// UnaryOp applies a prefix operator, "-" or "not".
type UnaryOp struct {
	Op   string
	X    Expr
	Line int
}

// Call invokes a built-in. ID is assigned in parse order and is stable for
// the life of the tree; the evaluation context keys per-call-site indicator
// state on it.
type Call struct {
	ID   int
	Name string
	Args []Expr
	Line int
}

// Assign binds the result of X to Name. If Name was declared with var the
// write goes to the persistent binding, otherwise to a per-bar local.
type Assign struct {
	Name string
	X    Expr
	Line int
}

// If executes Then when Cond holds, otherwise Else (a *Block, an *If for
// else-if chains, or nil).
type If struct {
	Cond Expr
	Then *Block
	Else Stmt
	Line int
}

// Block is a brace-delimited statement list.
type Block struct {
	Stmts []Stmt
}

// Input is a declared strategy parameter with a literal default.
type Input struct {
	Name    string
	Default *Literal
	Line    int
}

// VarDecl is a persistent variable declaration with a literal initial value.
// Persistent variables keep their value across bars.
type VarDecl struct {
	Name string
	Init *Literal
	Line int
}

// Strategy is a fully parsed script: title, declarations, and the statement
// list executed once per bar. The tree is immutable after parsing.
type Strategy struct {
	Title  string
	Inputs []*Input
	Vars   []*VarDecl
	Body   []Stmt

	numCalls int
}

// NumCalls reports how many built-in call sites the strategy contains.
// Call IDs are dense in [0, NumCalls).
func (s *Strategy) NumCalls() int { return s.numCalls }

func (*Literal) node()    {}
func (*VarRef) node()     {}
func (*HistoryRef) node() {}
func (*BinaryOp) node()   {}
func (*UnaryOp) node()    {}
func (*Call) node()       {}
func (*Assign) node()     {}
func (*If) node()         {}
func (*Block) node()      {}

func (*Literal) expr()    {}
func (*VarRef) expr()     {}
func (*HistoryRef) expr() {}
func (*BinaryOp) expr()   {}
func (*UnaryOp) expr()    {}
func (*Call) expr()       {}

func (*Assign) stmt() {}
func (*If) stmt()     {}
func (*Block) stmt()  {}

// A Call in statement position is a signal statement such as enterlong().
func (*Call) stmt() {}

// Walk traverses the tree rooted at n in document order, calling fn for each
// node. If fn returns false the node's children are skipped. Walk never
// mutates the tree.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch x := n.(type) {
	case *HistoryRef:
		Walk(x.X, fn)
		Walk(x.Offset, fn)
	case *BinaryOp:
		Walk(x.X, fn)
		Walk(x.Y, fn)
	case *UnaryOp:
		Walk(x.X, fn)
	case *Call:
		for _, a := range x.Args {
			Walk(a, fn)
		}
	case *Assign:
		Walk(x.X, fn)
	case *If:
		Walk(x.Cond, fn)
		Walk(x.Then, fn)
		if x.Else != nil {
			Walk(x.Else, fn)
		}
	case *Block:
		for _, st := range x.Stmts {
			Walk(st, fn)
		}
	}
}

// WalkStrategy traverses every statement of the strategy body.
func WalkStrategy(s *Strategy, fn func(Node) bool) {
	for _, st := range s.Body {
		Walk(st, fn)
	}
}
