package backtest

import (
	"github.com/quantfoundry/pinetester/pine"
)

// Signal is the trading intent the interpreter derives from one bar.
type Signal int

// Signal kinds. A bar that executes no signal statement yields Hold.
const (
	Hold Signal = iota
	EnterLong
	EnterShort
	ExitLong
	ExitShort
)

func (s Signal) String() string {
	switch s {
	case EnterLong:
		return "ENTER_LONG"
	case EnterShort:
		return "ENTER_SHORT"
	case ExitLong:
		return "EXIT_LONG"
	case ExitShort:
		return "EXIT_SHORT"
	}
	return "HOLD"
}

// Intent is one emitted signal plus the strategy's free-text comment.
type Intent struct {
	Signal  Signal
	Comment string
}

var signalNames = map[string]Signal{
	"enterlong":  EnterLong,
	"entershort": EnterShort,
	"exitlong":   ExitLong,
	"exitshort":  ExitShort,
}

// defaultPriority resolves conflicting same-bar signals exit-before-enter.
var defaultPriority = []Signal{ExitLong, ExitShort, EnterLong, EnterShort}

// Interpreter walks a validated strategy tree against the evaluation
// context, one bar at a time. It is single-threaded and deterministic:
// statements run in document order and a bar is fully evaluated before the
// next one is touched.
type Interpreter struct {
	strategy *pine.Strategy
	ctx      *Context
	priority []Signal

	intents map[Signal]Intent
}

// NewInterpreter pairs a strategy with its context for one run.
func NewInterpreter(strategy *pine.Strategy, ctx *Context) *Interpreter {
	return &Interpreter{strategy: strategy, ctx: ctx, priority: defaultPriority}
}

// SetPriority overrides the order conflicting same-bar signals resolve in.
// An empty order keeps the default; a signal left out of the order is
// dropped from the bar's intents.
func (it *Interpreter) SetPriority(order []Signal) {
	if len(order) > 0 {
		it.priority = order
	}
}

// EvalBar executes the strategy body against the context's current bar and
// returns the bar's intents. Each directional intent appears at most once,
// keeping the first comment emitted; the slice is sorted by the conflict
// priority (exit-before-enter unless SetPriority says otherwise) and the
// ordering decides simulated P&L. An empty slice is a Hold.
func (it *Interpreter) EvalBar() ([]Intent, error) {
	it.intents = map[Signal]Intent{}
	for _, st := range it.strategy.Body {
		if err := it.execStmt(st); err != nil {
			return nil, err
		}
	}

	out := make([]Intent, 0, len(it.intents))
	for _, sig := range it.priority {
		if in, ok := it.intents[sig]; ok {
			out = append(out, in)
		}
	}
	return out, nil
}

func (it *Interpreter) execStmt(st pine.Stmt) error {
	switch s := st.(type) {
	case *pine.Assign:
		v, err := it.eval(s.X)
		if err != nil {
			return err
		}
		it.ctx.Write(s.Name, v)
	case *pine.If:
		cond, err := it.eval(s.Cond)
		if err != nil {
			return err
		}
		// an Na condition never runs the branch
		if cond.Truthy() {
			return it.execBlock(s.Then)
		}
		if s.Else != nil {
			return it.execStmt(s.Else)
		}
	case *pine.Block:
		return it.execBlock(s)
	case *pine.Call:
		sig, ok := signalNames[s.Name]
		if !ok {
			_, err := it.eval(s)
			return err
		}
		comment := ""
		if len(s.Args) == 1 {
			v, err := it.eval(s.Args[0])
			if err != nil {
				return err
			}
			comment = v.Str
		}
		if _, dup := it.intents[sig]; !dup {
			it.intents[sig] = Intent{Signal: sig, Comment: comment}
		}
	}
	return nil
}

func (it *Interpreter) execBlock(b *pine.Block) error {
	for _, st := range b.Stmts {
		if err := it.execStmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) eval(e pine.Expr) (Value, error) {
	switch x := e.(type) {
	case *pine.Literal:
		return litValue(x), nil
	case *pine.VarRef:
		return it.ctx.Read(x.Name)
	case *pine.HistoryRef:
		off, err := it.eval(x.Offset)
		if err != nil {
			return Na, err
		}
		n, ok := historyOffset(off)
		if !ok {
			return Na, nil
		}
		return it.ctx.ReadPrev(x.X.Name, n)
	case *pine.UnaryOp:
		v, err := it.eval(x.X)
		if err != nil {
			return Na, err
		}
		if x.Op == "not" {
			return BoolVal(!v.Truthy()), nil
		}
		return v.Neg(), nil
	case *pine.BinaryOp:
		return it.evalBinary(x)
	case *pine.Call:
		args := make([]Value, len(x.Args))
		for i, a := range x.Args {
			v, err := it.eval(a)
			if err != nil {
				return Na, err
			}
			args[i] = v
		}
		return it.ctx.evalBuiltin(x, args), nil
	}
	return Na, nil
}

func (it *Interpreter) evalBinary(x *pine.BinaryOp) (Value, error) {
	// and/or short-circuit; an Na operand is simply false
	if x.Op == "and" || x.Op == "or" {
		lhs, err := it.eval(x.X)
		if err != nil {
			return Na, err
		}
		if x.Op == "and" && !lhs.Truthy() {
			return BoolVal(false), nil
		}
		if x.Op == "or" && lhs.Truthy() {
			return BoolVal(true), nil
		}
		rhs, err := it.eval(x.Y)
		if err != nil {
			return Na, err
		}
		return BoolVal(rhs.Truthy()), nil
	}

	lhs, err := it.eval(x.X)
	if err != nil {
		return Na, err
	}
	rhs, err := it.eval(x.Y)
	if err != nil {
		return Na, err
	}
	switch x.Op {
	case "+":
		return lhs.Add(rhs), nil
	case "-":
		return lhs.Sub(rhs), nil
	case "*":
		return lhs.Mul(rhs), nil
	case "/":
		return lhs.Div(rhs), nil
	case "%":
		return lhs.Mod(rhs), nil
	default:
		return lhs.Compare(x.Op, rhs), nil
	}
}

func historyOffset(v Value) (int, bool) {
	if v.Kind != KindNum {
		return 0, false
	}
	n := int(v.Num)
	if n < 0 || float64(n) != v.Num {
		return 0, false
	}
	return n, true
}
