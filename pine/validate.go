package pine

import (
	"fmt"
	"strings"
)

// ValidationError is one structural problem found in a parsed strategy.
type ValidationError struct {
	Line int
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// ValidationErrors is the collected result of a validation pass. Validation
// never stops at the first problem; the whole list is reported so a strategy
// can be rejected with every defect visible.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "strategy validation failed: " + strings.Join(msgs, "; ")
}

// Validate runs the structural validation pass over a parsed strategy:
// unresolved variable references, built-in arity mismatches, type
// mismatches, and misplaced signal calls. A nil return means the strategy
// is safe to interpret.
func Validate(s *Strategy) ValidationErrors {
	v := &validator{declared: map[string]Type{}}

	for name := range SeriesFields {
		v.declared[name] = TypeNum
	}
	for _, in := range s.Inputs {
		if _, dup := v.declared[in.Name]; dup {
			v.errf(in.Line, "duplicate declaration of %q", in.Name)
			continue
		}
		v.declared[in.Name] = litType(in.Default)
	}
	for _, vd := range s.Vars {
		if _, dup := v.declared[vd.Name]; dup {
			v.errf(vd.Line, "duplicate declaration of %q", vd.Name)
			continue
		}
		v.declared[vd.Name] = litType(vd.Init)
		v.persistent = append(v.persistent, vd.Name)
	}

	for _, st := range s.Body {
		v.stmt(st)
	}

	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

type validator struct {
	declared   map[string]Type
	persistent []string
	errs       ValidationErrors
}

func (v *validator) errf(line int, format string, args ...interface{}) {
	v.errs = append(v.errs, &ValidationError{Line: line, Msg: fmt.Sprintf(format, args...)})
}

func litType(l *Literal) Type {
	switch l.Kind {
	case LitBool:
		return TypeBool
	case LitStr:
		return TypeStr
	case LitNa:
		return TypeAny
	}
	return TypeNum
}

func (v *validator) stmt(st Stmt) {
	switch s := st.(type) {
	case *Assign:
		t := v.expr(s.X)
		if prev, ok := v.declared[s.Name]; ok {
			if SeriesFields[s.Name] {
				v.errf(s.Line, "cannot assign to series field %q", s.Name)
			} else if prev != TypeAny && t != TypeAny && prev != t {
				v.errf(s.Line, "cannot assign %s to %q declared as %s", t, s.Name, prev)
			}
		} else {
			v.declared[s.Name] = t
		}
	case *If:
		if t := v.expr(s.Cond); t != TypeBool && t != TypeAny {
			v.errf(s.Line, "if condition must be boolean, got %s", t)
		}
		v.block(s.Then)
		if s.Else != nil {
			v.stmt(s.Else)
		}
	case *Block:
		v.block(s)
	case *Call:
		spec, ok := Builtins[s.Name]
		if !ok {
			v.errf(s.Line, "unknown function %q", s.Name)
			return
		}
		if !spec.Signal {
			v.errf(s.Line, "%q has no effect in statement position", s.Name)
		}
		v.call(s, spec)
	}
}

func (v *validator) block(b *Block) {
	for _, st := range b.Stmts {
		v.stmt(st)
	}
}

func (v *validator) expr(e Expr) Type {
	switch x := e.(type) {
	case *Literal:
		return litType(x)
	case *VarRef:
		t, ok := v.declared[x.Name]
		if !ok {
			v.errf(x.Line, "unresolved variable %q", x.Name)
			return TypeAny
		}
		return t
	case *HistoryRef:
		name := x.X.Name
		if !SeriesFields[name] && !v.isPersistent(name) {
			if _, ok := v.declared[name]; !ok {
				v.errf(x.Line, "unresolved variable %q", name)
			} else {
				v.errf(x.Line, "history lookup needs a series field or a var declaration, %q is neither", name)
			}
		}
		if t := v.expr(x.Offset); t != TypeNum && t != TypeAny {
			v.errf(x.Line, "history offset must be a number, got %s", t)
		}
		return TypeAny
	case *UnaryOp:
		t := v.expr(x.X)
		if x.Op == "not" {
			if t != TypeBool && t != TypeAny {
				v.errf(x.Line, "operator 'not' needs a boolean, got %s", t)
			}
			return TypeBool
		}
		if t != TypeNum && t != TypeAny {
			v.errf(x.Line, "operator '-' needs a number, got %s", t)
		}
		return TypeNum
	case *BinaryOp:
		tx := v.expr(x.X)
		ty := v.expr(x.Y)
		switch x.Op {
		case "and", "or":
			v.wantType(x.Line, x.Op, tx, TypeBool)
			v.wantType(x.Line, x.Op, ty, TypeBool)
			return TypeBool
		case "==", "!=", "<", "<=", ">", ">=":
			v.wantType(x.Line, x.Op, tx, TypeNum)
			v.wantType(x.Line, x.Op, ty, TypeNum)
			return TypeBool
		default:
			v.wantType(x.Line, x.Op, tx, TypeNum)
			v.wantType(x.Line, x.Op, ty, TypeNum)
			return TypeNum
		}
	case *Call:
		spec, ok := Builtins[x.Name]
		if !ok {
			v.errf(x.Line, "unknown function %q", x.Name)
			return TypeAny
		}
		if spec.Signal {
			v.errf(x.Line, "signal call %q cannot be used inside an expression", x.Name)
		}
		v.call(x, spec)
		return spec.Result
	}
	return TypeAny
}

func (v *validator) wantType(line int, op string, got, want Type) {
	if got != want && got != TypeAny {
		v.errf(line, "operator %q needs a %s operand, got %s", op, want, got)
	}
}

func (v *validator) call(c *Call, spec BuiltinSpec) {
	if len(c.Args) < spec.MinArgs || len(c.Args) > spec.MaxArgs {
		if spec.MinArgs == spec.MaxArgs {
			v.errf(c.Line, "%q takes %d argument(s), got %d", c.Name, spec.MinArgs, len(c.Args))
		} else {
			v.errf(c.Line, "%q takes %d to %d arguments, got %d", c.Name, spec.MinArgs, spec.MaxArgs, len(c.Args))
		}
	}
	for i, arg := range c.Args {
		t := v.expr(arg)
		if i >= len(spec.Args) {
			continue
		}
		want := spec.Args[i]
		if want != TypeAny && t != want && t != TypeAny {
			v.errf(c.Line, "argument %d of %q must be %s, got %s", i+1, c.Name, want, t)
		}
	}
}

func (v *validator) isPersistent(name string) bool {
	for _, p := range v.persistent {
		if p == name {
			return true
		}
	}
	return false
}
