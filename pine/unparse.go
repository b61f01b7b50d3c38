package pine

import (
	"fmt"
	"strconv"
	"strings"
)

// Unparse renders a strategy tree back to canonical source text. Parsing the
// result yields a tree structurally equal to the original; the round trip is
// the contract that serialization loses nothing.
func Unparse(s *Strategy) string {
	var sb strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&sb, "strategy(%q)\n", s.Title)
	}
	for _, in := range s.Inputs {
		fmt.Fprintf(&sb, "input %s = %s\n", in.Name, unparseExpr(in.Default))
	}
	for _, vd := range s.Vars {
		fmt.Fprintf(&sb, "var %s = %s\n", vd.Name, unparseExpr(vd.Init))
	}
	for _, st := range s.Body {
		unparseStmt(&sb, st, 0)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("    ", depth))
}

func unparseStmt(sb *strings.Builder, st Stmt, depth int) {
	switch s := st.(type) {
	case *Assign:
		indent(sb, depth)
		fmt.Fprintf(sb, "%s = %s\n", s.Name, unparseExpr(s.X))
	case *Call:
		indent(sb, depth)
		sb.WriteString(unparseExpr(s))
		sb.WriteString("\n")
	case *If:
		indent(sb, depth)
		unparseIf(sb, s, depth)
	case *Block:
		for _, inner := range s.Stmts {
			unparseStmt(sb, inner, depth)
		}
	}
}

func unparseIf(sb *strings.Builder, s *If, depth int) {
	fmt.Fprintf(sb, "if %s {\n", unparseExpr(s.Cond))
	for _, inner := range s.Then.Stmts {
		unparseStmt(sb, inner, depth+1)
	}
	indent(sb, depth)
	sb.WriteString("}")
	switch e := s.Else.(type) {
	case nil:
		sb.WriteString("\n")
	case *If:
		sb.WriteString(" else ")
		unparseIf(sb, e, depth)
	case *Block:
		sb.WriteString(" else {\n")
		for _, inner := range e.Stmts {
			unparseStmt(sb, inner, depth+1)
		}
		indent(sb, depth)
		sb.WriteString("}\n")
	}
}

// operator precedence for minimal parenthesization
var precedence = map[string]int{
	"or":  1,
	"and": 2,
	"==":  4, "!=": 4, "<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func unparseExpr(e Expr) string {
	switch x := e.(type) {
	case *Literal:
		switch x.Kind {
		case LitNum:
			return strconv.FormatFloat(x.Num, 'g', -1, 64)
		case LitBool:
			if x.Bool {
				return "true"
			}
			return "false"
		case LitStr:
			return strconv.Quote(x.Str)
		}
		return "na"
	case *VarRef:
		return x.Name
	case *HistoryRef:
		return fmt.Sprintf("%s[%s]", x.X.Name, unparseExpr(x.Offset))
	case *UnaryOp:
		operand := unparseExpr(x.X)
		if needsParens(x.X, 7) {
			operand = "(" + operand + ")"
		}
		if x.Op == "not" {
			return "not " + operand
		}
		return x.Op + operand
	case *BinaryOp:
		prec := precedence[x.Op]
		lhs := unparseExpr(x.X)
		if needsParens(x.X, prec) {
			lhs = "(" + lhs + ")"
		}
		rhs := unparseExpr(x.Y)
		// right operand parenthesized at equal precedence to keep
		// left associativity through the round trip
		if needsParens(x.Y, prec+1) {
			rhs = "(" + rhs + ")"
		}
		return lhs + " " + x.Op + " " + rhs
	case *Call:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = unparseExpr(a)
		}
		return x.Name + "(" + strings.Join(args, ", ") + ")"
	}
	return ""
}

func needsParens(e Expr, parentPrec int) bool {
	if b, ok := e.(*BinaryOp); ok {
		return precedence[b.Op] < parentPrec
	}
	return false
}

// Dump renders the tree in an indented structural form, one node per line.
// The output carries no source positions, which makes it a convenient
// fingerprint for structural equality.
func Dump(s *Strategy) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Strategy(%q)\n", s.Title)
	for _, in := range s.Inputs {
		fmt.Fprintf(&sb, "  Input(%s = %s)\n", in.Name, unparseExpr(in.Default))
	}
	for _, vd := range s.Vars {
		fmt.Fprintf(&sb, "  Var(%s = %s)\n", vd.Name, unparseExpr(vd.Init))
	}
	for _, st := range s.Body {
		dumpNode(&sb, st, 1)
	}
	return sb.String()
}

func dumpNode(sb *strings.Builder, n Node, depth int) {
	pad := strings.Repeat("  ", depth)
	switch x := n.(type) {
	case *Literal:
		fmt.Fprintf(sb, "%sLiteral(%s)\n", pad, unparseExpr(x))
	case *VarRef:
		fmt.Fprintf(sb, "%sVarRef(%s)\n", pad, x.Name)
	case *HistoryRef:
		fmt.Fprintf(sb, "%sHistoryRef(%s)\n", pad, x.X.Name)
		dumpNode(sb, x.Offset, depth+1)
	case *UnaryOp:
		fmt.Fprintf(sb, "%sUnaryOp(%s)\n", pad, x.Op)
		dumpNode(sb, x.X, depth+1)
	case *BinaryOp:
		fmt.Fprintf(sb, "%sBinaryOp(%s)\n", pad, x.Op)
		dumpNode(sb, x.X, depth+1)
		dumpNode(sb, x.Y, depth+1)
	case *Call:
		fmt.Fprintf(sb, "%sCall(%s)\n", pad, x.Name)
		for _, a := range x.Args {
			dumpNode(sb, a, depth+1)
		}
	case *Assign:
		fmt.Fprintf(sb, "%sAssign(%s)\n", pad, x.Name)
		dumpNode(sb, x.X, depth+1)
	case *If:
		fmt.Fprintf(sb, "%sIf\n", pad)
		dumpNode(sb, x.Cond, depth+1)
		dumpNode(sb, x.Then, depth+1)
		if x.Else != nil {
			fmt.Fprintf(sb, "%sElse\n", pad)
			dumpNode(sb, x.Else, depth+1)
		}
	case *Block:
		fmt.Fprintf(sb, "%sBlock\n", pad)
		for _, st := range x.Stmts {
			dumpNode(sb, st, depth+1)
		}
	}
}
