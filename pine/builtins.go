package pine

// Type is the coarse value type used by structural validation.
type Type int

// Validation types. TypeAny arises where a value may legally be na.
const (
	TypeNum Type = iota
	TypeBool
	TypeStr
	TypeAny
	TypeVoid
)

func (t Type) String() string {
	switch t {
	case TypeNum:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeStr:
		return "string"
	case TypeVoid:
		return "void"
	}
	return "any"
}

// BuiltinSpec describes the call surface of one built-in function.
type BuiltinSpec struct {
	MinArgs int
	MaxArgs int
	Args    []Type
	Result  Type
	// Signal built-ins emit trading intent and are only legal in
	// statement position.
	Signal bool
	// Stateful built-ins keep per-call-site memory across bars.
	Stateful bool
}

// Builtins is the full built-in function table shared by the validator and
// the interpreter.
var Builtins = map[string]BuiltinSpec{
	// stateful look-back indicators
	"sma":        {MinArgs: 2, MaxArgs: 2, Args: []Type{TypeNum, TypeNum}, Result: TypeNum, Stateful: true},
	"ema":        {MinArgs: 2, MaxArgs: 2, Args: []Type{TypeNum, TypeNum}, Result: TypeNum, Stateful: true},
	"rsi":        {MinArgs: 2, MaxArgs: 2, Args: []Type{TypeNum, TypeNum}, Result: TypeNum, Stateful: true},
	"highest":    {MinArgs: 2, MaxArgs: 2, Args: []Type{TypeNum, TypeNum}, Result: TypeNum, Stateful: true},
	"lowest":     {MinArgs: 2, MaxArgs: 2, Args: []Type{TypeNum, TypeNum}, Result: TypeNum, Stateful: true},
	"change":     {MinArgs: 1, MaxArgs: 1, Args: []Type{TypeNum}, Result: TypeNum, Stateful: true},
	"crossover":  {MinArgs: 2, MaxArgs: 2, Args: []Type{TypeNum, TypeNum}, Result: TypeBool, Stateful: true},
	"crossunder": {MinArgs: 2, MaxArgs: 2, Args: []Type{TypeNum, TypeNum}, Result: TypeBool, Stateful: true},
	// stateless helpers
	"abs": {MinArgs: 1, MaxArgs: 1, Args: []Type{TypeNum}, Result: TypeNum},
	"max": {MinArgs: 2, MaxArgs: 2, Args: []Type{TypeNum, TypeNum}, Result: TypeNum},
	"min": {MinArgs: 2, MaxArgs: 2, Args: []Type{TypeNum, TypeNum}, Result: TypeNum},
	"nz":  {MinArgs: 1, MaxArgs: 2, Args: []Type{TypeAny, TypeNum}, Result: TypeNum},
	// signal statements
	"enterlong":  {MinArgs: 0, MaxArgs: 1, Args: []Type{TypeStr}, Result: TypeVoid, Signal: true},
	"entershort": {MinArgs: 0, MaxArgs: 1, Args: []Type{TypeStr}, Result: TypeVoid, Signal: true},
	"exitlong":   {MinArgs: 0, MaxArgs: 1, Args: []Type{TypeStr}, Result: TypeVoid, Signal: true},
	"exitshort":  {MinArgs: 0, MaxArgs: 1, Args: []Type{TypeStr}, Result: TypeVoid, Signal: true},
}

// SeriesFields are the predeclared per-bar variables.
var SeriesFields = map[string]bool{
	"open":   true,
	"high":   true,
	"low":    true,
	"close":  true,
	"volume": true,
}
