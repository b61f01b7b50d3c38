package backtest

import (
	"github.com/quantfoundry/pinetester/pine"
)

// Context owns every piece of interpreter-visible mutable state for one
// run: the bar cursor over the series, variable bindings, and the per-call-
// site indicator memory carried bar to bar. A Context belongs to exactly one
// run and is never shared.
type Context struct {
	series   *Series
	strategy *pine.Strategy

	index  int
	locals map[string]Value

	inputs  map[string]Value
	persist map[string]Value
	// committed end-of-bar snapshots of the persistent variables;
	// varHistory[name][i] is the value name held when bar i closed
	varHistory map[string][]Value

	// indicator state indexed by call ID
	calls []interface{}
}

// NewContext builds the evaluation context for one strategy over one series.
// Inputs take their declared defaults and persistent variables their
// declared initial values.
func NewContext(series *Series, strategy *pine.Strategy) *Context {
	c := &Context{
		series:     series,
		strategy:   strategy,
		index:      -1,
		locals:     map[string]Value{},
		inputs:     map[string]Value{},
		persist:    map[string]Value{},
		varHistory: map[string][]Value{},
		calls:      make([]interface{}, strategy.NumCalls()),
	}
	for _, in := range strategy.Inputs {
		c.inputs[in.Name] = litValue(in.Default)
	}
	for _, vd := range strategy.Vars {
		c.persist[vd.Name] = litValue(vd.Init)
		c.varHistory[vd.Name] = nil
	}
	return c
}

func litValue(l *pine.Literal) Value {
	switch l.Kind {
	case pine.LitNum:
		return NumVal(l.Num)
	case pine.LitBool:
		return BoolVal(l.Bool)
	case pine.LitStr:
		return StrVal(l.Str)
	}
	return Na
}

// SetInput overrides a declared input parameter before the run starts.
func (c *Context) SetInput(name string, v Value) {
	c.inputs[name] = v
}

// Advance moves the cursor to the next bar. The previous bar's persistent
// values are committed to history first, so that x[1] reads the value x
// held when the previous bar closed even after the current bar rewrites x.
// Per-bar locals are discarded. Returns false once the series is exhausted.
func (c *Context) Advance() bool {
	if c.index >= 0 {
		for name, v := range c.persist {
			c.varHistory[name] = append(c.varHistory[name], v)
		}
	}
	if c.index+1 >= c.series.Len() {
		return false
	}
	c.index++
	c.locals = map[string]Value{}
	return true
}

// Index returns the current bar index.
func (c *Context) Index() int { return c.index }

// Bar returns the current bar.
func (c *Context) Bar() Bar { return c.series.Bar(c.index) }

// barField reads one OHLCV field of the bar offset bars back. Reads past
// the start of the series are Na, never an error: early bars simply lack
// history.
func (c *Context) barField(name string, offset int) Value {
	i := c.index - offset
	if i < 0 || offset < 0 {
		return Na
	}
	bar := c.series.Bar(i)
	switch name {
	case "open":
		return NumVal(bar.Open)
	case "high":
		return NumVal(bar.High)
	case "low":
		return NumVal(bar.Low)
	case "close":
		return NumVal(bar.Close)
	case "volume":
		return NumVal(bar.Volume)
	}
	return Na
}

// Read resolves a name against locals, persistent variables, inputs, and
// the series fields, in that order.
func (c *Context) Read(name string) (Value, error) {
	if v, ok := c.locals[name]; ok {
		return v, nil
	}
	if v, ok := c.persist[name]; ok {
		return v, nil
	}
	if v, ok := c.inputs[name]; ok {
		return v, nil
	}
	if pine.SeriesFields[name] {
		return c.barField(name, 0), nil
	}
	return Na, &UndefinedVariableError{Name: name}
}

// ReadPrev resolves name as of offset bars ago. Series fields read the bar
// history; persistent variables read their committed snapshots. A current-
// bar write to a persistent variable is therefore invisible through
// ReadPrev until the next bar, which is the write-now/read-previous
// contract the interpreter exposes as x[n].
func (c *Context) ReadPrev(name string, offset int) (Value, error) {
	if offset == 0 {
		return c.Read(name)
	}
	if pine.SeriesFields[name] {
		return c.barField(name, offset), nil
	}
	if hist, ok := c.varHistory[name]; ok {
		i := c.index - offset
		if i < 0 || i >= len(hist) {
			return Na, nil
		}
		return hist[i], nil
	}
	if _, ok := c.inputs[name]; ok {
		// inputs are run constants
		return c.inputs[name], nil
	}
	if _, ok := c.locals[name]; ok {
		return Na, nil
	}
	return Na, &UndefinedVariableError{Name: name}
}

// Write binds a value: to the persistent slot when name was declared with
// var, otherwise to a per-bar local. The write is visible to later
// statements in the same bar immediately.
func (c *Context) Write(name string, v Value) {
	if _, ok := c.persist[name]; ok {
		c.persist[name] = v
		return
	}
	c.locals[name] = v
}

// callState returns the indicator memory for a call site, creating it with
// mk on first use.
func (c *Context) callState(id int, mk func() interface{}) interface{} {
	if c.calls[id] == nil {
		c.calls[id] = mk()
	}
	return c.calls[id]
}
