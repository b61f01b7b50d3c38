package backtest

import (
	"math"

	"github.com/quantfoundry/pinetester/pine"
)

// Indicator built-ins keep per-call-site memory so that each bar costs O(1)
// amortized work regardless of the look-back window. Rescanning the window
// per indicator per bar is the dominant cost at scale, so every state below
// advances incrementally: rolling sums, recurrences, and monotonic deques.
// Until a window has filled, every indicator answers Na, which the
// interpreter lets decay into a Hold.

type smaState struct {
	window int
	ring   []float64
	pos    int
	count  int
	sum    float64
}

func (s *smaState) update(x float64) Value {
	if s.count >= s.window {
		s.sum -= s.ring[s.pos]
	}
	s.ring[s.pos] = x
	s.pos = (s.pos + 1) % s.window
	s.sum += x
	if s.count < s.window {
		s.count++
	}
	if s.count < s.window {
		return Na
	}
	return NumVal(s.sum / float64(s.window))
}

type emaState struct {
	window int
	count  int
	sum    float64
	val    float64
}

// seeded with the simple average of the first window inputs, then the
// standard 2/(n+1) recurrence
func (s *emaState) update(x float64) Value {
	s.count++
	if s.count <= s.window {
		s.sum += x
		if s.count < s.window {
			return Na
		}
		s.val = s.sum / float64(s.window)
		return NumVal(s.val)
	}
	k := 2.0 / float64(s.window+1)
	s.val += k * (x - s.val)
	return NumVal(s.val)
}

type rsiState struct {
	window  int
	prev    float64
	hasPrev bool
	changes int
	avgGain float64
	avgLoss float64
}

// Wilder smoothing, the same recurrence TA-Lib uses
func (s *rsiState) update(x float64) Value {
	if !s.hasPrev {
		s.prev = x
		s.hasPrev = true
		return Na
	}
	change := x - s.prev
	s.prev = x
	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	s.changes++
	n := float64(s.window)
	switch {
	case s.changes < s.window:
		s.avgGain += gain
		s.avgLoss += loss
		return Na
	case s.changes == s.window:
		s.avgGain = (s.avgGain + gain) / n
		s.avgLoss = (s.avgLoss + loss) / n
	default:
		s.avgGain = (s.avgGain*(n-1) + gain) / n
		s.avgLoss = (s.avgLoss*(n-1) + loss) / n
	}

	denom := s.avgGain + s.avgLoss
	if denom == 0 {
		return NumVal(0)
	}
	return NumVal(100 * s.avgGain / denom)
}

type extremaState struct {
	window int
	max    bool
	seq    int
	idx    []int
	vals   []float64
}

// monotonic deque: O(1) amortized highest/lowest over a sliding window
func (s *extremaState) update(x float64) Value {
	for len(s.vals) > 0 {
		last := s.vals[len(s.vals)-1]
		if (s.max && last <= x) || (!s.max && last >= x) {
			s.vals = s.vals[:len(s.vals)-1]
			s.idx = s.idx[:len(s.idx)-1]
			continue
		}
		break
	}
	s.vals = append(s.vals, x)
	s.idx = append(s.idx, s.seq)
	s.seq++
	if s.idx[0] <= s.seq-1-s.window {
		s.vals = s.vals[1:]
		s.idx = s.idx[1:]
	}
	if s.seq < s.window {
		return Na
	}
	return NumVal(s.vals[0])
}

type crossState struct {
	prevDiff float64
	has      bool
}

// crossover compares the sign of (a-b) between the previous and the current
// bar. An Na operand clears the memory so a stale sign can never fire a
// signal after a gap.
func (s *crossState) update(a, b Value, up bool) Value {
	if !numeric(a, b) {
		s.has = false
		return BoolVal(false)
	}
	diff := a.Num - b.Num
	crossed := false
	if s.has {
		if up {
			crossed = s.prevDiff <= 0 && diff > 0
		} else {
			crossed = s.prevDiff >= 0 && diff < 0
		}
	}
	s.prevDiff = diff
	s.has = true
	return BoolVal(crossed)
}

type changeState struct {
	prev float64
	has  bool
}

func (s *changeState) update(x float64) Value {
	var out Value = Na
	if s.has {
		out = NumVal(x - s.prev)
	}
	s.prev = x
	s.has = true
	return out
}

// windowArg extracts a positive integer window from an evaluated argument.
func windowArg(v Value) (int, bool) {
	if v.Kind != KindNum {
		return 0, false
	}
	n := int(v.Num)
	if n < 1 || float64(n) != v.Num {
		return 0, false
	}
	return n, true
}

// evalBuiltin dispatches one non-signal built-in call. Stateful indicators
// key their memory on the call ID; feeding them happens exactly once per
// executed statement per bar, in document order.
func (c *Context) evalBuiltin(call *pine.Call, args []Value) Value {
	switch call.Name {
	case "abs":
		if args[0].Kind != KindNum {
			return Na
		}
		return NumVal(math.Abs(args[0].Num))
	case "max":
		if !numeric(args[0], args[1]) {
			return Na
		}
		return NumVal(math.Max(args[0].Num, args[1].Num))
	case "min":
		if !numeric(args[0], args[1]) {
			return Na
		}
		return NumVal(math.Min(args[0].Num, args[1].Num))
	case "nz":
		if !args[0].IsNa() {
			return args[0]
		}
		if len(args) == 2 {
			return args[1]
		}
		return NumVal(0)
	case "crossover", "crossunder":
		st := c.callState(call.ID, func() interface{} { return &crossState{} }).(*crossState)
		return st.update(args[0], args[1], call.Name == "crossover")
	case "change":
		if args[0].Kind != KindNum {
			return Na
		}
		st := c.callState(call.ID, func() interface{} { return &changeState{} }).(*changeState)
		return st.update(args[0].Num)
	}

	// remaining built-ins are windowed indicators over a numeric input
	window, ok := windowArg(args[1])
	if !ok {
		return Na
	}
	if args[0].Kind != KindNum {
		return Na
	}
	x := args[0].Num

	switch call.Name {
	case "sma":
		st := c.callState(call.ID, func() interface{} {
			return &smaState{window: window, ring: make([]float64, window)}
		}).(*smaState)
		return st.update(x)
	case "ema":
		st := c.callState(call.ID, func() interface{} {
			return &emaState{window: window}
		}).(*emaState)
		return st.update(x)
	case "rsi":
		st := c.callState(call.ID, func() interface{} {
			return &rsiState{window: window}
		}).(*rsiState)
		return st.update(x)
	case "highest":
		st := c.callState(call.ID, func() interface{} {
			return &extremaState{window: window, max: true}
		}).(*extremaState)
		return st.update(x)
	case "lowest":
		st := c.callState(call.ID, func() interface{} {
			return &extremaState{window: window}
		}).(*extremaState)
		return st.update(x)
	}
	return Na
}
