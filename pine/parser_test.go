package pine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoundry/pinetester/pine"
)

const crossScript = `
strategy("SMA Cross")
input fast = 9
input slow = 21
var stopLevel = 0.0

fastMA = sma(close, fast)
slowMA = sma(close, slow)

if crossover(fastMA, slowMA) {
    enterlong("golden cross")
}
if crossunder(fastMA, slowMA) {
    exitlong("death cross")
}
`

func TestParseStrategy(t *testing.T) {
	strat, err := pine.Parse(crossScript)
	require.NoError(t, err)

	assert.Equal(t, "SMA Cross", strat.Title)
	require.Len(t, strat.Inputs, 2)
	assert.Equal(t, "fast", strat.Inputs[0].Name)
	assert.Equal(t, 9.0, strat.Inputs[0].Default.Num)
	require.Len(t, strat.Vars, 1)
	assert.Equal(t, "stopLevel", strat.Vars[0].Name)
	require.Len(t, strat.Body, 4)

	assign, ok := strat.Body[0].(*pine.Assign)
	require.True(t, ok)
	assert.Equal(t, "fastMA", assign.Name)

	ifStmt, ok := strat.Body[2].(*pine.If)
	require.True(t, ok)
	cond, ok := ifStmt.Cond.(*pine.Call)
	require.True(t, ok)
	assert.Equal(t, "crossover", cond.Name)

	sig, ok := ifStmt.Then.Stmts[0].(*pine.Call)
	require.True(t, ok)
	assert.Equal(t, "enterlong", sig.Name)
	require.Len(t, sig.Args, 1)
}

func TestParseCallIDsAreDense(t *testing.T) {
	strat, err := pine.Parse(crossScript)
	require.NoError(t, err)

	seen := map[int]bool{}
	pine.WalkStrategy(strat, func(n pine.Node) bool {
		if c, ok := n.(*pine.Call); ok {
			assert.False(t, seen[c.ID], "duplicate call id %d", c.ID)
			seen[c.ID] = true
		}
		return true
	})
	assert.Len(t, seen, strat.NumCalls())
	for id := 0; id < strat.NumCalls(); id++ {
		assert.True(t, seen[id], "missing call id %d", id)
	}
}

func TestParsePrecedence(t *testing.T) {
	strat, err := pine.Parse("x = 1 + 2 * 3 - 4 / 2")
	require.NoError(t, err)

	assert.Equal(t, "x = 1 + 2 * 3 - 4 / 2\n", pine.Unparse(strat))

	strat, err = pine.Parse("x = (1 + 2) * 3")
	require.NoError(t, err)
	assert.Equal(t, "x = (1 + 2) * 3\n", pine.Unparse(strat))
}

func TestParseHistoryRef(t *testing.T) {
	strat, err := pine.Parse("x = close[1] - close[2]")
	require.NoError(t, err)

	assign := strat.Body[0].(*pine.Assign)
	sub := assign.X.(*pine.BinaryOp)
	ref := sub.X.(*pine.HistoryRef)
	assert.Equal(t, "close", ref.X.Name)
	off := ref.Offset.(*pine.Literal)
	assert.Equal(t, 1.0, off.Num)
}

func TestParseElseIfChain(t *testing.T) {
	strat, err := pine.Parse(`
if close > open {
    enterlong()
} else if close < open {
    exitlong()
} else {
    x = 1
}
`)
	require.NoError(t, err)

	ifStmt := strat.Body[0].(*pine.If)
	elif, ok := ifStmt.Else.(*pine.If)
	require.True(t, ok)
	_, ok = elif.Else.(*pine.Block)
	assert.True(t, ok)
}

func TestParseNegativeLiteralDecl(t *testing.T) {
	strat, err := pine.Parse("input threshold = -80")
	require.NoError(t, err)
	assert.Equal(t, -80.0, strat.Inputs[0].Default.Num)
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"strategy(",
		"if close > open {",
		"input x",
		"x = ",
		"= 5",
		"x = close[",
		"x = 1 +* 2",
	} {
		_, err := pine.Parse(src)
		assert.Error(t, err, "script %q should not parse", src)
	}
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	strat, err := pine.Parse(`
// leading comment
strategy("Commented")

// another

x = close // trailing
`)
	require.NoError(t, err)
	assert.Equal(t, "Commented", strat.Title)
	require.Len(t, strat.Body, 1)
}
