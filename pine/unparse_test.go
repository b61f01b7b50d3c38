package pine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoundry/pinetester/pine"
)

var roundTripScripts = []string{
	crossScript,
	`
strategy("Momentum")

if close > close[1] {
    enterlong("up bar")
} else {
    exitlong("down bar")
}
`,
	`
input n = 14
var level = na

r = rsi(close, n)
level = nz(level, 50)

if r < 30 and not (close < open) {
    enterlong("oversold")
} else if r > 70 or close > high[1] {
    exitlong()
}
`,
	"x = -close * (volume + 1) % 7\n",
}

// parse -> unparse -> parse must land on a structurally equal tree
func TestRoundTrip(t *testing.T) {
	for _, src := range roundTripScripts {
		first, err := pine.Parse(src)
		require.NoError(t, err)

		second, err := pine.Parse(pine.Unparse(first))
		require.NoError(t, err, "unparsed source must reparse:\n%s", pine.Unparse(first))

		assert.Equal(t, pine.Dump(first), pine.Dump(second))
		assert.Equal(t, pine.Unparse(first), pine.Unparse(second))
	}
}

func TestUnparseCanonicalForm(t *testing.T) {
	strat, err := pine.Parse(`
strategy("Canon")
input   n=5


x=sma( close , n )
if x>close{enterlong( "sig" )}
`)
	require.NoError(t, err)

	want := `strategy("Canon")
input n = 5
x = sma(close, n)
if x > close {
    enterlong("sig")
}
`
	assert.Equal(t, want, pine.Unparse(strat))
}

func TestDumpOmitsPositions(t *testing.T) {
	a, err := pine.Parse("x = close + 1")
	require.NoError(t, err)
	b, err := pine.Parse("\n\n\nx = close + 1")
	require.NoError(t, err)

	assert.Equal(t, pine.Dump(a), pine.Dump(b))
}
