package backtest_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantfoundry/pinetester/backtest"
)

func TestValueArithmetic(t *testing.T) {
	a := backtest.NumVal(10)
	b := backtest.NumVal(4)

	assert.Equal(t, 14.0, a.Add(b).Num)
	assert.Equal(t, 6.0, a.Sub(b).Num)
	assert.Equal(t, 40.0, a.Mul(b).Num)
	assert.Equal(t, 2.5, a.Div(b).Num)
	assert.Equal(t, 2.0, a.Mod(b).Num)
	assert.Equal(t, -10.0, a.Neg().Num)
}

func TestValueDivisionByZeroIsNa(t *testing.T) {
	a := backtest.NumVal(10)
	zero := backtest.NumVal(0)

	assert.True(t, a.Div(zero).IsNa())
	assert.True(t, a.Mod(zero).IsNa())
}

func TestValueNaPropagatesThroughArithmetic(t *testing.T) {
	a := backtest.NumVal(10)

	assert.True(t, a.Add(backtest.Na).IsNa())
	assert.True(t, backtest.Na.Sub(a).IsNa())
	assert.True(t, backtest.Na.Mul(backtest.Na).IsNa())
	assert.True(t, backtest.Na.Neg().IsNa())
}

func TestValueNonFiniteCollapsesToNa(t *testing.T) {
	assert.True(t, backtest.NumVal(math.NaN()).IsNa())
	assert.True(t, backtest.NumVal(math.Inf(1)).IsNa())
	assert.True(t, backtest.NumVal(math.MaxFloat64).Mul(backtest.NumVal(2)).IsNa())
}

func TestValueComparisonWithNaIsFalse(t *testing.T) {
	a := backtest.NumVal(10)

	for _, op := range []string{"==", "!=", "<", "<=", ">", ">="} {
		assert.False(t, a.Compare(op, backtest.Na).Truthy(), "op %s", op)
		assert.False(t, backtest.Na.Compare(op, a).Truthy(), "op %s", op)
	}
}

func TestValueComparison(t *testing.T) {
	a := backtest.NumVal(10)
	b := backtest.NumVal(4)

	assert.True(t, a.Compare(">", b).Truthy())
	assert.False(t, a.Compare("<", b).Truthy())
	assert.True(t, a.Compare("!=", b).Truthy())
	assert.True(t, backtest.StrVal("x").Compare("==", backtest.StrVal("x")).Truthy())
	assert.False(t, a.Compare("==", backtest.StrVal("10")).Truthy())
}

func TestValueTruthy(t *testing.T) {
	assert.True(t, backtest.BoolVal(true).Truthy())
	assert.False(t, backtest.BoolVal(false).Truthy())
	assert.False(t, backtest.Na.Truthy())
	assert.False(t, backtest.NumVal(1).Truthy())
	assert.False(t, backtest.StrVal("true").Truthy())
}
