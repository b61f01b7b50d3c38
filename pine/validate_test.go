package pine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoundry/pinetester/pine"
)

func validate(t *testing.T, src string) pine.ValidationErrors {
	t.Helper()
	strat, err := pine.Parse(src)
	require.NoError(t, err)
	return pine.Validate(strat)
}

func TestValidateCleanStrategy(t *testing.T) {
	assert.Nil(t, validate(t, crossScript))
}

func TestValidateUnresolvedVariable(t *testing.T) {
	errs := validate(t, "x = bogus + 1")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `unresolved variable "bogus"`)
}

func TestValidateUnknownFunction(t *testing.T) {
	errs := validate(t, "x = vwap(close, 5)")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "unknown function")
}

func TestValidateArity(t *testing.T) {
	errs := validate(t, "x = sma(close)")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "argument")
}

func TestValidateArgumentType(t *testing.T) {
	errs := validate(t, `x = sma(close, "ten")`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "must be number")
}

func TestValidateSignalInExpression(t *testing.T) {
	errs := validate(t, "x = enterlong() + 1")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Msg, "cannot be used inside an expression")
}

func TestValidateUselessStatementCall(t *testing.T) {
	errs := validate(t, "sma(close, 5)")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "no effect in statement position")
}

func TestValidateNonBoolCondition(t *testing.T) {
	errs := validate(t, `
if close + 1 {
    enterlong()
}
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "must be boolean")
}

func TestValidateAssignToSeriesField(t *testing.T) {
	errs := validate(t, "close = 10")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "series field")
}

func TestValidateHistoryOnLocal(t *testing.T) {
	errs := validate(t, `
x = close * 2
y = x[1]
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "history lookup")
}

func TestValidateHistoryOnPersistentVar(t *testing.T) {
	assert.Nil(t, validate(t, `
var x = 0
x = close * 2
y = x[1]
`))
}

func TestValidateDuplicateDeclaration(t *testing.T) {
	errs := validate(t, `
input n = 5
var n = 0
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "duplicate declaration")
}

func TestValidateCollectsEveryError(t *testing.T) {
	errs := validate(t, `
x = bogus1
y = bogus2
close = 1
`)
	assert.Len(t, errs, 3)
}
