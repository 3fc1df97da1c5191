package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ValidJSON(t *testing.T) {
	var in BudgetInput
	require.NoError(t, Decode([]byte(`{"income": 5000, "expenses": [{"category": "food", "amount": "12.50"}]}`), &in))
	assert.Equal(t, "5000", in.Income.String())
	require.Len(t, in.Expenses, 1)
	assert.Equal(t, "12.5", in.Expenses[0].Amount.String())
}

func TestDecode_RepairsTrailingComma(t *testing.T) {
	var in BudgetInput
	require.NoError(t, Decode([]byte(`{"income": 5000, "expenses": [{"category": "rent", "amount": 2000},],}`), &in))
	assert.Equal(t, "5000", in.Income.String())
	require.Len(t, in.Expenses, 1)
	assert.Equal(t, "rent", in.Expenses[0].Category)
}

func TestDecode_UnquotedKeys(t *testing.T) {
	var in InvestmentInput
	doc := `{
  initialAmount: 1000
  monthlyContribution: 100
  timeHorizon: 1
  riskProfile: conservative
}`
	require.NoError(t, Decode([]byte(doc), &in))
	assert.Equal(t, "1000", in.InitialAmount.String())
	assert.Equal(t, "conservative", in.RiskProfile)
}

func TestDecode_EmptyInput(t *testing.T) {
	var in PlanInput
	require.NoError(t, Decode(nil, &in))
	assert.Zero(t, in.Age)
}

func TestDecode_WrongTypeIsNotRepaired(t *testing.T) {
	var in BudgetInput
	err := Decode([]byte(`{"income": "lots"}`), &in)
	assert.ErrorContains(t, err, "invalid input")
}

func TestHJSONToJSON(t *testing.T) {
	out, err := HJSONToJSON([]byte("{\n  # comment\n  a: 1\n  b: two\n}"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":"two"}`, string(out))
}
