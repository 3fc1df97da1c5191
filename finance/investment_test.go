package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateInvestment_ConservativeOneYear(t *testing.T) {
	result, err := SimulateInvestment(InvestmentRequest{
		InitialAmount:       d("1000"),
		MonthlyContribution: d("100"),
		TimeHorizonYears:    d("1"),
		RiskProfile:         Conservative,
	})
	require.NoError(t, err)

	// 12 steps of total = total*(1+0.08/12) + 100 give 2327.99...
	assert.Equal(t, int64(12), result.Months)
	assertDecimal(t, "2328", result.ProjectedValue)
	assert.True(t, result.FinalAmount.GreaterThan(d("2327.99")) && result.FinalAmount.LessThan(d("2328")),
		"final amount %s", result.FinalAmount)
	assertDecimal(t, "2200", result.TotalInvested)
	assertDecimal(t, "128", result.TotalReturn)
	assertDecimal(t, "5.82", result.ReturnPercentage)
	assertDecimal(t, "0.67", result.MonthlyReturn)
	assertDecimal(t, "0.08", result.AnnualReturn)
	assertDecimal(t, "0.02", result.Volatility)

	assert.Equal(t, []string{
		"For short horizons, prefer low-risk instruments such as government bonds and bank deposits.",
		"Consider diversifying with inflation-linked bonds and mid-sized bank deposits for better yield.",
	}, result.Recommendations)
}

func TestSimulateInvestment_ZeroHorizonKeepsInitialAmount(t *testing.T) {
	result, err := SimulateInvestment(InvestmentRequest{
		InitialAmount:       d("1234.56"),
		MonthlyContribution: decimal.Zero,
		TimeHorizonYears:    decimal.Zero,
		RiskProfile:         Aggressive,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.Months)
	assertDecimal(t, "1234.56", result.FinalAmount)
	assertDecimal(t, "1235", result.ProjectedValue)
	assertDecimal(t, "0", result.ReturnPercentage)
}

func TestSimulateInvestment_NothingInvested(t *testing.T) {
	result, err := SimulateInvestment(InvestmentRequest{
		InitialAmount:       decimal.Zero,
		MonthlyContribution: decimal.Zero,
		TimeHorizonYears:    d("5"),
		RiskProfile:         Moderate,
	})
	require.NoError(t, err)

	assertDecimal(t, "0", result.ProjectedValue)
	assertDecimal(t, "0", result.ReturnPercentage)
}

func TestSimulateInvestment_ModerateTenYears(t *testing.T) {
	result, err := SimulateInvestment(InvestmentRequest{
		InitialAmount:       d("10000"),
		MonthlyContribution: d("500"),
		TimeHorizonYears:    d("10"),
		RiskProfile:         Moderate,
	})
	require.NoError(t, err)

	assertDecimal(t, "148023", result.ProjectedValue)
	assertDecimal(t, "70000", result.TotalInvested)
	assertDecimal(t, "1", result.MonthlyReturn)
	// 10 years is neither short nor long, and moderate has no advice of its own
	assert.Empty(t, result.Recommendations)
}

func TestSimulateInvestment_AggressiveLumpSum(t *testing.T) {
	result, err := SimulateInvestment(InvestmentRequest{
		InitialAmount:       d("5000"),
		MonthlyContribution: decimal.Zero,
		TimeHorizonYears:    d("2"),
		RiskProfile:         Aggressive,
	})
	require.NoError(t, err)

	assertDecimal(t, "6737", result.ProjectedValue)
	assertDecimal(t, "1737", result.TotalReturn)
	assertDecimal(t, "1.25", result.MonthlyReturn)
	assert.Empty(t, result.Recommendations)
}

func TestSimulateInvestment_LongHorizonRecommendation(t *testing.T) {
	result, err := SimulateInvestment(InvestmentRequest{
		InitialAmount:       d("100"),
		MonthlyContribution: d("100"),
		TimeHorizonYears:    d("20"),
		RiskProfile:         Conservative,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"For long horizons, consider increasing your exposure to stocks and equity funds.",
		"Consider diversifying with inflation-linked bonds and mid-sized bank deposits for better yield.",
	}, result.Recommendations)
}

func TestSimulateInvestment_FractionalHorizonFloorsMonths(t *testing.T) {
	for years, months := range map[string]int64{"1.5": 18, "1.26": 15, "0.05": 0} {
		result, err := SimulateInvestment(InvestmentRequest{
			InitialAmount:       d("100"),
			MonthlyContribution: d("10"),
			TimeHorizonYears:    d(years),
			RiskProfile:         Moderate,
		})
		require.NoError(t, err)
		assert.Equal(t, months, result.Months, "years %s", years)
		assertDecimal(t, d("100").Add(d("10").Mul(decimal.NewFromInt(months))).String(), result.TotalInvested)
	}
}

func TestSimulateInvestment_InvalidInput(t *testing.T) {
	valid := InvestmentRequest{
		InitialAmount:       d("100"),
		MonthlyContribution: d("10"),
		TimeHorizonYears:    d("3"),
		RiskProfile:         Moderate,
	}

	req := valid
	req.InitialAmount = d("-1")
	_, err := SimulateInvestment(req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = valid
	req.MonthlyContribution = d("-10")
	_, err = SimulateInvestment(req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = valid
	req.TimeHorizonYears = d("-1")
	_, err = SimulateInvestment(req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = valid
	req.TimeHorizonYears = d("101")
	_, err = SimulateInvestment(req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = valid
	req.RiskProfile = "yolo"
	_, err = SimulateInvestment(req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSimulateInvestment_Idempotent(t *testing.T) {
	req := InvestmentRequest{
		InitialAmount:       d("2500"),
		MonthlyContribution: d("333.33"),
		TimeHorizonYears:    d("7"),
		RiskProfile:         Aggressive,
	}

	first, err := SimulateInvestment(req)
	require.NoError(t, err)
	second, err := SimulateInvestment(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseRiskProfile(t *testing.T) {
	cases := map[string]RiskProfile{
		"conservative": Conservative,
		" Conservador": Conservative,
		"MODERATE":     Moderate,
		"moderado":     Moderate,
		"aggressive":   Aggressive,
		"arrojado":     Aggressive,
	}
	for in, want := range cases {
		got, err := ParseRiskProfile(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRiskProfile("reckless")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
