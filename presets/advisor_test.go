package presets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

func TestAdvisor_NamesEveryTool(t *testing.T) {
	p := Advisor()
	for _, name := range p.Tools {
		assert.Contains(t, p.SystemPrompt, name)
	}
}

func TestPreset_Select(t *testing.T) {
	extra := tools.New("send_money").HandlerFunc(nil).Build()
	available := append(tools.FinancialTools(), extra)

	selected := Advisor().Select(available)
	names := make([]string, len(selected))
	for i, tool := range selected {
		names[i] = tool.Name()
	}
	assert.Len(t, names, 4)
	assert.NotContains(t, names, "send_money")

	only := Preset{Tools: []string{tools.DebtManagerTool}}.Select(available)
	assert.Equal(t, []core.Tool{available[2]}, only)
}

func TestPreset_WithPrompt(t *testing.T) {
	assert.Equal(t, AdvisorSystemPrompt, Advisor().WithPrompt("").SystemPrompt)
	assert.Equal(t, "be brief", Advisor().WithPrompt("be brief").SystemPrompt)
}

func TestPreset_WithLimits(t *testing.T) {
	p := Advisor().WithLimits(0, 0)
	assert.Equal(t, "advisor", p.Name)
	assert.Equal(t, 8, p.MaxTurns)
	assert.Equal(t, int64(4096), p.MaxTokens)

	p = Advisor().WithLimits(3, 1024)
	assert.Equal(t, 3, p.MaxTurns)
	assert.Equal(t, int64(1024), p.MaxTokens)
}
