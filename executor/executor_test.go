package executor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/engine"
	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

func TestHTTPExecutor_Execute(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq core.ExecuteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		_, _ = w.Write([]byte(`{"success":true,"data":{"savings":2000}}`))
	}))
	defer srv.Close()

	exec := NewHTTPExecutor(HTTPExecutorConfig{BaseURL: srv.URL + "/", Token: "tok"})
	resp, err := exec.Execute(context.Background(), &core.ExecuteRequest{
		UserID:    "u1",
		Tool:      tools.BudgetAnalyzerTool,
		Input:     json.RawMessage(`{"income":5000}`),
		RequestID: "r1",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/tools/budget_analyzer", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "u1", gotReq.UserID)
	assert.JSONEq(t, `{"income":5000}`, string(gotReq.Input))

	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"savings":2000}`, string(resp.Data))
}

func TestHTTPExecutor_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tools/enveloped":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"invalid input: income must be positive"}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	exec := NewHTTPExecutor(HTTPExecutorConfig{BaseURL: srv.URL})

	resp, err := exec.Execute(context.Background(), &core.ExecuteRequest{Tool: "enveloped"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid input: income must be positive", resp.Error)

	resp, err = exec.Execute(context.Background(), &core.ExecuteRequest{Tool: "other"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "HTTP 500: boom", resp.Error)
}

func TestHTTPExecutor_RawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`plain text`))
	}))
	defer srv.Close()

	resp, err := NewHTTPExecutor(HTTPExecutorConfig{BaseURL: srv.URL}).Execute(context.Background(), &core.ExecuteRequest{Tool: "x"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "plain text", string(resp.Data))
}

func TestHTTPExecutor_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewHTTPExecutor(HTTPExecutorConfig{BaseURL: srv.URL}).Execute(context.Background(), &core.ExecuteRequest{Tool: "x"})
	assert.ErrorContains(t, err, "request failed")
}

func TestLocalExecutor(t *testing.T) {
	registry := engine.NewToolRegistry()
	registry.RegisterAll(tools.FinancialTools()...)
	exec := NewLocalExecutor(registry)

	resp, err := exec.Execute(context.Background(), &core.ExecuteRequest{
		Tool:  tools.DebtManagerTool,
		Input: json.RawMessage(`{"debts":[{"name":"card","balance":1000,"interestRate":0,"minimumPayment":50}],"availableAmount":250}`),
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Error)

	var report tools.DebtReport
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	require.NotNil(t, report.AvalancheStrategy.EstimatedMonths)
	assert.Equal(t, int64(4), *report.AvalancheStrategy.EstimatedMonths)

	resp, err = exec.Execute(context.Background(), &core.ExecuteRequest{Tool: tools.BudgetAnalyzerTool, Input: json.RawMessage(`{"income":0}`)})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "invalid input")

	resp, err = exec.Execute(context.Background(), &core.ExecuteRequest{Tool: "send_money"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "unknown tool: send_money", resp.Error)
}

func TestRemoteToolsRoundTrip(t *testing.T) {
	registry := engine.NewToolRegistry()
	registry.RegisterAll(tools.FinancialTools()...)
	local := NewLocalExecutor(registry)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req core.ExecuteRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp, err := local.Execute(r.Context(), &req)
		assert.NoError(t, err)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	remote := tools.RemoteFinancialTools(NewHTTPExecutor(HTTPExecutorConfig{BaseURL: srv.URL}))
	var planner core.Tool
	for _, tool := range remote {
		if tool.Name() == tools.FinancialPlannerTool {
			planner = tool
		}
	}
	require.NotNil(t, planner)

	result, err := planner.Execute(context.Background(), &core.ToolParams{
		Input: json.RawMessage(`{"age":30,"income":10000,"currentSavings":0,"goals":[]}`),
	})
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)

	data, err := json.Marshal(result.Data)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"retirementNeeded":2400000`)
}
