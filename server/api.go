package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

// maxRequestBody caps REST request bodies.
const maxRequestBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Definitions())
}

// handleExecuteTool runs one tool. The body is a core.ExecuteRequest; the
// tool name comes from the path.
func (s *Server) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req core.ExecuteRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, core.ExecuteResponse{Error: "failed to read request"})
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, core.ExecuteResponse{Error: "invalid request: " + err.Error()})
			return
		}
	}
	req.Tool = name
	req.UserID = UserID(r.Context())

	entry := s.log.WithFields(logrus.Fields{"tool": name, "user_id": req.UserID})
	if _, ok := s.registry.Get(name); !ok {
		writeJSON(w, http.StatusNotFound, core.ExecuteResponse{Error: "unknown tool: " + name})
		return
	}

	resp, err := s.executor.Execute(r.Context(), &req)
	if err != nil {
		entry.WithError(err).Error("Tool execution failed")
		writeJSON(w, http.StatusInternalServerError, core.ExecuteResponse{Error: err.Error()})
		return
	}
	if !resp.Success {
		entry.WithField("error", resp.Error).Info("Tool rejected input")
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	entry.Debug("Tool executed over HTTP")
	writeJSON(w, http.StatusOK, resp)
}

// handleRates returns the current snapshot. Optional query parameters:
// currencies (comma separated) and amount.
func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	in, err := ratesQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tools.NewRatesReport(s.config.Rates.Current(r.Context()), in))
}

func (s *Server) handleRefreshRates(w http.ResponseWriter, r *http.Request) {
	snap, err := s.config.Rates.Refresh(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tools.NewRatesReport(snap, tools.RatesInput{}))
}

func ratesQuery(r *http.Request) (tools.RatesInput, error) {
	var in tools.RatesInput
	q := r.URL.Query()
	if c := q.Get("currencies"); c != "" {
		in.Currencies = strings.Split(c, ",")
	}
	if a := q.Get("amount"); a != "" {
		amount, err := decimal.NewFromString(a)
		if err != nil {
			return in, errors.New("amount must be a number")
		}
		if amount.IsNegative() {
			return in, errors.New("amount must not be negative")
		}
		in.Amount = &amount
	}
	return in, nil
}
