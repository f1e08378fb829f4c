package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/haskel/optfox/internal/advisor"
	"github.com/haskel/optfox/internal/bench"
	"github.com/haskel/optfox/internal/store"
	"github.com/haskel/optfox/internal/toolchain"
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type StatusResponse struct {
	Strategy   string          `json:"strategy"`
	CPUPercent float64         `json:"cpu_percent"`
	MemPercent float64         `json:"mem_percent"`
	NumCPU     int             `json:"num_cpu"`
	Model      store.ModelInfo `json:"model"`
}

type EvaluateRequest struct {
	Source string `json:"source"`
}

type ContributeRequest struct {
	Source string `json:"source"`
	Name   string `json:"name"`
}

type ContributeResponse struct {
	Accepted    bool   `json:"accepted"`
	Name        string `json:"name"`
	DatasetSize int    `json:"dataset_size"`
	Strategy    string `json:"strategy"`
}

type RetrainResponse struct {
	Retrained   bool   `json:"retrained"`
	DatasetSize int    `json:"dataset_size"`
	Strategy    string `json:"strategy"`
}

type StatsResponse struct {
	Dataset  store.DatasetStats `json:"dataset"`
	Cached   int                `json:"cached_results"`
	Model    store.ModelInfo    `json:"model"`
	Strategy string             `json:"strategy"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	resp := InfoResponse{
		Name:    "optfox",
		Version: s.version,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Strategy: s.advisor.Strategy(),
		NumCPU:   runtime.NumCPU(),
		Model:    s.models.Info(),
	}

	if percents, err := cpu.PercentWithContext(r.Context(), 0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(r.Context()); err == nil {
		resp.MemPercent = vm.UsedPercent
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.advisor.Evaluate(r.Context(), req.Source)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req ContributeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.advisor.Contribute(r.Context(), req.Source, req.Name); err != nil {
		s.writeError(w, err)
		return
	}

	resp := ContributeResponse{
		Accepted:    true,
		Name:        req.Name,
		DatasetSize: s.dataset.Len(),
		Strategy:    s.advisor.Strategy(),
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetrain(w http.ResponseWriter, r *http.Request) {
	if err := s.advisor.Retrain(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	resp := RetrainResponse{
		Retrained:   true,
		DatasetSize: s.dataset.Len(),
		Strategy:    s.advisor.Strategy(),
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Dataset:  s.dataset.Stats(),
		Cached:   s.cache.Len(),
		Model:    s.models.Info(),
		Strategy: s.advisor.Strategy(),
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// writeError maps pipeline errors onto HTTP statuses. Invalid input is
// the client's fault, a failed compile is the submitted program's
// fault, and anything else is ours.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, advisor.ErrEmptySource), errors.Is(err, advisor.ErrInvalidName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, toolchain.ErrCompileFailed):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, bench.ErrBaselineUnusable), errors.Is(err, bench.ErrNoUsableTier):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		s.logger.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}
