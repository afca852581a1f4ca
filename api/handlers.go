package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/game"
	"github.com/pthm-cable/hawkdove/payoff"
	"github.com/pthm-cable/hawkdove/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := config.Presets()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error())
		return
	}
	out := make([]PresetInfo, len(presets))
	for i, p := range presets {
		out[i] = PresetInfo{Name: p.Name, Description: p.Description}
	}
	s.writeJSON(w, http.StatusOK, out)
}

// POST /api/v1/equilibrium
func (s *Server) handleEquilibrium(w http.ResponseWriter, r *http.Request) {
	var req EquilibriumRequest
	if !s.decode(w, r, &req) {
		return
	}

	var model *payoff.Model
	if req.MidFood != nil && req.FightCost != nil {
		model = payoff.New(*req.MidFood, *req.FightCost)
	} else {
		cfg, err := req.build()
		if err != nil {
			s.writeConfigError(w, r, err)
			return
		}
		model = payoff.FromConfig(cfg)
	}

	resp := EquilibriumResponse{
		MidFood:   model.MidFood(),
		FightCost: model.FightCost(),
		Matrix:    model.Matrix(),
		Dominant:  model.StrongDominantEquilibria(),
	}
	eq, err := model.MixedEquilibrium()
	if err != nil {
		resp.Error = err.Error()
	} else {
		share := eq.HawkShare()
		resp.Equilibrium = &eq
		resp.HawkShare = &share
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// POST /api/v1/runs
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !s.decode(w, r, &req) {
		return
	}
	cfg, err := req.build()
	if err != nil {
		s.writeConfigError(w, r, err)
		return
	}
	if cfg.Simulation.Rounds > s.limits.MaxRounds {
		s.writeFieldError(w, r, http.StatusUnprocessableEntity, "simulation.rounds",
			fmt.Sprintf("at most %d rounds per request", s.limits.MaxRounds))
		return
	}
	if cfg.Derived.StartingPopulation > s.limits.MaxPopulation {
		s.writeFieldError(w, r, http.StatusUnprocessableEntity, "population",
			fmt.Sprintf("at most %d starting agents per request", s.limits.MaxPopulation))
		return
	}

	sim, err := game.New(cfg, game.Options{
		Seed:          req.Seed,
		Logger:        s.logger,
		MaxPopulation: s.limits.MaxPopulation,
	})
	if err != nil {
		s.writeConfigError(w, r, err)
		return
	}
	defer sim.Close()

	ctx, cancel := context.WithTimeout(r.Context(), s.limits.RunTimeout)
	defer cancel()
	if err := sim.Run(ctx); err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeTimeout, "run did not finish: "+err.Error())
		return
	}

	resp := RunResponse{Report: sim.Report()}
	if s.store != nil {
		run, err := s.store.Save(r.Context(), store.Record{
			Preset:  req.Preset,
			Config:  cfg,
			Summary: resp.Report.Summary,
			Report:  resp.Report,
			History: sim.History(),
		})
		if err != nil {
			s.logger.Error("archiving run", "error", err)
			s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to archive run")
			return
		}
		resp.ID = &run.ID
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

// GET /api/v1/runs?limit=N
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeFieldError(w, r, http.StatusBadRequest, "limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing runs", "error", err)
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// GET /api/v1/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// GET /api/v1/runs/{id}/rounds
func (s *Server) handleGetRounds(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	history, err := s.store.Rounds(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

// build layers defaults, preset and inline overrides.
func (c ConfigRequest) build() (*config.Config, error) {
	cfg, err := config.LoadWithPreset(c.Preset, "")
	if err != nil {
		return nil, err
	}
	if len(c.Config) > 0 {
		if err := json.Unmarshal(c.Config, cfg); err != nil {
			return nil, fmt.Errorf("%w: config: %v", config.ErrInvalidConfig, err)
		}
		cfg.ComputeDerived()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// writeConfigError reports a rejected configuration, naming the first bad
// field when there is one.
func (s *Server) writeConfigError(w http.ResponseWriter, r *http.Request, err error) {
	var field string
	var cerr *config.ConfigError
	if errors.As(err, &cerr) {
		field = cerr.Field
	}
	s.writeFieldError(w, r, http.StatusUnprocessableEntity, field, err.Error())
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, err.Error())
		return
	}
	s.logger.Error("reading archive", "error", err)
	s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to read archive")
}

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeUnavailable, "run archive is not configured")
		return false
	}
	return true
}

func (s *Server) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeFieldError(w, r, http.StatusBadRequest, "id", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
