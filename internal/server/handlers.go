package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cpu-sched/cpu-sched/internal/store"
	"github.com/cpu-sched/cpu-sched/sim"
	"github.com/cpu-sched/cpu-sched/sim/trace"
)

// ProcessRequest is the body of POST /sessions/{id}/processes.
type ProcessRequest struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Arrival  int64  `json:"arrival"`
	Burst    int64  `json:"burst"`
	Priority int    `json:"priority"`
}

// ConfigRequest is the body of PUT /sessions/{id}/config. Nil fields are left unchanged.
type ConfigRequest struct {
	Policy         *string `json:"policy,omitempty"`
	Quantum        *int    `json:"quantum,omitempty"`
	AgingEnabled   *bool   `json:"aging_enabled,omitempty"`
	AgingThreshold *int    `json:"aging_threshold,omitempty"`
}

// CreateSessionRequest is the body of POST /sessions. The body is optional.
type CreateSessionRequest struct {
	ConfigRequest
	Processes []ProcessRequest `json:"processes,omitempty"`
}

// TickResponse is returned by POST /sessions/{id}/tick.
type TickResponse struct {
	Log      string            `json:"log"`
	Events   []trace.TickEvent `json:"events"`
	Finished bool              `json:"finished"`
	State    sim.Snapshot      `json:"state"`
}

// RunResponse is returned by POST /sessions/{id}/run.
type RunResponse struct {
	Summary sim.Summary     `json:"summary"`
	Gantt   []trace.Segment `json:"gantt"`
	State   sim.Snapshot    `json:"state"`
	RunID   string          `json:"run_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RequestIDFromContext(r.Context()), map[string]any{
		"status":     "healthy",
		"go_version": runtime.Version(),
		"uptime":     time.Since(s.startTime).Round(time.Second).String(),
		"sessions":   s.sessions.Len(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var body CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, reqID, http.StatusBadRequest, ErrValidation, "invalid JSON: "+err.Error())
		return
	}
	cfg, err := body.ConfigRequest.apply(sim.DefaultSimConfig())
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}
	cfg.TraceLevel = trace.TraceLevelTicks

	sess, err := s.sessions.Create(cfg)
	if errors.Is(err, errSessionLimit) {
		respondError(w, reqID, http.StatusTooManyRequests, ErrLimit, err.Error())
		return
	}
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}

	var snap sim.Snapshot
	err = sess.Do(func(simulator *sim.Simulator) error {
		for _, p := range body.Processes {
			if err := addProcess(simulator, p); err != nil {
				return err
			}
		}
		snap = simulator.Snapshot()
		return nil
	})
	if err != nil {
		_ = s.sessions.Delete(sess.ID)
		s.respondSimError(w, reqID, err)
		return
	}
	s.logger.WithField("session", sess.ID).Info("session created")
	respondCreated(w, reqID, map[string]any{"id": sess.ID, "state": snap})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var snap sim.Snapshot
	_ = sess.Do(func(simulator *sim.Simulator) error {
		snap = simulator.Snapshot()
		return nil
	})
	respondOK(w, reqID, snap)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(id); err != nil {
		respondError(w, reqID, http.StatusNotFound, ErrNotFound, err.Error())
		return
	}
	respondOK(w, reqID, map[string]string{"id": id})
}

func (s *Server) handleAddProcess(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, reqID, http.StatusBadRequest, ErrValidation, "invalid JSON: "+err.Error())
		return
	}
	var snap sim.Snapshot
	err := sess.Do(func(simulator *sim.Simulator) error {
		if err := addProcess(simulator, body); err != nil {
			return err
		}
		snap = simulator.Snapshot()
		return nil
	})
	if err != nil {
		s.respondSimError(w, reqID, err)
		return
	}
	respondCreated(w, reqID, snap)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, reqID, http.StatusBadRequest, ErrValidation, "invalid JSON: "+err.Error())
		return
	}
	var snap sim.Snapshot
	err := sess.Do(func(simulator *sim.Simulator) error {
		cfg, err := body.apply(simulator.Config())
		if err != nil {
			return err
		}
		if err := simulator.SetQuantum(cfg.Quantum); err != nil {
			return err
		}
		if err := simulator.SetAgingThreshold(cfg.AgingThreshold); err != nil {
			return err
		}
		simulator.SetPolicy(cfg.Policy)
		simulator.SetAging(cfg.AgingEnabled)
		snap = simulator.Snapshot()
		return nil
	})
	if err != nil {
		s.respondSimError(w, reqID, err)
		return
	}
	respondOK(w, reqID, snap)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var resp TickResponse
	_ = sess.Do(func(simulator *sim.Simulator) error {
		rec := simulator.Step()
		resp = TickResponse{
			Log:      rec.String(),
			Events:   rec.Events,
			Finished: simulator.IsFinished(),
			State:    simulator.Snapshot(),
		}
		if resp.Events == nil {
			resp.Events = []trace.TickEvent{}
		}
		if resp.Finished {
			s.persist(r, sess, simulator)
		}
		return nil
	})
	respondOK(w, reqID, resp)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var resp RunResponse
	err := sess.Do(func(simulator *sim.Simulator) error {
		if err := simulator.Run(s.config.MaxTicks); err != nil {
			return err
		}
		resp = RunResponse{
			Summary: simulator.Summarize(),
			Gantt:   trace.Gantt(simulator.Trace.Records),
			State:   simulator.Snapshot(),
			RunID:   s.persist(r, sess, simulator),
		}
		return nil
	})
	if err != nil {
		s.respondSimError(w, reqID, err)
		return
	}
	respondOK(w, reqID, resp)
}

func (s *Server) handleGantt(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var segments []trace.Segment
	_ = sess.Do(func(simulator *sim.Simulator) error {
		segments = trace.Gantt(simulator.Trace.Records)
		return nil
	})
	if segments == nil {
		segments = []trace.Segment{}
	}
	respondOK(w, reqID, segments)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var summary sim.Summary
	_ = sess.Do(func(simulator *sim.Simulator) error {
		summary = simulator.Summarize()
		return nil
	})
	respondOK(w, reqID, summary)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.store == nil {
		respondError(w, reqID, http.StatusNotFound, ErrNotFound, "run history is not enabled")
		return
	}
	runs, err := s.store.ListRuns(r.Context(), store.ListOptions{Policy: r.URL.Query().Get("policy")})
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, ErrInternal, err.Error())
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	respondOK(w, reqID, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.store == nil {
		respondError(w, reqID, http.StatusNotFound, ErrNotFound, "run history is not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, ErrInternal, err.Error())
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, ErrNotFound, fmt.Sprintf("run %s not found", id))
		return
	}
	respondOK(w, reqID, run)
}

// lookup resolves the {id} URL parameter, writing a 404 when it is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		respondError(w, RequestIDFromContext(r.Context()), http.StatusNotFound, ErrNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

// persist saves a finished session once. Must be called with the session lock held.
// Returns the run ID, or "" when nothing was saved.
func (s *Server) persist(r *http.Request, sess *Session, simulator *sim.Simulator) string {
	if s.store == nil || sess.saved || !simulator.IsFinished() {
		return ""
	}
	run := store.NewRun(sess.ID, simulator)
	if err := s.store.SaveRun(r.Context(), run); err != nil {
		s.logger.WithError(err).WithField("session", sess.ID).Warn("saving run failed")
		return ""
	}
	sess.saved = true
	return run.ID
}

// respondSimError maps simulator errors to HTTP statuses.
func (s *Server) respondSimError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, sim.ErrDuplicateProcess):
		respondError(w, reqID, http.StatusConflict, ErrConflict, err.Error())
	case errors.Is(err, sim.ErrTickCeiling):
		respondError(w, reqID, http.StatusUnprocessableEntity, ErrLimit, err.Error())
	default:
		respondError(w, reqID, http.StatusBadRequest, ErrValidation, err.Error())
	}
}

func addProcess(simulator *sim.Simulator, p ProcessRequest) error {
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("P%d", p.ID)
	}
	return simulator.AddProcess(p.ID, name, p.Arrival, p.Burst, p.Priority)
}

// apply overlays the request onto cfg. Unlike the CLI, the API rejects unknown
// policy names instead of falling back to FCFS.
func (c ConfigRequest) apply(cfg sim.SimConfig) (sim.SimConfig, error) {
	// An empty policy name leaves the current policy in place.
	if c.Policy != nil && *c.Policy != "" {
		policy, err := sim.ParsePolicy(*c.Policy)
		if err != nil {
			return cfg, err
		}
		cfg.Policy = policy
	}
	if c.Quantum != nil {
		cfg.Quantum = *c.Quantum
	}
	if c.AgingEnabled != nil {
		cfg.AgingEnabled = *c.AgingEnabled
	}
	if c.AgingThreshold != nil {
		cfg.AgingThreshold = *c.AgingThreshold
	}
	return cfg, cfg.Validate()
}
