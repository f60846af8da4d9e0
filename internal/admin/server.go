package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"qjm-roster/internal/aggregate"
	"qjm-roster/internal/roster"
	"qjm-roster/internal/scenario"
	"qjm-roster/internal/wargame"
)

// Wargame is the subset of the remote service the console drives.
type Wargame interface {
	SimulateBattle(ctx context.Context, p *scenario.Payload) (*wargame.BattleResult, error)
	CommitBattle(ctx context.Context, p *scenario.Payload) (bool, error)
	SaveScenarioState(ctx context.Context) (bool, error)
	ExportOrbatMapper(ctx context.Context) (bool, error)
	GetFormationDetails(ctx context.Context, unitID string) (*wargame.FormationDetails, error)
	UpdateFormation(ctx context.Context, name string, personnel int) error
}

// StatsSource returns the latest authoritative personnel aggregate.
type StatsSource interface {
	Latest() aggregate.Stats
}

type Server struct {
	Board   *roster.Board
	Params  *scenario.Store
	Service Wargame
	Stats   StatsSource
	// OnChange runs after every request that may have moved units.
	OnChange func()

	log *slog.Logger
	tpl *template.Template
	mux *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

func NewServer(board *roster.Board, params *scenario.Store, svc Wargame, stats StatsSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{Board: board, Params: params, Service: svc, Stats: stats, log: logger, tpl: tpl}
	s.routes()
	return s
}

func (s *Server) routes() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /roster", s.handleRoster)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("POST /drag/begin", s.handleBegin)
	mux.HandleFunc("POST /drag/enter", s.handleEnter)
	mux.HandleFunc("POST /drag/exit", s.handleExit)
	mux.HandleFunc("POST /drag/drop", s.handleDrop)
	mux.HandleFunc("POST /sorties", s.handleSorties)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("POST /parameters", s.handleParameters)
	mux.HandleFunc("GET /formation/{id}", s.handleFormation)
	mux.HandleFunc("POST /formation", s.handleUpdateFormation)
	mux.HandleFunc("POST /simulate", s.handleSimulate)
	mux.HandleFunc("POST /commit", s.handleCommit)
	mux.HandleFunc("POST /save", s.handleSave)
	mux.HandleFunc("POST /export", s.handleExport)
	s.mux = mux
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start serves the console on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("admin console listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Snapshot   roster.Snapshot
		Stats      aggregate.Stats
		Parameters scenario.Parameters
	}{
		Snapshot:   s.Board.Snapshot(),
		Parameters: s.Params.Get(),
	}
	if s.Stats != nil {
		data.Stats = s.Stats.Latest()
	}
	if err := s.tpl.Execute(w, data); err != nil {
		s.log.Error("render index", "err", err)
	}
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Board.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var st aggregate.Stats
	if s.Stats != nil {
		st = s.Stats.Latest()
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Board.BeginDrag(r.URL.Query().Get("unit"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleEnter(w http.ResponseWriter, r *http.Request) {
	if err := s.Board.HoverEnter(r.URL.Query().Get("container")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	if err := s.Board.HoverExit(r.URL.Query().Get("container")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	res, err := s.Board.ResolveDrop(r.URL.Query().Get("container"))
	s.changed()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSorties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := strconv.Atoi(q.Get("count"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "count must be an integer"})
		return
	}
	if err := s.Board.SetSorties(q.Get("unit"), n); err != nil {
		s.writeError(w, err)
		return
	}
	s.changed()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Board.ResetAll(); err != nil {
		s.writeError(w, err)
		return
	}
	s.changed()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleParameters(w http.ResponseWriter, r *http.Request) {
	p := s.Params.Get()
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.Params.Set(p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.Params.Get())
}

func (s *Server) handleFormation(w http.ResponseWriter, r *http.Request) {
	d, err := s.Service.GetFormationDetails(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateFormation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Personnel int    `json:"personnel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and personnel are required"})
		return
	}
	if err := s.Service.UpdateFormation(r.Context(), req.Name, req.Personnel); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) payload() *scenario.Payload {
	return scenario.Build(s.Board.Lineup(), s.Params.Get())
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	res, err := s.Service.SimulateBattle(r.Context(), s.payload())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	ok, err := s.Service.CommitBattle(r.Context(), s.payload())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"committed": ok})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	ok, err := s.Service.SaveScenarioState(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": ok})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ok, err := s.Service.ExportOrbatMapper(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exported": ok})
}

func (s *Server) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
	} else {
		s.log.Warn("request rejected", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, roster.ErrUnknownUnit), errors.Is(err, roster.ErrUnknownContainer):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrSessionActive), errors.Is(err, roster.ErrAlreadyPlaced),
		errors.Is(err, roster.ErrNoSession), errors.Is(err, roster.ErrDuplicateContainer):
		return http.StatusConflict
	case errors.Is(err, wargame.ErrRemoteCollaborator):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
