package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"SignalSentinel/internal/export"
	"SignalSentinel/internal/model"
)

// Pipeline is the part of the scheduler the API reads from and triggers.
type Pipeline interface {
	Latest() *model.Analysis
	RunNow(ctx context.Context) (*model.Analysis, error)
}

type Server struct {
	bindAddress string
	pipeline    Pipeline
	metrics     http.Handler
	server      *http.Server
}

// NewServer creates an API server. metrics may be nil.
func NewServer(bindAddress string, p Pipeline, metrics http.Handler) *Server {
	return &Server{bindAddress: bindAddress, pipeline: p, metrics: metrics}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analysis", s.getAnalysis).Methods("GET")
	api.HandleFunc("/analysis/latest", s.getLatest).Methods("GET")
	api.HandleFunc("/signals", s.getSignals).Methods("GET")
	api.HandleFunc("/refresh", s.refresh).Methods("POST")

	router.HandleFunc("/health", s.getHealth).Methods("GET")
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics).Methods("GET")
	}
	return router
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.bindAddress,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] api shutdown: %v", err)
		}
	}()

	log.Printf("[INFO] API server listening on %s", s.bindAddress)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// latestOr404 returns the current analysis or writes a 404.
func (s *Server) latestOr404(w http.ResponseWriter) *model.Analysis {
	a := s.pipeline.Latest()
	if a == nil || a.Len() == 0 {
		writeError(w, http.StatusNotFound, "no analysis available yet")
		return nil
	}
	return a
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	a := s.latestOr404(w)
	if a == nil {
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+a.Symbol+`.csv"`)
		if err := export.WriteCSV(w, a); err != nil {
			log.Printf("[ERROR] write csv: %v", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) getLatest(w http.ResponseWriter, r *http.Request) {
	a := s.latestOr404(w)
	if a == nil {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Symbol string `json:"symbol"`
		model.Snapshot
	}{a.Symbol, a.Latest()})
}

type signalRow struct {
	Time   time.Time    `json:"time"`
	Close  float64      `json:"close"`
	Signal model.Signal `json:"signal"`
}

func (s *Server) getSignals(w http.ResponseWriter, r *http.Request) {
	engine := model.Engine(r.URL.Query().Get("engine"))
	if engine == "" {
		engine = model.EngineMomentum
	}
	if engine != model.EngineMomentum && engine != model.EngineMeanReversion {
		writeError(w, http.StatusBadRequest, "engine must be momentum or meanrev")
		return
	}
	a := s.latestOr404(w)
	if a == nil {
		return
	}

	rows := make([]signalRow, 0)
	for i, sig := range a.Signals(engine) {
		if sig != model.Neutral {
			rows = append(rows, signalRow{Time: a.Frame.Times[i], Close: a.Closes[i], Signal: sig})
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Symbol  string       `json:"symbol"`
		Engine  model.Engine `json:"engine"`
		Signals []signalRow  `json:"signals"`
		Count   int          `json:"count"`
	}{a.Symbol, engine, rows, len(rows)})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	a, err := s.pipeline.RunNow(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Symbol string         `json:"symbol"`
		Bars   int            `json:"bars"`
		Latest model.Snapshot `json:"latest"`
	}{a.Symbol, a.Len(), a.Latest()})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if a := s.pipeline.Latest(); a != nil {
		resp["last_run"] = a.ComputedAt
	}
	writeJSON(w, http.StatusOK, resp)
}
