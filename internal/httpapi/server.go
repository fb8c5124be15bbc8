// Package httpapi serves a graph database over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chunger/cfdb"
	"github.com/chunger/cfdb/graph"
	"github.com/chunger/cfdb/internal/config"
)

const (
	contentTypeJSON        = "application/json"
	defaultShutdownTimeout = 5 * time.Second
	defaultLimit           = 20
	maxLimit               = 1000
)

// Server exposes nodes, edges and pairs of one database.
type Server struct {
	graph      *graph.Graph
	pairs      *cfdb.Operations[string, *cfdb.Pair]
	logger     *slog.Logger
	cfg        config.HTTPConfig
	httpServer *http.Server
}

func NewServer(g *graph.Graph, cfg config.HTTPConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		graph:  g,
		pairs:  cfdb.Pairs(g.DB),
		logger: logger,
		cfg:    cfg,
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.handleListNodes)
		r.Post("/", s.handlePutNode)
		r.Get("/{id}", s.handleGetNode)
		r.Delete("/{id}", s.handleDeleteNode)
		r.Get("/{id}/edges", s.handleNodeEdges)
	})

	r.Route("/edges", func(r chi.Router) {
		r.Post("/", s.handlePutEdge)
		r.Get("/{id}", s.handleGetEdge)
		r.Delete("/{id}", s.handleDeleteEdge)
	})

	r.Get("/kv/{name}", s.handleGetPair)
	r.Put("/kv/{name}", s.handlePutPair)
	r.Delete("/kv/{name}", s.handleDeletePair)

	return r
}

// Start listens on the configured address in the background.
func (s *Server) Start() error {
	if s.httpServer != nil {
		return errors.New("server already started")
	}
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()
	s.logger.Info("HTTP server started", "addr", s.cfg.Addr)
	return nil
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("Error encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, graph.ErrNodeNotFound), errors.Is(err, graph.ErrUnknownID):
		status = http.StatusNotFound
	case errors.Is(err, cfdb.ErrBadIndex):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, NewErrorResponse(err.Error()))
}

func (s *Server) idParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("invalid id"))
		return 0, false
	}
	return id, true
}

func (s *Server) limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return defaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("invalid n"))
		return 0, false
	}
	return n, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewOKResponse())
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	n, ok := s.limitParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var nodes []*graph.Node
	var err error
	switch {
	case q.Get("type") != "":
		nodes, err = s.graph.NodesByType(q.Get("type"), n)
	case q.Has("prefix"):
		nodes, err = s.graph.NodesByName(q.Get("prefix"), n)
	default:
		c := &cfdb.Collector[*graph.Node]{Max: n}
		err = s.graph.Nodes.Visit(s.graph.Nodes.ID(0), c)
		nodes = c.Items
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Nodes: nodes})
}

func (s *Server) handlePutNode(w http.ResponseWriter, r *http.Request) {
	var n graph.Node
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}
	if n.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("missing name"))
		return
	}
	created, err := s.graph.SaveNode(&n)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, Response{Status: StatusSuccess, Node: &n})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	n, found, err := s.graph.Node(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("node not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Node: n})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	deleted, err := s.graph.Nodes.DeleteID(s.graph.Nodes.ID(id))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("node not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleNodeEdges(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	n, ok := s.limitParam(w, r)
	if !ok {
		return
	}
	var edges []*graph.Edge
	var err error
	switch dir := r.URL.Query().Get("dir"); dir {
	case "", "out":
		edges, err = s.graph.EdgesFrom(id, n)
	case "in":
		edges, err = s.graph.EdgesTo(id, n)
	default:
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("dir must be out or in"))
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Edges: edges})
}

func (s *Server) handlePutEdge(w http.ResponseWriter, r *http.Request) {
	var e graph.Edge
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}
	if e.Head == 0 || e.Tail == 0 {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("missing head or tail"))
		return
	}
	for _, id := range []uint64{e.Head, e.Tail} {
		_, found, err := s.graph.Node(id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if !found {
			s.writeError(w, fmt.Errorf("%w: %d", graph.ErrNodeNotFound, id))
			return
		}
	}
	created, err := s.graph.SaveEdge(&e)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, Response{Status: StatusSuccess, Edge: &e})
}

func (s *Server) handleGetEdge(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	e, found, err := s.graph.Edge(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("edge not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Edge: e})
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	deleted, err := s.graph.Edges.DeleteID(s.graph.Edges.ID(id))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("edge not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleGetPair(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, found, err := s.pairs.Get(s.pairs.ID(name))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("key not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Value: p.Value})
}

func (s *Server) handlePutPair(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("failed to parse form"))
		return
	}
	p := &cfdb.Pair{Name: chi.URLParam(r, "name"), Value: r.FormValue("value")}
	if _, err := s.pairs.Put(p); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleDeletePair(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	deleted, err := s.pairs.DeleteID(s.pairs.ID(name))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("key not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}
