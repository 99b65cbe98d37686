package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dfki-ric/xdbi/internal/engine"
	"github.com/dfki-ric/xdbi/internal/xlog"
)

// Server is a thin HTTP shell over a storage Engine: one endpoint, one
// request envelope per call, each call individually recovered so a
// handler failure degrades to an error envelope rather than a crashed
// connection.
type Server struct {
	engine *engine.Engine
}

// NewServer returns a Server backed by an Engine rooted at dbPath.
func NewServer(dbPath string) *Server {
	return &Server{engine: engine.New(dbPath)}
}

// ListenAndServe starts the server on addr, logging the bind address the
// way the storage engine logs its own operations, and returns the error
// that ends serving.
func (s *Server) ListenAndServe(addr string) error {
	xlog.Info("httpapi: server starting at %s ...", addr)
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := s.dispatch(r)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) dispatch(r *http.Request) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = errorResponse(fmt.Errorf("panic: %v", rec))
		}
	}()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return errorResponse(fmt.Errorf("could not parse request body: %w", err))
	}

	switch req.Type {
	case RequestPing:
		return s.ping(req)
	case RequestLoad:
		return s.load(req)
	case RequestFind:
		return s.find(req)
	case RequestAdd:
		return s.add(req)
	case RequestUpdate:
		return s.update(req)
	case RequestRemove:
		return s.remove(req)
	case RequestClear:
		return s.clear(req)
	default:
		return errorResponse(fmt.Errorf("unknown request type %q", req.Type))
	}
}

func (s *Server) ping(req Request) Response {
	now := time.Now().UnixMilli()
	return Response{Status: StatusFinished, Result: now - req.Time}
}

func (s *Server) load(req Request) Response {
	if req.URI == "" {
		return errorResponse(fmt.Errorf("could not find uri field in request"))
	}
	if req.Graph == "" {
		return errorResponse(fmt.Errorf("no graph specified"))
	}
	doc, err := s.engine.Load(req.Graph, req.URI, req.Classname)
	if err != nil {
		return errorResponse(err)
	}
	return Response{Status: StatusFinished, Result: doc}
}

func (s *Server) find(req Request) Response {
	if req.Graph == "" {
		return errorResponse(fmt.Errorf("no graph specified"))
	}
	docs, err := s.engine.Find(req.Graph, req.Classname, req.Properties)
	if err != nil {
		return errorResponse(err)
	}
	return Response{Status: StatusFinished, Result: docs}
}

func (s *Server) add(req Request) Response {
	if req.Graph == "" {
		return errorResponse(fmt.Errorf("no graph specified"))
	}
	ok, err := s.engine.Add(req.Graph, req.Models)
	if err != nil {
		return errorResponse(err)
	}
	return Response{Status: StatusFinished, Result: ok}
}

func (s *Server) update(req Request) Response {
	if req.Graph == "" {
		return errorResponse(fmt.Errorf("no graph specified"))
	}
	ok, err := s.engine.Update(req.Graph, req.Models)
	if err != nil {
		return errorResponse(err)
	}
	return Response{Status: StatusFinished, Result: ok}
}

func (s *Server) remove(req Request) Response {
	if req.URI == "" {
		return errorResponse(fmt.Errorf("could not find uri field in request"))
	}
	if req.Graph == "" {
		return errorResponse(fmt.Errorf("no graph specified"))
	}
	ok, err := s.engine.Remove(req.Graph, req.URI)
	if err != nil {
		return errorResponse(err)
	}
	return Response{Status: StatusFinished, Result: ok}
}

func (s *Server) clear(req Request) Response {
	if req.Graph == "" {
		return errorResponse(fmt.Errorf("no graph specified"))
	}
	ok, err := s.engine.Clear(req.Graph)
	if err != nil {
		return errorResponse(err)
	}
	return Response{Status: StatusFinished, Result: ok}
}

func errorResponse(err error) Response {
	return Response{Status: StatusError, Message: err.Error()}
}
