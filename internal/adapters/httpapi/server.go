package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/ports"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/usecase"
)

// maxImageBytes bounds request bodies; document page scans stay well below.
const maxImageBytes = 32 << 20

// Server is the worker's HTTP surface: synchronous processing, async task
// submission and status introspection.
type Server struct {
	desc      domain.ServiceDescriptor
	proc      ports.ProcessorPort
	runner    *usecase.Runner
	announcer *usecase.Announcer
	log       zerolog.Logger
	srv       *http.Server
}

func New(addr string, desc domain.ServiceDescriptor, proc ports.ProcessorPort, runner *usecase.Runner, announcer *usecase.Announcer, log zerolog.Logger) *Server {
	s := &Server{
		desc:      desc,
		proc:      proc,
		runner:    runner,
		announcer: announcer,
		log:       log.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /docs", s.handleDocs)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("POST /tasks", s.handleSubmit)
	mux.HandleFunc("GET /tasks/{id}", s.handleTask)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/docs", http.StatusMovedPermanently)
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        s.desc.Name,
		"summary":     s.desc.Summary,
		"description": s.desc.Description,
		"endpoints": map[string]string{
			"POST /process":   "synchronous extraction; body is raw PNG or JPEG bytes, response is the result JSON",
			"POST /tasks":     "asynchronous extraction; JSON body {id?, callback_url?, image: <base64>}",
			"GET /tasks/{id}": "task status and result",
			"GET /status":     "service descriptor and per-engine announcement state",
		},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": s.desc,
		"engines": s.announcer.States(),
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	result, err := s.proc.Process(r.Context(), map[string]domain.TaskData{
		usecase.FieldImage: {Data: body, Type: fieldTypeFromHeader(r)},
	})
	if err != nil {
		if errors.Is(err, usecase.ErrImageDecode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Msg("process failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", string(domain.FieldJSON))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result[usecase.FieldResult].Data)
}

type submitRequest struct {
	ID          string `json:"id,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
	Image       string `json:"image"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxImageBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}
	img, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "decode image field: "+err.Error())
		return
	}

	task := &domain.Task{
		CallbackURL: req.CallbackURL,
		Data: map[string]domain.TaskData{
			usecase.FieldImage: {Data: img},
		},
	}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task id")
			return
		}
		task.ID = id
	}

	if err := s.runner.Submit(task); err != nil {
		if errors.Is(err, usecase.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if errors.Is(err, usecase.ErrDuplicateTask) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": task.ID.String()})
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	task, err := s.runner.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := map[string]any{
		"task_id": task.ID.String(),
		"status":  task.Status,
	}
	if out, ok := task.Result[usecase.FieldResult]; ok {
		resp["result"] = json.RawMessage(out.Data)
	}
	if task.Error != "" {
		resp["error"] = task.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

func fieldTypeFromHeader(r *http.Request) domain.FieldType {
	if r.Header.Get("Content-Type") == string(domain.FieldImageJPEG) {
		return domain.FieldImageJPEG
	}
	return domain.FieldImagePNG
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", string(domain.FieldJSON))
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
