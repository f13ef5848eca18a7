// Package server exposes the vakeel pipeline over an HTTP API.
//
// The API is the single client surface: the local UI drives every pipeline
// operation through it. Swagger UI is served alongside the endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/asharma/vakeel/docs"
	"github.com/asharma/vakeel/internal/language"
	"github.com/asharma/vakeel/internal/message"
	"github.com/asharma/vakeel/internal/pipeline"
	"github.com/asharma/vakeel/internal/speech"
)

// maxAudioBytes caps raw audio uploads.
const maxAudioBytes = 25 << 20

// Server serves the vakeel HTTP API.
type Server struct {
	port     int
	pipeline *pipeline.Pipeline
	server   *http.Server
}

// New creates a server for the given pipeline on the given port.
func New(port int, p *pipeline.Pipeline) *Server {
	return &Server{port: port, pipeline: p}
}

// ListenAndServe starts the API server. It blocks until the context is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/exchange", s.handleExchange)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/history/export", s.handleExport)
	mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
	mux.HandleFunc("GET /api/bookmarks", s.handleBookmarks)
	mux.HandleFunc("POST /api/bookmarks", s.handleBookmark)
	mux.HandleFunc("DELETE /api/bookmarks", s.handleClearBookmarks)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /api/languages", s.handleLanguages)

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("api server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the API server.
func (s *Server) Close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleExchange processes a POST /api/exchange request.
//
// @Summary     Run one conversational exchange
// @Description Accepts a JSON request (typed text or base64 audio) or raw audio bytes.
// @Description The utterance is recognized if spoken, translated to the pivot language if
// @Description needed, answered by the completion backend, translated back, synthesized to
// @Description speech, and appended to the persisted history.
// @Tags        exchange
// @Accept      json
// @Accept      audio/l16
// @Accept      audio/wav
// @Produce     json
// @Param       request  body      message.ExchangeRequest  true  "Exchange request (JSON). For raw audio, POST the bytes directly with the appropriate Content-Type."
// @Param       X-Vakeel-Language  header  string  false  "Selected language name (used with raw audio uploads)"
// @Param       X-Vakeel-Online    header  bool    false  "Online mode flag (used with raw audio uploads)"
// @Success     200  {object}  message.ExchangeResult
// @Failure     400  {object}  errorBody  "No input, or malformed request"
// @Failure     422  {object}  errorBody  "Speech recognition failed (timeout, unintelligible, service error)"
// @Failure     500  {object}  errorBody  "Persistence or internal failure"
// @Router      /api/exchange [post]
func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req message.ExchangeRequest

	contentType := r.Header.Get("Content-Type")
	switch {
	case contentType == "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
			return
		}
	default:
		// Treat body as raw audio; read the session fields from headers.
		audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading audio: "+err.Error())
			return
		}
		req.Audio = audio
		req.ContentType = contentType
		req.Language = r.Header.Get("X-Vakeel-Language")
		req.Online = r.Header.Get("X-Vakeel-Online") != "false"
	}

	result, err := s.pipeline.Exchange(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrNoInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, speech.ErrTimeout),
			errors.Is(err, speech.ErrUnintelligible),
			errors.Is(err, speech.ErrService):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("exchange failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleHistory returns the persisted conversation history.
//
// @Summary  Get conversation history
// @Tags     history
// @Produce  json
// @Success  200  {array}  message.Turn
// @Router   /api/history [get]
func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.History())
}

// handleExport downloads the history as plain text.
//
// @Summary  Download conversation history as text
// @Tags     history
// @Produce  plain
// @Success  200  {string}  string
// @Router   /api/history/export [get]
func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="chat_history.txt"`)
	_, _ = io.WriteString(w, s.pipeline.ExportHistory())
}

// handleClearHistory empties the persisted history.
//
// @Summary  Clear conversation history
// @Tags     history
// @Produce  json
// @Success  200  {object}  statusBody
// @Failure  500  {object}  errorBody
// @Router   /api/history [delete]
func (s *Server) handleClearHistory(w http.ResponseWriter, _ *http.Request) {
	if err := s.pipeline.ClearHistory(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "cleared"})
}

// handleBookmarks returns the bookmark list.
//
// @Summary  Get bookmarks
// @Tags     bookmarks
// @Produce  json
// @Success  200  {array}  string
// @Router   /api/bookmarks [get]
func (s *Server) handleBookmarks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Bookmarks())
}

// handleBookmark saves the most recent assistant response.
//
// @Summary  Bookmark the last response
// @Tags     bookmarks
// @Produce  json
// @Success  200  {object}  statusBody
// @Failure  409  {object}  errorBody  "No response available to bookmark"
// @Failure  500  {object}  errorBody
// @Router   /api/bookmarks [post]
func (s *Server) handleBookmark(w http.ResponseWriter, _ *http.Request) {
	if err := s.pipeline.Bookmark(); err != nil {
		if errors.Is(err, pipeline.ErrNothingToBookmark) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "bookmarked"})
}

// handleClearBookmarks empties the bookmark list.
//
// @Summary  Clear all bookmarks
// @Tags     bookmarks
// @Produce  json
// @Success  200  {object}  statusBody
// @Failure  500  {object}  errorBody
// @Router   /api/bookmarks [delete]
func (s *Server) handleClearBookmarks(w http.ResponseWriter, _ *http.Request) {
	if err := s.pipeline.ClearBookmarks(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "cleared"})
}

// handleReset clears the conversation (history, memory, last response);
// bookmarks are kept.
//
// @Summary  Reset the conversation
// @Tags     history
// @Produce  json
// @Success  200  {object}  statusBody
// @Failure  500  {object}  errorBody
// @Router   /api/reset [post]
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	if err := s.pipeline.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "reset"})
}

// handleLanguages returns the supported language names.
//
// @Summary  List supported languages
// @Tags     languages
// @Produce  json
// @Success  200  {array}  string
// @Router   /api/languages [get]
func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, language.Names())
}

type statusBody struct {
	Status string `json:"status"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
