package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/brettbedarf/foldertree"
	"github.com/brettbedarf/foldertree/internal/util"
	"github.com/brettbedarf/foldertree/render"
	"github.com/brettbedarf/foldertree/requests"
	"github.com/brettbedarf/foldertree/tree"
)

const (
	commandAdd     = foldertree.AddCommand
	commandMove    = foldertree.MoveCommand
	commandTrash   = foldertree.TrashCommand
	commandRestore = foldertree.RestoreCommand
	commandPurge   = foldertree.PurgeCommand
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := util.GetLogger("API")
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps tree and validation errors onto HTTP status codes
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	var synErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, tree.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tree.ErrExists):
		return http.StatusConflict
	case errors.Is(err, tree.ErrInvalidPath),
		errors.As(err, &verrs),
		errors.As(err, &synErr),
		errors.As(err, &typeErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": foldertree.Version,
	})
}

// handleTree returns the snapshot as JSON. ?format=text returns the rendered
// list and ?format=paths one folder path per line.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	snap := s.sess.Snapshot()
	switch r.URL.Query().Get("format") {
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, render.Render(snap)+"\n") // nolint:errcheck
	case "paths":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, line := range render.Lines(snap.Root) {
			io.WriteString(w, line+"\n") // nolint:errcheck
		}
	default:
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	writeJSON(w, http.StatusOK, map[string]any{
		"path":   path,
		"exists": s.sess.FolderExists(path),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	view, err := s.sess.ResolvePath(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleReversePath(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid node id"})
		return
	}
	path, err := s.sess.ReversePathOf(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "path": path})
}

func (s *Server) handleTrashList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.TrashEntries())
}

// handleCommand decodes a command body and applies it. A non-empty typ fixes
// the command type for the route; otherwise the body names it.
func (s *Server) handleCommand(typ foldertree.CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var dto requests.CommandDTO
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			writeError(w, err)
			return
		}
		if typ != "" {
			dto.Type = typ
		}
		s.apply(w, r, dto)
	}
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, requests.CommandDTO{
		Type: foldertree.DeleteCommand,
		Path: chi.URLParam(r, "*"),
	})
}

func (s *Server) handleTrashKey(typ foldertree.CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.apply(w, r, requests.CommandDTO{Type: typ, Key: chi.URLParam(r, "key")})
	}
}

func (s *Server) handleEmptyTrash(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, requests.CommandDTO{Type: foldertree.EmptyCommand})
}

// apply validates dto and runs it against the session. Guard rejections
// answer 409 with the outcome so clients can show its message.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, dto requests.CommandDTO) {
	if dto.ID == nil {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			dto.ID = &reqID
		}
	}
	req, err := requests.ConvertCommandDTO(dto)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := s.sess.Apply(*req)
	if err != nil {
		writeError(w, err)
		return
	}
	if out.Message != "" && !out.Rerender {
		writeJSON(w, http.StatusConflict, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
