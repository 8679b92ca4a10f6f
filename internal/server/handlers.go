package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/baheth/internal/models"
	"github.com/hyperjump/baheth/internal/storage"
)

// snippetsPageSize is the number of snippets per listing page.
const snippetsPageSize = 30

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.SearchQuery{Query: q.Get("q")}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		query.Limit = limit
	}
	query.Explain, _ = strconv.ParseBool(q.Get("explain"))
	s.search(w, r, &query)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, r, &query)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, query *models.SearchQuery) {
	s.logger.Debug("search request",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("query", query.Query),
		zap.Int("limit", query.Limit))
	response, err := s.engine.Rank(r.Context(), query)
	if err != nil {
		s.fail(w, r, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleIndexSnippets(w http.ResponseWriter, r *http.Request) {
	var input models.SnippetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(input.Pages) == 0 {
		s.respondError(w, http.StatusBadRequest, "pages are required")
		return
	}
	s.logger.Debug("index snippets request", zap.String("file_id", input.FileID), zap.Int("pages", len(input.Pages)))
	res, err := s.indexer.IndexSnippets(r.Context(), &input)
	if err != nil {
		s.fail(w, r, "indexing failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, res)
}

type snippetPage struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Snippets []*models.Snippet `json:"snippets"`
}

func (s *Server) handleListSnippets(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			s.respondError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = p
	}
	snippets, err := s.storage.ListSnippets(r.Context(), (page-1)*snippetsPageSize, snippetsPageSize)
	if err != nil {
		s.fail(w, r, "list snippets failed", err)
		return
	}
	if snippets == nil {
		snippets = []*models.Snippet{}
	}
	s.respondJSON(w, http.StatusOK, snippetPage{Page: page, PageSize: snippetsPageSize, Snippets: snippets})
}

func (s *Server) handleGetSnippet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid snippet id")
		return
	}
	snippet, err := s.storage.GetSnippet(r.Context(), id)
	if err != nil {
		s.fail(w, r, "get snippet failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, snippet)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.storage.ListFiles(r.Context())
	if err != nil {
		s.fail(w, r, "list files failed", err)
		return
	}
	if files == nil {
		files = []*models.File{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete file request", zap.String("file_id", id))
	if err := s.indexer.DeleteFile(r.Context(), id); err != nil {
		s.fail(w, r, "deletion failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"file_id": id, "status": "deleted"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var paths []string
	if s.config != nil {
		paths = append(storage.DatabaseFiles(s.config.Storage.DatabasePath), s.config.Storage.BleveIndexPath)
	}
	status, err := s.indexer.Status(r.Context(), paths...)
	if err != nil {
		s.fail(w, r, "status failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.fail(w, r, "stat directory failed", err)
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.fail(w, r, "watch add directory failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	fields := []zap.Field{zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err)}
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, fields...)
	} else {
		s.logger.Debug(msg, fields...)
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
