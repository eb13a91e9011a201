package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/feedgen"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before the server is forcibly closed.
const ShutdownTimeout = 10 * time.Second

// Server is the JSON API over feeds and posts.
type Server struct {
	ln     net.Listener
	server *http.Server
	mux    *http.ServeMux

	// Addr is the bind address, e.g. ":8080".
	Addr string

	Logger *slog.Logger

	FeedService feedgen.FeedService
	PostService feedgen.PostService
	Inferrer    feedgen.Inferrer
	Scraper     feedgen.Scraper
}

// NewServer returns a server with its routes registered.
func NewServer() *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		Logger: slog.New(slog.DiscardHandler),
	}
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /feeds", s.handleFeedList)
	s.mux.HandleFunc("POST /feeds", s.handleFeedCreate)
	s.mux.HandleFunc("GET /feeds/analyze", s.handleFeedAnalyze)
	s.mux.HandleFunc("GET /feeds/{id}", s.handleFeedView)
	s.mux.HandleFunc("PATCH /feeds/{id}", s.handleFeedUpdate)
	s.mux.HandleFunc("DELETE /feeds/{id}", s.handleFeedDelete)
	s.mux.HandleFunc("GET /feeds/{id}/posts", s.handlePostList)
	s.mux.HandleFunc("POST /feeds/{id}/posts/scrape", s.handlePostScrape)

	return s
}

// Open starts listening on Addr and serves requests in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return feedgen.Errorf(feedgen.ECONFIG, "listen on %q: %v", s.Addr, err)
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("serve", "err", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the local base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// ServeHTTP logs each request and dispatches it to its route.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.Logger.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(begin),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFeedList(w http.ResponseWriter, r *http.Request) {
	var filter feedgen.FeedFilter
	var err error
	if filter.Offset, filter.Limit, err = pagination(r); err != nil {
		s.Error(w, r, err)
		return
	}
	if link := r.URL.Query().Get("link"); link != "" {
		filter.Link = &link
	}

	feeds, err := s.FeedService.FindFeeds(r.Context(), filter)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if feeds == nil {
		feeds = []*feedgen.Feed{}
	}
	s.writeJSON(w, http.StatusOK, feeds)
}

// feedCreateRequest is the body of POST /feeds.
type feedCreateRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleFeedCreate(w http.ResponseWriter, r *http.Request) {
	var req feedCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if req.URL == "" {
		s.Error(w, r, feedgen.Errorf(feedgen.EINVALID, "url required"))
		return
	}

	feed, err := s.Scraper.AddFeed(r.Context(), req.URL)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, feed)
}

func (s *Server) handleFeedAnalyze(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		s.Error(w, r, feedgen.Errorf(feedgen.EINVALID, "url query parameter required"))
		return
	}

	structure, err := s.Inferrer.InferFeedStructure(r.Context(), url)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, structure)
}

func (s *Server) handleFeedView(w http.ResponseWriter, r *http.Request) {
	feed, err := s.FeedService.FindFeedByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handleFeedUpdate(w http.ResponseWriter, r *http.Request) {
	var upd feedgen.FeedUpdate
	if err := decodeJSON(r, &upd); err != nil {
		s.Error(w, r, err)
		return
	}

	feed, err := s.FeedService.UpdateFeed(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handleFeedDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.FeedService.DeleteFeed(r.Context(), r.PathValue("id")); err != nil {
		s.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePostList(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.FeedService.FindFeedByID(r.Context(), id); err != nil {
		s.Error(w, r, err)
		return
	}

	filter := feedgen.PostFilter{FeedID: &id}
	var err error
	if filter.Offset, filter.Limit, err = pagination(r); err != nil {
		s.Error(w, r, err)
		return
	}

	posts, err := s.PostService.FindPosts(r.Context(), filter)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if posts == nil {
		posts = []*feedgen.Post{}
	}
	s.writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handlePostScrape(w http.ResponseWriter, r *http.Request) {
	result, err := s.Scraper.SyncFeed(r.Context(), r.PathValue("id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// Error writes err as a JSON error response with a matching status code.
// Internal errors are logged and their details withheld from the client.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code := feedgen.ErrorCode(err)
	if code == feedgen.EINTERNAL {
		s.Logger.Error("internal error", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, ErrorStatusCode(code), errorResponse{
		Code:  code,
		Error: feedgen.ErrorMessage(err),
		Stage: feedgen.ErrorStage(err),
	})
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	feedgen.EINVALID:   http.StatusBadRequest,
	feedgen.ENOTFOUND:  http.StatusNotFound,
	feedgen.ECONFLICT:  http.StatusConflict,
	feedgen.ESCHEMA:    http.StatusUnprocessableEntity,
	feedgen.ELOCATOR:   http.StatusUnprocessableEntity,
	feedgen.ECYCLE:     http.StatusUnprocessableEntity,
	feedgen.ELIMIT:     http.StatusUnprocessableEntity,
	feedgen.ETRANSPORT: http.StatusBadGateway,
	feedgen.EDECODE:    http.StatusBadGateway,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("write response", "err", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return feedgen.Errorf(feedgen.EINVALID, "invalid JSON body: %v", err)
	}
	return nil
}

// pagination reads the offset and limit query parameters.
func pagination(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, feedgen.Errorf(feedgen.EINVALID, "invalid offset %q", v)
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, feedgen.Errorf(feedgen.EINVALID, "invalid limit %q", v)
		}
	}
	return offset, limit, nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
