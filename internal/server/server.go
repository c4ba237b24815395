// Package server exposes the feed aggregator as the news endpoint the client
// reads, for local development and tests.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/feed"
	"github.com/pders01/newsdesk/internal/news"
)

// NewsPath is where the endpoint is mounted.
const NewsPath = "/api/news"

// MaxArticles caps the max parameter.
const MaxArticles = 100

// Source produces the article list for one request.
type Source interface {
	Articles(ctx context.Context, req feed.Request) ([]news.Article, error)
}

type articlesResponse struct {
	Articles []news.Article `json:"articles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	source  Source
	timeout time.Duration
}

// NewHandler serves NewsPath from source. Each request gets at most timeout
// to assemble its answer; zero means no limit beyond the client's.
func NewHandler(source Source, timeout time.Duration) http.Handler {
	h := &Handler{source: source, timeout: timeout}
	mux := http.NewServeMux()
	mux.HandleFunc(NewsPath, h.news)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func (h *Handler) news(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	req, err := parseRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	articles, err := h.source.Articles(ctx, req)
	log := debuglog.WithFields(map[string]interface{}{
		"q":       req.Query,
		"topic":   req.Topic,
		"max":     req.Max,
		"elapsed": time.Since(start).Round(time.Millisecond),
	})
	if err != nil {
		if errors.Is(err, feed.ErrUnknownTopic) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		log.Warnf("news request failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Failed to fetch news from upstream feeds"})
		return
	}
	if articles == nil {
		articles = []news.Article{}
	}
	log.Infof("served %d articles", len(articles))
	writeJSON(w, http.StatusOK, articlesResponse{Articles: articles})
}

func parseRequest(r *http.Request) (feed.Request, error) {
	q := r.URL.Query()
	req := feed.Request{
		Lang:    q.Get("lang"),
		Country: q.Get("country"),
		Query:   strings.TrimSpace(q.Get("q")),
		Topic:   strings.TrimSpace(q.Get("topic")),
		Max:     news.PageSize,
	}
	if raw := q.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, fmt.Errorf("max must be a positive integer, got %q", raw)
		}
		if n > MaxArticles {
			n = MaxArticles
		}
		req.Max = n
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debuglog.Errorf("server: encoding response: %v", err)
	}
}

// Server runs the handler until its context is canceled.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Listen binds addr. Use ":0" to pick a free port.
func Listen(addr string, handler http.Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return &Server{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln: ln,
	}, nil
}

// URL is the endpoint URL clients should call.
func (s *Server) URL() string {
	addr := s.ln.Addr().(*net.TCPAddr)
	host := addr.IP.String()
	if addr.IP.IsUnspecified() {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(addr.Port)) + NewsPath
}

// Serve blocks until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
