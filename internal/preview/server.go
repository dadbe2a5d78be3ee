// Package preview serves rendered pages straight from a store for local browsing.
package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/conduit-lang/netdocs/internal/store"
)

const layoutHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
`

const layoutFoot = `
</body>
</html>
`

// NewRouter builds the preview routes over s
func NewRouter(s store.Store, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{store: s, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/", h.page)
	r.Get("/entries.json", h.entries)
	r.Get("/*", h.page)
	return r
}

type handler struct {
	store  store.Store
	logger *zap.Logger
}

// pagePath maps a request path onto a stored page path
func pagePath(urlPath string) string {
	p := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	p = strings.TrimSuffix(p, ".html")
	if p == "" {
		return "index"
	}
	return p
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	p := pagePath(r.URL.Path)

	output, err := h.store.Get(r.Context(), p)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("failed to load page", zap.String("path", p), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, layoutHead, html.EscapeString(p))
	w.Write(output)
	fmt.Fprint(w, layoutFoot)
}

func (h *handler) entries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.Entries(r.Context())
	if err != nil {
		h.logger.Error("failed to load entries", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"entries": entries})
}

// requestLogger logs each request at debug level
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
