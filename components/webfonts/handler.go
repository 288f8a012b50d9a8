package webfonts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type response struct {
	Data  []Family `json:"data"`
	Query string   `json:"query,omitempty"`
}

// Handler answers GET and HEAD with the families matching ?q.
type Handler struct {
	cfg Config
}

func NewHandler(fns ...OptionFn) *Handler {
	return &Handler{cfg: newConfig(fns...)}
}

// Path is the route the handler expects to be mounted on.
func (h *Handler) Path() string {
	return h.cfg.Path
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.cfg.Guard != nil {
		if err := h.cfg.Guard(r); err != nil {
			code := guardStatus(err)
			http.Error(w, http.StatusText(code), code)
			return
		}
	}

	families := h.cfg.Families
	if families == nil {
		var err error
		if families, err = DefaultFamilies(); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	limit := h.cfg.limit(q.Get("limit"))

	var names []string
	switch {
	case query != "":
		names = Search(families, query, limit)
	case h.cfg.ListAll && limit > 0:
		names = families[:min(limit, len(families))]
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if h.cfg.Families == nil {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(response{Data: Describe(names), Query: query})
}

func guardStatus(err error) int {
	var coder interface{ StatusCode() int }
	if errors.As(err, &coder) {
		if code := coder.StatusCode(); code >= 400 {
			return code
		}
	}
	return http.StatusForbidden
}

// Mount registers a handler on r and returns it.
func Mount(r chi.Router, fns ...OptionFn) *Handler {
	h := NewHandler(fns...)
	r.Handle(h.Path(), h)
	return h
}
