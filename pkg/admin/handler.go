// Package admin serves the AJAX calls of the template manager: saving
// template styles, editing the menu tree and mega menus, and the layout
// builder helpers. Every call answers {status, data, message} JSON.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-sitetheme/pkg/admin/apidoc"
)

// Response is the body of every AJAX answer. The mega menu modal reads html
// and title instead of data.
type Response struct {
	Status  bool   `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	HTML    string `json:"html,omitempty"`
	Title   string `json:"title,omitempty"`
}

type actionFunc func(h *Handler, r *http.Request) (Response, error)

var actions = map[string]actionFunc{
	"save-tmpl-style":      (*Handler).saveStyle,
	"getMenuItems":         (*Handler).menuItems,
	"rebuildMenu":          (*Handler).rebuildMenu,
	"generateMegaMenuBody": (*Handler).megaMenuBody,
	"saveMegaMenu":         (*Handler).saveMegaMenu,
	"parentAdoption":       (*Handler).parentAdoption,
	"saveOrderAjax":        (*Handler).saveOrder,
	"trashItem":            (*Handler).trashItem,
	"saveItem":             (*Handler).saveItem,
	"arrangeColumns":       (*Handler).arrangeColumns,
	"validateLayout":       (*Handler).validateLayout,
}

// Handler dispatches admin AJAX actions.
type Handler struct {
	opts   Options
	router chi.Router
}

// NewHandler builds the handler. The embedded API document is loaded when no
// document is supplied.
func NewHandler(fns ...OptionFn) (*Handler, error) {
	opts := NewOptions(fns...)
	if opts.Doc == nil {
		doc, err := apidoc.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("admin: %w", err)
		}
		opts.Doc = doc
	}
	h := &Handler{opts: opts}
	r := chi.NewRouter()
	h.Routes(r)
	h.router = r
	return h, nil
}

// Routes registers the admin routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/openapi.json", h.serveDoc)
	r.HandleFunc("/ajax", h.dispatch)
	r.HandleFunc("/ajax/{action}", h.dispatch)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) serveDoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.opts.Doc.JSON())
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, Response{Message: http.StatusText(http.StatusMethodNotAllowed)})
		return
	}

	if h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}

	name := actionName(r)
	action, ok := actions[name]
	doc, documented := h.opts.Doc.Action(name)
	if !ok || !documented {
		writeJSON(w, http.StatusNotFound, Response{Message: fmt.Sprintf("unknown action %q", name)})
		return
	}
	if doc.Method == http.MethodPost && r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, Response{Message: name + " requires POST"})
		return
	}

	logger := h.opts.Logger.With().Str("action", name).Logger()
	resp, err := action(h, r)
	if err != nil {
		code := statusOf(err)
		msg := err.Error()
		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).Msg("admin action failed")
			msg = http.StatusText(code)
		} else {
			logger.Debug().Err(err).Msg("admin action rejected")
		}
		writeJSON(w, code, Response{Message: msg})
		return
	}
	resp.Status = true
	writeJSON(w, http.StatusOK, resp)
}

// actionName reads the action from the path, the query or the posted form.
func actionName(r *http.Request) string {
	if name := chi.URLParam(r, "action"); name != "" {
		return name
	}
	if name := r.URL.Query().Get("action"); name != "" {
		return name
	}
	return strings.TrimSpace(r.PostFormValue("action"))
}

func writeJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(resp)
}

func writeGuardError(w http.ResponseWriter, err error) {
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	writeJSON(w, code, Response{Message: http.StatusText(code)})
}
