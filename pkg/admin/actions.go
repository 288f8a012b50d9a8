package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/menu"
	"github.com/goliatone/go-sitetheme/pkg/style"
)

var (
	errNoStyles = StatusError{Code: http.StatusNotImplemented, Err: errors.New("admin: template styles are not configured")}
	errNoMenus  = StatusError{Code: http.StatusNotImplemented, Err: errors.New("admin: menus are not configured")}
)

func (h *Handler) styles() (*style.Service, error) {
	if h.opts.Styles == nil {
		return nil, errNoStyles
	}
	return h.opts.Styles, nil
}

func (h *Handler) menus() (*menu.Service, error) {
	if h.opts.Menus == nil {
		return nil, errNoMenus
	}
	return h.opts.Menus, nil
}

func (h *Handler) saveStyle(r *http.Request) (Response, error) {
	styles, err := h.styles()
	if err != nil {
		return Response{}, err
	}
	if err := r.ParseForm(); err != nil {
		return Response{}, badRequest(err)
	}
	id, err := requiredID(r, "id")
	if err != nil {
		return Response{}, err
	}
	st, err := styles.Save(r.Context(), id, r.PostForm)
	if err != nil {
		return Response{}, err
	}
	return Response{Data: st}, nil
}

func (h *Handler) menuItems(r *http.Request) (Response, error) {
	menus, err := h.menus()
	if err != nil {
		return Response{}, err
	}
	menuType := strings.TrimSpace(r.FormValue("menutype"))
	if menuType == "" {
		return Response{}, badRequest(errors.New("menutype is required"))
	}
	html, err := menus.TreeHTML(r.Context(), menuType)
	if err != nil {
		return Response{}, err
	}
	return Response{Data: string(html)}, nil
}

func (h *Handler) rebuildMenu(r *http.Request) (Response, error) {
	menus, err := h.menus()
	if err != nil {
		return Response{}, err
	}
	return Response{}, menus.Rebuild(r.Context())
}

func (h *Handler) megaMenuBody(r *http.Request) (Response, error) {
	menus, err := h.menus()
	if err != nil {
		return Response{}, err
	}
	id, err := requiredID(r, "id")
	if err != nil {
		return Response{}, err
	}
	body, err := menus.MegaMenuBody(r.Context(), id)
	if err != nil {
		return Response{}, err
	}
	return Response{HTML: string(body.HTML), Title: body.Title}, nil
}

func (h *Handler) saveMegaMenu(r *http.Request) (Response, error) {
	menus, err := h.menus()
	if err != nil {
		return Response{}, err
	}
	id, err := requiredID(r, "id")
	if err != nil {
		return Response{}, err
	}
	raw := strings.TrimSpace(r.PostFormValue("settings"))
	if raw == "" {
		return Response{}, badRequest(errors.New("settings are required"))
	}
	var settings menu.MegaMenu
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return Response{}, badRequest(err)
	}
	if err := menus.SaveMegaMenu(r.Context(), id, settings); err != nil {
		return Response{}, err
	}
	return Response{Data: settings}, nil
}

func (h *Handler) parentAdoption(r *http.Request) (Response, error) {
	menus, err := h.menus()
	if err != nil {
		return Response{}, err
	}
	id, err := requiredID(r, "id")
	if err != nil {
		return Response{}, err
	}
	parent, err := optionalInt(r.PostFormValue("parent"))
	if err != nil {
		return Response{}, badRequest(fmt.Errorf("parent: %w", err))
	}
	return Response{}, menus.Adopt(r.Context(), id, int64(parent))
}

func (h *Handler) saveOrder(r *http.Request) (Response, error) {
	menus, err := h.menus()
	if err != nil {
		return Response{}, err
	}
	if err := r.ParseForm(); err != nil {
		return Response{}, badRequest(err)
	}
	ids, err := intList(formList(r, "cid"))
	if err != nil {
		return Response{}, badRequest(fmt.Errorf("cid: %w", err))
	}
	orders, err := intList(formList(r, "order"))
	if err != nil {
		return Response{}, badRequest(fmt.Errorf("order: %w", err))
	}
	cids := make([]int64, len(ids))
	for i, id := range ids {
		cids[i] = int64(id)
	}
	return Response{}, menus.SaveOrder(r.Context(), cids, orders)
}

func (h *Handler) trashItem(r *http.Request) (Response, error) {
	menus, err := h.menus()
	if err != nil {
		return Response{}, err
	}
	id, err := requiredID(r, "id")
	if err != nil {
		return Response{}, err
	}
	return Response{}, menus.Trash(r.Context(), id)
}

func (h *Handler) saveItem(r *http.Request) (Response, error) {
	menus, err := h.menus()
	if err != nil {
		return Response{}, err
	}
	id, err := optionalInt(r.PostFormValue("id"))
	if err != nil {
		return Response{}, badRequest(fmt.Errorf("id: %w", err))
	}
	parent, err := optionalInt(r.PostFormValue("parent_id"))
	if err != nil {
		return Response{}, badRequest(fmt.Errorf("parent_id: %w", err))
	}
	published := menu.StatePublished
	if raw := r.PostFormValue("published"); raw != "" {
		if published, err = strconv.Atoi(raw); err != nil {
			return Response{}, badRequest(fmt.Errorf("published: %w", err))
		}
	}

	item := &menu.Item{
		ID:        int64(id),
		MenuType:  r.PostFormValue("menutype"),
		Title:     r.PostFormValue("title"),
		Alias:     r.PostFormValue("alias"),
		Link:      r.PostFormValue("link"),
		ParentID:  int64(parent),
		Published: published,
	}
	if item.ID != 0 {
		current, err := menus.Item(r.Context(), item.ID)
		if err != nil {
			return Response{}, err
		}
		item.Params = current.Params
		item.Ordering = current.Ordering
	}
	if err := menus.Save(r.Context(), item); err != nil {
		return Response{}, err
	}
	return Response{Data: item}, nil
}

func (h *Handler) arrangeColumns(r *http.Request) (Response, error) {
	rows, err := postedLayout(r)
	if err != nil {
		return Response{}, err
	}
	index, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("row")))
	if err != nil {
		return Response{}, badRequest(fmt.Errorf("row: %w", err))
	}
	if index < 0 || index >= len(rows) {
		return Response{}, badRequest(fmt.Errorf("row %d out of range", index))
	}
	if err := rows[index].ArrangeColumns(r.PostFormValue("columns")); err != nil {
		return Response{}, err
	}
	out, err := layout.Marshal(rows)
	if err != nil {
		return Response{}, err
	}
	return Response{Data: json.RawMessage(out)}, nil
}

func (h *Handler) validateLayout(r *http.Request) (Response, error) {
	rows, err := postedLayout(r)
	if err != nil {
		return Response{}, err
	}
	if err := layout.Validate(rows); err != nil {
		return Response{}, badRequest(err)
	}
	return Response{Data: map[string]int{"rows": len(rows)}}, nil
}

func postedLayout(r *http.Request) (layout.Layout, error) {
	raw := r.PostFormValue("layout")
	if strings.TrimSpace(raw) == "" {
		return nil, badRequest(errors.New("layout is required"))
	}
	rows, err := layout.Parse([]byte(raw))
	if err != nil {
		return nil, badRequest(err)
	}
	return rows, nil
}

func requiredID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, badRequest(fmt.Errorf("%s is required", key))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Errorf("%s: invalid id %q", key, raw))
	}
	return id, nil
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// formList reads key[] values, falling back to repeated plain keys.
func formList(r *http.Request, key string) []string {
	if values := r.Form[key+"[]"]; len(values) > 0 {
		return values
	}
	return r.Form[key]
}

func intList(values []string) ([]int, error) {
	out := make([]int, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
