// Package style stores template styles: the named parameter sets the admin
// edits for a template, with a revision kept on every save.
package style

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/params"
)

var (
	// ErrNotFound is returned for unknown styles.
	ErrNotFound = errors.New("style: not found")
	// ErrNoParams is returned when a save carries no parameters.
	ErrNoParams = errors.New("style: no parameters submitted")
	// ErrInvalidParams wraps layout and validator failures on save.
	ErrInvalidParams = errors.New("style: invalid params")
)

// Style is a saved parameter set of a template.
type Style struct {
	ID       int64         `json:"id"`
	Template string        `json:"template"`
	Title    string        `json:"title"`
	Home     bool          `json:"home"`
	Params   params.Params `json:"params"`
	Updated  time.Time     `json:"updated"`
}

// Revision is a snapshot of a style's params taken when it was saved.
type Revision struct {
	ID      string        `json:"id"`
	StyleID int64         `json:"style_id"`
	Params  params.Params `json:"params"`
	Created time.Time     `json:"created"`
}

// Store persists styles and revisions.
type Store interface {
	Style(ctx context.Context, id int64) (Style, error)
	// DefaultStyle returns the home style of a template, or of any
	// template when name is empty.
	DefaultStyle(ctx context.Context, template string) (Style, error)
	SaveStyle(ctx context.Context, s Style) error
	AddRevision(ctx context.Context, r Revision) error
	Revisions(ctx context.Context, styleID int64) ([]Revision, error)
}

// Validator checks params before they are stored.
type Validator interface {
	ValidateParams(ctx context.Context, p map[string]any) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, p map[string]any) error

// ValidateParams calls f.
func (f ValidatorFunc) ValidateParams(ctx context.Context, p map[string]any) error {
	return f(ctx, p)
}

// Option configures a Service.
type Option func(*Service)

// WithValidator validates params on save.
func WithValidator(v Validator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEntropy sets the random source used for revision ids.
func WithEntropy(r io.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.entropy = r
		}
	}
}

// Service reads and saves styles.
type Service struct {
	store     Store
	validator Validator
	now       func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

// NewService returns a Service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		now:     time.Now,
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns a style.
func (s *Service) Get(ctx context.Context, id int64) (Style, error) {
	st, err := s.store.Style(ctx, id)
	if err != nil {
		return Style{}, fmt.Errorf("style: load %d: %w", id, err)
	}
	return st, nil
}

// Default returns the home style of template.
func (s *Service) Default(ctx context.Context, template string) (Style, error) {
	st, err := s.store.DefaultStyle(ctx, template)
	if err != nil {
		return Style{}, fmt.Errorf("style: load default for %q: %w", template, err)
	}
	return st, nil
}

// Save merges the submitted form into the style params, validates them,
// stores a revision and returns the saved style.
func (s *Service) Save(ctx context.Context, id int64, form url.Values) (Style, error) {
	submitted := DecodeForm(form)
	if len(submitted) == 0 {
		return Style{}, ErrNoParams
	}
	return s.SaveParams(ctx, id, submitted)
}

// SaveParams merges p into the style params and stores the result.
func (s *Service) SaveParams(ctx context.Context, id int64, p params.Params) (Style, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return Style{}, err
	}

	merged := st.Params.Clone().Merge(p)
	if raw, ok := merged.Raw("layout"); ok {
		rows, err := layout.Parse(raw)
		if err != nil {
			return Style{}, fmt.Errorf("%w: layout: %w", ErrInvalidParams, err)
		}
		if err := layout.Validate(rows); err != nil {
			return Style{}, fmt.Errorf("%w: layout: %w", ErrInvalidParams, err)
		}
		normalized, err := layout.Marshal(rows)
		if err != nil {
			return Style{}, fmt.Errorf("style: layout: %w", err)
		}
		merged.Set("layout", string(normalized))
	}
	if s.validator != nil {
		if err := s.validator.ValidateParams(ctx, merged); err != nil {
			return Style{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
	}

	now := s.now().UTC()
	st.Params = merged
	st.Updated = now
	if err := s.store.SaveStyle(ctx, st); err != nil {
		return Style{}, fmt.Errorf("style: save %d: %w", id, err)
	}

	rev := Revision{
		ID:      s.newID(now),
		StyleID: st.ID,
		Params:  merged.Clone(),
		Created: now,
	}
	if err := s.store.AddRevision(ctx, rev); err != nil {
		return Style{}, fmt.Errorf("style: revision %d: %w", id, err)
	}
	return st, nil
}

// Revisions lists the revisions of a style, newest first.
func (s *Service) Revisions(ctx context.Context, id int64) ([]Revision, error) {
	revs, err := s.store.Revisions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("style: revisions %d: %w", id, err)
	}
	sort.SliceStable(revs, func(i, j int) bool {
		return revs[i].ID > revs[j].ID
	})
	return revs, nil
}

// Restore saves the params of a revision as the current style params.
func (s *Service) Restore(ctx context.Context, id int64, revisionID string) (Style, error) {
	revs, err := s.store.Revisions(ctx, id)
	if err != nil {
		return Style{}, fmt.Errorf("style: revisions %d: %w", id, err)
	}
	for _, rev := range revs {
		if rev.ID == revisionID {
			return s.SaveParams(ctx, id, rev.Params)
		}
	}
	return Style{}, fmt.Errorf("%w: revision %s", ErrNotFound, revisionID)
}

func (s *Service) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// DecodeForm extracts style params from a submitted form. Both
// jform[params][key] fields and plain keys are accepted; the former win.
// Array fields (key[]) become lists and values that hold JSON documents are
// kept as strings, as stored by the admin.
func DecodeForm(form url.Values) params.Params {
	out := params.Params{}
	nested := map[string]bool{}
	for key, values := range form {
		name, isParam := paramName(key)
		if name == "" || len(values) == 0 {
			continue
		}
		if !isParam && (nested[name] || reserved[name]) {
			continue
		}
		if isParam {
			nested[name] = true
		}
		if strings.HasSuffix(key, "[]") {
			out.Set(name, append([]string(nil), values...))
			continue
		}
		out.Set(name, values[len(values)-1])
	}
	return out
}

var reserved = map[string]bool{
	"option": true,
	"task":   true,
	"action": true,
	"helix":  true,
	"format": true,
	"view":   true,
	"id":     true,
}

func paramName(key string) (string, bool) {
	key = strings.TrimSuffix(key, "[]")
	const prefix = "jform[params]["
	if strings.HasPrefix(key, prefix) {
		return strings.TrimSuffix(strings.TrimPrefix(key, prefix), "]"), true
	}
	if strings.ContainsAny(key, "[]") {
		return "", false
	}
	return key, false
}

// ParamsJSON encodes params for storage.
func ParamsJSON(p params.Params) (string, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("style: encode params: %w", err)
	}
	return string(data), nil
}
