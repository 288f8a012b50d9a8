// Package apidoc holds the OpenAPI description of the admin AJAX API. The
// document is validated when loaded; its operations drive the method checks
// of the dispatcher and its TemplateStyleParams schema validates saved style
// params.
package apidoc

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ParamsSchema is the component schema style params are validated against.
const ParamsSchema = "TemplateStyleParams"

// ActionPrefix is the path prefix of every documented action.
const ActionPrefix = "/ajax/"

//go:embed openapi.json
var embedded []byte

// Raw returns the embedded document.
func Raw() []byte {
	out := make([]byte, len(embedded))
	copy(out, embedded)
	return out
}

// Action is one documented AJAX action.
type Action struct {
	Name    string
	Method  string
	Path    string
	Summary string
}

// Doc is a loaded and validated API document.
type Doc struct {
	raw     []byte
	spec    *openapi3.T
	actions map[string]Action
	params  *openapi3.Schema
}

// Load parses the embedded document.
func Load(ctx context.Context) (*Doc, error) {
	return Parse(ctx, embedded)
}

// Parse loads and validates data. The document must define the
// TemplateStyleParams component schema.
func Parse(ctx context.Context, data []byte) (*Doc, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(data) == 0 {
		return nil, errors.New("apidoc: document payload is empty")
	}

	var probe struct {
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("apidoc: decode document: %w", err)
	}
	if _, ok := probe.Components.Schemas[ParamsSchema]; !ok {
		return nil, fmt.Errorf("apidoc: document does not define %s", ParamsSchema)
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("apidoc: load document: %w", err)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("apidoc: validate: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("apidoc: document does not contain any paths")
	}

	ref := spec.Components.Schemas[ParamsSchema]
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("apidoc: schema %s is empty", ParamsSchema)
	}

	doc := &Doc{
		raw:     append([]byte(nil), data...),
		spec:    spec,
		actions: make(map[string]Action),
		params:  ref.Value,
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		doc.collect(http.MethodGet, path, item.Get)
		doc.collect(http.MethodPost, path, item.Post)
	}
	if len(doc.actions) == 0 {
		return nil, errors.New("apidoc: no actions documented")
	}
	return doc, nil
}

func (d *Doc) collect(method, path string, op *openapi3.Operation) {
	if op == nil || !strings.HasPrefix(path, ActionPrefix) {
		return
	}
	name := op.OperationID
	if name == "" {
		name = strings.TrimPrefix(path, ActionPrefix)
	}
	d.actions[name] = Action{
		Name:    name,
		Method:  method,
		Path:    path,
		Summary: op.Summary,
	}
}

// JSON returns the document as served to clients.
func (d *Doc) JSON() []byte {
	return d.raw
}

// Action returns the documented action name.
func (d *Doc) Action(name string) (Action, bool) {
	a, ok := d.actions[name]
	return a, ok
}

// Actions lists the documented actions sorted by name.
func (d *Doc) Actions() []Action {
	out := make([]Action, 0, len(d.actions))
	for _, a := range d.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValidateParams checks p against the TemplateStyleParams schema. Values are
// normalised through JSON first so stored and submitted params validate the
// same way.
func (d *Doc) ValidateParams(_ context.Context, p map[string]any) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("apidoc: encode params: %w", err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("apidoc: decode params: %w", err)
	}
	if err := d.params.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("apidoc: %s: %w", ParamsSchema, err)
	}
	return nil
}
