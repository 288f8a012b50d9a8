package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/goliatone/go-sitetheme/pkg/params"
)

// OptionsFile is the template file holding the default layout.
const OptionsFile = "options.json"

// ErrLayoutMissing is returned when a style has no saved layout and the
// template ships no default one.
var ErrLayoutMissing = errors.New("layout: default layout file does not exist, create a new layout in the template manager first")

// ParseOptionsFile extracts the layout from an options.json document. The
// layout field may hold the rows directly or a JSON encoded string of them.
func ParseOptionsFile(data []byte) (Layout, error) {
	var doc struct {
		Layout json.RawMessage `json:"layout"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("layout: decode %s: %w", OptionsFile, err)
	}
	if len(doc.Layout) == 0 {
		return nil, ErrEmptyLayout
	}
	return Parse(doc.Layout)
}

// Load returns the layout saved in style params, falling back to the
// template's options.json.
func Load(fsys afero.Fs, templateDir string, p params.Params) (Layout, error) {
	if raw, ok := p.Raw("layout"); ok {
		return Parse(raw)
	}
	return LoadDefault(fsys, templateDir)
}

// LoadDefault reads <templateDir>/options.json.
func LoadDefault(fsys afero.Fs, templateDir string) (Layout, error) {
	if fsys == nil {
		return nil, ErrLayoutMissing
	}
	file := filepath.Join(templateDir, OptionsFile)
	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrLayoutMissing
		}
		return nil, fmt.Errorf("layout: read %s: %w", file, err)
	}
	return ParseOptionsFile(data)
}
