// Package scaffold writes the options.json of a new template from answers
// to a short series of prompts.
package scaffold

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/spf13/afero"

	"github.com/goliatone/go-sitetheme/pkg/layout"
)

// ErrExists is returned when the template already has an options.json the
// user chose to keep.
var ErrExists = errors.New("scaffold: options file exists")

// Splits are the column arrangements offered for a row.
var Splits = []string{"12", "6+6", "4+8", "8+4", "3+9", "9+3", "4+4+4", "3+6+3", "3+3+3+3"}

// Presets are the colour presets a template can start with.
var Presets = []string{"preset1", "preset2", "preset3", "preset4"}

var suggestedRows = []string{"Header", "Main Body", "Footer"}

var templateName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Result describes a written options file.
type Result struct {
	Template string
	Path     string
	Preset   string
	Layout   layout.Layout
}

// Scaffolder asks for a template layout and writes it below root.
type Scaffolder struct {
	prompt Prompter
	fs     afero.Fs
	root   string
}

func New(prompt Prompter, fs afero.Fs, root string) *Scaffolder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Scaffolder{prompt: prompt, fs: fs, root: root}
}

// Run asks for the template name, its rows and the component column, then
// writes <root>/templates/<name>/options.json.
func (s *Scaffolder) Run(ctx context.Context) (Result, error) {
	if s.prompt == nil {
		return Result{}, errors.New("scaffold: no prompter")
	}

	name, err := s.prompt.Text(ctx, Question{
		Prompt:  "Template name",
		Default: "shaper",
		Check:   validateTemplateName,
	})
	if err != nil {
		return Result{}, err
	}
	if err := validateTemplateName(name); err != nil {
		return Result{}, err
	}

	dir := filepath.Join(s.root, "templates", name)
	file := filepath.Join(dir, layout.OptionsFile)
	if ok, _ := afero.Exists(s.fs, file); ok {
		overwrite, err := s.prompt.YesNo(ctx, fmt.Sprintf("%s exists, overwrite it?", file))
		if err != nil {
			return Result{}, err
		}
		if !overwrite {
			return Result{}, ErrExists
		}
	}

	presetIdx, err := s.prompt.Pick(ctx, "Colour preset", Presets, 0)
	if err != nil {
		return Result{}, err
	}
	if presetIdx < 0 || presetIdx >= len(Presets) {
		presetIdx = 0
	}

	rows, err := s.askRows(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := s.askComponent(ctx, rows); err != nil {
		return Result{}, err
	}
	if err := layout.Validate(rows); err != nil {
		return Result{}, fmt.Errorf("scaffold: %w", err)
	}

	raw, err := layout.Marshal(rows)
	if err != nil {
		return Result{}, fmt.Errorf("scaffold: %w", err)
	}
	doc, err := json.MarshalIndent(map[string]any{
		"preset": Presets[presetIdx],
		"layout": json.RawMessage(raw),
	}, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("scaffold: encode options: %w", err)
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("scaffold: %w", err)
	}
	if err := afero.WriteFile(s.fs, file, append(doc, '\n'), 0o644); err != nil {
		return Result{}, fmt.Errorf("scaffold: write %s: %w", file, err)
	}
	if err := s.prompt.Note(ctx, "wrote "+file); err != nil {
		return Result{}, err
	}
	return Result{Template: name, Path: file, Preset: Presets[presetIdx], Layout: rows}, nil
}

func (s *Scaffolder) askRows(ctx context.Context) (layout.Layout, error) {
	var rows layout.Layout
	for {
		suggestion := ""
		if len(rows) < len(suggestedRows) {
			suggestion = suggestedRows[len(rows)]
		}
		rowName, err := s.prompt.Text(ctx, Question{
			Prompt:  fmt.Sprintf("Row %d name (empty to finish)", len(rows)+1),
			Default: suggestion,
		})
		if err != nil {
			return nil, err
		}
		if rowName == "" {
			if len(rows) > 0 {
				return rows, nil
			}
			if err := s.prompt.Note(ctx, "a layout needs at least one row"); err != nil {
				return nil, err
			}
			continue
		}

		splitIdx, err := s.prompt.Pick(ctx, fmt.Sprintf("Columns of %q", rowName), Splits, 0)
		if err != nil {
			return nil, err
		}
		if splitIdx < 0 || splitIdx >= len(Splits) {
			splitIdx = 0
		}

		row := layout.NewRow()
		row.Settings.Name = rowName
		if err := row.ArrangeColumns(Splits[splitIdx]); err != nil {
			return nil, fmt.Errorf("scaffold: %w", err)
		}
		for i := range row.Columns {
			position, err := s.prompt.Text(ctx, Question{
				Prompt:  fmt.Sprintf("Module position of %q column %d (%d units)", rowName, i+1, row.Columns[i].Settings.GridSize),
				Default: positionSuggestion(rowName, i, len(row.Columns)),
			})
			if err != nil {
				return nil, err
			}
			if position != "" {
				row.Columns[i].Settings.Name = position
			}
		}
		rows = append(rows, row)
	}
}

func (s *Scaffolder) askComponent(ctx context.Context, rows layout.Layout) error {
	type cell struct{ row, col int }
	options := []string{"none"}
	cells := []cell{{-1, -1}}
	defaultIdx := 0
	for i, row := range rows {
		for j, col := range row.Columns {
			options = append(options, fmt.Sprintf("%s / %s", row.Settings.Name, col.Position()))
			cells = append(cells, cell{i, j})
			if defaultIdx == 0 && layout.URLSafe(row.Settings.Name) == "main-body" {
				defaultIdx = len(options) - 1
			}
		}
	}

	idx, err := s.prompt.Pick(ctx, "Component area", options, defaultIdx)
	if err != nil {
		return err
	}
	if idx <= 0 || idx >= len(cells) {
		return nil
	}
	c := cells[idx]
	rows[c.row].Columns[c.col].Settings.Name = ""
	return rows.SetComponent(c.row, c.col)
}

func positionSuggestion(rowName string, col, cols int) string {
	slug := layout.URLSafe(rowName)
	if slug == "" {
		return ""
	}
	if cols == 1 {
		return slug
	}
	return slug + strconv.Itoa(col+1)
}

func validateTemplateName(name string) error {
	if !templateName.MatchString(name) {
		return fmt.Errorf("scaffold: template name %q must be lowercase letters, digits, - or _", name)
	}
	return nil
}
