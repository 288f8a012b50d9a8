package layout

import (
	"context"
	"strconv"
	"strings"
)

// PositionChecker reports whether a module position has anything to render
// (modules or features).
type PositionChecker interface {
	HasModules(ctx context.Context, position string) bool
}

// PositionCheckerFunc adapts a function to PositionChecker.
type PositionCheckerFunc func(ctx context.Context, position string) bool

// HasModules implements PositionChecker.
func (f PositionCheckerFunc) HasModules(ctx context.Context, position string) bool {
	return f(ctx, position)
}

// ResolveOptions carries the request state used when resolving rows.
type ResolveOptions struct {
	Positions PositionChecker
	// Disabled reports positions switched off for the current request.
	Disabled func(position string) bool
}

// ResolvedColumn is a column ready for markup.
type ResolvedColumn struct {
	Position  string
	Component bool
	GridSize  int
	ClassName string
	Settings  ColumnSettings
}

// ResolvedRow is a section ready for markup.
type ResolvedRow struct {
	Index         int
	ID            string
	Semantic      string
	Classes       string
	Fluid         bool
	ComponentArea bool
	Settings      RowSettings
	Columns       []ResolvedColumn
}

// Resolve drops empty module columns from row and hands their width to the
// component column, or to the last remaining column when the row has no
// component. ok is false when no column is left.
func Resolve(ctx context.Context, index int, row Row, opts ResolveOptions) (ResolvedRow, bool) {
	inactive := 0
	hasComponent := false
	kept := make([]Column, 0, len(row.Columns))

	for _, col := range row.Columns {
		if col.IsComponent() {
			hasComponent = true
			kept = append(kept, col)
			continue
		}
		position := col.Position()
		if !opts.hasModules(ctx, position) || opts.disabled(position) {
			inactive += col.Settings.GridSize
			continue
		}
		kept = append(kept, col)
	}

	if len(kept) == 0 {
		return ResolvedRow{}, false
	}

	resolved := ResolvedRow{
		Index:         index,
		ID:            SectionID(row.Settings, index),
		Semantic:      Semantic(row.Settings.Name),
		Classes:       row.Settings.Classes(),
		Fluid:         row.Settings.FluidRow,
		ComponentArea: hasComponent,
		Settings:      row.Settings,
		Columns:       make([]ResolvedColumn, 0, len(kept)),
	}

	for i, col := range kept {
		size := col.Settings.GridSize
		if col.IsComponent() || (!hasComponent && i == len(kept)-1) {
			size += inactive
		}
		resolved.Columns = append(resolved.Columns, ResolvedColumn{
			Position:  col.Position(),
			Component: col.IsComponent(),
			GridSize:  size,
			ClassName: ColumnClass(col.Settings, size),
			Settings:  col.Settings,
		})
	}
	return resolved, true
}

// ColumnClass builds the responsive grid classes for a column rendered with
// the given large-screen width. An explicit lg_col wins over size for module
// columns; the component column always takes size.
func ColumnClass(s ColumnSettings, size int) string {
	lg := size
	if !s.ColumnType && s.LGCol > 0 {
		lg = s.LGCol
	}

	classes := make([]string, 0, 7)
	if s.XSCol > 0 {
		classes = append(classes, "col-"+strconv.Itoa(s.XSCol))
	}
	if s.SMCol > 0 {
		classes = append(classes, "col-sm-"+strconv.Itoa(s.SMCol))
	}
	if s.MDCol > 0 {
		classes = append(classes, "col-md-"+strconv.Itoa(s.MDCol))
	}
	classes = append(classes, "col-lg-"+strconv.Itoa(lg))
	if s.XLCol > 0 {
		classes = append(classes, "col-xl-"+strconv.Itoa(s.XLCol))
	}
	if device := s.DeviceClass(); device != "" {
		classes = append(classes, device)
	}
	return strings.Join(classes, " ")
}

// DisabledOnArticle reports whether position is switched off because the
// request shows a single article and side modules are disabled there.
func DisabledOnArticle(position, view string, disableModule bool) bool {
	if view != "article" || !disableModule {
		return false
	}
	return position == "left" || position == "right"
}

func (o ResolveOptions) hasModules(ctx context.Context, position string) bool {
	if o.Positions == nil {
		return false
	}
	return o.Positions.HasModules(ctx, position)
}

func (o ResolveOptions) disabled(position string) bool {
	if o.Disabled == nil {
		return false
	}
	return o.Disabled(position)
}
