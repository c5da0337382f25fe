package schema

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapgrid/internal/expr"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// Build turns the schema into grid options. When the schema declares no
// columns, inferred is used instead. The returned environment must be bound
// to the grid's rows once it exists (see expr.Env.BindRows).
func (f *File) Build(logger *slog.Logger, inferred []grid.Column) (grid.Options, *expr.Env, error) {
	helpers, err := expr.LoadHelpers(f.Dir(), f.Helpers)
	if err != nil {
		return grid.Options{}, nil, err
	}
	env, err := expr.NewEnv(logger, helpers)
	if err != nil {
		return grid.Options{}, nil, err
	}

	opts := grid.Options{
		Width:    f.Width,
		Settings: grid.DefaultSettings(),
		Logger:   logger,
	}
	if s := f.Settings; s != nil {
		if s.RowReorder != nil {
			opts.Settings.RowReorder = *s.RowReorder
		}
		if s.MultiSelect != nil {
			opts.Settings.MultiSelect = *s.MultiSelect
		}
	}

	if len(f.Columns) == 0 {
		opts.Columns = inferred
	}
	for _, spec := range f.Columns {
		col, err := spec.column(env)
		if err != nil {
			return grid.Options{}, nil, err
		}
		opts.Columns = append(opts.Columns, col)
	}

	for i, g := range f.Grouping {
		level, err := g.level(env, i)
		if err != nil {
			return grid.Options{}, nil, err
		}
		opts.Grouping = append(opts.Grouping, level)
	}

	if f.Sort != nil {
		dir, err := grid.ParseDirection(f.Sort.Direction)
		if err != nil {
			return grid.Options{}, nil, fieldError("sort.direction", err)
		}
		opts.Sort = grid.SortLevel{Column: f.Sort.Column, Direction: dir}
	}

	for i, p := range f.Filter {
		op, err := grid.ParseOperator(p.Op)
		if err != nil {
			return grid.Options{}, nil, fieldError(fmt.Sprintf("filter[%d].op", i), err)
		}
		opts.Filter = append(opts.Filter, grid.Predicate{Field: p.Field, Op: op, Value: p.Value})
	}

	for _, r := range f.Rows {
		opts.Rows = append(opts.Rows, grid.Row(r))
	}
	return opts, env, nil
}

func (s ColumnSpec) column(env *expr.Env) (grid.Column, error) {
	field := "columns." + s.Name
	col := grid.Column{
		Name:      s.Name,
		Label:     s.Label,
		Width:     s.Width,
		Fixed:     s.Fixed,
		Hidden:    s.Hidden,
		Editable:  s.Editable || s.EditableIf != "",
		Classes:   s.Classes,
		MinLength: s.MinLength,
		MaxLength: s.MaxLength,
		Options:   s.Options,
	}

	t, err := grid.ParseColumnType(s.Type)
	if err != nil {
		return col, fieldError(field+".type", err)
	}
	if s.Expr != "" && s.Type == "" {
		t = grid.TypeCustom
	}
	col.Type = t

	if col.Align, err = grid.ParseAlign(s.Align); err != nil {
		return col, fieldError(field+".align", err)
	}
	if col.Frozen, err = grid.ParseFrozenSide(s.Frozen); err != nil {
		return col, fieldError(field+".frozen", err)
	}

	switch {
	case s.Expr != "" && s.Format != "":
		return col, fieldError(field, fmt.Errorf("format and expr are mutually exclusive"))
	case s.Expr != "":
		p, err := env.Compile(field+".expr", s.Expr)
		if err != nil {
			return col, err
		}
		col.Format = grid.CustomFormat(p.FormatFunc())
	case s.Format != "":
		col.Format = grid.BuiltinFormat(s.Format)
	}

	if s.EditableIf != "" {
		p, err := env.Compile(field+".editable_if", s.EditableIf)
		if err != nil {
			return col, err
		}
		col.EditableFunc = p.EditableFunc()
	}
	if s.ClassExpr != "" {
		p, err := env.Compile(field+".class_expr", s.ClassExpr)
		if err != nil {
			return col, err
		}
		col.ClassFunc = p.ClassFunc()
	}
	if s.SortExpr != "" {
		p, err := env.Compile(field+".sort_expr", s.SortExpr)
		if err != nil {
			return col, err
		}
		col.SortValue = p.SortValueFunc()
	}
	return col, nil
}

func (g GroupSpec) level(env *expr.Env, i int) (grid.GroupLevel, error) {
	field := fmt.Sprintf("grouping[%d]", i)
	dir, err := grid.ParseDirection(g.Direction)
	if err != nil {
		return grid.GroupLevel{}, fieldError(field+".direction", err)
	}
	level := grid.GroupLevel{Column: g.Column, Direction: dir}

	if g.Header != "" {
		p, err := env.Compile(field+".header", g.Header)
		if err != nil {
			return level, err
		}
		level.Header = p.GroupRenderer()
	}
	if g.Footer != "" {
		p, err := env.Compile(field+".footer", g.Footer)
		if err != nil {
			return level, err
		}
		level.Footer = p.GroupRenderer()
	}
	return level, nil
}

func fieldError(field string, err error) error {
	return &grid.ConfigError{Field: field, Message: err.Error()}
}
