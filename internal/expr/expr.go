// Package expr evaluates the Starlark expressions behind custom-function
// columns: display formats, sort values, editable predicates, cell classes
// and group header/footer text.
//
// Expressions see these locals:
//
//	value  the cell value (formats, sort values, classes)
//	row    the row as a dict
//	id     the row id (editable predicates)
//	group  struct(level, column, value, count, rows) for group renderers
//
// and these globals: fmt(tag, value) applying a builtin format, plus one
// namespace per loaded helper file.
package expr

import (
	"fmt"
	"log/slog"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// maxSteps bounds a single evaluation so a runaway expression cannot stall
// rendering.
const maxSteps = 100_000

// fileOptions enables the Starlark dialect features expressions may use.
var fileOptions = &syntax.FileOptions{Set: true}

// EvalError represents an error during Starlark expression evaluation.
type EvalError struct {
	File    string
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
}

// Env holds the globals shared by every expression of one grid.
type Env struct {
	logger  *slog.Logger
	globals starlark.StringDict
	pool    *threadPool

	mu   sync.RWMutex
	rows func(id int) (grid.Row, error)
}

// NewEnv creates an environment with the builtin globals plus helper
// namespaces. A helper namespace may not shadow a builtin.
func NewEnv(logger *slog.Logger, helpers starlark.StringDict) (*Env, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	globals := starlark.StringDict{
		"fmt": starlark.NewBuiltin("fmt", builtinFmt),
	}
	for name, v := range helpers {
		if _, ok := globals[name]; ok {
			return nil, fmt.Errorf("helper namespace %q conflicts with builtin", name)
		}
		globals[name] = v
	}
	globals.Freeze()

	return &Env{logger: logger, globals: globals, pool: newThreadPool(0)}, nil
}

// BindRows gives group renderers access to row data. Call it once the grid
// the renderers belong to exists.
func (e *Env) BindRows(rows func(id int) (grid.Row, error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = rows
}

// Program is a parsed expression bound to an environment.
type Program struct {
	env  *Env
	file string
	src  string
}

// Compile parses src, reporting syntax errors as *EvalError. file names the
// expression in errors, e.g. "columns.total.format".
func (e *Env) Compile(file, src string) (*Program, error) {
	if _, err := fileOptions.ParseExpr(file, src, 0); err != nil {
		return nil, &EvalError{File: file, Expr: src, Message: err.Error()}
	}
	return &Program{env: e, file: file, src: src}, nil
}

// Source returns the expression text.
func (p *Program) Source() string { return p.src }

// Eval evaluates the program with the given locals.
func (p *Program) Eval(locals starlark.StringDict) (starlark.Value, error) {
	env := make(starlark.StringDict, len(p.env.globals)+len(locals))
	for k, v := range p.env.globals {
		env[k] = v
	}
	for k, v := range locals {
		env[k] = v
	}

	thread := p.env.pool.get(p.file)
	thread.SetMaxExecutionSteps(thread.ExecutionSteps() + maxSteps)

	result, err := starlark.EvalOptions(fileOptions, thread, p.file, p.src, env)
	if err != nil {
		return nil, &EvalError{File: p.file, Expr: p.src, Message: err.Error()}
	}
	p.env.pool.put(thread)
	return result, nil
}

func (p *Program) cellLocals(value any, row grid.Row) (starlark.StringDict, error) {
	v, err := GoToStarlark(value)
	if err != nil {
		return nil, err
	}
	r, err := GoToStarlark(row)
	if err != nil {
		return nil, err
	}
	return starlark.StringDict{"value": v, "row": r}, nil
}

func (p *Program) evalCell(value any, row grid.Row) (starlark.Value, error) {
	locals, err := p.cellLocals(value, row)
	if err != nil {
		return nil, &EvalError{File: p.file, Expr: p.src, Message: err.Error()}
	}
	return p.Eval(locals)
}

func (p *Program) warn(err error) {
	p.env.logger.Warn("expression failed", slog.String("expr", p.file), "error", err)
}

// errorText is displayed in place of a failed format or group text.
const errorText = "#ERR"

// FormatFunc returns a cell formatter evaluating the program.
func (p *Program) FormatFunc() grid.FormatFunc {
	return func(value any, row grid.Row) string {
		v, err := p.evalCell(value, row)
		if err != nil {
			p.warn(err)
			return errorText
		}
		return toText(v)
	}
}

// ClassFunc returns a cell class function evaluating the program. A list
// result is joined with spaces.
func (p *Program) ClassFunc() grid.ClassFunc {
	return func(value any, row grid.Row) string {
		v, err := p.evalCell(value, row)
		if err != nil {
			p.warn(err)
			return ""
		}
		if it, ok := v.(starlark.Iterable); ok {
			if _, isStr := v.(starlark.String); !isStr {
				return joinClasses(it)
			}
		}
		return toText(v)
	}
}

func joinClasses(it starlark.Iterable) string {
	iter := it.Iterate()
	defer iter.Done()
	out := ""
	var x starlark.Value
	for iter.Next(&x) {
		s := toText(x)
		if s == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += s
	}
	return out
}

// SortValueFunc returns a sort-key extractor evaluating the program. Failed
// evaluations sort as nil, i.e. lowest.
func (p *Program) SortValueFunc() grid.SortValueFunc {
	return func(value any, row grid.Row) any {
		v, err := p.evalCell(value, row)
		if err != nil {
			p.warn(err)
			return nil
		}
		out, err := ToGo(v)
		if err != nil {
			p.warn(err)
			return nil
		}
		if i, ok := out.(int64); ok {
			return float64(i)
		}
		return out
	}
}

// EditableFunc returns a per-row editable predicate evaluating the program
// for truthiness. Failed evaluations make the cell read-only.
func (p *Program) EditableFunc() grid.EditableFunc {
	return func(row grid.Row, id int) bool {
		r, err := GoToStarlark(row)
		if err != nil {
			p.warn(err)
			return false
		}
		v, err := p.Eval(starlark.StringDict{"row": r, "id": starlark.MakeInt(id)})
		if err != nil {
			p.warn(err)
			return false
		}
		return bool(v.Truth())
	}
}

// GroupRenderer returns a group header/footer renderer evaluating the
// program with a "group" local.
func (p *Program) GroupRenderer() grid.GroupRenderer {
	return func(info grid.GroupInfo) string {
		g, err := p.env.groupValue(info)
		if err != nil {
			p.warn(err)
			return errorText
		}
		v, err := p.Eval(starlark.StringDict{"group": g})
		if err != nil {
			p.warn(err)
			return errorText
		}
		return toText(v)
	}
}

func (e *Env) groupValue(info grid.GroupInfo) (starlark.Value, error) {
	value, err := GoToStarlark(info.Value)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	lookup := e.rows
	e.mu.RUnlock()

	rows := make([]starlark.Value, 0, len(info.Rows))
	if lookup != nil {
		for _, id := range info.Rows {
			row, err := lookup(id)
			if err != nil {
				return nil, err
			}
			r, err := GoToStarlark(row)
			if err != nil {
				return nil, err
			}
			rows = append(rows, r)
		}
	}

	return starlarkstruct.FromStringDict(starlark.String("group"), starlark.StringDict{
		"level":  starlark.MakeInt(info.Level),
		"column": starlark.String(info.Column),
		"value":  value,
		"count":  starlark.MakeInt(len(info.Rows)),
		"rows":   starlark.NewList(rows),
	}), nil
}

// builtinFmt implements fmt(tag, value).
func builtinFmt(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var tag string
	var value starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "tag", &tag, "value", &value); err != nil {
		return nil, err
	}
	v, err := ToGo(value)
	if err != nil {
		return nil, err
	}
	s, err := grid.ApplyFormat(tag, v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.String(s), nil
}
