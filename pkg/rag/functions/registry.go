package functions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

var (
	ErrUnknownFunction = errors.New("unknown function")
	ErrFunctionPanic   = errors.New("function panicked")
)

// Func computes one result for a scope. Implementations must not read
// outside scope.
type Func func(ctx context.Context, src LiveDataSource, scope store.Scope) (*Result, error)

// ActionTemplate renders a follow-up link. "{development}" in Href is
// replaced with the scoped development; TenantHref is used when the scope
// has none.
type ActionTemplate struct {
	Label      string
	Href       string
	TenantHref string
}

func (t ActionTemplate) Render(scope store.Scope, baseURL string) Action {
	href := t.TenantHref
	if scope.HasDevelopment() || href == "" {
		href = strings.ReplaceAll(t.Href, "{development}", url.PathEscape(scope.DevelopmentID))
	}
	return Action{Label: t.Label, Href: strings.TrimRight(baseURL, "/") + href}
}

type Definition struct {
	Name   string
	Title  string
	Action *ActionTemplate
	Run    Func
}

// Registry is the closed set of live data functions. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	source  LiveDataSource
	baseURL string
	defs    map[string]Definition
	order   []string
}

func NewRegistry(source LiveDataSource, baseURL string) *Registry {
	return newRegistry(source, baseURL, builtins())
}

func newRegistry(source LiveDataSource, baseURL string, defs []Definition) *Registry {
	r := &Registry{
		source:  source,
		baseURL: baseURL,
		defs:    make(map[string]Definition, len(defs)),
	}
	for _, d := range defs {
		r.defs[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Action returns the rendered follow-up link for a function, if it has one.
func (r *Registry) Action(name string, scope store.Scope) (Action, bool) {
	d, ok := r.defs[name]
	if !ok || d.Action == nil {
		return Action{}, false
	}
	return d.Action.Render(scope, r.baseURL), true
}

// Invoke runs one function. The call returns when the function finishes or
// ctx is done, whichever comes first; a function that ignores ctx is
// abandoned. A panic inside the function becomes ErrFunctionPanic.
func (r *Registry) Invoke(ctx context.Context, name string, scope store.Scope) (*Result, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("%w: %s: %v", ErrFunctionPanic, name, p)}
			}
		}()
		res, err := def.Run(ctx, r.source, scope)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if out.res == nil {
			return nil, fmt.Errorf("%s returned no result", name)
		}
		out.res.Name = def.Name
		if out.res.Title == "" {
			out.res.Title = def.Title
		}
		return out.res, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", name, ctx.Err())
	}
}
