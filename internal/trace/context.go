package trace

import "context"

type ctxKey struct{}

// carrier is what a context holds: the tracer and the span new work runs
// under.
type carrier struct {
	tracer Tracer
	span   uint64
}

func lookup(ctx context.Context) carrier {
	if ctx != nil {
		if c, ok := ctx.Value(ctxKey{}).(carrier); ok {
			return c
		}
	}
	return carrier{tracer: Nop}
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer { return lookup(ctx).tracer }

// WithTracer attaches t to ctx with no current span.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, carrier{tracer: t})
}

// CurrentSpan returns the ID of the span ctx runs under, or 0.
func CurrentSpan(ctx context.Context) uint64 { return lookup(ctx).span }

// StartSpan begins a span as a child of the current one and returns a
// context in which it is current. When the scope is filtered out, ctx is
// returned unchanged.
func StartSpan(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	c := lookup(ctx)
	sp := Begin(c.tracer, scope, name, c.span)
	if sp.ID() == 0 {
		return ctx, sp
	}
	c.span = sp.ID()
	return context.WithValue(ctx, ctxKey{}, c), sp
}
