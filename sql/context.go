package sql

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Context carries everything a resolve call needs: the active namespace, the
// bound parameters of the execution, a tracer, a logger and the side channel
// DML statements report through. One context is created per top-level
// statement execution and never reused.
type Context struct {
	context.Context
	namespace Namespace
	params    map[string]interface{}
	functions *FunctionRegistry
	tracer    opentracing.Tracer
	logger    *logrus.Entry

	lastInsertID interface{}
	rowCount     int64
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithNamespace adds the given namespace to the context.
func WithNamespace(ns Namespace) ContextOption {
	return func(ctx *Context) {
		ctx.namespace = ns
	}
}

// WithParams adds the given bound parameters to the context.
func WithParams(params map[string]interface{}) ContextOption {
	return func(ctx *Context) {
		ctx.params = params
	}
}

// WithFunctions adds the given function registry to the context.
func WithFunctions(fr *FunctionRegistry) ContextOption {
	return func(ctx *Context) {
		ctx.functions = fr
	}
}

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// WithLogger adds the given logger to the context.
func WithLogger(l *logrus.Entry) ContextOption {
	return func(ctx *Context) {
		ctx.logger = l
	}
}

// NewContext creates a new execution context. Any aspect not configured via
// options takes its default: no namespace, empty parameters, the default
// function registry, a noop tracer and the standard logger.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context: ctx,
		tracer:  opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.functions == nil {
		c.functions = NewFunctionRegistry()
	}
	if c.logger == nil {
		c.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return c
}

// NewEmptyContext returns a default context with default values.
func NewEmptyContext() *Context { return NewContext(context.TODO()) }

// Namespace returns the namespace of this execution. It may be nil for
// executions that never touch a stored table.
func (c *Context) Namespace() Namespace { return c.namespace }

// Functions returns the function registry of this execution.
func (c *Context) Functions() *FunctionRegistry { return c.functions }

// Logger returns the logger of this execution.
func (c *Context) Logger() *logrus.Entry { return c.logger }

// Param returns the bound parameter with the given name. A missing parameter
// is a hard error, never a silent null.
func (c *Context) Param(name string) (interface{}, error) {
	if v, ok := c.params[name]; ok {
		return v, nil
	}
	return nil, ErrBindVarNotFound.New(name)
}

// Span creates a new tracing span with the given context. It returns the
// span and a new context that should be passed to all children of this span.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	ctx := opentracing.ContextWithSpan(c.Context, span)

	return span, c.WithContext(ctx)
}

// WithContext returns a new context with the given underlying context.
func (c *Context) WithContext(ctx context.Context) *Context {
	nc := *c
	nc.Context = ctx
	return &nc
}

// SetLastInsertID records the id of the last inserted row. A nil id means
// the statement produced no index-derived id.
func (c *Context) SetLastInsertID(id interface{}) { c.lastInsertID = id }

// LastInsertID returns the id recorded by the last INSERT of this execution.
func (c *Context) LastInsertID() interface{} { return c.lastInsertID }

// SetRowCount records the number of rows affected by a DML statement.
func (c *Context) SetRowCount(n int64) { c.rowCount = n }

// RowCount returns the number of rows affected in this execution.
func (c *Context) RowCount() int64 { return c.rowCount }
