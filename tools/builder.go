// Package tools builds agent tools and exposes the financial calculators as
// tools.
package tools

import (
	"context"
	"encoding/json"

	"github.com/filipexcode/AssistenteFinanceiro/core"
)

// HandlerFunc is the short form of a tool handler: it receives the raw
// input and returns any JSON-encodable value. A returned error becomes a
// failed ToolResult.
type HandlerFunc func(ctx context.Context, input json.RawMessage) (interface{}, error)

// Handler is the full form of a tool handler.
type Handler func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error)

// Builder assembles a Tool step by step.
type Builder struct {
	name        string
	description string
	schema      map[string]interface{}
	handler     Handler
}

// New starts building a tool called name.
func New(name string) *Builder {
	return &Builder{
		name:   name,
		schema: ObjectSchema(map[string]interface{}{}),
	}
}

// Description sets the text the model reads to decide when to call the tool.
func (b *Builder) Description(desc string) *Builder {
	b.description = desc
	return b
}

// Schema sets the input schema.
func (b *Builder) Schema(schema map[string]interface{}) *Builder {
	b.schema = schema
	return b
}

// Handler sets the full handler.
func (b *Builder) Handler(h Handler) *Builder {
	b.handler = h
	return b
}

// HandlerFunc sets a short-form handler.
func (b *Builder) HandlerFunc(fn HandlerFunc) *Builder {
	b.handler = func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		data, err := fn(ctx, params.Input)
		if err != nil {
			return &core.ToolResult{Success: false, Error: err.Error()}, nil
		}
		return &core.ToolResult{Success: true, Data: data}, nil
	}
	return b
}

// Build returns the finished tool. It panics if no handler was set.
func (b *Builder) Build() core.Tool {
	if b.handler == nil {
		panic("tools: " + b.name + " has no handler")
	}
	return &builtTool{
		name:        b.name,
		description: b.description,
		schema:      b.schema,
		handler:     b.handler,
	}
}

type builtTool struct {
	name        string
	description string
	schema      map[string]interface{}
	handler     Handler
}

func (t *builtTool) Name() string                   { return t.name }
func (t *builtTool) Description() string            { return t.description }
func (t *builtTool) Schema() map[string]interface{} { return t.schema }

func (t *builtTool) Execute(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
	if params == nil {
		params = &core.ToolParams{}
	}
	return t.handler(ctx, params)
}
