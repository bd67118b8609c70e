package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/coursechat/coursechat/internal/models"
	"github.com/rs/zerolog/log"
)

// Registry owns the name -> Tool mapping and isolates tool failures: Execute
// always returns a textual result the LLM can react to, never an error.
//
// The registration set is built once at startup and read-only afterwards.
// The source accumulator is request-scoped: reset at the start of a query,
// read once at the end. Concurrent queries sharing one Registry must
// serialize that reset/read externally.
type Registry struct {
	tools map[string]Tool
	order []string

	mu   sync.Mutex
	last Tool // most recently executed tool since the last reset
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Duplicate or nameless registrations are configuration
// errors and are rejected; last-registered-wins is deliberately not the policy.
func (r *Registry) Register(t Tool) error {
	name := t.Definition().Name
	if name == "" {
		return fmt.Errorf("tool definition must have a 'name'")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q is already registered", name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Definitions returns the advertised capability set in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches to the named tool. A missing tool or a failing tool
// produces a diagnostic string, never an error: the result must become a
// tool_result block the model can incorporate into its answer.
func (r *Registry) Execute(ctx context.Context, name string, input map[string]interface{}) string {
	t, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name)
	}

	r.mu.Lock()
	r.last = t
	r.mu.Unlock()

	out, err := runTool(ctx, t, input)
	if err != nil {
		log.Warn().Err(err).Str("tool", name).Msg("tool execution error")
		return fmt.Sprintf("Tool execution error: %v", err)
	}
	return out
}

// runTool converts a panicking tool into an error so Execute can report it
// conversationally instead of taking the whole query down.
func runTool(ctx context.Context, t Tool, input map[string]interface{}) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool panicked: %v", rec)
		}
	}()
	return t.Execute(ctx, input)
}

// LastSources returns the sources recorded by the most recently executed tool,
// or nil if none has run since the last reset.
func (r *Registry) LastSources() []models.Source {
	r.mu.Lock()
	last := r.last
	r.mu.Unlock()
	if last == nil {
		return nil
	}
	return last.LastSources()
}

// ResetSources clears every registered tool's recorded sources so the next
// query starts clean.
func (r *Registry) ResetSources() {
	r.mu.Lock()
	r.last = nil
	r.mu.Unlock()
	for _, name := range r.order {
		r.tools[name].ResetSources()
	}
}
