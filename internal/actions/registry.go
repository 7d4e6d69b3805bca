package actions

import (
	"context"
	"fmt"

	"touchbase/internal/types"
)

// ErrUnknownCommand is returned by Registry.Dispatch when no handler is
// registered for an Action's command tag. The processor treats it like any
// other per-action failure: log, skip, continue the run.
var ErrUnknownCommand = fmt.Errorf("actions: unknown command tag")

// Registry maps command tags to their effect handlers. It is populated
// once at startup and read-only afterwards, so no locking is needed.
type Registry struct {
	handlers map[types.CommandTag]CommandHandler
}

// NewRegistry creates a Registry with the given handlers pre-registered.
func NewRegistry(handlers ...CommandHandler) *Registry {
	r := &Registry{handlers: make(map[types.CommandTag]CommandHandler, len(handlers))}
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

// Register adds a handler, replacing any previous handler for the same tag.
func (r *Registry) Register(h CommandHandler) {
	r.handlers[h.Tag()] = h
}

// Dispatch executes the effect of the Action's command via the handler
// registered for its tag. Returns ErrUnknownCommand (wrapped with the tag)
// when no handler matches.
func (r *Registry) Dispatch(ctx context.Context, action *types.Action) error {
	h, ok := r.handlers[action.Command.Tag]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, action.Command.Tag)
	}
	return h.Execute(ctx, action)
}
