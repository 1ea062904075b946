package hooks

import (
	"context"

	"github.com/arloliu/heatgrid/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.State, types.State) error = (*NopHooks)(nil).OnStateChanged
	_ func(context.Context, int, types.Grid) error          = (*NopHooks)(nil).OnCollected
	_ func(context.Context, int, int) error                 = (*NopHooks)(nil).OnProgress
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}

	return types.Hooks{
		OnStateChanged: h.OnStateChanged,
		OnCollected:    h.OnCollected,
		OnProgress:     h.OnProgress,
	}
}

// Fill returns h with every nil callback replaced by its no-op version.
func Fill(h types.Hooks) types.Hooks {
	nop := NewNop()
	if h.OnStateChanged == nil {
		h.OnStateChanged = nop.OnStateChanged
	}
	if h.OnCollected == nil {
		h.OnCollected = nop.OnCollected
	}
	if h.OnProgress == nil {
		h.OnProgress = nop.OnProgress
	}

	return h
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(_ /* ctx */ context.Context, _ /* from */, _ /* to */ types.State) error {
	return nil
}

// OnCollected is a no-op implementation.
func (h *NopHooks) OnCollected(_ /* ctx */ context.Context, _ /* iteration */ int, _ /* grid */ types.Grid) error {
	return nil
}

// OnProgress is a no-op implementation.
func (h *NopHooks) OnProgress(_ /* ctx */ context.Context, _ /* iteration */, _ /* total */ int) error {
	return nil
}
