package expr

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// GojaHost is the default Host, backed by a single goja.Runtime shared
// for the lifetime of the process, holding the preloaded helper library
// and whatever globals a snippet leaks. mu serializes Execute/Compile/Inject, since
// a *goja.Runtime is not safe for concurrent use and the contract
// requires Execute to be atomic from the core's point of view.
type GojaHost struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	pending map[string]any
}

// NewGojaHost constructs a host and preloads the helper library. Failure
// to preload indicates a bug in helperLibrary itself, not caller input,
// so it panics rather than threading an error through every call site
// that constructs a host.
func NewGojaHost() *GojaHost {
	vm := goja.New()
	if _, err := vm.RunString(helperLibrary); err != nil {
		panic(fmt.Errorf("expr: failed to preload helper library: %w", err))
	}
	return &GojaHost{vm: vm, pending: make(map[string]any)}
}

func (h *GojaHost) Compile(code string) error {
	if code == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := goja.Compile("", wrap(code), true)
	return err
}

func (h *GojaHost) Execute(code string) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for name, value := range h.pending {
		h.vm.Set(name, value)
	}
	h.pending = make(map[string]any)

	v, err := h.vm.RunString(wrap(code))
	if err != nil {
		return nil, err
	}
	if goja.IsUndefined(v) {
		return nil, ErrUndefined
	}
	if goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}

func (h *GojaHost) Inject(name string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending[name] = value
}

func (h *GojaHost) IsTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// wrap runs code inside a block, not a function, so that the value of
// the snippet's last expression statement becomes the script's
// completion value, exactly as a bare condition like "q1.choice.index==0"
// expects. Strict mode plus block scoping means a snippet's own let/const
// declarations do not leak into the shared heap that later snippets and
// the preloaded helper library run against.
func wrap(code string) string {
	return "\"use strict\";{" + code + "}"
}
