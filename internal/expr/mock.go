package expr

// MockHost is a deterministic, dependency-free Host for unit tests: it
// does not parse JavaScript at all, it just records injected bindings and
// looks up a canned result per exact code string. Tests that exercise the
// compiler or interpreter without caring about real expression semantics
// configure Results directly instead of writing JavaScript fixtures.
type MockHost struct {
	// Results maps a code snippet to the value Execute should return for
	// it. A missing entry returns (nil, nil): most fixtures only care
	// about catch-all transitions and unconditioned text functions, which
	// tolerate a null result.
	Results map[string]any

	// Injected records the last round of Inject calls, cleared by the
	// following Execute, mirroring GojaHost's pending-binding semantics.
	Injected map[string]any

	pending map[string]any
}

func NewMockHost() *MockHost {
	return &MockHost{
		Results:  make(map[string]any),
		Injected: make(map[string]any),
		pending:  make(map[string]any),
	}
}

func (m *MockHost) Compile(code string) error { return nil }

func (m *MockHost) Execute(code string) (any, error) {
	m.Injected = m.pending
	m.pending = make(map[string]any)
	if v, ok := m.Results[code]; ok {
		return v, nil
	}
	return nil, nil
}

func (m *MockHost) Inject(name string, value any) {
	m.pending[name] = value
}

func (m *MockHost) IsTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
