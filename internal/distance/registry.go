package distance

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

const (
	SupportedSchemaVersion = 1
	SupportedCodecVersion  = 1
)

var (
	ErrExists  = errors.New("distance function already registered")
	ErrUnknown = errors.New("unknown distance function")
	ErrVersion = errors.New("distance function version mismatch")
)

type Spec struct {
	Name          string
	Func          Function
	SchemaVersion int
	CodecVersion  int
}

// Versions are checked once at registration; entries are stored as plain
// functions.
var registry = struct {
	mu sync.RWMutex
	m  map[string]Function
}{
	m: make(map[string]Function),
}

func init() {
	initializeBuiltIns()
}

func initializeBuiltIns() {
	for _, kind := range []Kind{L2, PL2, Manhattan, Cosine} {
		fn, err := kind.Function()
		if err != nil {
			panic(err)
		}
		MustRegister(kind.String(), fn)
	}
}

func Register(name string, fn Function) error {
	return RegisterWithSpec(Spec{
		Name:          name,
		Func:          fn,
		SchemaVersion: SupportedSchemaVersion,
		CodecVersion:  SupportedCodecVersion,
	})
}

func MustRegister(name string, fn Function) {
	if err := Register(name, fn); err != nil {
		panic(err)
	}
}

func RegisterWithSpec(spec Spec) error {
	if spec.Name == "" {
		return errors.New("distance function name is required")
	}
	if spec.Func == nil {
		return errors.New("distance function is required")
	}
	if spec.SchemaVersion != SupportedSchemaVersion || spec.CodecVersion != SupportedCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersion, spec.SchemaVersion, spec.CodecVersion)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrExists, spec.Name)
	}
	registry.m[spec.Name] = spec.Func
	return nil
}

// Unregister removes a previously registered function. Removing a name
// that is not registered is a no-op.
func Unregister(name string) {
	registry.mu.Lock()
	delete(registry.m, name)
	registry.mu.Unlock()
}

func Get(name string) (Function, error) {
	registry.mu.RLock()
	fn, ok := registry.m[name]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return fn, nil
}

// Resolve looks name up in the registry first, then falls back to the
// case-insensitive built-in names.
func Resolve(name string) (Function, error) {
	if fn, err := Get(name); err == nil {
		return fn, nil
	}
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return kind.Function()
}

func List() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetRegistryForTests() {
	registry.mu.Lock()
	registry.m = make(map[string]Function)
	registry.mu.Unlock()
	initializeBuiltIns()
}
