package distance

import (
	"errors"
	"testing"
)

func TestRegisterAndGet(t *testing.T) {
	resetRegistryForTests()
	t.Cleanup(resetRegistryForTests)

	if err := Register("first-axis", FunctionFunc(func(a, b []float64) float64 { return b[0] - a[0] })); err != nil {
		t.Fatalf("register: %v", err)
	}
	fn, err := Get("first-axis")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := fn.Evaluate([]float64{1}, []float64{4}); got != 3 {
		t.Fatalf("unexpected result: got=%f want=3", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	resetRegistryForTests()
	t.Cleanup(resetRegistryForTests)

	if err := Register("", FunctionFunc(func(a, b []float64) float64 { return 0 })); err == nil {
		t.Fatal("expected empty name error")
	}
	if err := Register("nil", nil); err == nil {
		t.Fatal("expected nil function error")
	}
	if err := RegisterWithSpec(Spec{
		Name:          "bad-version",
		Func:          FunctionFunc(func(a, b []float64) float64 { return 0 }),
		SchemaVersion: 3,
		CodecVersion:  1,
	}); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got: %v", err)
	}
	if _, err := Get("bad-version"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("rejected spec must not be registered, got: %v", err)
	}
	if err := Register("L2", FunctionFunc(func(a, b []float64) float64 { return 0 })); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists for built-in, got: %v", err)
	}
}

func TestResolve(t *testing.T) {
	resetRegistryForTests()
	t.Cleanup(resetRegistryForTests)

	for _, name := range []string{"L2", "pL2", "l1", "COSINE", "manhattan"} {
		if _, err := Resolve(name); err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
	}
	if _, err := Resolve(""); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown for empty name, got: %v", err)
	}
	if _, err := Resolve("hamming"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got: %v", err)
	}
}

func TestUnregister(t *testing.T) {
	resetRegistryForTests()
	t.Cleanup(resetRegistryForTests)

	MustRegister("tmp", FunctionFunc(func(a, b []float64) float64 { return 1 }))
	Unregister("tmp")
	if _, err := Get("tmp"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown after unregister, got: %v", err)
	}
	Unregister("tmp")
}

func TestListSorted(t *testing.T) {
	resetRegistryForTests()
	t.Cleanup(resetRegistryForTests)

	MustRegister("zeta", FunctionFunc(func(a, b []float64) float64 { return 0 }))
	names := List()
	if len(names) != 5 {
		t.Fatalf("expected 4 built-ins plus one custom, got: %+v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %+v", names)
		}
	}
}
