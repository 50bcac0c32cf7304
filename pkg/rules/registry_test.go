package rules_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-storefront/pkg/rules"
)

func TestRegistryRegisterAndCall(t *testing.T) {
	registry := rules.NewFunctionRegistry()

	err := registry.Register("Double", func(args ...any) (any, error) {
		n, _ := args[0].(int)
		return n * 2, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Lookup is case-insensitive.
	got, err := registry.Call("double", 21)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := rules.NewFunctionRegistry()
	fn := func(args ...any) (any, error) { return nil, nil }

	if err := registry.Register("fn", fn); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := registry.Register("FN", fn); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestRegistryRejectsNilAndEmpty(t *testing.T) {
	registry := rules.NewFunctionRegistry()

	if err := registry.Register("fn", nil); err == nil {
		t.Fatalf("expected nil function to be rejected")
	}
	if err := registry.Register("", func(args ...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
}

func TestRegistryCallUnknown(t *testing.T) {
	registry := rules.NewFunctionRegistry()

	if _, err := registry.Call("missing"); err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected a not-registered error, got %v", err)
	}
}

func TestRegistryCloneIsIndependent(t *testing.T) {
	registry := rules.DefaultRegistry()
	clone := registry.Clone()

	if err := clone.Register("extra", func(args ...any) (any, error) { return nil, nil }); err != nil {
		t.Fatalf("register on clone: %v", err)
	}
	for _, name := range registry.Names() {
		if name == "extra" {
			t.Fatalf("expected the original registry to be untouched")
		}
	}
}

func TestDefaultRegistryNames(t *testing.T) {
	names := rules.DefaultRegistry().Names()
	want := []string{"blank", "trimlen"}
	if len(names) != len(want) {
		t.Fatalf("expected names %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected names %v, got %v", want, names)
		}
	}
}
