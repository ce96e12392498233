package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Wrap(CodeBackendDown, cause, "create checkout session")

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeBackendDown {
		t.Fatalf("unexpected code: %s", err.Code())
	}
}

func TestAsThroughFmtWrap(t *testing.T) {
	t.Parallel()

	inner := New(CodeSessionCreation, "backend rejected items")
	outer := fmt.Errorf("checkout: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if typed.Code() != CodeSessionCreation {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	err := New(CodeConfiguration, "backend url missing")
	if !IsCode(err, CodeConfiguration) {
		t.Fatal("expected IsCode to match")
	}
	if IsCode(err, CodeBackendDown) {
		t.Fatal("expected IsCode mismatch for other code")
	}
	if IsCode(errors.New("plain"), CodeInternal) {
		t.Fatal("plain errors carry no code")
	}
}

func TestDumpChain(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeDependency, errors.New("redis down"), "persist cart")
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code: %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(dump.Chain))
	}
}
