package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	if meta := MetadataFor(Code("NOPE")); meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status for unknown code, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("redis down")
	err := Wrap(CodeDependency, cause, "storage read")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped error to unwrap to cause")
	}
	if !strings.Contains(err.Error(), "redis down") {
		t.Fatalf("expected cause in message, got %q", err.Error())
	}
}

func TestAsAndIsCodeThroughFmtWrap(t *testing.T) {
	inner := New(CodeValidation, "price must be positive").WithDetails(map[string]string{"price": "must be greater than 0"})
	outer := fmt.Errorf("create product: %w", inner)

	typed := As(outer)
	if typed == nil || typed.Code() != CodeValidation {
		t.Fatalf("expected validation error, got %v", typed)
	}
	if !IsCode(outer, CodeValidation) {
		t.Fatal("expected IsCode to match validation")
	}
	if IsCode(outer, CodeNotFound) {
		t.Fatal("did not expect IsCode to match not found")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestNilErrorAccessors(t *testing.T) {
	var e *Error
	if e.Code() != CodeInternal {
		t.Fatalf("expected internal code on nil error")
	}
	if e.Message() != "" || e.Details() != nil || e.Error() != "" || e.Unwrap() != nil {
		t.Fatal("expected zero values from nil error accessors")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := fmt.Errorf("load cart: %w", Wrap(CodeDependency, cause, "storage read"))

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if !dump.Retryable {
		t.Fatal("expected dependency errors to be retryable")
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
	fields := dump.Fields()
	if _, ok := fields["sql_driver"]; ok {
		t.Fatal("did not expect sql fields without a driver error")
	}
	if Dump(nil).TopMessage != "" {
		t.Fatal("expected empty dump for nil error")
	}
}

func TestDumpUntypedDefaultsToInternal(t *testing.T) {
	dump := Dump(stdErrors.New("boom"))
	if dump.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", dump.Code)
	}
}
