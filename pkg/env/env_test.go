package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_VALUE", "  hello ")
	if got := Get("STOREFRONT_TEST_VALUE", "fallback"); got != "hello" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := Get("STOREFRONT_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_BOOL", "true")
	if !GetBool("STOREFRONT_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("STOREFRONT_TEST_BOOL", "maybe")
	if !GetBool("STOREFRONT_TEST_BOOL", true) {
		t.Fatal("expected fallback for unparsable value")
	}
}
