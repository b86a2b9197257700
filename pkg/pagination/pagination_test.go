package pagination

import (
	"testing"
	"time"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -5: DefaultLimit, 10: 10, 500: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("expected buffered limit 11, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: at, ID: "f47ac10b-58cc-4372-a567-0e02b2c3d479"})

	cursor, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("ParseCursor returned error: %v", err)
	}
	if !cursor.CreatedAt.Equal(at) || cursor.ID != "f47ac10b-58cc-4372-a567-0e02b2c3d479" {
		t.Fatalf("unexpected cursor %+v", cursor)
	}
}

func TestParseCursorBlankAndInvalid(t *testing.T) {
	cursor, err := ParseCursor("  ")
	if err != nil || cursor != nil {
		t.Fatalf("expected nil cursor for blank input, got %+v, %v", cursor, err)
	}
	for _, bad := range []string{"!!!", "bm9waXBl"} {
		if _, err := ParseCursor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
