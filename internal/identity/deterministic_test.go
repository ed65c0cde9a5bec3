package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := CareerID("engineering", 0, "PLC Engineer")
	second := CareerID(" Engineering ", 0, "plc engineer")
	if first != second {
		t.Fatalf("expected normalized keys to match: %s vs %s", first, second)
	}
	if first == uuid.Nil {
		t.Fatal("expected non-nil id")
	}
}

func TestUUIDSeparatesContentTypes(t *testing.T) {
	if PageID("en", "careers") == PageID("th", "careers") {
		t.Fatal("expected locale to affect page id")
	}
	if CareerID("sales", 1, "x") == CareerID("sales", 2, "x") {
		t.Fatal("expected index to affect career id")
	}
	if VideoID("https://youtu.be/a") == VideoID("https://youtu.be/b") {
		t.Fatal("expected url to affect video id")
	}
}

func TestUUIDBlankKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid, got %s", got)
	}
}
