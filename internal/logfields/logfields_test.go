package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Tag", KeyTag, "daily:2024-03-07", Tag("daily:2024-03-07")},
		{"Section", KeySection, "Today", Section("Today")},
		{"Display", KeyDisplay, "line", Display("line")},
		{"File", KeyFile, "notes/work.wiki", File("notes/work.wiki")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Date", KeyDate, "2024-03-07", Date("2024-03-07")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log consumers.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}

		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Line(12); v.Key != KeyLine || v.Value.Int64() != 12 {
		t.Fatalf("Line mismatch: %v", v)
	}

	if v := Count(3); v.Key != KeyCount {
		t.Fatalf("Count key mismatch: %s", v.Key)
	}

	if v := DurationMS(1.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

func TestErrorHelper(t *testing.T) {
	if v := Error(nil); v.Value.String() != "" {
		t.Fatalf("nil error should render empty, got %q", v.Value.String())
	}

	if v := Error(errors.New("boom")); v.Key != KeyError || v.Value.String() != "boom" {
		t.Fatalf("Error mismatch: %v", v)
	}
}
