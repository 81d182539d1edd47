package formfill

import (
	"testing"

	"dirsubmit/internal/automation"
)

func TestMatchOption(t *testing.T) {
	options := []automation.Option{
		{Value: "", Label: "Choose one"},
		{Value: "rest", Label: "Restaurants & Food"},
		{Value: "MFG", Label: "Manufacturing"},
		{Value: "svc", Label: "Professional Services"},
	}

	tests := []struct {
		name      string
		want      string
		wantValue string
		wantOK    bool
	}{
		{"exact value", "svc", "svc", true},
		{"exact label", "Manufacturing", "MFG", true},
		{"case folded value", "mfg", "MFG", true},
		{"case folded label", "manufacturing", "MFG", true},
		{"substring of label", "Restaurants", "rest", true},
		{"label contains wanted", "Food", "rest", true},
		{"wanted contains label", "Manufacturing Co", "MFG", true},
		{"no match", "Plumbing", "", false},
		{"blank wanted", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, ok := MatchOption(options, tt.want)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && opt.Value != tt.wantValue {
				t.Fatalf("matched %q, want %q", opt.Value, tt.wantValue)
			}
		})
	}
}

func TestMatchOptionExactBeatsSubstring(t *testing.T) {
	options := []automation.Option{
		{Value: "ca-south", Label: "California (South)"},
		{Value: "CA", Label: "California"},
	}
	opt, ok := MatchOption(options, "california")
	if !ok || opt.Value != "CA" {
		t.Fatalf("matched %+v ok=%v, want exact label match CA", opt, ok)
	}
}
