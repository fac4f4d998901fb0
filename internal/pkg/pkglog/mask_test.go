package pkglog

import "testing"

func TestMaskAccount(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"A1":         "**",
		"ACC-0042":   "****0042",
		"1234567890": "******7890",
	}
	for in, want := range tests {
		if got := MaskAccount(in); got != want {
			t.Fatalf("MaskAccount(%q): expected %q, got %q", in, want, got)
		}
	}
}
