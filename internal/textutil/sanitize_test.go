package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tomba!", "Tomba!"},
		{"Ace Combat 3: Electrosphere", "Ace Combat 3_ Electrosphere"},
		{`What's "this"?`, "What's _this__"},
		{"  padded  ", "padded"},
		{"a/b\\c|d", "a_b_c_d"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
