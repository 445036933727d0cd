package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"55 1234 5678", "+525512345678"},
		{"+52 55 1234 5678", "+525512345678"},
		{"  +1 212 555 0123 ", "+12125550123"},
		{"not a number", "not a number"},
		{" 123 ", "123"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
