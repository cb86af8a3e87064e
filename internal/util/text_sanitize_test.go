package util

import "testing"

func TestSanitizeTextDropsControls(t *testing.T) {
	cases := []struct{ in, want string }{
		{"page\x00one\x01\x02 end", "pageone end"},
		{"keeps\n\ttabs and newlines\r\n", "keeps\n\ttabs and newlines"},
		{"  trimmed  ", "trimmed"},
		{"", ""},
	}
	for _, c := range cases {
		if got := SanitizeText(c.in); got != c.want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
