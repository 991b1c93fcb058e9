package store

import "testing"

func TestFTSQueryQuotesTerms(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"database pooling", `"database" "pooling"`},
		{`drop "table"`, `"drop" "table"`},
		{"", ""},
		{"   ", ""},
		{"a-b.c", `"a-b.c"`},
	}
	for _, tc := range tests {
		if got := ftsQuery(tc.in); got != tc.want {
			t.Errorf("ftsQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
