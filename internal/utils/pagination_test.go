package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// empty -> default
		{"", 10, 10},
		// valid ints
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		// invalid -> default (no trim)
		{"x", 5, 5},
		{" 42", 7, 7},
		// overflow -> default
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		s    string
		want uint
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"99999999999", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseID(tc.s)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseID(%q) = %d,%v; want %d,%v", tc.s, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseTelegramID(t *testing.T) {
	if n, ok := ParseTelegramID("-1001234"); !ok || n != -1001234 {
		t.Fatalf("negative chat id: %d %v", n, ok)
	}
	if n, ok := ParseTelegramID("777"); !ok || n != 777 {
		t.Fatalf("user id: %d %v", n, ok)
	}
	for _, s := range []string{"", "0", "x1"} {
		if _, ok := ParseTelegramID(s); ok {
			t.Fatalf("ParseTelegramID(%q) should fail", s)
		}
	}
}
