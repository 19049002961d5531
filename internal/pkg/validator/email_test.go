package validator

import "testing"

func TestIsCandidateEmail(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"user@example.com", true},
		{"x@y", true},
		{"@", true},
		{"no-at-sign", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsCandidateEmail(tc.input); got != tc.want {
			t.Errorf("IsCandidateEmail(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Foo@Bar.COM "); got != "foo@bar.com" {
		t.Errorf("Expected foo@bar.com, got %s", got)
	}
}

func TestDomain(t *testing.T) {
	if got := Domain("user@sub@example.com"); got != "example.com" {
		t.Errorf("Expected example.com, got %s", got)
	}
	if got := Domain("no-at-sign"); got != "" {
		t.Errorf("Expected empty domain, got %s", got)
	}
}
