package sanitizer

import (
	"regexp"
	"testing"

	"pgregory.net/rapid"
)

func TestCleanPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0241234567", "0241234567"},
		{"024 123 4567", "0241234567"},
		{"024-123-4567", "0241234567"},
		{" +233 24-123-4567 ", "+233241234567"},
		{"(024) 1234567", "(024)1234567"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanPhone(tt.input); got != tt.want {
				t.Errorf("CleanPhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLocalPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "local unchanged", input: "0241234567", want: "0241234567"},
		{name: "plus country code", input: "+233241234567", want: "0241234567"},
		{name: "country code without plus", input: "233241234567", want: "0241234567"},
		{name: "separators and parentheses", input: "(+233) 24-123 4567", want: "0241234567"},
		{name: "missing trunk prefix", input: "241234567", want: "0241234567"},
		{name: "empty gets prefix", input: "", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLocalPhone(tt.input); got != tt.want {
				t.Errorf("NormalizeLocalPhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLocalPhone_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "phone")
		once := NormalizeLocalPhone(s)
		if twice := NormalizeLocalPhone(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}

var localForm = regexp.MustCompile(`^0\d{9}$`)

func TestNormalizeLocalPhone_GhanaInputsBecomeLocal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		subscriber := rapid.StringMatching(`[0-9]{9}`).Draw(t, "subscriber")
		prefix := rapid.SampledFrom([]string{"0", "+233", "233"}).Draw(t, "prefix")

		got := NormalizeLocalPhone(prefix + subscriber)
		if !localForm.MatchString(got) {
			t.Fatalf("NormalizeLocalPhone(%q) = %q, want 0 followed by 9 digits", prefix+subscriber, got)
		}
		if got[1:] != subscriber {
			t.Fatalf("subscriber digits changed: %q -> %q", subscriber, got)
		}
	})
}

func TestLocalPhone_Recognized(t *testing.T) {
	for _, phone := range []string{"0241234567", "+233241234567", "233 24 123 4567"} {
		if _, ok := LocalPhone(phone); !ok {
			t.Errorf("LocalPhone(%q) should be recognized", phone)
		}
	}
	if local, ok := LocalPhone("241234567"); ok || local != "0241234567" {
		t.Errorf("LocalPhone(241234567) = %q, %v", local, ok)
	}
}
