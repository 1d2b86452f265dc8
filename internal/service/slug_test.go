package service

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Hello World!!", "hello-world"},
		{"Go 1.22 is out!", "go-122-is-out"},
		{"Déjà vu", "dj-vu"},
		{"foo -- bar", "foo-bar"},
		{"Multiple   interior   spaces", "multiple-interior-spaces"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER Case Title", "upper-case-title"},
		{"!!!", ""},
	}

	for _, tc := range cases {
		if got := MakeSlug(tc.input); got != tc.want {
			t.Fatalf("MakeSlug(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMakeSlugCutsAtFiftyCharacters(t *testing.T) {
	long := strings.Repeat("abcde ", 20)
	slug := MakeSlug(long)

	if len(slug) != 50 {
		t.Fatalf("expected 50 characters, got %d (%q)", len(slug), slug)
	}
}

func TestMakeSlugIsIdempotent(t *testing.T) {
	inputs := []string{"Hello World!!", "foo -- bar", "My First Post", strings.Repeat("x ", 40)}

	for _, input := range inputs {
		once := MakeSlug(input)
		twice := MakeSlug(once)
		if once != twice {
			t.Fatalf("MakeSlug not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
