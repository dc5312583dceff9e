package slug

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugShape = regexp.MustCompile(`^([a-z0-9_]+(-[a-z0-9_]+)*)?$`)

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"punctuation", "Hello, World!", "hello-world"},
		{"surrounding space", "   Fractions  and   Decimals  ", "fractions-and-decimals"},
		{"tabs and newlines", "Unit\t1\nIntro", "unit-1-intro"},
		{"existing hyphens", "Pre--Algebra -- Review", "pre-algebra-review"},
		{"edge hyphens", "-Grade 5-", "grade-5"},
		{"underscore kept", "snake_case title", "snake_case-title"},
		{"non ascii dropped", "Café Crème", "caf-crme"},
		{"all punctuation", "!!! ??? ...", ""},
		{"empty", "", ""},
		{"only spaces", "    ", ""},
		{"digits", "Chapter 10: 2024 Edition", "chapter-10-2024-edition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.title))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello, World!",
		"--a--b--",
		"ÀÉÎ õü",
		"already-a-slug",
		" x  -  y ",
		"UPPER_lower 123",
		"a - - b",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		assert.Regexp(t, slugShape, once, "input %q", in)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("hello-world"))
	assert.True(t, Valid("unit_1"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("Hello-World"))
	assert.False(t, Valid("-hello"))
	assert.False(t, Valid("hello--world"))
	assert.False(t, Valid("hello world"))
}

func FuzzNormalize(f *testing.F) {
	for _, seed := range []string{"Hello, World!", "  --  ", "Ünïcödé títle", "a b", "x_y-z"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, in string) {
		out := Normalize(in)
		if !slugShape.MatchString(out) {
			t.Fatalf("Normalize(%q) = %q has an invalid shape", in, out)
		}
		if again := Normalize(out); again != out {
			t.Fatalf("Normalize not idempotent: %q -> %q -> %q", in, out, again)
		}
	})
}
