package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "square_bracket_variable",
			text: "Hello [name], welcome back.",
			want: []string{"[name]"},
		},
		{
			name: "percent_formats",
			text: "Score: %d of %(total)s (%.2f)",
			want: []string{"%(total)s", "%.2f", "%d"},
		},
		{
			name: "brace_formats",
			text: "{0} beats {rank!r:>8}",
			want: []string{"{0}", "{rank!r:>8}"},
		},
		{
			name: "escaped_braces_ignored",
			text: "literal {{name}} stays",
			want: nil,
		},
		{
			name: "duplicates_collapse",
			text: "[gold] and [gold] again",
			want: []string{"[gold]"},
		},
		{
			name: "plain_text",
			text: "No placeholders here.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Set(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetsEqual(t *testing.T) {
	assert.True(t, SetsEqual("Hello [name]!", "[name]，你好！"))
	assert.True(t, SetsEqual("plain", "纯文本"))
	assert.False(t, SetsEqual("Hello [name]!", "你好！"))
	assert.False(t, SetsEqual("%d items", "%s items"))
}

func TestMultiset(t *testing.T) {
	counts := Multiset("Hello [name], score: {0}, {0}")
	assert.Equal(t, map[string]int{"[name]": 1, "{0}": 2}, counts)
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "paired_tags", in: "{i}italic{/i} and {b}bold{/b}", want: "italic and bold"},
		{name: "tag_with_argument", in: "{color=#ff0000}red{/color}", want: "red"},
		{name: "single_tags", in: "Wait{w} then{p}go", want: "Wait thengo"},
		{name: "placeholder_survives", in: "{i}Hello [name]{/i}", want: "Hello [name]"},
		{name: "brace_escape_collapses", in: "a {{ b", want: "a { b"},
		{name: "unknown_brace_kept", in: "{custom} stays", want: "{custom} stays"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello world", Normalize("  {i}Hello{/i}   WORLD  "))
}

func TestSignatureStableAcrossStyling(t *testing.T) {
	a := Signature("{i}Hello,{/i} world!")
	b := Signature("Hello, world!")
	c := Signature("hello,   WORLD!")
	d := Signature("Goodbye, world!")

	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
	assert.NotEqual(t, a, d)
	assert.Regexp(t, `^sig:v2:[0-9a-f]{12}$`, a)
}
