package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSplitPipeline(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "no pipe", input: "echo hello", expected: []string{"echo hello"}},
		{name: "empty line", input: "", expected: []string{""}},
		{name: "two stages", input: "echo hello | upper", expected: []string{"echo hello ", " upper"}},
		{name: "three stages", input: "a|b|c", expected: []string{"a", "b", "c"}},
		{name: "pipe in double quotes", input: `echo "a|b"`, expected: []string{`echo "a|b"`}},
		{name: "pipe in single quotes", input: `echo 'a|b' | upper`, expected: []string{`echo 'a|b' `, " upper"}},
		{name: "opposite quote is inert", input: `echo "it's|here" | upper`, expected: []string{`echo "it's|here" `, " upper"}},
		{name: "double quote inside single", input: `echo 'say "hi|there' | upper`, expected: []string{`echo 'say "hi|there' `, " upper"}},
		{name: "unterminated quote keeps rest", input: `echo "a | b`, expected: []string{`echo "a | b`}},
		{name: "leading pipe", input: "| upper", expected: []string{"", " upper"}},
		{name: "trailing pipe", input: "echo |", expected: []string{"echo ", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitPipeline(tt.input))
		})
	}
}

func TestSplitPipelineWithoutPipesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.StringMatching(`[^|]{0,40}`).Draw(t, "line")
		assert.Equal(t, []string{line}, SplitPipeline(line))
	})
}

func TestSplitPipelineCountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parts := rapid.SliceOfN(rapid.StringMatching(`[a-z ]{0,10}`), 1, 8).Draw(t, "parts")
		line := strings.Join(parts, "|")

		stages := SplitPipeline(line)
		assert.Len(t, stages, len(parts))
		assert.Equal(t, parts, stages)
	})
}

func TestSplitPipelineQuotedPipesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		quote := rapid.SampledFrom([]string{`"`, `'`}).Draw(t, "quote")
		inner := rapid.StringMatching(`[a-z|]{0,12}`).Draw(t, "inner")
		line := "echo " + quote + inner + quote

		assert.Equal(t, []string{line}, SplitPipeline(line))
	})
}
