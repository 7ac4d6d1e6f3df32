package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleHappyPath(t *testing.T) {
	input := `# a comment
total_memory: 100

node A 0 10 1 inputs=-
node B 0 10 1 inputs=A
node C 0 10 1 inputs=A,B
`
	result, err := ParseSimple(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.TotalMemory)
	require.Len(t, result.Specs, 3)
	assert.Equal(t, NodeSpec{Name: "B", OutputMem: 10, TimeCost: 1, Inputs: []string{"A"}}, result.Specs[1])
	assert.Equal(t, []string{"A", "B"}, result.Specs[2].Inputs)
}

func TestParseSimpleRejectsMissingTotalMemory(t *testing.T) {
	_, err := ParseSimple(strings.NewReader("node A 0 10 1 inputs=-\n"))
	require.Error(t, err)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
}

func TestParseSimpleRejectsMalformedNodeLine(t *testing.T) {
	_, err := ParseSimple(strings.NewReader("total_memory: 10\nnode A 0 10\n"))
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 2, syntaxErr.Line)
}

func TestParseExamplesHappyPath(t *testing.T) {
	input := `Return 100
0 matmul 0 0 10 1
1 relu 1 0 0 5 1
`
	result, err := ParseExamples(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.TotalMemory)
	require.Len(t, result.Specs, 2)
	assert.Equal(t, "matmul", result.Specs[0].Name)
	assert.Equal(t, "relu", result.Specs[1].Name)
	assert.Equal(t, []string{"matmul"}, result.Specs[1].Inputs)
}

func TestParseExamplesRejectsUnknownInputID(t *testing.T) {
	_, err := ParseExamples(strings.NewReader("Return 10\n0 relu 1 9 0 5 1\n"))
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
}

func TestDetectSniffsBothFormats(t *testing.T) {
	format, rest, err := Detect(strings.NewReader("total_memory: 10\nnode A 0 1 1 inputs=-\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatSimple, format)
	result, err := ParseSimple(rest)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.TotalMemory)

	format, rest, err = Detect(strings.NewReader("Return 10\n0 add 0 0 1 1\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatExamples, format)
	result, err = ParseExamples(rest)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.TotalMemory)
}

func TestDetectRejectsUnrecognizedLine(t *testing.T) {
	_, _, err := Detect(strings.NewReader("garbage\n"))
	require.Error(t, err)
}
