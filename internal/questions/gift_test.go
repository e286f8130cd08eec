package questions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGIFTSingleQuestion(t *testing.T) {
	input := `::Capitals:: What is the capital of Spain? {
  =Madrid
  ~Barcelona
  ~Seville
  #### Madrid has been the capital since 1561.
}`
	qs, problems := ParseGIFT(input)
	require.Empty(t, problems)
	require.Len(t, qs, 1)

	q := qs[0]
	assert.Equal(t, "What is the capital of Spain?", q.Text)
	assert.Equal(t, []string{"Madrid", "Barcelona", "Seville"}, q.Options)
	assert.Equal(t, 0, q.CorrectIndex)
	assert.Equal(t, "Madrid has been the capital since 1561.", q.Explanation)
}

func TestParseGIFTMultipleQuestionsAndComments(t *testing.T) {
	input := `// geography pack
What is 2+2? {=4 ~3 ~5}

::Rivers:: Longest river? {~Amazon =Nile ~Danube}`
	qs, problems := ParseGIFT(input)
	require.Empty(t, problems)
	require.Len(t, qs, 2)

	assert.Equal(t, "What is 2+2?", qs[0].Text)
	assert.Equal(t, 0, qs[0].CorrectIndex)

	assert.Equal(t, "Longest river?", qs[1].Text)
	assert.Equal(t, 1, qs[1].CorrectIndex)
	assert.Equal(t, []string{"Amazon", "Nile", "Danube"}, qs[1].Options)
}

func TestParseGIFTEscapes(t *testing.T) {
	input := `What does 1\=1 evaluate to? {=true ~false}`
	qs, problems := ParseGIFT(input)
	require.Empty(t, problems)
	require.Len(t, qs, 1)
	assert.Equal(t, "What does 1=1 evaluate to?", qs[0].Text)
}

func TestParseGIFTRejectsBadBlocks(t *testing.T) {
	cases := map[string]string{
		"no answers":      `Question without block`,
		"no correct":      `Pick one {~a ~b}`,
		"double correct":  `Pick one {=a =b}`,
		"one option only": `Pick one {=a}`,
		"empty text":      `{=a ~b}`,
	}
	for name, input := range cases {
		qs, problems := ParseGIFT(input)
		assert.Empty(t, qs, name)
		assert.Len(t, problems, 1, name)
	}
}

func TestParseGIFTMixedValidAndInvalid(t *testing.T) {
	input := `Good one? {=yes ~no}

Broken one {~a ~b}`
	qs, problems := ParseGIFT(input)
	require.Len(t, qs, 1)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "question 2")
}
