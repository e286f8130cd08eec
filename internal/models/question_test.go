package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionValidate(t *testing.T) {
	valid := Question{
		Text:         "What is the capital of Spain?",
		Options:      []string{"Madrid", "Barcelona"},
		CorrectIndex: 0,
	}
	assert.NoError(t, valid.Validate())

	cases := map[string]Question{
		"empty text":         {Options: []string{"a", "b"}},
		"one option":         {Text: "q", Options: []string{"a"}},
		"too many options":   {Text: "q", Options: make([]string, 11)},
		"index out of range": {Text: "q", Options: []string{"a", "b"}, CorrectIndex: 2},
		"negative index":     {Text: "q", Options: []string{"a", "b"}, CorrectIndex: -1},
	}
	for name, q := range cases {
		assert.Error(t, q.Validate(), name)
	}
}
