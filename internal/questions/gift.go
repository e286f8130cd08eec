package questions

import (
	"fmt"
	"strings"

	"github.com/quizrally/backend/internal/models"
)

// ParseGIFT parses multiple-choice questions in GIFT format:
//
//	::Capitals:: What is the capital of Spain? {
//	  =Madrid
//	  ~Barcelona
//	  ~Seville
//	  #### Madrid has been the capital since 1561.
//	}
//
// Blank lines separate questions, lines starting with // are comments. Only
// single-answer multiple choice is supported; weighted answers, matching and
// numeric questions are rejected. Returns the parsed questions plus one error
// string per rejected block.
func ParseGIFT(input string) ([]models.Question, []string) {
	var (
		questions []models.Question
		problems  []string
	)
	for i, block := range splitBlocks(input) {
		q, err := parseBlock(block)
		if err != nil {
			problems = append(problems, fmt.Sprintf("question %d: %v", i+1, err))
			continue
		}
		questions = append(questions, q)
	}
	return questions, problems
}

func splitBlocks(input string) []string {
	var blocks []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}
		if trimmed == "" {
			// Blank line ends a block only once the answer braces are closed.
			if len(current) > 0 && strings.Contains(strings.Join(current, "\n"), "}") {
				flush()
			}
			continue
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

func parseBlock(block string) (models.Question, error) {
	open := indexUnescaped(block, '{')
	if open < 0 {
		return models.Question{}, fmt.Errorf("missing answer block")
	}
	end := strings.LastIndex(block, "}")
	if end < open {
		return models.Question{}, fmt.Errorf("unterminated answer block")
	}

	head := strings.TrimSpace(block[:open])
	// An optional ::title:: prefix names the question; the title is dropped
	// and only the body text is kept.
	if strings.HasPrefix(head, "::") {
		if end := strings.Index(head[2:], "::"); end >= 0 {
			head = strings.TrimSpace(head[end+4:])
		}
	}
	if head == "" {
		return models.Question{}, fmt.Errorf("empty question text")
	}

	body := block[open+1 : end]
	explanation := ""
	if fb := strings.Index(body, "####"); fb >= 0 {
		explanation = strings.TrimSpace(unescape(body[fb+4:]))
		body = body[:fb]
	}

	options, correct, err := parseAnswers(body)
	if err != nil {
		return models.Question{}, err
	}

	q := models.Question{
		Text:         unescape(head),
		Options:      options,
		CorrectIndex: correct,
		Explanation:  explanation,
	}
	if err := q.Validate(); err != nil {
		return models.Question{}, err
	}
	return q, nil
}

func parseAnswers(body string) (options []string, correct int, err error) {
	correct = -1
	var buf strings.Builder
	var marker byte
	flush := func() error {
		if marker == 0 {
			return nil
		}
		text := strings.TrimSpace(unescape(buf.String()))
		if text == "" {
			return fmt.Errorf("empty answer option")
		}
		if marker == '=' {
			if correct >= 0 {
				return fmt.Errorf("more than one correct answer")
			}
			correct = len(options)
		}
		options = append(options, text)
		buf.Reset()
		return nil
	}
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if (ch == '=' || ch == '~') && !escapedAt(body, i) {
			if err := flush(); err != nil {
				return nil, 0, err
			}
			marker = ch
			continue
		}
		if marker != 0 {
			buf.WriteByte(ch)
		} else if !isSpace(ch) {
			return nil, 0, fmt.Errorf("unsupported answer syntax")
		}
	}
	if err := flush(); err != nil {
		return nil, 0, err
	}
	if correct < 0 {
		return nil, 0, fmt.Errorf("no correct answer marked")
	}
	return options, correct, nil
}

func indexUnescaped(s string, target byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == target && !escapedAt(s, i) {
			return i
		}
	}
	return -1
}

func escapedAt(s string, i int) bool {
	return i > 0 && s[i-1] == '\\'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func unescape(s string) string {
	replacer := strings.NewReplacer(
		`\=`, "=", `\~`, "~", `\{`, "{", `\}`, "}", `\:`, ":", `\#`, "#", `\\`, `\`,
	)
	return replacer.Replace(s)
}
