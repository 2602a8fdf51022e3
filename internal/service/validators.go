package service

import "strings"

func stringField(item map[string]interface{}, key string) string {
	if v, ok := item[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// ValidateQuizItem accepts items with a question, a correct answer, and at
// least two non-empty options.
func ValidateQuizItem(item map[string]interface{}) bool {
	if stringField(item, "question") == "" {
		return false
	}
	if stringField(item, "correct_answer") == "" {
		return false
	}

	rawOptions, ok := item["options"].([]interface{})
	if !ok {
		return false
	}
	nonEmpty := 0
	for _, opt := range rawOptions {
		if s, ok := opt.(string); ok && strings.TrimSpace(s) != "" {
			nonEmpty++
		}
	}
	return nonEmpty >= 2
}

// ValidateFlashcardItem accepts items with a non-empty question and answer.
func ValidateFlashcardItem(item map[string]interface{}) bool {
	return stringField(item, "question") != "" && stringField(item, "answer") != ""
}
