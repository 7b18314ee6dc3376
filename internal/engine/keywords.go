package engine

import "strings"

// noQuestionKeywords signal the user has nothing further to ask.
var noQuestionKeywords = []string{
	"沒有", "没有", "不用", "沒了", "没了", "好了",
	"謝謝", "谢谢", "感恩", "不需要", "不用了",
}

// endKeywords signal the user wants to close the conversation.
var endKeywords = []string{
	"謝謝", "谢谢", "感恩", "結束", "结束",
	"再見", "再见", "拜拜", "bye",
}

// hasNoQuestion reports whether the reply to an "any questions?" prompt
// declines. Very short inputs count as a decline. No LLM call is involved.
func hasNoQuestion(input string) bool {
	trimmed := strings.TrimSpace(input)
	if len([]rune(trimmed)) < 2 {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range noQuestionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// wantsToEnd reports whether a continued-dialogue input is a goodbye.
// The length bound keeps real questions containing a thank-you in play.
func wantsToEnd(input string) bool {
	trimmed := strings.TrimSpace(input)
	if len([]rune(trimmed)) >= 10 {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range endKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isDigits reports whether s is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// extractDigits strips everything but ASCII digits from s.
func extractDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
