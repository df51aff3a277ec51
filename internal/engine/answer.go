package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EvaluateAnswer compares ignoring case, surrounding and repeated whitespace
// and diacritics. The whole answer always matches; failing that, the correct
// answer may list alternatives separated by "/" or ";". Hints never change
// the outcome.
func EvaluateAnswer(userAnswer, correctAnswer string, hintsUsed int) bool {
	given := Normalize(userAnswer)
	if given == "" {
		return false
	}
	if Normalize(correctAnswer) == given {
		return true
	}
	for _, alt := range strings.FieldsFunc(correctAnswer, func(r rune) bool { return r == '/' || r == ';' }) {
		if Normalize(alt) == given {
			return true
		}
	}
	return false
}

// Normalize lower-cases s, strips combining marks and collapses whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// Reveal shows the leading third of every letter or digit run of answer (at
// least one rune) and masks the rest, e.g. "cane" -> "ca__" after one hint.
// Spaces and punctuation such as "/" stay visible.
func Reveal(answer string, hints int) string {
	if hints < 1 {
		hints = 1
	}
	rs := []rune(strings.TrimSpace(answer))
	var sb strings.Builder
	for i := 0; i < len(rs); {
		if !isWordRune(rs[i]) {
			sb.WriteRune(rs[i])
			i++
			continue
		}
		j := i
		for j < len(rs) && isWordRune(rs[j]) {
			j++
		}
		show := min((j-i+2)/3*hints, j-i)
		sb.WriteString(string(rs[i : i+show]))
		sb.WriteString(strings.Repeat("_", j-i-show))
		i = j
	}
	return sb.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
