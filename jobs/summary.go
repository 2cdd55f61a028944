package jobs

import (
	"strings"

	"golang.org/x/net/html"
)

// Summarize returns the text content of an HTML fragment, whitespace
// collapsed and cut to at most n runes, followed by "...".
func Summarize(fragment string, n int) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
	text := strings.Join(strings.Fields(b.String()), " ")
	if r := []rune(text); len(r) > n {
		text = string(r[:n])
	}
	return text + "..."
}
