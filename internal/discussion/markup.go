package discussion

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// The rich-text editor only round-trips a single heading level.
var headingPattern = regexp.MustCompile(`<h[1-6]>([^<^>]+)</h[1-6]>`)

// NormalizeForEdit rewrites every h1-h6 heading to h1 so the body survives a
// trip through the editor. Applying it twice gives the same result as once.
func NormalizeForEdit(body string) string {
	return headingPattern.ReplaceAllString(body, "<h1>$1</h1>")
}

// Elements that make a body non-empty even without any text.
var mediaElements = map[string]bool{
	"img":    true,
	"figure": true,
	"video":  true,
	"iframe": true,
}

// IsBlank reports whether body has no visible content once markup is removed.
func IsBlank(body string) bool {
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return true
		case html.TextToken:
			text := strings.ReplaceAll(string(z.Text()), "\u00a0", " ")
			if strings.TrimSpace(text) != "" {
				return false
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if mediaElements[string(name)] {
				return false
			}
		}
	}
}
