package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// contentPolicy keeps anchors (href, class) and line breaks; everything else
// gets stripped.
var contentPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("href", "class").OnElements("a")
	p.AllowElements("br")
	return p
}()

var stripPolicy = bluemonday.StrictPolicy()

// CleanContent reduces status HTML to anchors and line breaks.
func CleanContent(rawHTML string) string {
	return strings.TrimSpace(contentPolicy.Sanitize(rawHTML))
}

// TrimWords derives a plain-text excerpt of the first n words, an ellipsis
// appended when the text was longer.
func TrimWords(s string, n int) string {
	text := html.UnescapeString(stripPolicy.Sanitize(s))
	words := strings.Fields(text)

	if len(words) <= n {
		return strings.Join(words, " ")
	}

	return strings.Join(words[:n], " ") + "…"
}

// Denylisted reports whether content contains any of the configured phrases,
// one per line, matched case-insensitively against the raw (pre-sanitize)
// content.
func Denylisted(content, denylist string) bool {
	if denylist == "" {
		return false
	}

	content = strings.ToLower(content)

	for _, phrase := range strings.Split(denylist, "\n") {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if strings.Contains(content, phrase) {
			return true
		}
	}

	return false
}

// SplitTags turns the comma-separated tag filter into a slice.
func SplitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}

	var out []string
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
