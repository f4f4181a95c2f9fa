// Package htmlsanitize cleans user-supplied text before it is rendered as
// HTML. Item parameters are free text typed into the console and may hold
// simple formatting; everything else is escaped by html/template.
package htmlsanitize

import (
	"html"
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
	tagPattern = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "sub", "sup", "mark")
		p.AllowAttrs("class").OnElements("table", "tr", "td", "th", "span")
		policy = p
	})
	return policy
}

// Sanitize strips scripts, event handlers and unsafe URLs, keeping basic
// formatting, lists, links and tables.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return getPolicy().Sanitize(s)
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return !tagPattern.MatchString(s)
}

// PlainTextToHTML escapes s and turns newlines into <br>.
func PlainTextToHTML(s string) template.HTML {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// SanitizeToHTML prepares s for display: plain text is escaped with line
// breaks kept, anything with tags goes through the policy.
func SanitizeToHTML(s string) template.HTML {
	if IsPlainText(s) {
		return PlainTextToHTML(s)
	}
	return template.HTML(Sanitize(s))
}
