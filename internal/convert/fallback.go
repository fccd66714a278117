package convert

import (
	"regexp"
	"strings"
)

type substitution struct {
	pattern *regexp.Regexp
	repl    string
}

// Applied in order; anchors first so their text is not touched by the
// inline rules.
var fallbackRules = []substitution{
	{regexp.MustCompile(`<a href="([^"]+)">([^<]+)</a>`), "[$2]($1)"},
	{regexp.MustCompile(`</?p>`), ""},
	{regexp.MustCompile(`<strong>([^<]+)</strong>`), "**$1**"},
	{regexp.MustCompile(`<em>([^<]+)</em>`), "*$1*"},
	{regexp.MustCompile(`<h1>([^<]+)</h1>`), "# $1"},
	{regexp.MustCompile(`<h2>([^<]+)</h2>`), "## $1"},
	{regexp.MustCompile(`<h3>([^<]+)</h3>`), "### $1"},
	{regexp.MustCompile(`</?ul>`), ""},
	{regexp.MustCompile(`<li>([^<]+)</li>`), "- $1"},
}

// Fallback is the minimal pattern-substitution converter. It handles
// anchors, paragraphs, bold, italic, three heading levels and unordered
// lists; any other markup passes through untouched.
type Fallback struct{}

func (Fallback) Name() string { return "fallback" }

func (Fallback) Convert(html string) (string, error) {
	if html == "" {
		return "", nil
	}
	markdown := html
	for _, rule := range fallbackRules {
		markdown = rule.pattern.ReplaceAllString(markdown, rule.repl)
	}
	return strings.TrimSpace(markdown), nil
}
