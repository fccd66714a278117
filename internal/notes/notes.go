// Package notes holds the note record and the markdown link grammar shared
// by the auditor and the migrator.
package notes

import (
	"regexp"
	"strings"
)

// Record is a single note pulled from the source database.
type Record struct {
	// OldID is the source primary key.
	OldID string `json:"old_id" yaml:"old_id"`
	// NewID is assigned by the identifier mapping.
	NewID   string `json:"new_id,omitempty" yaml:"new_id,omitempty"`
	Content string `json:"-" yaml:"-"`
}

// Link is a markdown link occurrence [Text](Target) inside some content.
// Start and End are byte offsets of the whole link.
type Link struct {
	Text   string
	Target string
	Start  int
	End    int
}

var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// ExtractLinks returns every markdown link in content, in order.
func ExtractLinks(content string) []Link {
	matches := linkPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, Link{
			Text:   content[m[2]:m[3]],
			Target: content[m[4]:m[5]],
			Start:  m[0],
			End:    m[1],
		})
	}
	return links
}

// ReplaceTargets rebuilds content with each link target passed through fn.
// When fn reports false the link is copied verbatim. It returns the new
// content and the number of links that changed.
func ReplaceTargets(content string, fn func(target string) (string, bool)) (string, int) {
	links := ExtractLinks(content)
	if len(links) == 0 {
		return content, 0
	}

	var b strings.Builder
	b.Grow(len(content))
	last, changed := 0, 0
	for _, l := range links {
		b.WriteString(content[last:l.Start])
		if target, ok := fn(l.Target); ok && target != l.Target {
			b.WriteString("[" + l.Text + "](" + target + ")")
			changed++
		} else {
			b.WriteString(content[l.Start:l.End])
		}
		last = l.End
	}
	b.WriteString(content[last:])
	return b.String(), changed
}

// SplitFragment splits "path#frag" into "path" and "#frag".
func SplitFragment(target string) (path, fragment string) {
	if i := strings.IndexByte(target, '#'); i >= 0 {
		return target[:i], target[i:]
	}
	return target, ""
}

// Schemes is the set of URL schemes that mark a link as external.
type Schemes []string

// DefaultSchemes are the schemes recognized when none are configured.
var DefaultSchemes = Schemes{"http", "https", "ftp"}

// IsExternal reports whether target starts with one of the schemes.
func (s Schemes) IsExternal(target string) bool {
	if len(s) == 0 {
		s = DefaultSchemes
	}
	lower := strings.ToLower(strings.TrimSpace(target))
	for _, scheme := range s {
		if strings.HasPrefix(lower, strings.ToLower(scheme)+":") {
			return true
		}
	}
	return false
}
