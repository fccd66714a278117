// Package remap assigns fresh identifiers to a batch of notes and rewrites
// the cross references between them.
package remap

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lherron/mdnotes/internal/id"
	"github.com/lherron/mdnotes/internal/notes"
)

// maxAttempts bounds regeneration when the generator repeats itself.
const maxAttempts = 16

// Options configures Build.
type Options struct {
	// Suffix is the file extension that may trail identifiers in link
	// targets. Defaults to ".md".
	Suffix string
	// Generate produces new identifiers. Defaults to id.New.
	Generate id.Generator
}

// Mapping is the batch-scoped, injective function from old to new note
// identifiers. It is immutable once built.
type Mapping struct {
	suffix string
	byOld  map[string]string
	newIDs map[string]bool
	order  []string
}

// Build creates exactly one new identifier per distinct old identifier.
// Both an old id and the old id without the suffix resolve to the same new
// id. When a stripped variant collides with another note's exact id, the
// exact id wins.
func Build(oldIDs []string, opts Options) (*Mapping, error) {
	if opts.Suffix == "" {
		opts.Suffix = ".md"
	}
	if opts.Generate == nil {
		opts.Generate = id.New
	}

	m := &Mapping{
		suffix: opts.Suffix,
		byOld:  make(map[string]string, len(oldIDs)*2),
		newIDs: make(map[string]bool, len(oldIDs)),
	}

	exact := make(map[string]bool, len(oldIDs))
	for _, old := range oldIDs {
		exact[old] = true
	}

	assigned := make(map[string]bool, len(oldIDs))
	for _, old := range oldIDs {
		if assigned[old] {
			continue
		}

		newID, err := m.fresh(opts.Generate)
		if err != nil {
			return nil, fmt.Errorf("failed to generate identifier for %q: %w", old, err)
		}
		m.byOld[old] = newID
		m.order = append(m.order, old)
		assigned[old] = true

		if base := id.StripSuffix(old, m.suffix); base != old && !exact[base] {
			m.byOld[base] = newID
		}
	}

	return m, nil
}

func (m *Mapping) fresh(generate id.Generator) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := generate()
		if candidate == "" || m.newIDs[candidate] {
			continue
		}
		m.newIDs[candidate] = true
		return candidate, nil
	}
	return "", fmt.Errorf("no unique identifier after %d attempts", maxAttempts)
}

// Len returns the number of distinct notes in the mapping.
func (m *Mapping) Len() int {
	return len(m.order)
}

// Suffix returns the file extension used for rewritten targets.
func (m *Mapping) Suffix() string {
	return m.suffix
}

// Lookup resolves a link target or note id, trying the raw value first and
// then the value with the suffix stripped. Percent-encoded targets such as
// my%20note.md also match the decoded id.
func (m *Mapping) Lookup(target string) (string, bool) {
	if newID, ok := m.lookup(target); ok {
		return newID, true
	}
	if !strings.Contains(target, "%") {
		return "", false
	}
	decoded, err := url.PathUnescape(target)
	if err != nil || decoded == target {
		return "", false
	}
	return m.lookup(decoded)
}

func (m *Mapping) lookup(target string) (string, bool) {
	if newID, ok := m.byOld[target]; ok {
		return newID, true
	}
	if newID, ok := m.byOld[id.StripSuffix(target, m.suffix)]; ok {
		return newID, true
	}
	return "", false
}

// IsNewID reports whether s is one of the identifiers this mapping issued.
func (m *Mapping) IsNewID(s string) bool {
	return m.newIDs[s]
}

// Apply replaces each record's identifier with its mapped value.
func (m *Mapping) Apply(records []notes.Record) error {
	for i := range records {
		newID, ok := m.Lookup(records[i].OldID)
		if !ok {
			return fmt.Errorf("note %q missing from identifier mapping", records[i].OldID)
		}
		records[i].NewID = newID
	}
	return nil
}

// Rewrite replaces internal link targets in content with the new
// identifiers. External links, unknown targets and targets that already
// name a new identifier are left as they are, so rewriting twice is a
// no-op. It returns the rewritten content and the number of links changed.
func (m *Mapping) Rewrite(content string, schemes notes.Schemes) (string, int) {
	return notes.ReplaceTargets(content, func(target string) (string, bool) {
		if schemes.IsExternal(target) {
			return "", false
		}
		path, fragment := notes.SplitFragment(target)
		if path == "" || m.IsNewID(id.StripSuffix(path, m.suffix)) {
			return "", false
		}
		newID, ok := m.Lookup(path)
		if !ok {
			return "", false
		}
		return newID + m.suffix + fragment, true
	})
}

// Entry is one old -> new pair of the mapping.
type Entry struct {
	OldID string `json:"old_id" yaml:"old_id"`
	NewID string `json:"new_id" yaml:"new_id"`
}

// Entries lists the mapping in the order notes were given to Build.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, old := range m.order {
		out = append(out, Entry{OldID: old, NewID: m.byOld[old]})
	}
	return out
}
