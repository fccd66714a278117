package notes

import (
	"testing"
)

func TestExtractLinks(t *testing.T) {
	content := "See [first](a.md) and [second](https://example.com/x) then [ ]() [third](c.md#top)."

	links := ExtractLinks(content)
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d: %+v", len(links), links)
	}

	want := []struct{ text, target string }{
		{"first", "a.md"},
		{"second", "https://example.com/x"},
		{"third", "c.md#top"},
	}
	for i, w := range want {
		if links[i].Text != w.text || links[i].Target != w.target {
			t.Errorf("link %d = %+v, want text=%q target=%q", i, links[i], w.text, w.target)
		}
		if got := content[links[i].Start:links[i].End]; got != "["+w.text+"]("+w.target+")" {
			t.Errorf("link %d offsets cover %q", i, got)
		}
	}
}

func TestExtractLinks_None(t *testing.T) {
	if links := ExtractLinks("plain text with [brackets] and (parens)"); links != nil {
		t.Errorf("expected no links, got %+v", links)
	}
}

func TestReplaceTargets(t *testing.T) {
	content := "[a](1.md) [b](2.md) [c](1.md)"

	got, changed := ReplaceTargets(content, func(target string) (string, bool) {
		if target == "1.md" {
			return "one.md", true
		}
		return "", false
	})

	if got != "[a](one.md) [b](2.md) [c](one.md)" {
		t.Errorf("unexpected content %q", got)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
}

func TestReplaceTargets_IdentityCountsNothing(t *testing.T) {
	content := "prefix [a](x.md) suffix"
	got, changed := ReplaceTargets(content, func(target string) (string, bool) {
		return target, true
	})
	if got != content || changed != 0 {
		t.Errorf("got %q (%d changes), want unchanged", got, changed)
	}
}

func TestSplitFragment(t *testing.T) {
	tests := []struct {
		in, path, frag string
	}{
		{"a.md", "a.md", ""},
		{"a.md#intro", "a.md", "#intro"},
		{"#top", "", "#top"},
	}
	for _, tt := range tests {
		p, f := SplitFragment(tt.in)
		if p != tt.path || f != tt.frag {
			t.Errorf("SplitFragment(%q) = %q, %q; want %q, %q", tt.in, p, f, tt.path, tt.frag)
		}
	}
}

func TestSchemesIsExternal(t *testing.T) {
	tests := []struct {
		name    string
		schemes Schemes
		target  string
		want    bool
	}{
		{name: "http", target: "http://example.com", want: true},
		{name: "https upper", target: "HTTPS://example.com", want: true},
		{name: "ftp", target: "ftp://files.example.com/a.md", want: true},
		{name: "relative md", target: "notes/a.md", want: false},
		{name: "bare md", target: "a.md", want: false},
		{name: "mailto not default", target: "mailto:me@example.com", want: false},
		{name: "mailto configured", schemes: Schemes{"mailto"}, target: "mailto:me@example.com", want: true},
		{name: "scheme name as file", target: "https.md", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.schemes.IsExternal(tt.target); got != tt.want {
				t.Errorf("IsExternal(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}
