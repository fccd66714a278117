package remap

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/mdnotes/internal/id"
	"github.com/lherron/mdnotes/internal/notes"
)

// sequence returns a deterministic generator: n-1, n-2, ...
func sequence(prefix string) id.Generator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestBuild_OneIDPerNote(t *testing.T) {
	m, err := Build([]string{"1", "2", "3"}, Options{Generate: sequence("n")})
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	for old, want := range map[string]string{"1": "n-1", "2": "n-2", "3": "n-3"} {
		got, ok := m.Lookup(old)
		require.True(t, ok, "missing %s", old)
		assert.Equal(t, want, got)
	}
}

func TestBuild_SuffixVariantsShareID(t *testing.T) {
	m, err := Build([]string{"7.md", "8"}, Options{Generate: sequence("n")})
	require.NoError(t, err)

	withSuffix, ok := m.Lookup("7.md")
	require.True(t, ok)
	bare, ok := m.Lookup("7")
	require.True(t, ok)
	assert.Equal(t, withSuffix, bare)

	eight, ok := m.Lookup("8.md")
	require.True(t, ok, "suffixed link to a bare id must resolve")
	assert.Equal(t, "n-2", eight)
}

func TestBuild_ExactIDWinsOverStrippedVariant(t *testing.T) {
	m, err := Build([]string{"a.md", "a"}, Options{Generate: sequence("n")})
	require.NoError(t, err)

	suffixed, _ := m.Lookup("a.md")
	bare, _ := m.Lookup("a")
	assert.Equal(t, "n-1", suffixed)
	assert.Equal(t, "n-2", bare)
	assert.NotEqual(t, suffixed, bare)
}

func TestBuild_DuplicateOldIDsReuseMapping(t *testing.T) {
	m, err := Build([]string{"1", "1", "2"}, Options{Generate: sequence("n")})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}

func TestBuild_RegeneratesOnCollision(t *testing.T) {
	values := []string{"same", "same", "", "other"}
	i := 0
	gen := func() string {
		v := values[i]
		i++
		return v
	}

	m, err := Build([]string{"1", "2"}, Options{Generate: gen})
	require.NoError(t, err)

	one, _ := m.Lookup("1")
	two, _ := m.Lookup("2")
	assert.Equal(t, "same", one)
	assert.Equal(t, "other", two)
}

func TestBuild_GeneratorExhausted(t *testing.T) {
	_, err := Build([]string{"1", "2"}, Options{Generate: func() string { return "stuck" }})
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	records := []notes.Record{{OldID: "1"}, {OldID: "2.md"}}
	m, err := Build([]string{"1", "2.md"}, Options{Generate: sequence("n")})
	require.NoError(t, err)

	require.NoError(t, m.Apply(records))
	assert.Equal(t, "n-1", records[0].NewID)
	assert.Equal(t, "n-2", records[1].NewID)

	err = m.Apply([]notes.Record{{OldID: "missing"}})
	assert.Error(t, err)
}

func TestRewrite(t *testing.T) {
	m, err := Build([]string{"1", "2"}, Options{Generate: sequence("n")})
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      string
		want    string
		changed int
	}{
		{name: "suffixed target", in: "[link](2.md)", want: "[link](n-2.md)", changed: 1},
		{name: "bare target", in: "[link](2)", want: "[link](n-2.md)", changed: 1},
		{name: "fragment kept", in: "[link](1.md#intro)", want: "[link](n-1.md#intro)", changed: 1},
		{name: "unknown target untouched", in: "[gone](99.md)", want: "[gone](99.md)"},
		{name: "external untouched", in: "[site](https://example.com/2.md)", want: "[site](https://example.com/2.md)"},
		{name: "anchor only", in: "[top](#top)", want: "[top](#top)"},
		{
			name:    "mixed",
			in:      "a [one](1.md) b [web](http://x/1) c [two](2.md)",
			want:    "a [one](n-1.md) b [web](http://x/1) c [two](n-2.md)",
			changed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := m.Rewrite(tt.in, nil)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestRewrite_LinkToSecondNote(t *testing.T) {
	m, err := Build([]string{"1", "2"}, Options{})
	require.NoError(t, err)

	got, _ := m.Rewrite("[link](2.md)", nil)
	two, _ := m.Lookup("2")

	assert.True(t, id.IsUUID(two))
	assert.Equal(t, "[link]("+two+".md)", got)
	assert.NotContains(t, got, "(2.md)")
}

func TestLookup_PercentEncodedTarget(t *testing.T) {
	m, err := Build([]string{"my note", "2"}, Options{Generate: sequence("n")})
	require.NoError(t, err)

	tests := []struct {
		target string
		want   string
		ok     bool
	}{
		{target: "my%20note.md", want: "n-1", ok: true},
		{target: "my%20note", want: "n-1", ok: true},
		{target: "my note.md", want: "n-1", ok: true},
		{target: "other%20note.md", ok: false},
		{target: "bad%zz.md", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, ok := m.Lookup(tt.target)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	got, n := m.Rewrite("[mine](my%20note.md#top)", nil)
	assert.Equal(t, 1, n)
	assert.Equal(t, "[mine](n-1.md#top)", got)
}

func TestEntries(t *testing.T) {
	m, err := Build([]string{"b", "a"}, Options{Generate: sequence("n")})
	require.NoError(t, err)
	assert.Equal(t, []Entry{{OldID: "b", NewID: "n-1"}, {OldID: "a", NewID: "n-2"}}, m.Entries())
}

func TestMappingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	idGen := gen.SliceOf(gen.OneGenOf(
		gen.NumString(),
		gen.AlphaString(),
		gen.NumString().Map(func(s string) string { return s + ".md" }),
	))

	properties.Property("mapping is total and injective", prop.ForAll(
		func(ids []string) bool {
			m, err := Build(ids, Options{})
			if err != nil {
				return false
			}
			seen := make(map[string]string)
			for _, old := range ids {
				newID, ok := m.Lookup(old)
				if !ok {
					return false
				}
				if prev, dup := seen[newID]; dup && prev != old {
					return false
				}
				seen[newID] = old
			}
			return true
		},
		idGen,
	))

	properties.Property("rewriting twice changes nothing", prop.ForAll(
		func(ids []string, targets []string) bool {
			m, err := Build(ids, Options{})
			if err != nil {
				return false
			}
			var b strings.Builder
			for i, target := range append(append([]string{}, ids...), targets...) {
				fmt.Fprintf(&b, "text %d [l%d](%s.md) ", i, i, target)
			}
			once, _ := m.Rewrite(b.String(), nil)
			twice, changed := m.Rewrite(once, nil)
			return once == twice && changed == 0
		},
		idGen,
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("external links are never altered", prop.ForAll(
		func(ids []string, path string) bool {
			m, err := Build(ids, Options{})
			if err != nil {
				return false
			}
			content := ""
			for _, old := range ids {
				content += "[ext](https://example.com/" + old + ".md) "
			}
			content += "[p](ftp://host/" + path + ")"
			got, changed := m.Rewrite(content, nil)
			return got == content && changed == 0
		},
		idGen,
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
