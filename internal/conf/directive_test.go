package conf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		directive   string
		wantFound   bool
		wantEntries []string
		wantStart   int
		wantEnd     int
	}{
		{
			name:        "single line",
			content:     "[options]\naddons_path = /a\ndb_host = db\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a"},
			wantStart:   1,
			wantEnd:     2,
		},
		{
			name:        "single line multiple entries",
			content:     "addons_path = /a, /b,/c\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a", "/b", "/c"},
			wantStart:   0,
			wantEnd:     1,
		},
		{
			name:        "continuation lines",
			content:     "addons_path = /a,\n /b,\n /c\ndb_host = db\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a", "/b", "/c"},
			wantStart:   0,
			wantEnd:     3,
		},
		{
			name:        "tab indented continuation",
			content:     "addons_path = /a,\n\t/b\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a", "/b"},
			wantStart:   0,
			wantEnd:     2,
		},
		{
			name:        "backslash continuation markers stripped",
			content:     "addons_path = /a, \\\n /b, \\\n /c\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a", "/b", "/c"},
			wantStart:   0,
			wantEnd:     3,
		},
		{
			name:        "blank and comment lines inside block",
			content:     "addons_path = /a,\n /b,\n\n# note\n /c\nnext = x\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a", "/b", "/c"},
			wantStart:   0,
			wantEnd:     5,
		},
		{
			name:        "empty value with continuations",
			content:     "addons_path =\n /a,\n /b\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a", "/b"},
			wantStart:   0,
			wantEnd:     3,
		},
		{
			name:        "header without value or continuations",
			content:     "addons_path =\ndb_host = db\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: nil,
			wantStart:   0,
			wantEnd:     1,
		},
		{
			name:        "block ends at end of file",
			content:     "addons_path = /a,\n /b",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a", "/b"},
			wantStart:   0,
			wantEnd:     2,
		},
		{
			name:        "duplicates collapse to first occurrence",
			content:     "addons_path = /a,\n /b,\n /a\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a", "/b"},
			wantStart:   0,
			wantEnd:     3,
		},
		{
			name:        "only first occurrence is used",
			content:     "addons_path = /a\nother = 1\naddons_path = /z\n",
			directive:   "addons_path",
			wantFound:   true,
			wantEntries: []string{"/a"},
			wantStart:   0,
			wantEnd:     1,
		},
		{
			name:      "directive absent",
			content:   "[options]\ndb_host = db\n",
			directive: "addons_path",
			wantFound: false,
			wantStart: -1,
			wantEnd:   -1,
		},
		{
			name:      "empty content",
			content:   "",
			directive: "addons_path",
			wantFound: false,
			wantStart: -1,
			wantEnd:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, found := Locate(tt.content, tt.directive)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantEntries, block.Entries)
			assert.Equal(t, tt.wantStart, block.Start)
			assert.Equal(t, tt.wantEnd, block.End)
		})
	}
}

func TestRewriteAppendsRequiredEntry(t *testing.T) {
	content := "addons_path = /a,\n /b,\n /c\n"

	got, outcome := Rewrite(content, "addons_path", []string{"/d"}, []string{"/a", "/b", "/c"})
	require.Equal(t, Changed, outcome)
	assert.Equal(t, "addons_path = /a,\n /b,\n /c,\n /d\n", got)
}

func TestRewriteUnchangedWhenEntriesMatch(t *testing.T) {
	content := "addons_path = /a,\n /b,\n /c\n"

	got, outcome := Rewrite(content, "addons_path", []string{"/a", "/b", "/c"}, []string{"/a", "/b", "/c"})
	require.Equal(t, Unchanged, outcome)
	assert.Equal(t, content, got, "unchanged content must be returned verbatim")
}

func TestRewriteDirectiveAbsent(t *testing.T) {
	content := "[options]\ndb_host = db\n"

	got, outcome := Rewrite(content, "addons_path", []string{"/a"}, nil)
	require.Equal(t, NotFound, outcome)
	assert.Empty(t, got)
}

func TestRewriteSingleLineGrowsContinuation(t *testing.T) {
	content := "addons_path = /a\n"

	got, outcome := Rewrite(content, "addons_path", []string{"/b"}, []string{"/a"})
	require.Equal(t, Changed, outcome)
	assert.Equal(t, "addons_path = /a,\n /b\n", got)
}

func TestRewriteSkipsCommentAndBlankLinesInBlock(t *testing.T) {
	content := "addons_path = /a,\n /b,\n\n# note\n /c\ndb_host = db\n"

	got, outcome := Rewrite(content, "addons_path", []string{"/d"}, []string{"/a", "/b", "/c"})
	require.Equal(t, Changed, outcome)
	assert.Equal(t, "addons_path = /a,\n /b,\n /c,\n /d\ndb_host = db\n", got)
}

func TestRewriteNormalizesBackslashes(t *testing.T) {
	content := "addons_path = /a, \\\n /b\n"

	got, outcome := Rewrite(content, "addons_path", []string{"/c"}, []string{"/a", "/b"})
	require.Equal(t, Changed, outcome)
	assert.NotContains(t, got, `\`)
	assert.Equal(t, "addons_path = /a,\n /b,\n /c\n", got)
}

func TestRewritePrunesEntriesOutsidePreserve(t *testing.T) {
	content := "addons_path = /a,\n /b,\n /c\n"

	got, outcome := Rewrite(content, "addons_path", []string{"/d"}, []string{"/b"})
	require.Equal(t, Changed, outcome)
	assert.Equal(t, "addons_path = /b,\n /d\n", got)
}

func TestRewritePreservedKeepFileOrder(t *testing.T) {
	content := "addons_path = /a,\n /b,\n /c\n"

	// Preserve list order must not matter; file order wins.
	got, outcome := Rewrite(content, "addons_path", []string{"/d"}, []string{"/c", "/a"})
	require.Equal(t, Changed, outcome)
	assert.Equal(t, "addons_path = /a,\n /c,\n /d\n", got)
}

func TestRewriteDeduplicatesOverlap(t *testing.T) {
	content := "addons_path = /a,\n /b\n"

	got, outcome := Rewrite(content, "addons_path", []string{"/b", "/c", "/c"}, []string{"/a", "/b"})
	require.Equal(t, Changed, outcome)
	assert.Equal(t, "addons_path = /a,\n /b,\n /c\n", got)
}

func TestRewriteEmptyFinalCollapsesToHeader(t *testing.T) {
	content := "before = 1\naddons_path = /a,\n /b\nafter = 2\n"

	got, outcome := Rewrite(content, "addons_path", nil, nil)
	require.Equal(t, Changed, outcome)
	assert.Equal(t, "before = 1\naddons_path = \nafter = 2\n", got)
}

func TestRewriteLeavesSurroundingTextUntouched(t *testing.T) {
	before := "[options]\ndb_host = db\n# comment before\n"
	block := "addons_path = /a,\n /b\n"
	after := "db_port = 5432\n\n# trailing comment\nlimit_time_real = 120\n"

	got, outcome := Rewrite(before+block+after, "addons_path", []string{"/c"}, []string{"/a", "/b"})
	require.Equal(t, Changed, outcome)
	assert.True(t, strings.HasPrefix(got, before))
	assert.True(t, strings.HasSuffix(got, after))
}

func TestRewriteIdempotent(t *testing.T) {
	contents := []string{
		"addons_path = /a,\n /b,\n /c\n",
		"addons_path = /a, \\\n /b \\\n",
		"addons_path =\n",
		"[options]\naddons_path = /x\nother = y\n",
		"addons_path = /a,\n\n# note\n /b\ntrailer = 1\n",
	}
	required := []string{"/new/one", "/new/two"}
	preserve := []string{"/a", "/b"}

	for _, content := range contents {
		first, outcome := Rewrite(content, "addons_path", required, preserve)
		require.Equal(t, Changed, outcome)

		second, outcome := Rewrite(first, "addons_path", required, preserve)
		assert.Equal(t, Unchanged, outcome)
		assert.Equal(t, first, second)
	}
}

func TestRewriteEndsWithSingleNewline(t *testing.T) {
	for _, content := range []string{
		"addons_path = /a",
		"addons_path = /a\n",
		"addons_path = /a\nnext = 1",
	} {
		got, outcome := Rewrite(content, "addons_path", []string{"/b"}, []string{"/a"})
		require.Equal(t, Changed, outcome)
		assert.True(t, strings.HasSuffix(got, "\n"))
		assert.False(t, strings.HasSuffix(got, "\n\n"))
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "changed", Changed.String())
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "not found", NotFound.String())
}
