package addons

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneAllCreatesSectionDirs(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "addons")

	require.NoError(t, CloneAll(context.Background(), baseDir, nil, 2))

	for _, section := range Sections {
		info, err := os.Stat(filepath.Join(baseDir, section))
		require.NoError(t, err, section)
		assert.True(t, info.IsDir())
	}
}

func TestRepoSpecDir(t *testing.T) {
	spec := RepoSpec{Section: "oca", Name: "web"}
	assert.Equal(t, filepath.Join("/base", "oca", "web"), spec.Dir("/base"))
}
