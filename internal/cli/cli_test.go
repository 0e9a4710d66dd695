package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{
		"db", "create-backup", "restore-backup", "update-module",
		"manage-user", "sh", "ps", "build", "requirements",
		"pgadmin", "wait-db", "clone-addons", "odools",
	} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestLatestBackup(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "prod_20240101000000.tar.gz")
	newer := filepath.Join(dir, "prod_20250101000000.tar.gz")
	zipped := filepath.Join(dir, "prod_web_export.zip")
	other := filepath.Join(dir, "staging_20250101000000.tar.gz")

	for _, path := range []string{older, newer, zipped, other} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, base, base))
	require.NoError(t, os.Chtimes(zipped, base.Add(10*time.Minute), base.Add(10*time.Minute)))
	require.NoError(t, os.Chtimes(newer, base.Add(20*time.Minute), base.Add(20*time.Minute)))

	t.Run("newest match wins", func(t *testing.T) {
		got, err := latestBackup(dir, "prod")
		require.NoError(t, err)
		assert.Equal(t, newer, got)
	})

	t.Run("exact file name", func(t *testing.T) {
		exact := filepath.Join(dir, "prod")
		require.NoError(t, os.WriteFile(exact, []byte("x"), 0o644))
		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(exact, future, future))

		got, err := latestBackup(dir, "prod")
		require.NoError(t, err)
		assert.Equal(t, exact, got)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := latestBackup(dir, "missing")
		assert.Error(t, err)
	})
}

func TestParseRequirements(t *testing.T) {
	specs, err := parseRequirements("# deps\n\nrequests==2.31.0\n  openupgradelib  \n# trailing\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"requests==2.31.0", "openupgradelib"}, specs)
}

func TestParseRequirementsRejectsDirectives(t *testing.T) {
	for _, content := range []string{
		"-r other.txt\n",
		"--requirement other.txt\n",
		"-f https://wheels.example.com\n",
		"--find-links https://wheels.example.com\n",
	} {
		_, err := parseRequirements(content)
		assert.Error(t, err, content)
	}
}

func TestCloneAddonsUpdateConf(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "odoo.conf")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("appends missing checkouts", func(t *testing.T) {
		path := write(t, "[options]\naddons_path = /mnt/extra-addons\n")
		c := &cloneAddonsCmd{}

		require.NoError(t, c.updateConf(path, []string{"/workspace/addons/oca/web"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[options]\naddons_path = /mnt/extra-addons,\n /workspace/addons/oca/web\n", string(data))
	})

	t.Run("no write when up to date", func(t *testing.T) {
		content := "[options]\naddons_path = /a,\n /b\n"
		path := write(t, content)
		c := &cloneAddonsCmd{}

		require.NoError(t, c.updateConf(path, []string{"/a", "/b"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	})

	t.Run("prune keeps only preserved entries", func(t *testing.T) {
		path := write(t, "addons_path = /keep,\n /drop\n")
		c := &cloneAddonsCmd{prune: true, preserve: []string{"/keep"}}

		require.NoError(t, c.updateConf(path, []string{"/new"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "addons_path = /keep,\n /new\n", string(data))
	})

	t.Run("missing conf is a warning, not an error", func(t *testing.T) {
		c := &cloneAddonsCmd{}
		assert.NoError(t, c.updateConf(filepath.Join(t.TempDir(), "odoo.conf"), []string{"/a"}))
	})

	t.Run("missing directive leaves file untouched", func(t *testing.T) {
		content := "[options]\ndb_host = db\n"
		path := write(t, content)
		c := &cloneAddonsCmd{}

		require.NoError(t, c.updateConf(path, []string{"/a"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	})
}
