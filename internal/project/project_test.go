package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRootFrom(t *testing.T) {
	home := t.TempDir()
	root := filepath.Join(home, "work", "project")
	nested := filepath.Join(root, "src", "module")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, Marker), []byte("services: {}\n"), 0o644))

	t.Run("from project root", func(t *testing.T) {
		got, err := findRootFrom(root, home)
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})

	t.Run("from nested directory", func(t *testing.T) {
		got, err := findRootFrom(nested, home)
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})

	t.Run("stops at home", func(t *testing.T) {
		outside := filepath.Join(home, "elsewhere")
		require.NoError(t, os.MkdirAll(outside, 0o755))
		_, err := findRootFrom(outside, home)
		assert.Error(t, err)
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ODOOCTL_TEST_A=from-file\nODOOCTL_TEST_B=also-file\n"), 0o644))

	t.Setenv("ODOOCTL_TEST_B", "from-env")
	os.Unsetenv("ODOOCTL_TEST_A")
	t.Cleanup(func() { os.Unsetenv("ODOOCTL_TEST_A") })

	require.NoError(t, LoadEnv(path))

	assert.Equal(t, "from-file", os.Getenv("ODOOCTL_TEST_A"))
	assert.Equal(t, "from-env", os.Getenv("ODOOCTL_TEST_B"), "existing environment must win over .env")
}

func TestLoadEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("PROJECT_NAME", "acme")
	t.Setenv("POSTGRES_USER", "pg")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("ODOO_VERSION", "17.0")
	t.Setenv("RESET_PASSWORD", "")
	t.Setenv("PGADMIN_HOST_PORT", "")
	t.Setenv("ODOOLS_SYNC_EXCLUDES", " a , ,b ")

	settings, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "acme", settings.ProjectName)
	assert.Equal(t, "pg", settings.PostgresUser)
	assert.Equal(t, "odoo", settings.PostgresPassword, "empty env falls back to default")
	assert.Equal(t, "admin", settings.ResetPassword)
	assert.Equal(t, "8008", settings.PgAdminPort)
	assert.Equal(t, "17.0", settings.OdooVersion)
	assert.Equal(t, []string{"a", "b"}, settings.SyncExcludes)

	assert.Equal(t, "acme_odoo", settings.OdooContainer())
	assert.Equal(t, "acme_postgres", settings.PostgresContainer())
	assert.Equal(t, "acme_pgadmin", settings.Container("pgadmin"))
}
