// Package project locates the root of a containerized Odoo project and
// exposes its settings. The root is the nearest ancestor directory
// carrying a compose.yaml; its .env file, when present, is loaded into
// the process environment.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Marker is the file that identifies a project root.
const Marker = "compose.yaml"

// FindRoot walks upwards from the working directory to the home
// directory looking for the root marker. The project .env is loaded as a
// side effect so later os.Getenv lookups see its values.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	root, err := findRootFrom(cwd, home)
	if err != nil {
		return "", err
	}

	if err := LoadEnv(filepath.Join(root, ".env")); err != nil {
		log.Warn("failed to load project .env", "error", err)
	}
	return root, nil
}

// findRootFrom searches start and its ancestors, up to and including
// home, for the marker file.
func findRootFrom(start, home string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, Marker)); err == nil {
			return dir, nil
		}
		if dir == home {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("project not found: no %s in %s or any parent", Marker, start)
}

// LoadEnv loads a dotenv file into the process environment. Variables
// already present in the environment are not overridden. A missing file
// is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to check env file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), dotenv.Parser()); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for key, value := range k.All() {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(value)); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	log.Debug("loaded environment file", "path", path)
	return nil
}

// Settings holds the per-project knobs the CLI cares about. Zero values
// are filled from defaults when loading.
type Settings struct {
	ProjectName      string
	OdooVersion      string
	PostgresUser     string
	PostgresPassword string
	ResetPassword    string
	PgAdminPort      string
	SyncExcludes     []string
}

// DefaultSettings returns the settings used when the environment does
// not say otherwise.
func DefaultSettings() Settings {
	return Settings{
		ProjectName:      "odoo",
		PostgresUser:     "odoo",
		PostgresPassword: "odoo",
		ResetPassword:    "admin",
		PgAdminPort:      "8008",
	}
}

// LoadSettings builds settings from the environment, filling gaps from
// the defaults.
func LoadSettings() (Settings, error) {
	settings := Settings{
		ProjectName:      os.Getenv("PROJECT_NAME"),
		OdooVersion:      os.Getenv("ODOO_VERSION"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		ResetPassword:    os.Getenv("RESET_PASSWORD"),
		PgAdminPort:      os.Getenv("PGADMIN_HOST_PORT"),
		SyncExcludes:     splitList(os.Getenv("ODOOLS_SYNC_EXCLUDES")),
	}

	if err := mergo.Merge(&settings, DefaultSettings()); err != nil {
		return Settings{}, fmt.Errorf("failed to merge default settings: %w", err)
	}
	return settings, nil
}

// OdooContainer returns the name of the Odoo service container.
func (s Settings) OdooContainer() string {
	return s.ProjectName + "_odoo"
}

// PostgresContainer returns the name of the Postgres service container.
func (s Settings) PostgresContainer() string {
	return s.ProjectName + "_postgres"
}

// Container returns the container name for an arbitrary service.
func (s Settings) Container(service string) string {
	return s.ProjectName + "_" + service
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
