// Package addons clones and updates the addon repositories of an Odoo
// project and keeps the addons_path directive of odoo.conf in sync with
// the checked out tree.
//
// Repositories are declared in a manifest (addons_repos.toml by
// default) grouped into sections:
//
//	[[third-party]]
//	name = "local_folder"                                # optional
//	url = "https://github.com/org/repository.git"
//	branch = "16.0"                                      # optional
//
// The same keys apply to [[oca]] and [[custom]]. YAML and JSON
// manifests with the same shape are accepted as well.
package addons

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Sections lists the manifest sections, in the order their repositories
// are laid out under the addons base directory.
var Sections = []string{"third-party", "oca", "custom"}

var parserMap = map[string]koanf.Parser{
	".toml": toml.Parser(),
	".yaml": yaml.Parser(),
	".yml":  yaml.Parser(),
	".json": json.Parser(),
}

// RepoSpec describes one addon repository from the manifest.
type RepoSpec struct {
	Section string
	Name    string `koanf:"name"`
	URL     string `koanf:"url"`
	Branch  string `koanf:"branch"`
}

// LoadManifest reads the repository manifest at path. Entries without a
// url are skipped; entries without a name get one derived from the url.
// The returned specs follow manifest section and entry order.
func LoadManifest(path string) ([]RepoSpec, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("manifest not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	parser, ok := parserMap[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported manifest format: %s", path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load manifest %s: %w", path, err)
	}

	var specs []RepoSpec
	for _, section := range Sections {
		if !k.Exists(section) {
			continue
		}
		var entries []RepoSpec
		if err := k.Unmarshal(section, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse section %q: %w", section, err)
		}
		for _, entry := range entries {
			if entry.URL == "" {
				continue
			}
			entry.Section = section
			if entry.Name == "" {
				entry.Name = NameFromURL(entry.URL)
			}
			specs = append(specs, entry)
		}
	}
	return specs, nil
}

// NameFromURL derives a checkout directory name from a git URL: the
// last path element with any .git suffix removed.
func NameFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}

// Dir returns the checkout directory of a repository under baseDir.
func (r RepoSpec) Dir(baseDir string) string {
	return filepath.Join(baseDir, r.Section, r.Name)
}

// RepoPaths returns the checkout path of every spec, deduplicated,
// preserving manifest order. These are the entries clone-addons feeds to
// the addons_path rewrite.
func RepoPaths(baseDir string, specs []RepoSpec) []string {
	seen := make(map[string]struct{}, len(specs))
	paths := make([]string, 0, len(specs))
	for _, spec := range specs {
		path := spec.Dir(baseDir)
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	return paths
}
