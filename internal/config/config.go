// Package config loads the site configuration document (ssite.toml or ssite.yaml) found
// at the site root.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
)

const (
	TOMLFileName = "ssite.toml"
	YAMLFileName = "ssite.yaml"
	EnvFileName  = ".env"
)

// Format identifies the syntax of a configuration document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Config is the validated site configuration. All directories are absolute.
type Config struct {
	RootDir    string
	File       string
	ContentDir string
	DistDir    string
	Runners    []Runner
}

type document struct {
	Source  sourceSection            `toml:"source" yaml:"source"`
	Runners map[string]runnerSection `toml:"runner" yaml:"runner"`
}

type sourceSection struct {
	ContentDir string `toml:"content_dir" yaml:"content_dir"`
	DistDir    string `toml:"dist_dir" yaml:"dist_dir"`
}

type runnerSection struct {
	Cmd       string   `toml:"cmd" yaml:"cmd"`
	Cwd       string   `toml:"cwd" yaml:"cwd"`
	Args      []string `toml:"args" yaml:"args"`
	WatchArgs []string `toml:"watch_args" yaml:"watch_args"`
	RunOn     []string `toml:"run_on" yaml:"run_on"`
}

// Load finds and loads the configuration document in rootDir. A .env file next to it is
// loaded into the process environment first (existing variables win) so that ${VAR}
// references in the document and runner processes can see its values.
func Load(rootDir string) (*Config, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, foundationerrors.ValidationError("cannot resolve site root dir").
			WithContext("path", rootDir).WithCause(err).Build()
	}
	if st, statErr := os.Stat(absRoot); statErr != nil || !st.IsDir() {
		return nil, foundationerrors.ValidationError("site root path is not a valid directory, provide one with -d some/valid/dir").
			WithContext("path", absRoot).Build()
	}

	loadEnvFile(filepath.Join(absRoot, EnvFileName))

	file, format, err := findConfigFile(absRoot)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is the config file inside the user-provided root
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, foundationerrors.ConfigError("failed to read config file").
			WithContext("path", file).WithCause(err).Build()
	}

	cfg, err := Parse(absRoot, format, []byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	cfg.File = file
	return cfg, nil
}

func findConfigFile(rootDir string) (string, Format, error) {
	candidates := []struct {
		name   string
		format Format
	}{
		{TOMLFileName, FormatTOML},
		{YAMLFileName, FormatYAML},
	}
	for _, c := range candidates {
		p := filepath.Join(rootDir, c.name)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, c.format, nil
		}
	}
	return "", "", foundationerrors.ConfigError(fmt.Sprintf("missing config file '%s' in root dir", TOMLFileName)).
		WithContext("path", rootDir).Build()
}

func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("Failed to load env file", "path", path, "error", err)
		return
	}
	slog.Debug("Loaded environment variables", "path", path)
}

// Parse decodes and validates a configuration document for the site rooted at rootDir.
// content_dir must exist; dist_dir is created when missing.
func Parse(rootDir string, format Format, data []byte) (*Config, error) {
	var doc document
	var order []string
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
		if err != nil {
			return nil, foundationerrors.ConfigError("invalid TOML config").WithCause(err).Build()
		}
		for _, key := range md.Keys() {
			if len(key) == 2 && key[0] == "runner" {
				order = append(order, key[1])
			}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, foundationerrors.ConfigError("invalid YAML config").WithCause(err).Build()
		}
		var err error
		if order, err = yamlRunnerOrder(data); err != nil {
			return nil, foundationerrors.ConfigError("invalid YAML config").WithCause(err).Build()
		}
	default:
		return nil, foundationerrors.InternalError("unknown config format").WithContext("format", string(format)).Build()
	}

	contentDir, err := resolveContentDir(rootDir, doc.Source.ContentDir)
	if err != nil {
		return nil, err
	}
	distDir, err := resolveDistDir(rootDir, doc.Source.DistDir)
	if err != nil {
		return nil, err
	}
	// Stale cleanup deletes anything under dist_dir that the build did not produce.
	if within(contentDir, distDir) {
		return nil, foundationerrors.ConfigError("dist dir must not be or contain the content dir").
			WithContext("path", "source.dist_dir").WithContext("dist_dir", distDir).
			WithContext("content_dir", contentDir).Build()
	}

	runners := make([]Runner, 0, len(doc.Runners))
	for _, name := range completeOrder(order, doc.Runners) {
		r, err := newRunner(name, doc.Runners[name])
		if err != nil {
			return nil, err
		}
		runners = append(runners, r)
	}

	return &Config{
		RootDir:    rootDir,
		ContentDir: contentDir,
		DistDir:    distDir,
		Runners:    runners,
	}, nil
}

// completeOrder dedupes the declared order and appends, sorted, any runner the decoder
// reported without position.
func completeOrder(order []string, runners map[string]runnerSection) []string {
	seen := make(map[string]bool, len(runners))
	out := make([]string, 0, len(runners))
	for _, name := range order {
		if _, ok := runners[name]; ok && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	rest := make([]string, 0)
	for name := range runners {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// yamlRunnerOrder returns the runner names in document order; yaml maps decode unordered.
func yamlRunnerOrder(data []byte) ([]string, error) {
	var raw struct {
		Runner yaml.Node `yaml:"runner"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Runner.Kind != yaml.MappingNode {
		return nil, nil
	}
	names := make([]string, 0, len(raw.Runner.Content)/2)
	for i := 0; i+1 < len(raw.Runner.Content); i += 2 {
		names = append(names, raw.Runner.Content[i].Value)
	}
	return names, nil
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func resolveContentDir(rootDir, raw string) (string, error) {
	if raw == "" {
		return "", foundationerrors.ConfigError("missing config property").WithContext("path", "source.content_dir").Build()
	}
	dir, err := filepath.EvalSymlinks(filepath.Join(rootDir, raw))
	if err != nil {
		return "", foundationerrors.ConfigError("missing content dir").
			WithContext("path", filepath.Join(rootDir, raw)).WithCause(err).Build()
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return "", foundationerrors.ConfigError("content dir is not a directory").WithContext("path", dir).Build()
	}
	return dir, nil
}

func resolveDistDir(rootDir, raw string) (string, error) {
	if raw == "" {
		return "", foundationerrors.ConfigError("missing config property").WithContext("path", "source.dist_dir").Build()
	}
	dir := filepath.Join(rootDir, raw)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", foundationerrors.ConfigError("cannot create dist dir").WithContext("path", dir).WithCause(err).Build()
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", foundationerrors.ConfigError("cannot resolve dist dir").WithContext("path", dir).WithCause(err).Build()
	}
	return resolved, nil
}
