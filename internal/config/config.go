// internal/config/config.go
//
// This package handles configuration and the .lexicon directory structure.
// Every directory lexicon is run from gets a .lexicon/ folder holding the
// config file and the logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/lexicon/internal/grid"
	"github.com/kingrea/lexicon/internal/lexicon"
)

const (
	// Dir is the name of the directory we create in each working directory
	Dir = ".lexicon"

	DefaultBaseURL        = "http://localhost:8000"
	DefaultTimeout        = 30 * time.Second
	DefaultSearchDebounce = 300 * time.Millisecond

	envBaseURL  = "LEXICON_API_URL"
	envToken    = "LEXICON_API_TOKEN"
	envPageSize = "LEXICON_PAGE_SIZE"
)

const defaultProjectConfigYAML = `# lexicon configuration
version: 1

api:
  base_url: http://localhost:8000
  # token: set here or through LEXICON_API_TOKEN
  timeout: 30s

grid:
  # one of 20, 50, 100
  page_size: 50
  # identical commits inside this window are dropped
  dedup_window: 50ms
  search_debounce: 300ms
  # columns shown in the grid, left to right
  # columns: [primary_name, language_code, first_translation]
`

// APIConfig points the client at a lexicon API deployment.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

// GridConfig tunes the editable grid.
type GridConfig struct {
	PageSize       int           `yaml:"page_size"`
	DedupWindow    time.Duration `yaml:"dedup_window"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	Columns        []string      `yaml:"columns,omitempty"`
}

// ProjectConfig models .lexicon/config.yaml.
type ProjectConfig struct {
	Version int        `yaml:"version"`
	API     APIConfig  `yaml:"api"`
	Grid    GridConfig `yaml:"grid"`
}

// Config holds the runtime configuration for lexicon.
type Config struct {
	// ProjectDir is the directory where the user ran `lexicon` from
	ProjectDir string

	// LexiconDir is ProjectDir/.lexicon
	LexiconDir string

	Project ProjectConfig
}

// InitDir creates the .lexicon directory structure in the given directory
// and writes a commented default config.yaml when none exists.
//
// Structure created:
// .lexicon/
// ├── config.yaml
// └── logs/
func InitDir(projectDir string) error {
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(dir, "config.yaml"))
}

// NewConfig loads .lexicon/config.yaml from projectDir, falling back to
// defaults, then applies environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		LexiconDir: filepath.Join(projectDir, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.Project.applyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.LexiconDir, "logs")
}

// LogPath is the structured application log.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "lexicon.log")
}

// NoticesPath is the logbook backing the notice panel.
func (c *Config) NoticesPath() string {
	return filepath.Join(c.LogsDir(), "notices.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.LexiconDir, "config.yaml")
}

// Columns returns the configured grid columns, or the defaults.
func (c *Config) Columns() []string {
	if len(c.Project.Grid.Columns) == 0 {
		return append([]string(nil), grid.DefaultColumns...)
	}
	return append([]string(nil), c.Project.Grid.Columns...)
}

// SetPageSize updates the page size and writes it to config.yaml. Only
// grid.page_size changes on disk; values that came from the environment or
// flags stay out of the file.
func (c *Config) SetPageSize(size int) error {
	if !validPageSize(size) {
		return fmt.Errorf("config: page size must be one of %v", lexicon.PageSizes)
	}
	if err := c.patchProjectConfig([]string{"grid", "page_size"}, strconv.Itoa(size), "!!int"); err != nil {
		return err
	}
	c.Project.Grid.PageSize = size
	return nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

// patchProjectConfig sets one scalar in config.yaml, keeping the rest of the
// file, comments included, as the user wrote it.
func (c *Config) patchProjectConfig(keys []string, value, tag string) error {
	if err := os.MkdirAll(c.LexiconDir, 0755); err != nil {
		return fmt.Errorf("config: ensure dir: %w", err)
	}
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data = []byte(defaultProjectConfigYAML)
	} else if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	node := doc.Content[0]
	for i, key := range keys {
		if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
			node.Kind, node.Tag, node.Value = yaml.MappingNode, "!!map", ""
		}
		if node.Kind != yaml.MappingNode {
			return fmt.Errorf("config: %s: %s is not a mapping", path, strings.Join(keys[:i], "."))
		}
		node = mappingValue(node, key)
	}
	node.Kind = yaml.ScalarNode
	node.Tag = tag
	node.Value = value
	node.Style = 0
	node.Content = nil

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// mappingValue returns the value node for key, appending an empty mapping
// when the key is missing.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	value := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
	return value
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.API.BaseURL == "" {
		pc.API.BaseURL = DefaultBaseURL
	}
	if pc.API.Timeout == 0 {
		pc.API.Timeout = DefaultTimeout
	}
	if pc.Grid.PageSize == 0 {
		pc.Grid.PageSize = lexicon.DefaultPageSize
	}
	if pc.Grid.DedupWindow == 0 {
		pc.Grid.DedupWindow = grid.DefaultDedupWindow
	}
	if pc.Grid.SearchDebounce == 0 {
		pc.Grid.SearchDebounce = DefaultSearchDebounce
	}
}

func (pc *ProjectConfig) normalize() {
	pc.API.BaseURL = strings.TrimRight(strings.TrimSpace(pc.API.BaseURL), "/")
	pc.API.Token = strings.TrimSpace(pc.API.Token)
	cols := pc.Grid.Columns[:0:0]
	for _, col := range pc.Grid.Columns {
		col = strings.ToLower(strings.TrimSpace(col))
		if col != "" && !contains(cols, col) {
			cols = append(cols, col)
		}
	}
	pc.Grid.Columns = cols
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if !strings.HasPrefix(pc.API.BaseURL, "http://") && !strings.HasPrefix(pc.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL")
	}
	if pc.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if !validPageSize(pc.Grid.PageSize) {
		return fmt.Errorf("grid.page_size must be one of %v", lexicon.PageSizes)
	}
	if pc.Grid.DedupWindow < 0 {
		return fmt.Errorf("grid.dedup_window must not be negative")
	}
	if pc.Grid.SearchDebounce < 0 {
		return fmt.Errorf("grid.search_debounce must not be negative")
	}
	for _, col := range pc.Grid.Columns {
		if _, ok := grid.Column(col); !ok {
			return fmt.Errorf("grid.columns: unknown column %q", col)
		}
	}
	return nil
}

// applyEnv lets the environment override the file, the way deployments
// inject credentials.
func (pc *ProjectConfig) applyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(envBaseURL)); v != "" {
		pc.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(getenv(envToken)); v != "" {
		pc.API.Token = v
	}
	if v := strings.TrimSpace(getenv(envPageSize)); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envPageSize, err)
		}
		pc.Grid.PageSize = size
	}
	return pc.validate()
}

func validPageSize(size int) bool {
	for _, s := range lexicon.PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
