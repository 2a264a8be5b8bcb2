package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceBuiltin SourceKind = "builtin"
	SourceFile    SourceKind = "file"
)

// Source records where a config value came from.
type Source struct {
	Kind   SourceKind
	Name   string // builtin/default only
	File   string
	Line   int
	Column int
}

func (s Source) location() string {
	if s.Line > 0 {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return s.File
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // dotted key -> file that set it last
	Files   []string          // every file read, includes first
}

// ConfigEnv overrides the config file location.
const ConfigEnv = "TAGTILE_CONFIG"

func DefaultConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv(ConfigEnv)); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tagtile", "config.yaml"), nil
}

// Load returns the effective configuration from the default location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load plus the per-key sources and file list used by
// `config explain` and the watcher.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields the
// defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &fileLoader{
		seen:    make(map[string]bool),
		sources: make(map[string]Source),
	}

	var raw RawConfig
	if _, err := os.Stat(path); err == nil {
		if raw, err = l.load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, l.withSource(err)
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// includeRef is one entry of a file's include list.
type includeRef struct {
	Value  string
	Source Source
}

// parsedFile is a single decoded config file before includes are merged.
type parsedFile struct {
	raw      RawConfig
	sources  map[string]Source
	includes []includeRef
}

// fileLoader walks a config file and its includes depth first. Included
// files are merged before the including file so the includer wins.
type fileLoader struct {
	seen    map[string]bool
	stack   []string
	sources map[string]Source
	files   []string
}

func (l *fileLoader) load(path string) (RawConfig, error) {
	canon := canonicalPath(path)
	for _, open := range l.stack {
		if open == canon {
			chain := append(append([]string(nil), l.stack...), canon)
			return RawConfig{}, fmt.Errorf("include cycle detected: %s", strings.Join(chain, " -> "))
		}
	}
	if l.seen[canon] {
		return RawConfig{}, nil
	}
	l.seen[canon] = true

	data, err := os.ReadFile(canon)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", canon, err)
	}
	var file parsedFile
	if isTOML(canon) {
		file, err = parseTOML(data, canon)
	} else {
		file, err = parseYAML(data, canon)
	}
	if err != nil {
		return RawConfig{}, err
	}

	l.stack = append(l.stack, canon)
	defer func() { l.stack = l.stack[:len(l.stack)-1] }()

	var merged RawConfig
	for _, ref := range file.includes {
		paths, err := expandInclude(canon, ref.Value)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s: include %q: %w", ref.Source.location(), ref.Value, err)
		}
		for _, p := range paths {
			inc, err := l.load(p)
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(inc)
		}
	}

	for key, src := range file.sources {
		l.sources[key] = src
	}
	l.files = append(l.files, canon)
	return merged.merge(file.raw), nil
}

// withSource fills in the file position of a validation error when the
// failing key was set by a file.
func (l *fileLoader) withSource(err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := l.sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}

func parseYAML(data []byte, file string) (parsedFile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return parsedFile{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}

	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return parsedFile{}, fmt.Errorf("%s: %w", file, err)
	}

	out := parsedFile{raw: raw, sources: make(map[string]Source)}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	out.walk(root, file, "")
	return out, nil
}

// walk records a Source for every mapping key under node and collects the
// top-level include entries.
func (p *parsedFile) walk(node *yaml.Node, file, prefix string) {
	at := func(n *yaml.Node) Source {
		return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, node.Content[i+1]
			if prefix == "" && key == "include" {
				p.addIncludes(val, at)
			}
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			p.sources[path] = at(val)
			p.walk(val, file, path)
		}
	case yaml.SequenceNode:
		if prefix != "" {
			p.sources[prefix] = at(node)
		}
	}
}

func (p *parsedFile) addIncludes(val *yaml.Node, at func(*yaml.Node) Source) {
	switch val.Kind {
	case yaml.ScalarNode:
		p.includes = append(p.includes, includeRef{Value: val.Value, Source: at(val)})
	case yaml.SequenceNode:
		for _, item := range val.Content {
			if item.Kind == yaml.ScalarNode {
				p.includes = append(p.includes, includeRef{Value: item.Value, Source: at(item)})
			}
		}
	}
}

func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	return path
}

// expandInclude resolves an include entry relative to the including file.
// A directory expands to its config files in name order.
func expandInclude(baseFile, include string) ([]string, error) {
	switch {
	case include == "":
		return nil, fmt.Errorf("path is empty")
	case include == "~" || strings.HasPrefix(include, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		include = filepath.Join(home, strings.TrimPrefix(include, "~"))
	case !filepath.IsAbs(include):
		include = filepath.Join(filepath.Dir(baseFile), include)
	}

	info, err := os.Stat(include)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{include}, nil
	}

	entries, err := os.ReadDir(include)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml", ".toml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(include, ent.Name()))
			}
		}
	}
	return files, nil
}
