package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// parseTOML decodes a TOML config file. go-toml does not expose per-key
// positions, so sources carry the file but no line.
func parseTOML(data []byte, file string) (parsedFile, error) {
	var raw RawConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return parsedFile{}, fmt.Errorf("%s:%d:%d: failed to parse toml: %w", file, row, col, err)
		}
		return parsedFile{}, fmt.Errorf("%s: %w", file, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return parsedFile{}, fmt.Errorf("%s: failed to parse toml: %w", file, err)
	}
	sources := make(map[string]Source)
	collectTOMLSources(doc, file, "", sources)

	out := parsedFile{raw: raw, sources: sources}
	for _, inc := range raw.Include {
		out.includes = append(out.includes, includeRef{
			Value:  inc,
			Source: Source{Kind: SourceFile, File: file},
		})
	}
	return out, nil
}

func collectTOMLSources(node map[string]any, file string, prefix string, out map[string]Source) {
	for key, val := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		out[path] = Source{Kind: SourceFile, File: file}
		if child, ok := val.(map[string]any); ok {
			collectTOMLSources(child, file, path, out)
		}
	}
}
