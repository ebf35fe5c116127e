package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dotprep/pkg/errors"
)

// Format identifies a settings file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the syntax from the file extension. Anything that is not
// .toml is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads the settings file at path.
//
// A missing file or an empty document yields [Default] and no error. An
// unreadable or malformed file yields [Default] together with a
// CONFIG_ERROR; the caller is expected to warn and carry on. Otherwise the
// parsed document is returned exactly as written.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Default(), errors.Wrap(errors.ErrCodeConfig, err, "read %s", path)
	}

	cfg, empty, err := Parse(data, FormatFor(path))
	if err != nil {
		return Default(), errors.Wrap(errors.ErrCodeConfig, err, "parse %s", path)
	}
	if empty {
		return Default(), nil
	}
	return cfg, nil
}

// Parse decodes a settings document. empty reports a document with no
// settings at all (blank, null or an empty mapping).
func Parse(data []byte, format Format) (cfg Config, empty bool, err error) {
	if format == FormatTOML {
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, false, err
		}
		return cfg, len(md.Keys()) == 0, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, false, err
	}
	if isEmptyDocument(&doc) {
		return Config{}, true, nil
	}
	if err := doc.Decode(&cfg); err != nil {
		return Config{}, false, err
	}
	return cfg, false, nil
}

func isEmptyDocument(doc *yaml.Node) bool {
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return true
	}
	root := doc.Content[0]
	switch root.Kind {
	case yaml.ScalarNode:
		return root.ShortTag() == "!!null"
	case yaml.MappingNode:
		return len(root.Content) == 0
	}
	return false
}

// Marshal encodes cfg in the given syntax.
func Marshal(cfg Config, format Format) ([]byte, error) {
	if format == FormatTOML {
		return marshalTOML(cfg)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalTOML goes through a plain map so string and literal values keep
// their TOML types.
func marshalTOML(cfg Config) ([]byte, error) {
	data, err := Marshal(cfg, FormatYAML)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault writes [Default] to path in the syntax implied by its
// extension. An existing file is never overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrCodeInvalidPath, "%s already exists", path)
	}
	data, err := Marshal(Default(), FormatFor(path))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode default config")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
