package share

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a share document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: unsupported file extension for %s", ErrMalformedDocument, path)
}

const keysEntry = "keys"

// keyInfo holds the metadata from the "keys" object.
type keyInfo struct {
	N int `json:"n" yaml:"n"`
	K int `json:"k" yaml:"k"`
}

// rootValue represents the encoded y value and its base.
type rootValue struct {
	Base  flexString `json:"base" yaml:"base"`
	Value flexString `json:"value" yaml:"value"`
}

// flexString accepts either a string or a bare number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

func (f *flexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar", node.Line)
	}
	*f = flexString(node.Value)
	return nil
}

// LoadFile reads a job from a JSON or YAML file. The file path becomes the
// job id.
func LoadFile(path string) (*Job, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Parse(path, data, format)
}

// Parse decodes a document into a job with the given id.
func Parse(id string, data []byte, format Format) (*Job, error) {
	var (
		entries map[string]func(v any) error
		err     error
	)
	switch format {
	case FormatJSON:
		entries, err = jsonEntries(data)
	case FormatYAML:
		entries, err = yamlEntries(data)
	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrMalformedDocument, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal %s from %s: %v", ErrMalformedDocument, format, id, err)
	}

	decodeKeys, ok := entries[keysEntry]
	if !ok {
		return nil, fmt.Errorf("%w: missing 'keys' object in %s", ErrMalformedDocument, id)
	}
	var keys keyInfo
	if err := decodeKeys(&keys); err != nil {
		return nil, fmt.Errorf("%w: failed to parse 'keys' object in %s: %v", ErrMalformedDocument, id, err)
	}

	job := &Job{ID: id, Threshold: keys.K, Total: keys.N}
	for key, decode := range entries {
		if key == keysEntry {
			continue
		}
		x, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse x-coordinate '%s' to integer", ErrMalformedDocument, key)
		}

		var root rootValue
		if err := decode(&root); err != nil {
			return nil, fmt.Errorf("%w: failed to parse root object for key '%s': %v", ErrMalformedDocument, key, err)
		}
		base, err := strconv.Atoi(strings.TrimSpace(string(root.Base)))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base '%s' for key '%s'", ErrMalformedDocument, root.Base, key)
		}
		job.Shares = append(job.Shares, RawShare{X: x, Base: base, Digits: string(root.Value)})
	}
	sortShares(job.Shares)

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

func jsonEntries(data []byte) (map[string]func(v any) error, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]func(v any) error, len(raw))
	for k, msg := range raw {
		out[k] = func(v any) error { return json.Unmarshal(msg, v) }
	}
	return out, nil
}

func yamlEntries(data []byte) (map[string]func(v any) error, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]func(v any) error, len(raw))
	for k, node := range raw {
		out[k] = node.Decode
	}
	return out, nil
}
