package fileutil

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/claudesync/internal/errors"
)

// Format is a structured file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatYAML, FormatTOML, FormatJSON}
}

// ParseFormat validates a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.Newf("unsupported format %q (valid: yaml, toml, json)", s)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatYAML
}

// Marshal encodes v. The output always ends in a newline.
func Marshal(format Format, v any) (data []byte, err error) {
	switch format {
	case FormatYAML:
		// yaml.Marshal panics on unmarshalable types
		defer func() {
			if r := recover(); r != nil {
				err = errors.Newf("marshaling YAML: %v", r)
			}
		}()
		data, err = yaml.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling YAML")
		}
	case FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(v); err != nil {
			return nil, errors.Wrap(err, "marshaling TOML")
		}
		data = buf.Bytes()
	case FormatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "marshaling JSON")
		}
	default:
		return nil, errors.Newf("unsupported format %q", format)
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}

// Unmarshal decodes data into v.
func Unmarshal(format Format, data []byte, v any) error {
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	case FormatJSON:
		err = json.Unmarshal(data, v)
	default:
		return errors.Newf("unsupported format %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "parsing %s", format)
	}
	return nil
}
