package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/claudesync/internal/config"
	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/pkg/fileutil"
)

// ConfigFileCheck validates the claudesync config file: syntax, unknown
// keys and field values.
type ConfigFileCheck struct {
	path string
}

var _ Check = (*ConfigFileCheck)(nil)

// NewConfigFileCheck creates a check for the config file at path.
func NewConfigFileCheck(path string) *ConfigFileCheck {
	return &ConfigFileCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *ConfigFileCheck) Name() string {
	return "config-file"
}

// Category returns the grouping for this check.
func (c *ConfigFileCheck) Category() string {
	return "config"
}

// Run executes the config file check.
func (c *ConfigFileCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.path},
	}

	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		result.Status = SeverityInfo
		result.Message = "no config file, using defaults"
		result.FixHint = "claudesync config init"
		return result
	}

	data, err := fileutil.ReadFileWithLimit(c.path)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot read config file: %v", err)
		return result
	}

	format := fileutil.FormatFromPath(c.path)
	result.Details["format"] = string(format)

	var raw map[string]any
	if err := fileutil.Unmarshal(format, data, &raw); err != nil {
		result.Status = SeverityError
		result.Message = formatSyntaxError(format, err, data)
		result.FixHint = "fix the syntax error, or recreate the file with: claudesync config init --force"
		return result
	}

	cfg := config.Default()
	if err := fileutil.Unmarshal(format, data, cfg); err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("config file has wrongly typed values: %v", err)
		return result
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d invalid value(s)", len(errs))
		result.Details["errors"] = msgs
		result.FixHint = "claudesync config set <key> <value>"
		return result
	}

	if unknown := unknownKeys(raw); len(unknown) > 0 {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("unknown key(s) ignored: %v", unknown)
		result.Details["unknown"] = unknown
		return result
	}

	result.Status = SeverityPass
	result.Message = "config file is valid"
	return result
}

func unknownKeys(raw map[string]any) []string {
	var unknown []string
	for key := range raw {
		if !slices.Contains(config.Keys(), key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// formatSyntaxError extracts position information from a decode error.
func formatSyntaxError(format fileutil.Format, err error, data []byte) string {
	switch format {
	case fileutil.FormatJSON:
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, col := offsetToLineCol(data, int(syntaxErr.Offset))
			return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", line, col, syntaxErr.Error())
		}
	case fileutil.FormatTOML:
		// go-toml/v2 DecodeError includes line/column via Position()
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return fmt.Sprintf("TOML syntax error at line %d, column %d: %s", row, col, decodeErr.Error())
		}
	case fileutil.FormatYAML:
		// yaml.v3 messages already carry "line N"
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return "YAML type error: " + typeErr.Error()
		}
	}
	return fmt.Sprintf("%s syntax error: %v", format, err)
}

// offsetToLineCol converts a byte offset to line and column numbers.
// Lines and columns are 1-indexed.
func offsetToLineCol(data []byte, offset int) (line, col int) {
	if offset > len(data) {
		offset = len(data)
	}
	if offset < 0 {
		offset = 0
	}

	line = 1
	lineStart := 0

	for i := range offset {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	col = offset - lineStart + 1
	return line, col
}
