// Package render turns a synthesized schema.SchemaModel into output text:
// TypeScript declarations, or the model itself as JSON or YAML.
package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/schema"
)

// Format names an output format.
type Format string

const (
	FormatTypeScript Format = "ts"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
)

// ParseFormat accepts a format name or a common alias ("typescript", "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ts", "typescript":
		return FormatTypeScript, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errs.Newf(errs.ErrKindInvalidInput, "unknown output format %q (want ts, json or yaml)", s)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/typescript; charset=utf-8"
	}
}

// Options controls the TypeScript header. It is ignored by JSON and YAML.
type Options struct {
	// Header adds the "AUTO-GENERATED" banner with the generating command.
	Header bool

	// ConnString, Tables and Schema are echoed in the banner's command line.
	// Credentials in ConnString are redacted.
	ConnString string
	Tables     []string
	Schema     string

	// Now stamps the banner. Nil means time.Now.
	Now func() time.Time
}

// Render produces model in format f.
func Render(model *schema.SchemaModel, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatTypeScript:
		return TypeScript(model, opts), nil
	case FormatJSON:
		return JSON(model)
	case FormatYAML:
		return YAML(model)
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown output format %q", f)
	}
}

// JSON serializes the model with two-space indentation.
func JSON(model *schema.SchemaModel) ([]byte, error) {
	out, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to encode model as JSON", err)
	}
	return append(out, '\n'), nil
}

// YAML serializes the model.
func YAML(model *schema.SchemaModel) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(model); err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to encode model as YAML", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to encode model as YAML", err)
	}
	return buf.Bytes(), nil
}
