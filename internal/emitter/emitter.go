// Package emitter serializes assembled OpenAPI documents.
package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Format is an output serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml", ignoring case. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("emitter: unsupported format %q (want json or yaml)", s)
	}
}

// Options controls where and how the document is written.
type Options struct {
	Out    string    // file path; empty or "-" writes to Stdout
	Format Format    // defaults to JSON
	Force  bool      // overwrite an existing file
	DryRun bool      // render but don't write
	Stdout io.Writer // defaults to os.Stdout
}

// Result describes what was (or would have been) written.
type Result struct {
	Path    string // absolute file path, or "-" for stdout
	Format  Format
	Size    int
	Written bool
}

// Emit renders doc and writes it according to opts. Files are replaced
// atomically.
func Emit(ctx context.Context, doc *openapi3.T, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("emitter: nil document")
	}
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	content, err := Render(doc, format)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: "-", Format: format, Size: len(content)}
	out := strings.TrimSpace(opts.Out)
	if out != "" && out != "-" {
		abs, err := filepath.Abs(out)
		if err != nil {
			return nil, fmt.Errorf("resolve out path: %w", err)
		}
		res.Path = abs
	}
	if opts.DryRun {
		return res, nil
	}

	if res.Path == "-" {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("write stdout: %w", err)
		}
	} else if err := writeFile(res.Path, content, opts.Force); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

// Render serializes doc. JSON is indented with two spaces; YAML keeps the
// JSON key order.
func Render(doc *openapi3.T, format Format) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("emitter: marshal json: %w", err)
	}
	switch format {
	case FormatJSON, "":
		return append(raw, '\n'), nil
	case FormatYAML:
		return jsonToYAML(raw)
	default:
		return nil, fmt.Errorf("emitter: unsupported format %q", format)
	}
}

func jsonToYAML(raw []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("emitter: decode json as yaml: %w", err)
	}
	resetStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("emitter: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("emitter: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// resetStyle drops the flow and quoting styles inherited from JSON so the
// encoder picks block style and quotes only where needed.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

func writeFile(path string, content []byte, force bool) error {
	if st, err := os.Stat(path); err == nil {
		if st.IsDir() {
			return fmt.Errorf("emitter: output path %q is a directory", path)
		}
		if !force {
			return fmt.Errorf("emitter: output file %q exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := path + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
