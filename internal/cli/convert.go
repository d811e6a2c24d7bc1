package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/kc2openapi/internal/emitter"
	"github.com/mark3labs/kc2openapi/internal/route"
	"github.com/mark3labs/kc2openapi/internal/spec"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ConvertConfig captures all inputs that influence the convert command after
// merging defaults, config file values, and CLI overrides.
type ConvertConfig struct {
	Input        string
	Out          string
	Format       string
	IncludeTags  []string
	ExcludeTags  []string
	Methods      []string
	PathPatterns []string
	ConfigPath   string
	Validate     bool
	DryRun       bool
	Force        bool
	Verbose      bool
}

func defaultConvertConfig() ConvertConfig {
	return ConvertConfig{Format: string(emitter.FormatJSON)}
}

// streams are the command's standard input, output and error.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

var convertRunner = runConvert

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an Admin REST API HTML page into an OpenAPI document",
		Long: "Convert an Admin REST API HTML page into an OpenAPI 3 document. " +
			"The page is read from a file, an http(s) URL, or standard input; " +
			"the document is written to standard output unless --out is given.",
		Example: strings.TrimSpace(`  kc2openapi convert --input rest-api.html --out openapi.json
  curl -s https://www.keycloak.org/docs-api/latest/rest-api/index.html | kc2openapi convert --format yaml
  kc2openapi --config kc2openapi.yaml convert --force`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeConvert(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL of the HTML page; \"-\" or empty reads standard input")
	flags.String("out", "", "Output file; \"-\" or empty writes to standard output")
	flags.String("format", "", "Output format (json|yaml); defaults to json")
	flags.StringSlice("include-tags", nil, "Only include operations documented under these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations documented under these tags")
	flags.StringSlice("methods", nil, "Only include operations using these HTTP methods")
	flags.StringSlice("paths", nil, "Only include operations whose path matches one of these regular expressions")
	flags.Bool("validate", false, "Validate the assembled document before writing it")
	flags.Bool("dry-run", false, "Convert without writing the document")
	flags.Bool("force", false, "Overwrite an existing output file")

	return cmd
}

// executeConvert resolves the configuration visible to cmd and runs the
// conversion on its streams. The root command uses it with only the
// persistent flags defined.
func executeConvert(cmd *cobra.Command) error {
	cfg, err := resolveConvertConfig(cmd)
	if err != nil {
		return err
	}
	return convertRunner(cmd.Context(), cfg, streams{
		in:  cmd.InOrStdin(),
		out: cmd.OutOrStdout(),
		err: cmd.ErrOrStderr(),
	})
}

func resolveConvertConfig(cmd *cobra.Command) (*ConvertConfig, error) {
	cfg := defaultConvertConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConvertConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyConvertFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyConvertFlagOverrides(flags *pflag.FlagSet, cfg *ConvertConfig) error {
	for name, dst := range map[string]*string{
		"input":  &cfg.Input,
		"out":    &cfg.Out,
		"format": &cfg.Format,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}
	for name, dst := range map[string]*[]string{
		"include-tags": &cfg.IncludeTags,
		"exclude-tags": &cfg.ExcludeTags,
		"methods":      &cfg.Methods,
		"paths":        &cfg.PathPatterns,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeList(value)
	}
	for name, dst := range map[string]*bool{
		"validate": &cfg.Validate,
		"dry-run":  &cfg.DryRun,
		"force":    &cfg.Force,
		"verbose":  &cfg.Verbose,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	return nil
}

func (c *ConvertConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.PathPatterns = sanitizeList(c.PathPatterns)
	methods := sanitizeList(c.Methods)
	for i, m := range methods {
		methods[i] = strings.ToUpper(m)
	}
	c.Methods = methods
}

func (c *ConvertConfig) validate() error {
	format, err := emitter.ParseFormat(c.Format)
	if err != nil {
		return newUsageError(fmt.Sprintf("convert: unsupported --format %q (allowed: json, yaml)", c.Format))
	}
	c.Format = string(format)

	for _, m := range c.Methods {
		if err := route.CheckVerb(m); err != nil {
			return newUsageError(fmt.Sprintf("convert: %v", err))
		}
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("convert: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
}

func runConvert(ctx context.Context, cfg *ConvertConfig, std streams) error {
	log := newLogger(std.err, cfg.Verbose)

	// 1) Load the page from stdin, a file, or an http(s) URL
	raw, err := spec.Load(ctx, cfg.Input, spec.WithStdin(std.in))
	if err != nil {
		return specFailure(err)
	}
	log.Debug().Str("input", displayInput(cfg.Input)).Int("bytes", len(raw)).Msg("loaded page")

	// 2) Extract and assemble the document
	page, err := spec.ParseHTML(raw)
	if err != nil {
		return specFailure(err)
	}
	doc, err := spec.Build(ctx, page,
		spec.WithIncludeTags(cfg.IncludeTags),
		spec.WithExcludeTags(cfg.ExcludeTags),
		spec.WithMethods(cfg.Methods),
		spec.WithPathPatterns(cfg.PathPatterns),
		spec.WithLogger(log),
	)
	if err != nil {
		return specFailure(err)
	}
	log.Debug().Int("paths", len(doc.Paths)).Int("schemas", len(doc.Components.Schemas)).Msg("assembled document")

	// 3) Optionally validate
	if cfg.Validate {
		if err := spec.Validate(ctx, doc, log); err != nil {
			return specFailure(err)
		}
	}

	// 4) Write
	res, err := emitter.Emit(ctx, doc, emitter.Options{
		Out:    cfg.Out,
		Format: emitter.Format(cfg.Format),
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Stdout: std.out,
	})
	if err != nil {
		return wrapOutputError(err, cfg.Out)
	}
	if cfg.DryRun {
		fmt.Fprintf(std.out, "Planned write to %s (%s, %d bytes)\n", res.Path, res.Format, res.Size)
	}
	log.Debug().Str("out", res.Path).Int("bytes", res.Size).Bool("written", res.Written).Msg("done")
	return nil
}

// specFailure maps structured spec errors into friendly messages. Problems
// with the input itself are usage errors; fetch, route and validation
// failures are not. Either way the typed cause stays in the chain.
func specFailure(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := se.Message
	if !strings.HasPrefix(msg, "spec: ") {
		msg = "spec: " + msg
	}
	if se.Cause != nil && !strings.Contains(se.Message, se.Cause.Error()) {
		msg = fmt.Sprintf("%s: %v", msg, se.Cause)
	}
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	if isInputProblem(se) {
		return usageError{msg: msg, cause: err}
	}
	return runError{msg: msg, cause: err}
}

func isInputProblem(se *spec.SpecError) bool {
	switch se.Code {
	case spec.InputError, spec.ParseError:
		return true
	case spec.ExtractionError:
		var verb *route.UnsupportedVerbError
		var param *route.UnmatchedPathParameterError
		return !errors.As(se.Cause, &verb) && !errors.As(se.Cause, &param)
	default:
		return false
	}
}

func displayInput(input string) string {
	if input == "" || input == "-" {
		return "<stdin>"
	}
	return input
}

func wrapOutputError(err error, out string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") ||
		strings.Contains(lower, "rename") || strings.Contains(lower, "exists") || strings.Contains(lower, "directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", out, msg))
	}
	return err
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyConvertConfigFromFile(cfg *ConvertConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	scalars := map[string]*string{"input": &cfg.Input, "out": &cfg.Out, "format": &cfg.Format}
	lists := map[string]*[]string{
		"includetags": &cfg.IncludeTags,
		"excludetags": &cfg.ExcludeTags,
		"methods":     &cfg.Methods,
		"paths":       &cfg.PathPatterns,
	}
	bools := map[string]*bool{
		"validate": &cfg.Validate,
		"dryrun":   &cfg.DryRun,
		"force":    &cfg.Force,
		"verbose":  &cfg.Verbose,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := scalars[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = str
			continue
		}
		if dst, ok := lists[normalized]; ok {
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = sanitizeList(list)
			continue
		}
		if dst, ok := bools[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = val
			continue
		}
		return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
