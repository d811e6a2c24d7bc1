package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Execute runs the kc2openapi CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

const longDescription = `kc2openapi scrapes the HTML reference of the Keycloak Admin REST API and writes an equivalent OpenAPI 3 document.

Without a subcommand the page is read from piped standard input and the document is written to standard output as JSON.`

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kc2openapi",
		Short:         "Convert Keycloak Admin REST API documentation into OpenAPI",
		Long:          longDescription,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if isTerminal(cmd.InOrStdin()) {
				return cmd.Help()
			}
			return executeConvert(cmd)
		},
	}

	cmd.SetFlagErrorFunc(flagUsageError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging on stderr")

	for _, sub := range []*cobra.Command{newConvertCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagUsageError)
		cmd.AddCommand(sub)
	}

	return cmd
}

// flagUsageError turns cobra flag errors (like unknown flags) into usage
// errors that also show the command's help text.
func flagUsageError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}

// isTerminal reports whether r is an interactive terminal. Piped or
// redirected input, and any non-file reader, is not.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
