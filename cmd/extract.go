package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atolyehq/atolye/internal/artifact"
)

var extractOutDir string

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract code-fence artifacts from text into files",
	Long: `Extract reads assistant output from a file (or stdin) and writes
every closed code fence to a file, using the same filename derivation the
chat pipeline uses: explicit filename markers, leading comment names,
language defaults, and artifact.txt as the last resort.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutDir, "out", "o", ".", "output directory")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	var input []byte
	var err error
	if len(args) == 1 {
		input, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading input file: %w", err)
		}
	} else {
		input, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	set := artifact.Extract(string(input))
	if set.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no artifacts found")
		return nil
	}

	if err := os.MkdirAll(extractOutDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, name := range set.Names() {
		// Artifact names come from model output; never let them escape
		// the output directory.
		base := filepath.Base(name)
		content, _ := set.Get(name)
		path := filepath.Join(extractOutDir, base)
		if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", base, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(content))
	}
	return nil
}
