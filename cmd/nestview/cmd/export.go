package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nestingglobal/nestview/internal/nestapi"
)

func newExportCmd(g *globals) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [properties|contacts]",
		Short: "Download a spreadsheet export",
		Long: `Download the properties or contacts spreadsheet produced by the backend.

The file is written next to its destination and renamed into place, so an
interrupted download never leaves a partial file behind. Use -o - to write
to stdout.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(nestapi.ExportProperties), string(nestapi.ExportContacts)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := nestapi.ExportProperties
			if len(args) == 1 {
				kind = nestapi.ExportKind(args[0])
			}
			if output == "" {
				output = string(kind) + ".xlsx"
			}
			client, err := g.client()
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := client.DownloadExport(cmd.Context(), kind, cmd.OutOrStdout())
				return err
			}
			n, err := downloadTo(output, func(w io.Writer) (int64, error) {
				return client.DownloadExport(cmd.Context(), kind, w)
			})
			if err != nil {
				return err
			}
			g.logger.Info("export written", "kind", kind, "path", output, "bytes", n)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", output, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default <kind>.xlsx, - for stdout)")
	return cmd
}

// downloadTo streams into a temp file beside path and renames it into place
// once fetch succeeds.
func downloadTo(path string, fetch func(io.Writer) (int64, error)) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	n, err := fetch(tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		return n, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return n, fmt.Errorf("move export into place: %w", err)
	}
	return n, nil
}
