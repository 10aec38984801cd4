package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/chatmd/internal/archive"
	"github.com/dgallion1/chatmd/internal/pipeline"
)

var convertCmd = &cobra.Command{
	Use:   "convert [page.html]",
	Short: "Convert a saved conversation page to Markdown",
	Long: `Convert reads a rendered conversation page (a file, or stdin when the
argument is omitted or "-") and writes "<title>.md". With --images the
images are fetched one at a time and "<title>.zip" is written instead,
holding the Markdown and a "<title>-assets/" folder. A failed image fetch
aborts the export and nothing is written.

--out picks the directory the file is saved in under its own name.
--output saves to an exact path instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("out", "", "directory to write the export into (default: current directory)")
	convertCmd.Flags().StringP("output", "o", "", "exact path to write the export to")
	convertCmd.Flags().Bool("images", false, "download images and write a zip bundle")
	convertCmd.Flags().String("title", "", "override the conversation title")
	convertCmd.Flags().String("base-url", "", "page URL used to resolve relative image sources")
	convertCmd.Flags().Bool("front-matter", false, "prepend YAML front matter")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	output, _ := cmd.Flags().GetString("output")
	if outDir != "" && output != "" {
		return fmt.Errorf("--out and --output are mutually exclusive")
	}

	opts, err := convertOptions(cmd)
	if err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	fetcher := archive.NewHTTPFetcher(cfg.FetchUserAgent, cfg.FetchMaxRetries, logger)
	defer fetcher.Close()

	exporter := pipeline.NewExporter(fetcher, logger)
	artifact, err := exporter.Export(cmd.Context(), data, opts)
	if err != nil {
		return err
	}

	path := outputPath(outDir, output, artifact.Filename)
	if err := writeFile(path, artifact.Data); err != nil {
		return err
	}
	logger.Info("export written", "path", path, "bytes", len(artifact.Data))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// convertOptions merges flags over the configured defaults.
func convertOptions(cmd *cobra.Command) (pipeline.ExportOptions, error) {
	opts := pipeline.ExportOptions{
		DownloadImages: cfg.DownloadImages,
		FrontMatter:    cfg.FrontMatter,
	}
	if cmd.Flags().Changed("images") {
		opts.DownloadImages, _ = cmd.Flags().GetBool("images")
	}
	if cmd.Flags().Changed("front-matter") {
		opts.FrontMatter, _ = cmd.Flags().GetBool("front-matter")
	}
	opts.Title, _ = cmd.Flags().GetString("title")

	if raw, _ := cmd.Flags().GetString("base-url"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() {
			return opts, fmt.Errorf("--base-url must be an absolute URL")
		}
		opts.BaseURL = u
	}
	return opts, nil
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return data, nil
}

// outputPath resolves where an export named filename is saved.
func outputPath(outDir, output, filename string) string {
	if output != "" {
		return output
	}
	if outDir == "" {
		outDir = "."
	}
	return filepath.Join(outDir, filename)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
