package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pngtext/pngtext/internal/ocr"
	"github.com/spf13/cobra"
)

// enginePingTimeout bounds the reachability check for server-backed engines,
// so a firewalled host cannot stall the report.
const enginePingTimeout = 5 * time.Second

func newEnginesCmd() *cobra.Command {
	var (
		tesseractCmd string
		model        string
	)

	cmd := &cobra.Command{
		Use:   "engines",
		Short: "Report availability of the OCR engines",
		Long: `Checks each OCR engine before any image is sent: the tesseract binary is
resolved and self-tested, gosseract reports whether it was compiled in, the
ollama server is pinged, and the API-key engines verify their credentials.
No image is processed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), enginePingTimeout)
			defer cancel()

			w := cmd.OutOrStdout()
			for _, name := range ocr.Names() {
				engine, err := ocr.New(name, ocr.Config{TesseractCmd: tesseractCmd, Model: model})
				if err != nil {
					fmt.Fprintf(w, "%-10s unavailable: %v\n", name, err)
					continue
				}
				if p, ok := engine.(interface{ Ping(context.Context) error }); ok {
					if err := p.Ping(ctx); err != nil {
						fmt.Fprintf(w, "%-10s unavailable: %v\n", name, err)
						continue
					}
				}
				if v, ok := engine.(interface{ Version() string }); ok {
					fmt.Fprintf(w, "%-10s available (%s)\n", name, v.Version())
					continue
				}
				fmt.Fprintf(w, "%-10s available\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tesseractCmd, "tesseract-cmd", "", `command or path for the tesseract binary (default "tesseract")`)
	cmd.Flags().StringVar(&model, "model", "", "model name for LLM-backed engines")

	return cmd
}
