package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"github.com/pngtext/pngtext/internal/extract"
	"github.com/pngtext/pngtext/internal/ocr"
	"github.com/pngtext/pngtext/internal/report"
	"github.com/spf13/cobra"
)

// previewLines is how much of the combined output gets echoed after a run.
const previewLines = 10

// languagePattern accepts tesseract-style codes: "eng", "chi_sim",
// "chi_sim_vert", "eng+fra". Suffix groups repeat, since stock packs carry
// more than one (script plus orientation).
var languagePattern = regexp.MustCompile(`^[a-z]{3}(_[A-Za-z0-9]+)*(\+[a-z]{3}(_[A-Za-z0-9]+)*)*$`)

func NewRootCmd() *cobra.Command {
	var (
		language     string
		engineName   string
		model        string
		tesseractCmd string
		keepGoing    bool
		noClobber    bool
		reportPath   string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "pngtext <input_folder> [output_file]",
		Short: "Extract text from a folder of PNG images into one file",
		Long: `pngtext runs every PNG image in a folder through an OCR engine and
concatenates the recognized text into a single output file.

Images are processed in natural filename order (page2.png before page10.png),
one recognized segment per image. The default engine is the tesseract binary,
located on PATH or in a Tesseract-OCR folder next to the pngtext executable.`,
		Example: `  # Extract every PNG in ./screenshots into ./output.txt
  pngtext ./screenshots

  # Custom output file and Norwegian language pack
  pngtext ./screenshots combined.txt --language nor

  # Use a local vision model instead of tesseract
  pngtext ./screenshots --engine ollama --model llama3.2-vision`,
		Args: cobra.MaximumNArgs(2),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logLevel := slog.LevelInfo
			if verbose {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
			slog.SetDefault(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// A bare invocation is a request for guidance, not an error.
				return cmd.Help()
			}

			lang, err := resolveLanguage(language)
			if err != nil {
				return err
			}

			engine, err := ocr.New(engineName, ocr.Config{
				TesseractCmd: tesseractCmd,
				Model:        model,
			})
			if err != nil {
				return err
			}

			opts := extract.Options{
				InputDir:  args[0],
				Language:  lang,
				KeepGoing: keepGoing,
				NoClobber: noClobber,
			}
			if len(args) > 1 {
				opts.OutputFile = args[1]
			}

			summary, err := extract.New(engine).Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			printSummary(summary)
			printPreview(summary.OutputFile)

			if reportPath != "" {
				if err := report.Save(reportPath, summary); err != nil {
					return err
				}
				fmt.Printf("\nRun report saved to: %s\n", reportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", `OCR language code passed to the engine (default "eng")`)
	cmd.Flags().StringVar(&engineName, "engine", "", `OCR engine: tesseract, gosseract, ollama, openai, or gemini (default "tesseract")`)
	cmd.Flags().StringVar(&model, "model", "", "model name for LLM-backed engines (defaults per engine)")
	cmd.Flags().StringVar(&tesseractCmd, "tesseract-cmd", "", `command or path for the tesseract binary (default "tesseract")`)
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "skip images whose OCR fails instead of aborting the run")
	cmd.Flags().BoolVar(&noClobber, "no-clobber", false, "never overwrite: write to the first free <name>_N.txt instead")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a YAML run report to this path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	// Add subcommands
	cmd.AddCommand(newEnginesCmd())

	return cmd
}

// resolveLanguage applies the flag > PNGTEXT_LANGUAGE > "eng" cascade and
// rejects codes tesseract would choke on half way through a batch.
func resolveLanguage(lang string) (string, error) {
	if lang == "" {
		lang = os.Getenv("PNGTEXT_LANGUAGE")
	}
	if lang == "" {
		lang = "eng"
	}
	if !languagePattern.MatchString(lang) {
		return "", fmt.Errorf("invalid language code %q (expected codes like \"eng\", \"chi_sim\", or \"eng+fra\")", lang)
	}
	return lang, nil
}

func printSummary(s *extract.Summary) {
	fmt.Println("\n========================================")
	fmt.Println("Extraction Summary")
	fmt.Println("========================================")
	fmt.Printf("Input folder:       %s\n", s.InputDir)
	fmt.Printf("Images processed:   %d\n", s.Processed)
	if s.Skipped > 0 {
		fmt.Printf("Images skipped:     %d\n", s.Skipped)
	}
	fmt.Printf("Engine:             %s\n", s.Engine)
	fmt.Printf("Language:           %s\n", s.Language)
	fmt.Printf("Combined output:    %s\n", s.OutputFile)
	fmt.Printf("Duration:           %s\n", s.Duration.Round(time.Millisecond))
	fmt.Println("========================================")
}

func printPreview(path string) {
	lines, err := extract.Preview(path, previewLines)
	if err != nil {
		slog.Warn("could not read output back for preview", "path", path, "error", err)
		return
	}
	fmt.Printf("\nFirst %d line(s) of the combined output:\n", len(lines))
	for _, line := range lines {
		fmt.Println(line)
	}
}
