// Package extract implements the batch pipeline: discover the PNG files in
// a folder, run each through an OCR engine in natural filename order, and
// assemble the recognized text into one output file.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pngtext/pngtext/internal/ocr"
)

// Options configure a single extraction run.
type Options struct {
	// InputDir is the folder scanned for .png files. Required.
	InputDir string
	// OutputFile is the destination path. Empty means DefaultOutputFile in
	// the current directory.
	OutputFile string
	// Language is the code handed to the engine for every image. Empty
	// means "eng".
	Language string
	// KeepGoing skips images whose recognition fails instead of aborting
	// the run. Skips are recorded in the summary, never silent.
	KeepGoing bool
	// NoClobber numbers the output file instead of overwriting an existing
	// one.
	NoClobber bool
}

// ImageResult records what happened to one image during a run.
type ImageResult struct {
	File     string
	Chars    int
	Duration time.Duration
	Err      string // non-empty when the image was skipped under KeepGoing
}

// Summary describes a finished run.
type Summary struct {
	InputDir   string
	OutputFile string
	Engine     string
	Language   string
	Images     []ImageResult
	Processed  int
	Skipped    int
	Duration   time.Duration
}

// Extractor drives images through an OCR engine one at a time.
type Extractor struct {
	engine   ocr.Engine
	progress io.Writer
}

// New returns an extractor that reports progress on stdout.
func New(engine ocr.Engine) *Extractor {
	return &Extractor{engine: engine, progress: os.Stdout}
}

// SetProgress redirects the progress output. nil disables it.
func (e *Extractor) SetProgress(w io.Writer) { e.progress = w }

// Run processes every PNG in opts.InputDir and writes the combined text,
// one trimmed segment per image, each terminated by a newline. The output
// file is only written when at least one image was recognized, so a failed
// run never leaves a partial file behind. The returned summary is valid
// only when err is nil.
func (e *Extractor) Run(ctx context.Context, opts Options) (*Summary, error) {
	language := opts.Language
	if language == "" {
		language = "eng"
	}

	names, err := ListImages(opts.InputDir)
	if err != nil {
		return nil, err
	}

	if e.progress != nil {
		fmt.Fprintf(e.progress, "Found %d PNG file(s) in %s. Beginning text extraction using language %q...\n",
			len(names), opts.InputDir, language)
	}
	slog.Info("beginning extraction",
		"folder", opts.InputDir,
		"images", len(names),
		"language", language,
		"engine", e.engine.Name())

	start := time.Now()
	summary := &Summary{
		InputDir: opts.InputDir,
		Engine:   e.engine.Name(),
		Language: language,
		Images:   make([]ImageResult, 0, len(names)),
	}

	var combined strings.Builder
	for i, name := range names {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		imageStart := time.Now()
		text, err := e.engine.Recognize(ctx, filepath.Join(opts.InputDir, name), language)
		if err != nil {
			if !opts.KeepGoing {
				return nil, fmt.Errorf("text extraction failed for %s: %w", name, err)
			}
			slog.Warn("skipping image after OCR failure", "image", name, "error", err)
			summary.Images = append(summary.Images, ImageResult{
				File:     name,
				Duration: time.Since(imageStart),
				Err:      err.Error(),
			})
			summary.Skipped++
			renderProgress(e.progress, i+1, len(names))
			continue
		}

		segment := strings.TrimSpace(text)
		combined.WriteString(segment)
		combined.WriteByte('\n')

		summary.Images = append(summary.Images, ImageResult{
			File:     name,
			Chars:    len(segment),
			Duration: time.Since(imageStart),
		})
		summary.Processed++

		slog.Debug("image recognized", "image", name, "chars", len(segment))
		renderProgress(e.progress, i+1, len(names))
	}
	if e.progress != nil {
		fmt.Fprintln(e.progress)
	}

	if summary.Processed == 0 {
		return nil, fmt.Errorf("text extraction failed for all %d images in %s", len(names), opts.InputDir)
	}

	summary.OutputFile = ResolveOutputPath(opts.OutputFile, opts.NoClobber)
	if err := WriteOutput(summary.OutputFile, combined.String()); err != nil {
		return nil, err
	}
	summary.Duration = time.Since(start)

	slog.Info("extraction complete",
		"output", summary.OutputFile,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"duration", summary.Duration)

	return summary, nil
}
