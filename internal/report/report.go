// Package report renders a finished extraction run as a YAML document, for
// comparing engines and language packs across runs of the same folder.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pngtext/pngtext/internal/extract"
	"gopkg.in/yaml.v3"
)

// RunConfig represents the configuration section of the report YAML
type RunConfig struct {
	Engine     string `yaml:"engine"`
	Language   string `yaml:"language"`
	InputDir   string `yaml:"inputdir"`
	OutputFile string `yaml:"outputfile"`
	Timestamp  string `yaml:"timestamp"`
}

// ImageResult represents a single image's outcome
type ImageResult struct {
	File       string `yaml:"file"`
	Characters int    `yaml:"characters"`
	DurationMS int64  `yaml:"duration_ms"`
	Error      string `yaml:"error,omitempty"`
}

// Totals represents the aggregate counters for the run
type Totals struct {
	Processed  int   `yaml:"processed"`
	Skipped    int   `yaml:"skipped"`
	DurationMS int64 `yaml:"duration_ms"`
}

// Report represents the complete run report
type Report struct {
	Config RunConfig     `yaml:"config"`
	Images []ImageResult `yaml:"images"`
	Totals Totals        `yaml:"totals"`
}

// Save writes the summary of a finished run to a YAML file at path,
// creating parent directories as needed.
func Save(path string, s *extract.Summary) error {
	rep := Report{
		Config: RunConfig{
			Engine:     s.Engine,
			Language:   s.Language,
			InputDir:   s.InputDir,
			OutputFile: s.OutputFile,
			Timestamp:  time.Now().Format("2006-01-02_15-04-05"),
		},
		Images: make([]ImageResult, 0, len(s.Images)),
		Totals: Totals{
			Processed:  s.Processed,
			Skipped:    s.Skipped,
			DurationMS: s.Duration.Milliseconds(),
		},
	}

	for _, img := range s.Images {
		rep.Images = append(rep.Images, ImageResult{
			File:       img.File,
			Characters: img.Chars,
			DurationMS: img.Duration.Milliseconds(),
			Error:      img.Err,
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}
