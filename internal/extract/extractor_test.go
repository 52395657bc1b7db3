package extract

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockEngine returns canned text keyed by image filename and records every
// call it receives, in order.
type mockEngine struct {
	texts map[string]string
	errs  map[string]error
	calls []mockCall
}

type mockCall struct {
	image    string
	language string
}

func (m *mockEngine) Name() string { return "mock" }

func (m *mockEngine) Recognize(_ context.Context, imagePath, language string) (string, error) {
	name := filepath.Base(imagePath)
	m.calls = append(m.calls, mockCall{image: name, language: language})
	if err, ok := m.errs[name]; ok {
		return "", err
	}
	return m.texts[name], nil
}

func newTestExtractor(engine *mockEngine) *Extractor {
	e := New(engine)
	e.SetProgress(io.Discard)
	return e
}

func writePNGs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("png"), 0644); err != nil {
			t.Fatalf("Failed to create fixture %s: %v", name, err)
		}
	}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	return string(data)
}

func TestRunConcatenatesInNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "page2.png", "page10.png", "page1.png")

	engine := &mockEngine{texts: map[string]string{
		"page1.png":  "first page",
		"page2.png":  "second page",
		"page10.png": "tenth page",
	}}
	out := filepath.Join(t.TempDir(), "combined.txt")

	summary, err := newTestExtractor(engine).Run(context.Background(), Options{InputDir: dir, OutputFile: out})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	expected := "first page\nsecond page\ntenth page\n"
	if got := readOutput(t, out); got != expected {
		t.Errorf("Expected output:\n%q\nGot:\n%q", expected, got)
	}

	wantOrder := []string{"page1.png", "page2.png", "page10.png"}
	for i, call := range engine.calls {
		if call.image != wantOrder[i] {
			t.Errorf("Call %d: expected %s, got %s", i, wantOrder[i], call.image)
		}
	}

	if summary.Processed != 3 {
		t.Errorf("Expected 3 processed images, got %d", summary.Processed)
	}
	if summary.OutputFile != out {
		t.Errorf("Expected output file %s, got %s", out, summary.OutputFile)
	}
}

func TestRunTrimsEachSegment(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "a.png", "b.png")

	engine := &mockEngine{texts: map[string]string{
		"a.png": "\n\n  hello  \n\n",
		"b.png": "world\n",
	}}
	out := filepath.Join(t.TempDir(), "out.txt")

	if _, err := newTestExtractor(engine).Run(context.Background(), Options{InputDir: dir, OutputFile: out}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := readOutput(t, out); got != "hello\nworld\n" {
		t.Errorf("Expected trimmed segments, got %q", got)
	}
}

func TestRunPassesLanguageToEngine(t *testing.T) {
	tests := []struct {
		name     string
		language string
		expected string
	}{
		{name: "explicit language", language: "nor", expected: "nor"},
		{name: "defaults to eng", language: "", expected: "eng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writePNGs(t, dir, "a.png", "b.png")

			engine := &mockEngine{texts: map[string]string{"a.png": "x", "b.png": "y"}}
			out := filepath.Join(t.TempDir(), "out.txt")

			summary, err := newTestExtractor(engine).Run(context.Background(), Options{
				InputDir:   dir,
				OutputFile: out,
				Language:   tt.language,
			})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			for _, call := range engine.calls {
				if call.language != tt.expected {
					t.Errorf("Expected language %q on every call, got %q for %s", tt.expected, call.language, call.image)
				}
			}
			if summary.Language != tt.expected {
				t.Errorf("Expected summary language %q, got %q", tt.expected, summary.Language)
			}
		})
	}
}

func TestRunInputErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "nonexistent folder",
			input:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") },
			wantErr: ErrInvalidInput,
		},
		{
			name: "path is a file",
			input: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "file.txt")
				if err := os.WriteFile(path, []byte("not a dir"), 0644); err != nil {
					t.Fatalf("Failed to create fixture: %v", err)
				}
				return path
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "no png files",
			input: func(t *testing.T) string {
				dir := t.TempDir()
				writePNGs(t, dir, "notes.txt", "photo.jpg")
				return dir
			},
			wantErr: ErrNoImagesFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{}
			out := filepath.Join(t.TempDir(), "out.txt")

			_, err := newTestExtractor(engine).Run(context.Background(), Options{
				InputDir:   tt.input(t),
				OutputFile: out,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}

			if len(engine.calls) != 0 {
				t.Errorf("Expected no OCR calls, got %d", len(engine.calls))
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Error("Expected no output file to be written")
			}
		})
	}
}

func TestRunFiltersToPNGFiles(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "a.png", "B.PNG", "notes.txt", "photo.jpg", "backup.png.bak")
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	engine := &mockEngine{texts: map[string]string{"a.png": "lower", "B.PNG": "upper"}}
	out := filepath.Join(t.TempDir(), "out.txt")

	summary, err := newTestExtractor(engine).Run(context.Background(), Options{InputDir: dir, OutputFile: out})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Processed != 2 {
		t.Fatalf("Expected 2 processed images, got %d", summary.Processed)
	}
	for _, call := range engine.calls {
		if !strings.EqualFold(filepath.Ext(call.image), ".png") {
			t.Errorf("Engine saw non-PNG file %s", call.image)
		}
	}

	got := readOutput(t, out)
	if !strings.Contains(got, "lower") || !strings.Contains(got, "upper") {
		t.Errorf("Expected both segments in output, got %q", got)
	}
}

func TestRunDefaultOutputFile(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "a.png")
	engine := &mockEngine{texts: map[string]string{"a.png": "text"}}

	t.Chdir(t.TempDir())

	summary, err := newTestExtractor(engine).Run(context.Background(), Options{InputDir: dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.OutputFile != DefaultOutputFile {
		t.Errorf("Expected default output %s, got %s", DefaultOutputFile, summary.OutputFile)
	}
	if got := readOutput(t, DefaultOutputFile); got != "text\n" {
		t.Errorf("Expected %q, got %q", "text\n", got)
	}
}

func TestRunOverwritesOnRepeat(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "a.png")
	engine := &mockEngine{texts: map[string]string{"a.png": "same text"}}
	out := filepath.Join(t.TempDir(), "out.txt")
	opts := Options{InputDir: dir, OutputFile: out}

	ex := newTestExtractor(engine)
	if _, err := ex.Run(context.Background(), opts); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	first := readOutput(t, out)

	if _, err := ex.Run(context.Background(), opts); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	second := readOutput(t, out)

	if first != second {
		t.Errorf("Expected identical output on repeat run, got %q then %q", first, second)
	}
	if second != "same text\n" {
		t.Errorf("Expected single segment after repeat run, got %q", second)
	}
}

func TestRunFailFastAbortsRun(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "page1.png", "page2.png", "page3.png")

	engine := &mockEngine{
		texts: map[string]string{"page1.png": "ok"},
		errs:  map[string]error{"page2.png": errors.New("unreadable glyphs")},
	}
	out := filepath.Join(t.TempDir(), "out.txt")

	_, err := newTestExtractor(engine).Run(context.Background(), Options{InputDir: dir, OutputFile: out})
	if err == nil {
		t.Fatal("Expected error when an image fails without KeepGoing")
	}
	if !strings.Contains(err.Error(), "page2.png") {
		t.Errorf("Expected failing image in error, got %v", err)
	}

	// The run aborts at the failure, before page3 and before any write.
	if len(engine.calls) != 2 {
		t.Errorf("Expected 2 OCR calls, got %d", len(engine.calls))
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("Expected no output file after aborted run")
	}
}

func TestRunKeepGoingSkipsFailures(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "page1.png", "page2.png", "page3.png")

	engine := &mockEngine{
		texts: map[string]string{"page1.png": "one", "page3.png": "three"},
		errs:  map[string]error{"page2.png": errors.New("unreadable glyphs")},
	}
	out := filepath.Join(t.TempDir(), "out.txt")

	summary, err := newTestExtractor(engine).Run(context.Background(), Options{
		InputDir:   dir,
		OutputFile: out,
		KeepGoing:  true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := readOutput(t, out); got != "one\nthree\n" {
		t.Errorf("Expected skipped image to leave no segment, got %q", got)
	}
	if summary.Processed != 2 || summary.Skipped != 1 {
		t.Errorf("Expected 2 processed / 1 skipped, got %d / %d", summary.Processed, summary.Skipped)
	}

	if len(summary.Images) != 3 {
		t.Fatalf("Expected 3 image results, got %d", len(summary.Images))
	}
	if summary.Images[1].File != "page2.png" || summary.Images[1].Err == "" {
		t.Errorf("Expected recorded failure for page2.png, got %+v", summary.Images[1])
	}
}

func TestRunKeepGoingAllFailed(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "a.png", "b.png")

	engine := &mockEngine{errs: map[string]error{
		"a.png": errors.New("bad"),
		"b.png": errors.New("worse"),
	}}
	out := filepath.Join(t.TempDir(), "out.txt")

	_, err := newTestExtractor(engine).Run(context.Background(), Options{
		InputDir:   dir,
		OutputFile: out,
		KeepGoing:  true,
	})
	if err == nil {
		t.Fatal("Expected error when every image fails")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("Expected no output file when every image fails")
	}
}

func TestRunNoClobberNumbersOutput(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "a.png")
	engine := &mockEngine{texts: map[string]string{"a.png": "new text"}}

	outDir := t.TempDir()
	out := filepath.Join(outDir, "combined.txt")
	if err := os.WriteFile(out, []byte("old text\n"), 0644); err != nil {
		t.Fatalf("Failed to create existing output: %v", err)
	}

	summary, err := newTestExtractor(engine).Run(context.Background(), Options{
		InputDir:   dir,
		OutputFile: out,
		NoClobber:  true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	expected := filepath.Join(outDir, "combined_1.txt")
	if summary.OutputFile != expected {
		t.Errorf("Expected numbered output %s, got %s", expected, summary.OutputFile)
	}
	if got := readOutput(t, out); got != "old text\n" {
		t.Errorf("Expected existing file untouched, got %q", got)
	}
	if got := readOutput(t, expected); got != "new text\n" {
		t.Errorf("Expected new file content, got %q", got)
	}
}

func TestRunContextCanceled(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "a.png")
	engine := &mockEngine{texts: map[string]string{"a.png": "text"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExtractor(engine).Run(ctx, Options{InputDir: dir, OutputFile: filepath.Join(t.TempDir(), "out.txt")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(engine.calls) != 0 {
		t.Errorf("Expected no OCR calls after cancellation, got %d", len(engine.calls))
	}
}
