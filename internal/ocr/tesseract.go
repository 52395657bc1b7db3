package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// bundledDirName is the companion folder searched next to the executable
// when the tesseract command cannot be found on PATH. Windows installers
// commonly unpack tesseract there instead of touching PATH.
const bundledDirName = "Tesseract-OCR"

// Tesseract shells out to the tesseract binary once per image.
type Tesseract struct {
	cmd     string
	version string
}

// NewTesseract locates the tesseract binary and verifies it runs. Resolution
// order: explicit cmd (flag or TESSERACT_CMD), PATH lookup, then the bundled
// Tesseract-OCR folder next to the executable.
func NewTesseract(cmd string) (*Tesseract, error) {
	resolved, err := resolveTesseract(cmd, exec.LookPath, executableDir)
	if err != nil {
		return nil, err
	}

	t := &Tesseract{cmd: resolved}
	version, err := t.selfTest()
	if err != nil {
		return nil, fmt.Errorf("%w: %s failed self-test: %v", ErrEngineNotFound, resolved, err)
	}
	t.version = version
	slog.Debug("tesseract engine ready", "cmd", resolved, "version", version)
	return t, nil
}

func (t *Tesseract) Name() string { return EngineTesseract }

// Version reports the banner line from `tesseract --version`.
func (t *Tesseract) Version() string { return t.version }

// Recognize runs `tesseract <image> stdout -l <language>` and returns the
// recognized text with surrounding whitespace trimmed.
func (t *Tesseract) Recognize(ctx context.Context, imagePath, language string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.cmd, imagePath, "stdout", "-l", language)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract failed on %s: %w: %s", filepath.Base(imagePath), err, msg)
		}
		return "", fmt.Errorf("tesseract failed on %s: %w", filepath.Base(imagePath), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// selfTest mirrors the up-front installation check the extractor relies on:
// a binary that cannot report its version will not recognize anything either.
func (t *Tesseract) selfTest() (string, error) {
	out, err := exec.Command(t.cmd, "--version").CombinedOutput()
	if err != nil {
		return "", err
	}
	return firstLine(string(out)), nil
}

// resolveTesseract turns the configured command into a runnable path. The
// lookPath and exeDir funcs are injected so the fallback chain is testable
// without a tesseract install.
func resolveTesseract(cmd string, lookPath func(string) (string, error), exeDir func() (string, error)) (string, error) {
	if cmd == "" {
		cmd = os.Getenv("TESSERACT_CMD")
	}
	if cmd == "" {
		cmd = "tesseract"
	}

	// LookPath handles both bare command names and explicit paths.
	if p, err := lookPath(cmd); err == nil {
		return p, nil
	}

	if dir, err := exeDir(); err == nil {
		name := "tesseract"
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		candidate := filepath.Join(dir, bundledDirName, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %q is not on PATH and no %s folder sits next to the executable; install tesseract or pass --tesseract-cmd",
		ErrEngineNotFound, cmd, bundledDirName)
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(exe); err == nil {
		exe = real
	}
	return filepath.Dir(exe), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
