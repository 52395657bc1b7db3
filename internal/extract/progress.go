package extract

import (
	"fmt"
	"io"
	"strings"
)

const progressSlots = 10

// renderProgress draws a ten-slot progress bar on one line, e.g.
// `Processing files: (====      ) 40% complete`. The carriage return keeps
// redraws in place; the caller prints the final newline.
func renderProgress(w io.Writer, done, total int) {
	if w == nil || total == 0 {
		return
	}
	filled := done * progressSlots / total
	bar := "(" + strings.Repeat("=", filled) + strings.Repeat(" ", progressSlots-filled) + ")"
	fmt.Fprintf(w, "\rProcessing files: %s %d%% complete", bar, done*100/total)
}
