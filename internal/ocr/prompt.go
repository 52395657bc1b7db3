package ocr

import (
	"fmt"
	"strings"
)

// transcriptionPrompt builds the instruction handed to the vision-model
// engines. Kept strict: models love to narrate instead of transcribe.
func transcriptionPrompt(language string) string {
	var b strings.Builder
	b.WriteString(`You are performing OCR (Optical Character Recognition) on an image.

Transcribe ALL visible text exactly as it appears, preserving:
- Line breaks and reading order
- Capitalization and punctuation
- Numbers and special characters

Do not add commentary, summaries, or phrases like "The image contains".
Use [?] for characters you cannot make out.
Respond with the transcribed text only.`)

	if language != "" && language != "eng" {
		fmt.Fprintf(&b, "\n\nLanguage hint: %s.", language)
	}
	return b.String()
}
