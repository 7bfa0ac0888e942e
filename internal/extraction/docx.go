package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// extractDOCX parses an OOXML word document in memory and strips the
// document XML down to paragraph text.
func extractDOCX(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: read docx: %v", ErrExtractionFailed, err)
	}
	defer reader.Close()

	content := reader.Editable().GetContent()

	var sb strings.Builder
	for _, part := range strings.Split(content, "<w:p") {
		paragraph := strings.TrimSpace(stripTags(part))
		if paragraph == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(paragraph)
	}

	return sb.String(), nil
}

func stripTags(xmlStr string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range xmlStr {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
