package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfPageCount returns the page count of a PDF, or an error when the
// structure cannot be parsed.
func pdfPageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}

// directPDFText reads the embedded text layer of a PDF. It skips to the
// next tier when the text layer is missing or too short to be the real
// content, which is what scanned documents look like.
func directPDFText(data []byte, minChars int) (tierResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return skip(fmt.Sprintf("unreadable pdf structure: %v", err)), nil
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if len(text) < minChars {
		return skip(fmt.Sprintf("text layer too short: %d chars", len(text))), nil
	}

	return tierResult{text: text}, nil
}
