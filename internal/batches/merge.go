package batches

import (
	"fmt"
	"sort"
	"strings"
)

// extractedDocument pairs a file name with its extracted text for merging.
type extractedDocument struct {
	Name string
	Text string
}

// mergeExtracted assembles the combined model input from per-document
// extractions. Documents are ordered by original file name so the merged
// text is deterministic regardless of extraction completion order, and
// each section is introduced by a labeled separator.
func mergeExtracted(docs []extractedDocument) string {
	sorted := make([]extractedDocument, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var sb strings.Builder
	for i, doc := range sorted {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("===== %s =====\n", doc.Name))
		sb.WriteString(doc.Text)
	}

	return sb.String()
}
