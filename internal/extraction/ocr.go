package extraction

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/docuglot/docuglot/internal/config"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ocrEngine runs the tesseract binary against page images. Tesseract is
// CPU-bound, so pages are processed with at most NumCPU concurrent
// invocations and internal threading disabled.
type ocrEngine struct {
	bin       string
	languages string
	workDir   string
	logger    *slog.Logger
}

func newOCREngine(cfg *config.ExtractionConfig, logger *slog.Logger) *ocrEngine {
	return &ocrEngine{
		bin:       cfg.TesseractBin,
		languages: cfg.OCRLanguages,
		workDir:   cfg.WorkDir,
		logger:    logger,
	}
}

type pageRecognition struct {
	text       string
	confidence float64
}

// recognizePages OCRs each page and skips the tier unless every page
// reaches minConfidence. Accepting only the confident pages would hand the
// model a document with silent gaps, so low confidence anywhere defers the
// whole document to the vision tier.
func (o *ocrEngine) recognizePages(ctx context.Context, documentID uuid.UUID, pages [][]byte, minConfidence float64) (tierResult, error) {
	if _, err := exec.LookPath(o.bin); err != nil {
		return skip(fmt.Sprintf("tesseract binary %q not found", o.bin)), nil
	}

	dir := filepath.Join(o.workDir, documentID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return tierResult{}, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	results := make([]pageRecognition, len(pages))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())

	for i, page := range pages {
		group.Go(func() error {
			path := filepath.Join(dir, fmt.Sprintf("page-%04d.png", i+1))
			if err := os.WriteFile(path, page, 0o644); err != nil {
				return fmt.Errorf("write page %d: %w", i+1, err)
			}

			recognition, err := o.recognizeImage(ctx, path)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}

			results[i] = recognition
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return tierResult{}, err
	}

	var sb strings.Builder
	for i, result := range results {
		if result.confidence < minConfidence {
			o.logger.Debug("ocr confidence below threshold",
				"document_id", documentID,
				"page", i+1,
				"confidence", result.confidence,
				"threshold", minConfidence,
			)
			return skip(fmt.Sprintf("page %d confidence %.2f below %.2f", i+1, result.confidence, minConfidence)), nil
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(result.text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return skip("ocr produced no text"), nil
	}

	return tierResult{text: text}, nil
}

// recognizeImage runs tesseract in TSV mode, which reports a confidence
// value per recognized word alongside the text.
func (o *ocrEngine) recognizeImage(ctx context.Context, path string) (pageRecognition, error) {
	cmd := exec.CommandContext(ctx, o.bin, path, "stdout", "-l", o.languages, "--psm", "6", "tsv")
	cmd.Env = append(os.Environ(), "OMP_THREAD_LIMIT=1")

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return pageRecognition{}, fmt.Errorf("tesseract: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseTSV(out.String()), nil
}

// parseTSV reads tesseract TSV output, reassembling line text and
// averaging word confidences. Word rows are level 5; rows with a negative
// confidence are layout artifacts and carry no text.
func parseTSV(output string) pageRecognition {
	var (
		sb       strings.Builder
		sum      float64
		words    int
		lastLine string
	)

	for _, row := range strings.Split(output, "\n") {
		fields := strings.Split(row, "\t")
		if len(fields) < 12 || fields[0] != "5" {
			continue
		}

		conf, err := strconv.ParseFloat(fields[10], 64)
		if err != nil || conf < 0 {
			continue
		}

		word := strings.TrimSpace(fields[11])
		if word == "" {
			continue
		}

		// Columns 1-4 identify page/block/paragraph/line; a change in
		// the line key starts a new output line.
		lineKey := strings.Join(fields[1:5], ":")
		if sb.Len() > 0 {
			if lineKey == lastLine {
				sb.WriteString(" ")
			} else {
				sb.WriteString("\n")
			}
		}
		lastLine = lineKey

		sb.WriteString(word)
		sum += conf
		words++
	}

	if words == 0 {
		return pageRecognition{}
	}

	// Tesseract reports confidence in 0..100.
	return pageRecognition{
		text:       sb.String(),
		confidence: sum / float64(words) / 100,
	}
}
