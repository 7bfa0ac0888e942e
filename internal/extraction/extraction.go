// Package extraction produces text from stored documents using a tiered
// strategy: direct parsing first, local OCR second, vision-model
// recognition last. Each tier either succeeds, skips to the next tier, or
// aborts the chain with a hard error.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docuglot/docuglot/internal/config"
	"github.com/docuglot/docuglot/internal/inference"
	"github.com/docuglot/docuglot/internal/storage"
	"github.com/google/uuid"
)

// Recognized mime types with dedicated extraction paths.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC  = "application/msword"
)

// Input identifies one document to extract.
type Input struct {
	DocumentID uuid.UUID
	ObjectKey  string
	MimeType   string
}

// System defines the text extraction operations.
type System interface {
	// Extract produces the document's text content, or an error wrapping
	// ErrUnsupportedFormat or ErrExtractionFailed. It never returns
	// empty text without an error.
	Extract(ctx context.Context, input Input) (string, error)
}

type extractor struct {
	store  storage.System
	vision inference.Client
	raster *rasterClient
	ocr    *ocrEngine
	cfg    *config.ExtractionConfig
	logger *slog.Logger
}

// New creates the tiered extraction system.
func New(cfg *config.ExtractionConfig, store storage.System, vision inference.Client, logger *slog.Logger) System {
	log := logger.With("system", "extraction")
	return &extractor{
		store:  store,
		vision: vision,
		raster: newRasterClient(cfg.RasterURL),
		ocr:    newOCREngine(cfg, log),
		cfg:    cfg,
		logger: log,
	}
}

func (e *extractor) Extract(ctx context.Context, input Input) (string, error) {
	data, err := e.store.Retrieve(ctx, input.ObjectKey)
	if err != nil {
		if input.MimeType == MimePDF || input.MimeType == MimeDOCX || isImage(input.MimeType) {
			return "", fmt.Errorf("%w: fetch %s: %v", ErrExtractionFailed, input.ObjectKey, err)
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, input.MimeType)
	}

	var text string
	switch {
	case input.MimeType == MimePDF:
		text, err = e.extractPDF(ctx, input, data)
	case input.MimeType == MimeDOCX:
		text, err = extractDOCX(data)
	case input.MimeType == MimeDOC:
		return "", fmt.Errorf("%w: legacy binary DOC is not supported", ErrUnsupportedFormat)
	case isImage(input.MimeType):
		text, err = e.extractImage(ctx, input, data)
	default:
		text = string(data)
	}

	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text content in %s", ErrExtractionFailed, input.ObjectKey)
	}

	e.logger.Info("document extracted",
		"document_id", input.DocumentID,
		"mime_type", input.MimeType,
		"chars", len(text),
	)

	return text, nil
}

// extractPDF runs the tiered PDF chain: embedded text layer, then
// rasterize + local OCR, then rasterize + vision recognition. Page rasters
// are fetched once and shared by the OCR and vision tiers.
func (e *extractor) extractPDF(ctx context.Context, input Input, data []byte) (string, error) {
	pdf := &pdfSource{data: data, raster: e.raster}

	if count, err := pdfPageCount(data); err == nil {
		e.logger.Debug("pdf opened", "document_id", input.DocumentID, "pages", count)
	}

	chain := []tier{
		{
			name: "pdf-direct-text",
			run: func(ctx context.Context) (tierResult, error) {
				return directPDFText(data, e.cfg.MinDirectTextChars)
			},
		},
	}

	if e.cfg.OCREnabled {
		chain = append(chain, tier{
			name: "pdf-local-ocr",
			run: func(ctx context.Context) (tierResult, error) {
				pages, err := pdf.pages(ctx)
				if err != nil {
					return tierResult{}, err
				}
				return e.ocr.recognizePages(ctx, input.DocumentID, pages, e.cfg.PDFConfidence)
			},
		})
	}

	chain = append(chain, tier{
		name: "pdf-vision",
		run: func(ctx context.Context) (tierResult, error) {
			pages, err := pdf.pages(ctx)
			if err != nil {
				return tierResult{}, err
			}
			text, err := e.vision.RecognizeText(ctx, pages)
			if err != nil {
				return tierResult{}, err
			}
			return tierResult{text: text}, nil
		},
	})

	return e.runChain(ctx, input, chain)
}

// extractImage OCRs a standalone image locally when enabled, falling back
// to the vision model on low confidence.
func (e *extractor) extractImage(ctx context.Context, input Input, data []byte) (string, error) {
	var chain []tier

	if e.cfg.OCREnabled {
		chain = append(chain, tier{
			name: "image-local-ocr",
			run: func(ctx context.Context) (tierResult, error) {
				return e.ocr.recognizePages(ctx, input.DocumentID, [][]byte{data}, e.cfg.ImageConfidence)
			},
		})
	}

	chain = append(chain, tier{
		name: "image-vision",
		run: func(ctx context.Context) (tierResult, error) {
			text, err := e.vision.RecognizeText(ctx, [][]byte{data})
			if err != nil {
				return tierResult{}, err
			}
			return tierResult{text: text}, nil
		},
	})

	return e.runChain(ctx, input, chain)
}

// pdfSource lazily rasterizes PDF pages, fetching them at most once per
// document even when multiple tiers need them.
type pdfSource struct {
	data   []byte
	raster *rasterClient
	pages_ [][]byte
	done   bool
}

func (p *pdfSource) pages(ctx context.Context) ([][]byte, error) {
	if !p.done {
		pages, err := p.raster.convertPDF(ctx, p.data)
		if err != nil {
			return nil, err
		}
		p.pages_ = pages
		p.done = true
	}
	return p.pages_, nil
}

func isImage(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}
