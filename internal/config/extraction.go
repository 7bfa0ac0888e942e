package config

import (
	"fmt"
	"os"
)

const (
	// EnvExtractionRasterURL overrides the rasterization service base URL.
	EnvExtractionRasterURL = "EXTRACTION_RASTER_URL"

	// EnvExtractionOCREnabled toggles the local OCR tier.
	EnvExtractionOCREnabled = "EXTRACTION_OCR_ENABLED"

	// EnvExtractionTesseractBin overrides the tesseract binary path.
	EnvExtractionTesseractBin = "EXTRACTION_TESSERACT_BIN"

	// EnvExtractionWorkDir overrides the extraction scratch directory.
	EnvExtractionWorkDir = "EXTRACTION_WORK_DIR"
)

// ExtractionConfig contains tiered text extraction configuration.
type ExtractionConfig struct {
	// RasterURL is the base URL of the PDF rasterization service.
	RasterURL string `toml:"raster_url"`

	// OCREnabled toggles the local OCR tier. When false, scanned pages go
	// straight to the vision model.
	OCREnabled bool `toml:"ocr_enabled"`

	// TesseractBin is the tesseract executable invoked for local OCR.
	TesseractBin string `toml:"tesseract_bin"`

	// OCRLanguages is the tesseract language spec, e.g. "eng+deu".
	OCRLanguages string `toml:"ocr_languages"`

	// WorkDir is the scratch directory for per-document page rasters.
	WorkDir string `toml:"work_dir"`

	// MinDirectTextChars is the minimum trimmed length for the PDF
	// direct-text tier to count as real content rather than a scan.
	MinDirectTextChars int `toml:"min_direct_text_chars"`

	// PDFConfidence is the minimum mean word confidence (0..1) for a
	// locally OCR'd PDF page to be accepted.
	PDFConfidence float64 `toml:"pdf_confidence"`

	// ImageConfidence is the minimum mean word confidence (0..1) for a
	// locally OCR'd standalone image to be accepted.
	ImageConfidence float64 `toml:"image_confidence"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *ExtractionConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ExtractionConfig) Merge(overlay *ExtractionConfig) {
	if overlay.RasterURL != "" {
		c.RasterURL = overlay.RasterURL
	}
	if overlay.OCREnabled {
		c.OCREnabled = true
	}
	if overlay.TesseractBin != "" {
		c.TesseractBin = overlay.TesseractBin
	}
	if overlay.OCRLanguages != "" {
		c.OCRLanguages = overlay.OCRLanguages
	}
	if overlay.WorkDir != "" {
		c.WorkDir = overlay.WorkDir
	}
	if overlay.MinDirectTextChars != 0 {
		c.MinDirectTextChars = overlay.MinDirectTextChars
	}
	if overlay.PDFConfidence != 0 {
		c.PDFConfidence = overlay.PDFConfidence
	}
	if overlay.ImageConfidence != 0 {
		c.ImageConfidence = overlay.ImageConfidence
	}
}

func (c *ExtractionConfig) loadDefaults() {
	if c.TesseractBin == "" {
		c.TesseractBin = "tesseract"
	}
	if c.OCRLanguages == "" {
		c.OCRLanguages = "eng"
	}
	if c.WorkDir == "" {
		c.WorkDir = ".data/extraction"
	}
	if c.MinDirectTextChars == 0 {
		c.MinDirectTextChars = 50
	}
	if c.PDFConfidence == 0 {
		c.PDFConfidence = 0.90
	}
	if c.ImageConfidence == 0 {
		c.ImageConfidence = 0.80
	}
}

func (c *ExtractionConfig) loadEnv() {
	if v := os.Getenv(EnvExtractionRasterURL); v != "" {
		c.RasterURL = v
	}
	if v := os.Getenv(EnvExtractionOCREnabled); v != "" {
		c.OCREnabled = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvExtractionTesseractBin); v != "" {
		c.TesseractBin = v
	}
	if v := os.Getenv(EnvExtractionWorkDir); v != "" {
		c.WorkDir = v
	}
}

func (c *ExtractionConfig) validate() error {
	if c.RasterURL == "" {
		return fmt.Errorf("raster_url required")
	}
	if c.MinDirectTextChars < 1 {
		return fmt.Errorf("min_direct_text_chars must be positive")
	}
	if c.PDFConfidence <= 0 || c.PDFConfidence > 1 {
		return fmt.Errorf("pdf_confidence must be in (0, 1]")
	}
	if c.ImageConfidence <= 0 || c.ImageConfidence > 1 {
		return fmt.Errorf("image_confidence must be in (0, 1]")
	}
	return nil
}
