package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docuglot/docuglot/internal/config"
	"github.com/docuglot/docuglot/internal/inference"
	"github.com/docuglot/docuglot/internal/storage"
	"github.com/google/uuid"
)

type fakeStore struct {
	objects map[string][]byte
}

func (f *fakeStore) Store(ctx context.Context, key string, data []byte) error {
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) PresignedGetURL(key string, ttl time.Duration) (string, error) {
	return "http://localhost/blobs/" + key, nil
}

func (f *fakeStore) PresignedUploadForm(key string, maxSize int64) (*storage.UploadForm, error) {
	return &storage.UploadForm{URL: "http://localhost/blobs/" + key}, nil
}

func (f *fakeStore) VerifySignature(method, key string, expires int64, signature string) error {
	return nil
}

type fakeVision struct {
	text string
	err  error
}

func (f *fakeVision) ChatComplete(ctx context.Context, messages []inference.Message) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeVision) RecognizeText(ctx context.Context, pages [][]byte) (string, error) {
	return f.text, f.err
}

func testConfig(rasterURL string) *config.ExtractionConfig {
	return &config.ExtractionConfig{
		RasterURL:          rasterURL,
		OCREnabled:         false,
		TesseractBin:       "tesseract-not-installed",
		OCRLanguages:       "eng",
		WorkDir:            "",
		MinDirectTextChars: 50,
		PDFConfidence:      0.90,
		ImageConfidence:    0.80,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractPlainText(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"docs/a.txt": []byte("hello world"),
	}}

	system := New(testConfig("http://localhost"), store, &fakeVision{}, testLogger())

	text, err := system.Extract(context.Background(), Input{
		DocumentID: uuid.New(),
		ObjectKey:  "docs/a.txt",
		MimeType:   "text/plain",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "hello world" {
		t.Errorf("Extract() = %q, want %q", text, "hello world")
	}
}

func TestExtractMissingObject(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{}}
	system := New(testConfig("http://localhost"), store, &fakeVision{}, testLogger())

	_, err := system.Extract(context.Background(), Input{
		DocumentID: uuid.New(),
		ObjectKey:  "docs/missing.txt",
		MimeType:   "text/plain",
	})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Extract() error = %v, want ErrUnsupportedFormat", err)
	}
	if err == nil || !strings.Contains(err.Error(), "text/plain") {
		t.Errorf("Extract() error = %v, want the mime type named", err)
	}

	_, err = system.Extract(context.Background(), Input{
		DocumentID: uuid.New(),
		ObjectKey:  "docs/missing.pdf",
		MimeType:   MimePDF,
	})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Extract() error = %v, want ErrExtractionFailed for a parseable format", err)
	}
}

func TestExtractLegacyDOCRejected(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"docs/old.doc": []byte{0xd0, 0xcf, 0x11, 0xe0},
	}}
	system := New(testConfig("http://localhost"), store, &fakeVision{}, testLogger())

	_, err := system.Extract(context.Background(), Input{
		DocumentID: uuid.New(),
		ObjectKey:  "docs/old.doc",
		MimeType:   MimeDOC,
	})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Extract() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtractEmptyTextFails(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"docs/empty.txt": []byte("   \n\t  "),
	}}
	system := New(testConfig("http://localhost"), store, &fakeVision{}, testLogger())

	_, err := system.Extract(context.Background(), Input{
		DocumentID: uuid.New(),
		ObjectKey:  "docs/empty.txt",
		MimeType:   "text/plain",
	})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Extract() error = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractPDFFallsBackToVision(t *testing.T) {
	raster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/convert/pdf-to-png" {
			t.Errorf("rasterizer path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("all") != "true" {
			t.Errorf("rasterizer all = %q, want true", r.URL.Query().Get("all"))
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer raster.Close()

	store := &fakeStore{objects: map[string][]byte{
		"docs/scan.pdf": []byte("%PDF-1.4 not really a text layer"),
	}}
	vision := &fakeVision{text: "recognized page text"}

	system := New(testConfig(raster.URL), store, vision, testLogger())

	text, err := system.Extract(context.Background(), Input{
		DocumentID: uuid.New(),
		ObjectKey:  "docs/scan.pdf",
		MimeType:   MimePDF,
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "recognized page text" {
		t.Errorf("Extract() = %q, want vision output", text)
	}
}

func TestExtractPDFRasterizerError(t *testing.T) {
	raster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "encrypted document"}`))
	}))
	defer raster.Close()

	store := &fakeStore{objects: map[string][]byte{
		"docs/locked.pdf": []byte("%PDF-1.4"),
	}}

	system := New(testConfig(raster.URL), store, &fakeVision{}, testLogger())

	_, err := system.Extract(context.Background(), Input{
		DocumentID: uuid.New(),
		ObjectKey:  "docs/locked.pdf",
		MimeType:   MimePDF,
	})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("Extract() error = %v, want ErrExtractionFailed", err)
	}
	if !strings.Contains(err.Error(), "encrypted document") {
		t.Errorf("Extract() error = %v, want rasterizer reason included", err)
	}
}

func TestExtractImageUsesVision(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"docs/photo.png": []byte("png-bytes"),
	}}
	vision := &fakeVision{text: "sign text"}

	system := New(testConfig("http://localhost"), store, vision, testLogger())

	text, err := system.Extract(context.Background(), Input{
		DocumentID: uuid.New(),
		ObjectKey:  "docs/photo.png",
		MimeType:   "image/png",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "sign text" {
		t.Errorf("Extract() = %q, want %q", text, "sign text")
	}
}

func TestRunChainExhausted(t *testing.T) {
	e := &extractor{logger: testLogger()}

	chain := []tier{
		{name: "first", run: func(ctx context.Context) (tierResult, error) {
			return skip("declined"), nil
		}},
		{name: "second", run: func(ctx context.Context) (tierResult, error) {
			return skip("declined"), nil
		}},
	}

	_, err := e.runChain(context.Background(), Input{}, chain)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("runChain() error = %v, want ErrExtractionFailed", err)
	}
}

func TestRunChainAbortsOnError(t *testing.T) {
	e := &extractor{logger: testLogger()}

	secondRan := false
	chain := []tier{
		{name: "first", run: func(ctx context.Context) (tierResult, error) {
			return tierResult{}, errors.New("service unavailable")
		}},
		{name: "second", run: func(ctx context.Context) (tierResult, error) {
			secondRan = true
			return tierResult{text: "unreachable"}, nil
		}},
	}

	_, err := e.runChain(context.Background(), Input{}, chain)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("runChain() error = %v, want ErrExtractionFailed", err)
	}
	if secondRan {
		t.Error("runChain() continued past a hard error")
	}
}

func TestDirectPDFTextSkipsGarbage(t *testing.T) {
	result, err := directPDFText([]byte("not a pdf at all"), 50)
	if err != nil {
		t.Fatalf("directPDFText() error = %v", err)
	}
	if !result.skipped {
		t.Error("directPDFText() accepted garbage input")
	}
}

func TestUnpackPagesOrdersByName(t *testing.T) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, name := range []string{"page-10.png", "page-2.png", "page-1.png"} {
		f, err := writer.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		f.Write([]byte(name))
	}
	writer.Close()

	pages, err := unpackPages(buf.Bytes())
	if err != nil {
		t.Fatalf("unpackPages() error = %v", err)
	}

	want := []string{"page-1.png", "page-2.png", "page-10.png"}
	if len(pages) != len(want) {
		t.Fatalf("unpackPages() returned %d pages, want %d", len(pages), len(want))
	}
	for i, name := range want {
		if string(pages[i]) != name {
			t.Errorf("page %d = %q, want %q", i, pages[i], name)
		}
	}
}

func TestParseTSV(t *testing.T) {
	header := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"
	output := strings.Join([]string{
		header,
		"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t",
		"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t96.5\tHello",
		"5\t1\t1\t1\t1\t2\t12\t0\t10\t10\t93.5\tworld",
		"5\t1\t1\t1\t2\t1\t0\t12\t10\t10\t90.0\tagain",
	}, "\n")

	result := parseTSV(output)

	if result.text != "Hello world\nagain" {
		t.Errorf("parseTSV() text = %q, want %q", result.text, "Hello world\nagain")
	}

	want := (96.5 + 93.5 + 90.0) / 3 / 100
	if diff := result.confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("parseTSV() confidence = %v, want %v", result.confidence, want)
	}
}

func TestParseTSVNoWords(t *testing.T) {
	result := parseTSV("level\tpage_num\n1\t1\n")
	if result.text != "" || result.confidence != 0 {
		t.Errorf("parseTSV() = %+v, want zero value", result)
	}
}

func TestStripTags(t *testing.T) {
	got := stripTags(`w:r><w:t>First</w:t></w:r`)
	if got != "First" {
		t.Errorf("stripTags() = %q, want %q", got, "First")
	}
}
