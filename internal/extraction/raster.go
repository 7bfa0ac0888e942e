package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"time"
)

// rasterClient talks to the page rasterization service, which converts a
// PDF into one PNG per page. The service signals its result through the
// response content type: a single PNG for one-page documents, a ZIP of
// PNGs for multi-page documents, or a JSON error payload.
type rasterClient struct {
	baseURL string
	client  *http.Client
}

func newRasterClient(baseURL string) *rasterClient {
	return &rasterClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

type rasterError struct {
	Error string `json:"error"`
}

func (r *rasterClient) convertPDF(ctx context.Context, data []byte) ([][]byte, error) {
	url := fmt.Sprintf("%s/convert/pdf-to-png?all=true", r.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", MimePDF)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rasterizer request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rasterizer response: %w", err)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("rasterizer content type: %w", err)
	}

	switch mediaType {
	case "image/png":
		return [][]byte{body}, nil
	case "application/zip":
		return unpackPages(body)
	case "application/json":
		var payload rasterError
		if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
			return nil, fmt.Errorf("rasterizer error: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("rasterizer error: %s", payload.Error)
	default:
		return nil, fmt.Errorf("rasterizer returned unexpected content type %s", mediaType)
	}
}

// unpackPages extracts page PNGs from a ZIP archive in filename order, so
// page-1.png precedes page-2.png regardless of archive entry order.
func unpackPages(data []byte) ([][]byte, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("rasterizer archive: %w", err)
	}

	files := make([]*zip.File, len(archive.File))
	copy(files, archive.File)
	sort.Slice(files, func(i, j int) bool {
		if len(files[i].Name) != len(files[j].Name) {
			return len(files[i].Name) < len(files[j].Name)
		}
		return files[i].Name < files[j].Name
	})

	var pages [][]byte
	for _, file := range files {
		if file.FileInfo().IsDir() {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("rasterizer archive entry %s: %w", file.Name, err)
		}

		page, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("rasterizer archive entry %s: %w", file.Name, err)
		}

		pages = append(pages, page)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterizer archive contained no pages")
	}

	return pages, nil
}
