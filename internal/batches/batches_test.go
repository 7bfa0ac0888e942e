package batches

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docuglot/docuglot/internal/documents"
	"github.com/docuglot/docuglot/internal/extraction"
	"github.com/docuglot/docuglot/internal/inference"
	"github.com/docuglot/docuglot/internal/processing"
	"github.com/docuglot/docuglot/pkg/pagination"
	"github.com/docuglot/docuglot/pkg/repository"
	"github.com/google/uuid"
)

// fieldCounter records how many destinations a scan function binds.
type fieldCounter struct {
	fields int
}

var _ repository.Scanner = (*fieldCounter)(nil)

func (f *fieldCounter) Scan(dest ...any) error {
	f.fields = len(dest)
	return nil
}

func columnCount(columns string) int {
	return len(strings.Split(columns, ","))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMergeExtractedOrdersByName(t *testing.T) {
	merged := mergeExtracted([]extractedDocument{
		{Name: "b.pdf", Text: "second body"},
		{Name: "a.pdf", Text: "first body"},
	})

	aIdx := strings.Index(merged, "===== a.pdf =====")
	bIdx := strings.Index(merged, "===== b.pdf =====")

	if aIdx < 0 || bIdx < 0 {
		t.Fatalf("merged output missing separators:\n%s", merged)
	}
	if aIdx > bIdx {
		t.Error("documents not ordered by original name")
	}
	if !strings.Contains(merged, "===== a.pdf =====\nfirst body") {
		t.Error("separator not directly followed by document text")
	}
}

func TestMergeExtractedEmpty(t *testing.T) {
	if got := mergeExtracted(nil); got != "" {
		t.Errorf("mergeExtracted(nil) = %q, want empty", got)
	}
}

func TestValidateSubmission(t *testing.T) {
	userID := uuid.New()
	file := FileInput{ObjectKey: "documents/x/a.pdf", OriginalName: "a.pdf", MimeType: "application/pdf", SizeBytes: 4800}

	tests := []struct {
		name    string
		req     SubmitRequest
		wantErr error
	}{
		{
			name:    "no files",
			req:     SubmitRequest{UserID: userID, Mode: "OCR", SourceLanguage: "auto"},
			wantErr: ErrEmptyBatch,
		},
		{
			name:    "unknown mode",
			req:     SubmitRequest{UserID: userID, Files: []FileInput{file}, Mode: "TRANSCRIBE", SourceLanguage: "auto"},
			wantErr: ErrInvalidMode,
		},
		{
			name:    "unknown source language",
			req:     SubmitRequest{UserID: userID, Files: []FileInput{file}, Mode: "OCR", SourceLanguage: "xx"},
			wantErr: ErrInvalidLanguage,
		},
		{
			name:    "translation without target",
			req:     SubmitRequest{UserID: userID, Files: []FileInput{file}, Mode: "TRANSLATE", SourceLanguage: "de"},
			wantErr: ErrInvalidLanguage,
		},
		{
			name:    "translation with auto target",
			req:     SubmitRequest{UserID: userID, Files: []FileInput{file}, Mode: "TRANSLATE", SourceLanguage: "de", TargetLanguage: "auto"},
			wantErr: ErrInvalidLanguage,
		},
		{
			name: "valid ocr without target",
			req:  SubmitRequest{UserID: userID, Files: []FileInput{file}, Mode: "OCR", SourceLanguage: "auto"},
		},
		{
			name: "valid translation",
			req:  SubmitRequest{UserID: userID, Files: []FileInput{file}, Mode: "TRANSLATE", SourceLanguage: "de", TargetLanguage: "en"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := validateSubmission(tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("validateSubmission() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("validateSubmission() error = %v", err)
			}
			if sub.TotalBytes != 4800 {
				t.Errorf("TotalBytes = %d, want 4800", sub.TotalBytes)
			}
			if sub.EstimatedTokens <= 0 {
				t.Error("estimate not computed")
			}
		})
	}
}

func TestValidateSubmissionEstimateScalesWithMode(t *testing.T) {
	file := FileInput{ObjectKey: "k", OriginalName: "a.pdf", MimeType: "application/pdf", SizeBytes: 4800}

	ocr, err := validateSubmission(SubmitRequest{
		UserID: uuid.New(), Files: []FileInput{file}, Mode: "OCR", SourceLanguage: "auto",
	})
	if err != nil {
		t.Fatal(err)
	}

	translate, err := validateSubmission(SubmitRequest{
		UserID: uuid.New(), Files: []FileInput{file}, Mode: "TRANSLATE",
		SourceLanguage: "de", TargetLanguage: "en",
	})
	if err != nil {
		t.Fatal(err)
	}

	if translate.EstimatedTokens != 3*ocr.EstimatedTokens {
		t.Errorf("translate estimate = %d, want 3x ocr estimate %d",
			translate.EstimatedTokens, ocr.EstimatedTokens)
	}
}

// fakeStore records pipeline interactions in memory.
type fakeStore struct {
	mu            sync.Mutex
	submission    *Submission
	submissionErr error
	execution     *Execution
	extracted     map[uuid.UUID]string
	commit        *Commit
	failMessage   string
	failMS        int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{extracted: make(map[uuid.UUID]string)}
}

func (f *fakeStore) CreateSubmission(ctx context.Context, sub Submission) (*Batch, []documents.Document, error) {
	if f.submissionErr != nil {
		return nil, nil, f.submissionErr
	}
	f.submission = &sub

	batch := Batch{
		ID:              uuid.New(),
		UserID:          sub.UserID,
		Mode:            sub.Mode,
		SourceLanguage:  sub.SourceLanguage,
		TargetLanguage:  sub.TargetLanguage,
		Status:          StatusPending,
		EstimatedTokens: sub.EstimatedTokens,
	}

	docs := make([]documents.Document, len(sub.Files))
	for i, file := range sub.Files {
		docs[i] = documents.Document{
			ID:           uuid.New(),
			UserID:       sub.UserID,
			BatchID:      &batch.ID,
			ObjectKey:    file.ObjectKey,
			OriginalName: file.OriginalName,
			MimeType:     file.MimeType,
			SizeBytes:    file.SizeBytes,
			Status:       documents.StatusPending,
		}
	}

	f.execution = &Execution{
		Batch:     batch,
		Documents: docs,
		Job:       ProcessingJob{ID: uuid.New(), BatchID: batch.ID, Status: JobRunning},
	}

	return &batch, docs, nil
}

func (f *fakeStore) BeginExecution(ctx context.Context, batchID uuid.UUID) (*Execution, error) {
	if f.execution == nil {
		return nil, ErrNotFound
	}
	return f.execution, nil
}

func (f *fakeStore) StoreExtracted(ctx context.Context, documentID uuid.UUID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extracted[documentID] = text
	return nil
}

func (f *fakeStore) Complete(ctx context.Context, commit Commit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commit = &commit
	return nil
}

func (f *fakeStore) Fail(ctx context.Context, batchID, jobID uuid.UUID, message string, processingMS int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failMessage = message
	f.failMS = processingMS
	return nil
}

func (f *fakeStore) ReconcileInterrupted(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeStore) Find(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return nil, ErrNotFound
}

func (f *fakeStore) FindDetail(ctx context.Context, id uuid.UUID) (*BatchDetail, error) {
	return nil, ErrNotFound
}

func (f *fakeStore) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Batch], error) {
	return nil, nil
}

type fakeExtractor struct {
	texts map[string]string
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, input extraction.Input) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[input.ObjectKey], nil
}

type fakeResolver struct {
	messages []inference.Message
	err      error
}

func (f *fakeResolver) Resolve(ctx context.Context, mode processing.Mode, source, target processing.Language) ([]inference.Message, error) {
	return f.messages, f.err
}

type fakeInference struct {
	mu       sync.Mutex
	response string
	err      error
	received []inference.Message
}

func (f *fakeInference) ChatComplete(ctx context.Context, messages []inference.Message) (string, error) {
	f.mu.Lock()
	f.received = messages
	f.mu.Unlock()
	return f.response, f.err
}

func (f *fakeInference) RecognizeText(ctx context.Context, pages [][]byte) (string, error) {
	return "", errors.New("not implemented")
}

func newTestOrchestrator(store Store, ext extraction.System, res PromptResolver, inf inference.Client) (*Orchestrator, *Runner) {
	runner := NewRunner(8, testLogger())
	runner.Start(context.Background())
	return NewOrchestrator(store, ext, res, inf, runner, testLogger()), runner
}

func TestSubmitRejectsInsufficientBudget(t *testing.T) {
	store := newFakeStore()
	store.submissionErr = ErrInsufficientBudget

	o, _ := newTestOrchestrator(store, &fakeExtractor{}, &fakeResolver{}, &fakeInference{})

	_, err := o.Submit(context.Background(), SubmitRequest{
		UserID:         uuid.New(),
		Files:          []FileInput{{ObjectKey: "k", OriginalName: "a.pdf", SizeBytes: 100}},
		Mode:           "OCR",
		SourceLanguage: "auto",
	})
	if !errors.Is(err, ErrInsufficientBudget) {
		t.Errorf("Submit() error = %v, want ErrInsufficientBudget", err)
	}
	if store.commit != nil || store.failMessage != "" {
		t.Error("rejected submission must not reach execution")
	}
}

func TestExecuteCompletesBatch(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{texts: map[string]string{
		"k/a.pdf": "alpha text",
		"k/b.pdf": "bravo text",
	}}
	resolver := &fakeResolver{messages: []inference.Message{
		{Role: inference.RoleSystem, Content: "translate the document"},
	}}
	model := &fakeInference{response: "```json\n{\"text\": \"translated result\"}\n```"}

	o, runner := newTestOrchestrator(store, extractor, resolver, model)

	result, err := o.Submit(context.Background(), SubmitRequest{
		UserID: uuid.New(),
		Files: []FileInput{
			{ObjectKey: "k/b.pdf", OriginalName: "b.pdf", MimeType: "application/pdf", SizeBytes: 960},
			{ObjectKey: "k/a.pdf", OriginalName: "a.pdf", MimeType: "application/pdf", SizeBytes: 960},
		},
		Mode:           "TRANSLATE",
		SourceLanguage: "de",
		TargetLanguage: "en",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Status != StatusPending {
		t.Errorf("Submit() status = %s, want PENDING", result.Status)
	}
	if len(result.DocumentIDs) != 2 {
		t.Fatalf("Submit() returned %d document ids, want 2", len(result.DocumentIDs))
	}

	runner.Drain()

	if store.commit == nil {
		t.Fatalf("batch not committed; fail message = %q", store.failMessage)
	}
	if store.commit.ResultText != "translated result" {
		t.Errorf("committed result = %q, want cleaned model output", store.commit.ResultText)
	}
	if len(store.extracted) != 2 {
		t.Errorf("extracted text persisted for %d documents, want 2", len(store.extracted))
	}
	if store.commit.ConsumedTokens <= 0 {
		t.Error("consumed tokens not computed")
	}
	if store.commit.TokensPerDoc*2 < store.commit.ConsumedTokens {
		t.Error("per-document share must cover the total when doubled")
	}

	// The final user message carries the merged text with a.pdf first.
	last := model.received[len(model.received)-1]
	if last.Role != inference.RoleUser {
		t.Fatalf("last message role = %s, want user", last.Role)
	}
	aIdx := strings.Index(last.Content, "===== a.pdf =====")
	bIdx := strings.Index(last.Content, "===== b.pdf =====")
	if aIdx < 0 || bIdx < 0 || aIdx > bIdx {
		t.Error("merged input not ordered by original name with labeled separators")
	}
}

func TestExecuteFailsOnExtractionError(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{err: extraction.ErrExtractionFailed}

	o, runner := newTestOrchestrator(store, extractor, &fakeResolver{}, &fakeInference{})

	_, err := o.Submit(context.Background(), SubmitRequest{
		UserID:         uuid.New(),
		Files:          []FileInput{{ObjectKey: "k", OriginalName: "a.pdf", SizeBytes: 100}},
		Mode:           "OCR",
		SourceLanguage: "auto",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	runner.Drain()

	if store.commit != nil {
		t.Error("failed batch must not commit")
	}
	if !strings.Contains(store.failMessage, "a.pdf") {
		t.Errorf("failure message %q missing offending file name", store.failMessage)
	}
}

func TestExecuteFailsOnModelReportedError(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{texts: map[string]string{"k": "document text"}}
	model := &fakeInference{response: "```json\n{\"error\": \"content policy refusal\"}\n```"}

	o, runner := newTestOrchestrator(store, extractor, &fakeResolver{}, model)

	if _, err := o.Submit(context.Background(), SubmitRequest{
		UserID:         uuid.New(),
		Files:          []FileInput{{ObjectKey: "k", OriginalName: "a.pdf", SizeBytes: 100}},
		Mode:           "OCR",
		SourceLanguage: "auto",
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	runner.Drain()

	if store.commit != nil {
		t.Error("model-reported error must not commit")
	}
	if !strings.Contains(store.failMessage, "content policy refusal") {
		t.Errorf("failure message %q missing model reason", store.failMessage)
	}
	// Extracted text persisted before the failure stays available.
	if len(store.extracted) != 1 {
		t.Errorf("extracted text persisted for %d documents, want 1", len(store.extracted))
	}
}

func TestScanTargetsMatchColumnLists(t *testing.T) {
	var counter fieldCounter

	if _, err := scanBatch(&counter); err != nil {
		t.Fatal(err)
	}
	if want := columnCount(batchColumns); counter.fields != want {
		t.Errorf("scanBatch binds %d fields, batchColumns lists %d", counter.fields, want)
	}

	if _, err := scanJob(&counter); err != nil {
		t.Fatal(err)
	}
	if want := columnCount(jobColumns); counter.fields != want {
		t.Errorf("scanJob binds %d fields, jobColumns lists %d", counter.fields, want)
	}
}

func TestJobColumnsRecordResultAndTokens(t *testing.T) {
	for _, column := range []string{"output", "tokens_used", "duration_ms", "finished_at"} {
		if !strings.Contains(jobColumns, column) {
			t.Errorf("jobColumns missing %q", column)
		}
	}
}

func TestSubmitFailsWhenQueueFull(t *testing.T) {
	store := newFakeStore()

	// Unstarted runner with a full queue: the submission's task cannot be
	// scheduled.
	runner := NewRunner(1, testLogger())
	runner.Enqueue(func(context.Context) {})

	o := NewOrchestrator(store, &fakeExtractor{}, &fakeResolver{}, &fakeInference{}, runner, testLogger())

	_, err := o.Submit(context.Background(), SubmitRequest{
		UserID:         uuid.New(),
		Files:          []FileInput{{ObjectKey: "k", OriginalName: "a.pdf", SizeBytes: 100}},
		Mode:           "OCR",
		SourceLanguage: "auto",
	})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit() error = %v, want ErrQueueFull", err)
	}
	if got := MapHTTPStatus(err); got != http.StatusServiceUnavailable {
		t.Errorf("MapHTTPStatus() = %d, want 503", got)
	}
	if store.failMessage != ErrQueueFull.Error() {
		t.Errorf("batch not failed on rejection; fail message = %q", store.failMessage)
	}
	if store.commit != nil {
		t.Error("rejected submission must not commit")
	}
}

func TestRunnerDrainAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(4, testLogger())
	runner.Start(ctx)

	release := make(chan struct{})
	runner.Enqueue(func(context.Context) { <-release })
	runner.Enqueue(func(context.Context) {})
	runner.Enqueue(func(context.Context) {})

	cancel()
	close(release)

	done := make(chan struct{})
	go func() {
		runner.Drain()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Drain() blocked on tasks queued at shutdown")
	}
}

func TestRunnerDrainWaitsForTasks(t *testing.T) {
	runner := NewRunner(4, testLogger())
	runner.Start(context.Background())

	var done bool
	runner.Enqueue(func(ctx context.Context) {
		time.Sleep(10 * time.Millisecond)
		done = true
	})

	runner.Drain()

	if !done {
		t.Error("Drain() returned before the task finished")
	}
}
