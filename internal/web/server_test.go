package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/textnorm/internal/config"
	"github.com/JonMunkholm/textnorm/internal/core"
	"github.com/JonMunkholm/textnorm/internal/store"
	"github.com/google/uuid"
)

const (
	datasetHeader = "raw_text,type,normtext,span_raw,span_type,span_norm"
	broken        = "\u1781\u17C2\u17D2\u1798\u179A"
	fixed         = "\u1781\u17D2\u1798\u17C2\u179A"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 16,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       time.Minute,
		},
		Security: config.SecurityConfig{EnableCSP: true},
		Export:   config.ExportConfig{FilePrefix: "textnorm"},
	}
}

func newTestServer(t *testing.T, health Pinger) (*Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc, err := core.NewService(mem, testConfig())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	s := NewServer(svc, testConfig(), health)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, mem
}

func do(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server, target, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("User-Agent", "upload-test")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		health Pinger
		want   int
	}{
		{"no pinger", nil, http.StatusOK},
		{"healthy", fakePinger{}, http.StatusOK},
		{"unhealthy", fakePinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.health)
			rec := do(t, s, http.MethodGet, "/healthz", "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "")

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestNormalize(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/normalize", `{"text":"`+broken+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got := decode[core.TextPreview](t, rec)
	if got.Text != fixed || !got.Corrected || !got.Khmer {
		t.Errorf("preview = %+v", got)
	}
	if len(got.Segments) == 0 {
		t.Error("segments empty")
	}
}

func TestNormalize_InvalidBody(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/normalize", `{"text":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "REQ001" {
		t.Errorf("code = %q, want REQ001", got.Code)
	}
}

func TestRecordLifecycle(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/textnorm",
		`{"rawText":"`+broken+`","normalizedText":"n","types":["noun"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[core.RecordResult](t, rec)
	if created.Record.RawText != fixed || !created.Corrected[core.FieldRawText] {
		t.Errorf("created = %+v", created)
	}
	id := created.Record.ID.String()

	rec = do(t, s, http.MethodGet, "/api/textnorm/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodPut, "/api/textnorm/"+id,
		`{"rawText":"r","normalizedText":"n2","types":["verb"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode[core.RecordResult](t, rec); got.Record.NormalizedText != "n2" {
		t.Errorf("updated = %+v", got.Record)
	}

	rec = do(t, s, http.MethodGet, "/api/textnorm?type=verb", "")
	page := decode[core.RecordPage](t, rec)
	if page.Total != 1 {
		t.Errorf("list total = %d, want 1", page.Total)
	}

	rec = do(t, s, http.MethodDelete, "/api/textnorm/"+id, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/textnorm/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestRecordErrors(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		want     int
		wantCode string
	}{
		{"invalid id", http.MethodGet, "/api/textnorm/not-a-uuid", "", http.StatusBadRequest, "REC002"},
		{"unknown id", http.MethodGet, "/api/textnorm/" + uuid.NewString(), "", http.StatusNotFound, "REC001"},
		{"missing text", http.MethodPost, "/api/textnorm", `{"rawText":"","normalizedText":"n","types":["noun"]}`, http.StatusUnprocessableEntity, "VAL001"},
		{"missing type", http.MethodPost, "/api/textnorm", `{"rawText":"r","normalizedText":"n","types":[]}`, http.StatusUnprocessableEntity, "VAL002"},
		{"span without norm", http.MethodPost, "/api/textnorm", `{"rawText":"r","normalizedText":"n","types":["noun"],"spanRawText":"s"}`, http.StatusUnprocessableEntity, "VAL003"},
		{"delete unknown", http.MethodDelete, "/api/textnorm/" + uuid.NewString(), "", http.StatusNotFound, "REC001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestBulkImport(t *testing.T) {
	s, mem := newTestServer(t, nil)

	text := datasetHeader + "\n" +
		broken + ",noun,n1,,,\n" +
		",noun,n2,,,\n" +
		"r3,verb,n3,,,\n"

	rec := upload(t, s, "/api/textnorm/bulk", "words.csv", text)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got := decode[core.ImportResult](t, rec)
	if got.TotalRows != 3 || got.ValidRows != 2 || got.Inserted != 2 {
		t.Errorf("result = %+v", got)
	}
	if len(got.Rejected) != 1 || got.Rejected[0].Line != 3 {
		t.Errorf("Rejected = %+v", got.Rejected)
	}

	history, err := mem.ListImports(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListImports() error = %v", err)
	}
	if len(history) != 1 || history[0].IPAddress != "192.0.2.10" || history[0].UserAgent != "upload-test" {
		t.Errorf("history = %+v", history)
	}

	rec = do(t, s, http.MethodGet, "/api/imports", "")
	if rec.Code != http.StatusOK {
		t.Errorf("imports status = %d", rec.Code)
	}
}

func TestBulkImport_Errors(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name     string
		filename string
		content  string
		want     int
		wantCode string
	}{
		{"no file", "", "", http.StatusBadRequest, "FILE004"},
		{"missing column", "a.csv", "raw_text,type,normtext\nr,noun,n\n", http.StatusBadRequest, "VAL004"},
		{"no valid rows", "a.csv", datasetHeader + "\n,noun,n,,,\n", http.StatusUnprocessableEntity, "VAL006"},
		{"too large", "a.csv", datasetHeader + "\n" + strings.Repeat("x", 1<<17), http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, s, "/api/textnorm/bulk", tt.filename, tt.content)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestBulkImport_MissingColumnsNamed(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := upload(t, s, "/api/textnorm/bulk", "a.csv", "raw_text,type,normtext\nr,noun,n\n")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	got := decode[ErrorResponse](t, rec)
	want := []string{"span_raw", "span_type", "span_norm"}
	if !slices.Equal(got.Columns, want) {
		t.Errorf("columns = %v, want %v", got.Columns, want)
	}
	for _, col := range want {
		if !strings.Contains(got.Message, col) {
			t.Errorf("message %q does not name %s", got.Message, col)
		}
	}
}

func TestBulkImport_NoValidRowsSummary(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := upload(t, s, "/api/textnorm/bulk", "a.csv", datasetHeader+"\n,noun,n,,,\nr,,n,,,\n")
	got := decode[ImportErrorResponse](t, rec)
	if got.Summary == nil || got.Summary.TotalRows != 2 || len(got.Summary.Rejected) != 2 {
		t.Errorf("summary = %+v", got.Summary)
	}
}

func TestBulkPreview(t *testing.T) {
	s, mem := newTestServer(t, nil)

	rec := upload(t, s, "/api/textnorm/bulk/preview", "a.csv", datasetHeader+"\n"+broken+",noun,n,,,\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[core.BatchResult](t, rec)
	if got.ValidRows != 1 || got.CorrectedRows != 1 {
		t.Errorf("preview = %+v", got)
	}

	page, _ := mem.List(context.Background(), core.ListQuery{Page: 1, Limit: 10})
	if page.Total != 0 {
		t.Errorf("preview stored %d records", page.Total)
	}
}

func TestBulkNormalized(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := upload(t, s, "/api/textnorm/bulk/normalized", "words.csv",
		datasetHeader+"\n"+broken+",noun,n,,,\n,noun,n,,,\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	want := datasetHeader + "\n" + fixed + ",noun,n,,,\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "words_normalized.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if got := rec.Header().Get("X-Valid-Rows"); got != "1" {
		t.Errorf("X-Valid-Rows = %q, want 1", got)
	}
	if got := rec.Header().Get("X-Corrected-Rows"); got != "1" {
		t.Errorf("X-Corrected-Rows = %q, want 1", got)
	}
}

func TestExport(t *testing.T) {
	s, _ := newTestServer(t, nil)

	upload(t, s, "/api/textnorm/bulk", "a.csv", datasetHeader+"\nr1,noun,n1,,,\nr2,verb|adj,n2,s,t,u\n")

	rec := do(t, s, http.MethodGet, "/api/textnorm/export.csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := datasetHeader + "\nr1,noun,n1,,,\nr2,verb|adj,n2,s,t,u\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "textnorm_") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "imports") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestNormalizedFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"words.csv", "words_normalized.csv"},
		{"dir/words.txt", "words_normalized.csv"},
		{`C:\data\words.csv`, "words_normalized.csv"},
		{"noext", "noext_normalized.csv"},
		{"", "dataset_normalized.csv"},
	}

	for _, tt := range tests {
		if got := normalizedFileName(tt.in); got != tt.want {
			t.Errorf("normalizedFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()

	for i := range 2 {
		if ok, _ := rl.take("a"); !ok {
			t.Fatalf("request %d denied", i+1)
		}
	}
	if ok, wait := rl.take("a"); ok || wait <= 0 {
		t.Errorf("third request = (%v, %v), want denied with a wait", ok, wait)
	}
	if ok, _ := rl.take("b"); !ok {
		t.Error("other client denied")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()

	h := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d status = %d, want %d", i, rec.Code, want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrRecordNotFound, http.StatusNotFound},
		{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{core.ErrTooManyImports, http.StatusServiceUnavailable},
		{errRateLimited, http.StatusTooManyRequests},
		{core.ErrNoValidRows, http.StatusUnprocessableEntity},
		{errInvalidBody, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if ok, _ := rl.take("a"); !ok {
		t.Fatal("first request denied")
	}

	now = now.Add(20 * time.Second)
	ok, wait := rl.take("a")
	if ok {
		t.Fatal("second request allowed inside window")
	}
	if wait != 40*time.Second {
		t.Errorf("wait = %v, want 40s", wait)
	}

	now = now.Add(40 * time.Second)
	if ok, _ := rl.take("a"); !ok {
		t.Error("request denied after window reset")
	}
}
