package documents_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tenderinsight/hub/internal/app/features/documents"
	"github.com/tenderinsight/hub/internal/app/store/summaries"
	"github.com/tenderinsight/hub/internal/app/store/teams"
	"github.com/tenderinsight/hub/internal/app/system/gates"
	"github.com/tenderinsight/hub/internal/app/system/plans"
	"github.com/tenderinsight/hub/internal/domain/models"
	"github.com/tenderinsight/hub/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*documents.Handler, *testutil.Fixtures) {
	db := testutil.SetupTestDB(t)
	gk := gates.New(teamstore.New(db), plans.NewGate(nil), nil, zap.NewNop())
	h := documents.NewHandler(summarystore.New(db), nil, gk, nil, zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

// docxUpload builds a minimal DOCX container holding the given
// paragraphs.
func docxUpload(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating document.xml: %v", err)
	}
	fw.Write([]byte(`<?xml version="1.0"?><document><body>`))
	for _, p := range paragraphs {
		fw.Write([]byte(`<p><r><t>` + p + `</t></r></p>`))
	}
	fw.Write([]byte(`</body></document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("closing docx: %v", err)
	}
	return buf.Bytes()
}

// multipartUpload wraps the payload in a multipart body under the
// "file" field.
func multipartUpload(t *testing.T, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestHandleExtract(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	team := f.CreateTeam(ctx, "Acme Civils", models.TierBasic)

	doc := docxUpload(t,
		"The Department of Transport invites bids for road resurfacing.",
		"Bidders must hold a valid CIDB grading of 5CE or higher.",
		"The contract runs for twelve months from the date of award.",
	)
	body, contentType := multipartUpload(t, "tender-pack.docx", doc)

	req := testutil.NewAuthenticatedRequest("POST", "/api/summary/extract", body, team.ID, "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleExtract(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var ds models.DocumentSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &ds); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if ds.ID == "" {
		t.Error("document id is empty")
	}
	if ds.Summary == "" {
		t.Error("summary is empty")
	}
	if ds.WordCount == 0 {
		t.Error("word count is zero")
	}
	if ds.Filename != "tender-pack.docx" {
		t.Errorf("Filename = %q", ds.Filename)
	}

	// The stored summary is retrievable by its id.
	getReq := testutil.NewAuthenticatedRequest("GET", "/api/summary/"+ds.ID, nil, team.ID, "user-1")
	getReq = testutil.WithChiURLParam(getReq, "id", ds.ID)
	getRec := httptest.NewRecorder()
	h.ServeGet(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d: %s", getRec.Code, getRec.Body.String())
	}
}

func TestHandleExtract_UnsupportedFormat(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	team := f.CreateTeam(ctx, "Acme Civils", models.TierBasic)

	body, contentType := multipartUpload(t, "notes.txt", []byte("plain text"))
	req := testutil.NewAuthenticatedRequest("POST", "/api/summary/extract", body, team.ID, "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleExtract(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestHandleExtract_FreeTierForbidden(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	team := f.CreateTeam(ctx, "Acme Civils", models.TierFree)

	doc := docxUpload(t, "Some tender text.")
	body, contentType := multipartUpload(t, "tender.docx", doc)
	req := testutil.NewAuthenticatedRequest("POST", "/api/summary/extract", body, team.ID, "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleExtract(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}
}

func TestServeGet_OtherTeamHidden(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateTeam(ctx, "Acme Civils", models.TierBasic)
	other := f.CreateTeam(ctx, "Rival Works", models.TierBasic)

	doc := docxUpload(t, "Confidential tender pack contents.")
	body, contentType := multipartUpload(t, "pack.docx", doc)
	req := testutil.NewAuthenticatedRequest("POST", "/api/summary/extract", body, owner.ID, "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleExtract(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var ds models.DocumentSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &ds); err != nil {
		t.Fatalf("decoding body: %v", err)
	}

	getReq := testutil.NewAuthenticatedRequest("GET", "/api/summary/"+ds.ID, nil, other.ID, "user-9")
	getReq = testutil.WithChiURLParam(getReq, "id", ds.ID)
	getRec := httptest.NewRecorder()
	h.ServeGet(getRec, getReq)
	if getRec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", getRec.Code, http.StatusNotFound)
	}
}

func TestServeList(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	team := f.CreateTeam(ctx, "Acme Civils", models.TierBasic)

	for _, name := range []string{"a.docx", "b.docx"} {
		doc := docxUpload(t, "Tender text for "+name+".")
		body, contentType := multipartUpload(t, name, doc)
		req := testutil.NewAuthenticatedRequest("POST", "/api/summary/extract", body, team.ID, "user-1")
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.HandleExtract(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("extract status = %d: %s", rec.Code, rec.Body.String())
		}
	}

	req := testutil.NewAuthenticatedRequest("GET", "/api/summary", nil, team.ID, "user-1")
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}
