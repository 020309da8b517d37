package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
)

func newCVTestEnv(t *testing.T) (*CVHandler, *gorm.DB, *fakeStorage) {
	t.Helper()
	db := newTestDB(t)
	storage := newFakeStorage()
	h := NewCVHandler(db, storage, nil, "", 10*1024*1024)

	candidate := database.Candidate{FirstName: "John", LastName: "Doe"}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return h, db, storage
}

func newUploadContext(t *testing.T, filename string, content []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body, contentType := newMultipartUpload(t, "cv", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/v1/candidates/1/cvs", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	setParam(c, "id", "1")
	return c, w
}

func TestUploadCVStoresObjectAndRow(t *testing.T) {
	h, db, storage := newCVTestEnv(t)

	c, w := newUploadContext(t, "resume.pdf", []byte("%PDF-1.7 fake"))
	h.UploadCV(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var cv database.CV
	if err := db.First(&cv).Error; err != nil {
		t.Fatalf("load cv row: %v", err)
	}
	if cv.CandidateID != 1 {
		t.Fatalf("expected candidate 1, got %d", cv.CandidateID)
	}
	if cv.ContentType != "application/pdf" {
		t.Fatalf("expected pdf content type, got %s", cv.ContentType)
	}
	if !strings.HasPrefix(cv.ObjectKey, "cvs/1/") {
		t.Fatalf("unexpected object key %q", cv.ObjectKey)
	}
	if _, ok := storage.uploaded[cv.ObjectKey]; !ok {
		t.Fatalf("object %q not in storage", cv.ObjectKey)
	}
}

func TestUploadCVRejectsUnsupportedType(t *testing.T) {
	h, db, storage := newCVTestEnv(t)

	c, w := newUploadContext(t, "malware.exe", []byte("MZ"))
	h.UploadCV(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if len(storage.uploaded) != 0 {
		t.Fatal("rejected file must not reach storage")
	}
	var count int64
	if err := db.Model(&database.CV{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatal("rejected file must not create a row")
	}
}

func TestUploadCVRejectsOversizedFile(t *testing.T) {
	db := newTestDB(t)
	storage := newFakeStorage()
	h := NewCVHandler(db, storage, nil, "", 16)

	candidate := database.Candidate{FirstName: "Big", LastName: "File"}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatal(err)
	}

	c, w := newUploadContext(t, "resume.pdf", []byte("this body is longer than sixteen bytes"))
	h.UploadCV(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUploadCVUnknownCandidate(t *testing.T) {
	db := newTestDB(t)
	h := NewCVHandler(db, newFakeStorage(), nil, "", 10*1024*1024)

	c, w := newUploadContext(t, "resume.pdf", []byte("%PDF"))
	h.UploadCV(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDownloadCVReturnsPresignedLink(t *testing.T) {
	h, db, storage := newCVTestEnv(t)

	cv := database.CV{CandidateID: 1, FileName: "resume.pdf", ObjectKey: "cvs/1/abc-resume.pdf"}
	if err := db.Create(&cv).Error; err != nil {
		t.Fatal(err)
	}
	storage.presign[cv.ObjectKey] = "https://signed.example/resume.pdf"

	c, w := newTestContext(t, http.MethodGet, "/v1/candidates/1/cvs/1/download-link", nil)
	setParam(c, "id", "1")
	setParam(c, "cvID", "1")
	h.DownloadCV(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		FileName string `json:"file_name"`
		URL      string `json:"url"`
	}
	decodeBody(t, w, &resp)
	if resp.URL != "https://signed.example/resume.pdf" {
		t.Fatalf("unexpected url %q", resp.URL)
	}
	if resp.FileName != "resume.pdf" {
		t.Fatalf("unexpected file name %q", resp.FileName)
	}
}

func TestDeleteCVSoftDeletesRow(t *testing.T) {
	h, db, _ := newCVTestEnv(t)

	cv := database.CV{CandidateID: 1, FileName: "resume.pdf", ObjectKey: "cvs/1/abc-resume.pdf"}
	if err := db.Create(&cv).Error; err != nil {
		t.Fatal(err)
	}

	c, w := newTestContext(t, http.MethodDelete, "/v1/candidates/1/cvs/1", nil)
	setParam(c, "id", "1")
	setParam(c, "cvID", "1")
	h.DeleteCV(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&database.CV{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatal("soft-deleted cv still visible")
	}
	var raw database.CV
	if err := db.Unscoped().First(&raw, cv.ID).Error; err != nil {
		t.Fatalf("unscoped load: %v", err)
	}
	if !raw.DeletedAt.Valid {
		t.Fatal("expected DeletedAt to be set")
	}
}
