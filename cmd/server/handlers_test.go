package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rhyrak/go-allocate/internal/allocator"
	"github.com/rhyrak/go-allocate/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	coursesCSV      = "name,semester,capacity\nC01,1,1\nC02,2,1\n"
	courseGroupsCSV = "course,group\nC01,Social\n"
	studentsCSV     = "name,year,ncourses,sem1limit,sem2limit,Social,C01,C02\ns1,Y4,1,1,1,False,2,1\ns2,Y3,1,1,1,,1,2\n"
)

func newTestServer(t *testing.T) (*server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := allocator.NewDefaultConfiguration()
	cfg.UploadDir = filepath.Join(dir, "uploads")
	require.NoError(t, os.MkdirAll(cfg.UploadDir, 0o755))
	cfg.Seed = 1

	runs, err := repository.Open(filepath.Join(dir, "allocations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = runs.Close() })

	srv := newServer(cfg, runs)
	r := gin.New()
	srv.routes(r)
	return srv, r
}

func multipartBody(t *testing.T, files map[string]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func post(t *testing.T, r *gin.Engine, files map[string]string, fields map[string]string) *httptest.ResponseRecorder {
	body, contentType := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, "/allocations", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func inputFiles() map[string]string {
	return map[string]string{
		"students":     studentsCSV,
		"courses":      coursesCSV,
		"coursegroups": courseGroupsCSV,
	}
}

func TestPostAllocation(t *testing.T) {
	srv, r := newTestServer(t)

	rec := post(t, r, inputFiles(), map[string]string{"seed": "42"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	srv.pending.Wait()

	uploads, err := os.ReadDir(srv.cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, uploads, "inputs are removed once loaded")

	rec = do(r, http.MethodGet, "/allocations/"+created.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var run repository.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, repository.StatusSuccess, run.Status)
	assert.Equal(t, "complete", run.Outcome)
	assert.Contains(t, run.Data, "s1,Y4,1,1,")
	assert.Contains(t, run.Report, "outcome: complete")
	assert.Contains(t, run.Report, "[  OK]")

	rec = do(r, http.MethodGet, "/allocations")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Allocations []repository.Run `json:"allocations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Allocations, 1)
	assert.Equal(t, created.ID, list.Allocations[0].ID)
	assert.Empty(t, list.Allocations[0].Data)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/allocations/"+created.ID).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/allocations/"+created.ID).Code)
}

func TestPostAllocationMalformedInput(t *testing.T) {
	srv, r := newTestServer(t)

	files := inputFiles()
	files["students"] = "name,year,ncourses,sem1limit,sem2limit,C01,C02\ns1,Y3,1,1,1,1,1\n"
	rec := post(t, r, files, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	srv.pending.Wait()

	rec = do(r, http.MethodGet, "/allocations/"+created.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var run repository.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, repository.StatusFailed, run.Status)
	assert.Contains(t, run.Report, "malformed input")
}

func TestPostAllocationRejectsBadRequests(t *testing.T) {
	_, r := newTestServer(t)

	files := inputFiles()
	delete(files, "coursegroups")
	assert.Equal(t, http.StatusBadRequest, post(t, r, files, nil).Code)

	assert.Equal(t, http.StatusBadRequest, post(t, r, inputFiles(), map[string]string{"seed": "x"}).Code)

	rec := do(r, http.MethodGet, "/allocations")
	var list struct {
		Allocations []repository.Run `json:"allocations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Allocations)
}

func TestDeleteAllocationRemovesUploads(t *testing.T) {
	srv, r := newTestServer(t)

	run, err := srv.runs.Create(context.Background())
	require.NoError(t, err)
	for _, field := range uploadFields {
		require.NoError(t, os.WriteFile(srv.uploadPath(run.ID, field), []byte("name\n"), 0o644))
	}

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/allocations/"+run.ID).Code)
	for _, field := range uploadFields {
		_, err := os.Stat(srv.uploadPath(run.ID, field))
		assert.True(t, errors.Is(err, os.ErrNotExist), field)
	}
}

func TestUnknownAllocation(t *testing.T) {
	_, r := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/allocations/missing").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/allocations/missing").Code)
}

func TestCORSPreflight(t *testing.T) {
	_, r := newTestServer(t)
	rec := do(r, http.MethodOptions, "/allocations")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
