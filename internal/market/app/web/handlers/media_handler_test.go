package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surplusmarket_api/internal/market/storage"
)

// stubFiles serves uploads from memory, optionally failing them.
type stubFiles struct {
	base string
	err  error
}

func (f *stubFiles) UploadImage(_ context.Context, ownerID, filename string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	return f.base + "/" + ownerID + "/" + filename, nil
}

func imageUpload(t *testing.T, f *fixture, token, field, filename string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadRequiresSession(t *testing.T) {
	f := newFixture(t, fixtureConfig{files: &stubFiles{base: "https://files.test"}})

	rec := imageUpload(t, f, "", "image", "beams.jpg")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadReturnsBucketURL(t *testing.T) {
	f := newFixture(t, fixtureConfig{files: &stubFiles{base: "https://files.test"}})

	rec := imageUpload(t, f, sellerToken(t), "image", "beams.jpg")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "https://files.test/seller-1/beams.jpg", resp["url"])
}

func TestUploadFailureDegradesToNoImage(t *testing.T) {
	f := newFixture(t, fixtureConfig{files: &stubFiles{err: &storage.StorageError{Op: "upload", Err: io.ErrUnexpectedEOF}}})

	rec := imageUpload(t, f, sellerToken(t), "image", "beams.jpg")
	require.Equal(t, http.StatusOK, rec.Code, "a listing without a photo beats no listing")

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Empty(t, resp["url"])
}

func TestUploadRequiresImageField(t *testing.T) {
	f := newFixture(t, fixtureConfig{files: &stubFiles{base: "https://files.test"}})

	rec := imageUpload(t, f, sellerToken(t), "attachment", "beams.jpg")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
