package image

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixlock/service/internal/response"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	svc, _, _ := newTestService()
	h := NewHandler(svc, 8<<20)

	r := chi.NewRouter()
	r.Get("/public/images/{slug}", h.GetPublicBySlug)
	r.Get("/images", h.List)
	r.Post("/images", h.Upload)
	r.Get("/images/{slug}", h.GetBySlug)
	r.Delete("/images/{id}", h.Remove)
	return r, svc
}

func multipartUpload(t *testing.T, title, visibility string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("title", title))
	if visibility != "" {
		require.NoError(t, mw.WriteField("visibility", visibility))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "Beach Day", "")
	req := httptest.NewRequest(http.MethodPost, "/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)

	data, _ := env.Data.(map[string]interface{})
	require.NotNil(t, data)
	assert.Equal(t, "beach-day", data["slug"])
	assert.Equal(t, "public", data["visibility"])
}

func TestUploadEndpointDuplicateSlug(t *testing.T) {
	router, _ := newTestRouter(t)

	for i, wantStatus := range []int{http.StatusCreated, http.StatusConflict} {
		body, contentType := multipartUpload(t, "Beach Day", "")
		req := httptest.NewRequest(http.MethodPost, "/images", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, wantStatus, rec.Code, "attempt %d", i+1)
	}
}

func TestUploadEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "!!!", "")
	req := httptest.NewRequest(http.MethodPost, "/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicEndpointOpacity(t *testing.T) {
	router, svc := newTestRouter(t)
	_, err := svc.Upload(context.Background(), UploadInput{
		Title:      "Secret",
		Visibility: "private",
		Data:       []byte("x"),
	})
	require.NoError(t, err)

	// Private and nonexistent slugs produce byte-identical outcomes.
	var bodies []string
	for _, slug := range []string{"secret", "never-existed"} {
		req := httptest.NewRequest(http.MethodGet, "/public/images/"+slug, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
}

func TestPublicEndpointServesUnlisted(t *testing.T) {
	router, svc := newTestRouter(t)
	_, err := svc.Upload(context.Background(), UploadInput{
		Title:      "Hidden Gem",
		Visibility: "unlisted",
		Data:       []byte("x"),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/public/images/hidden-gem", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	data, _ := env.Data.(map[string]interface{})
	require.NotNil(t, data)
	assert.NotEmpty(t, data["signedUrl"])
}

func TestRemoveEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	img, err := svc.Upload(context.Background(), UploadInput{
		Title: "Short Lived",
		Data:  []byte("x"),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/images/not-a-number", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/images/9999", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/images/1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = svc.GetBySlug(context.Background(), img.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	for _, title := range []string{"One", "Two"} {
		_, err := svc.Upload(context.Background(), UploadInput{
			Title:      title,
			Visibility: "private",
			Data:       []byte("x"),
		})
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool              `json:"success"`
		Data    []DeliverableView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, "two", env.Data[0].Slug)
	assert.Equal(t, "one", env.Data[1].Slug)
}

// Guard against accidental TTL regressions in the resolver wiring.
func TestResolverDefaultTTL(t *testing.T) {
	objects := newFakeObjects()
	r := NewResolver(objects, 0)
	assert.Equal(t, time.Hour, r.ttl)
}
