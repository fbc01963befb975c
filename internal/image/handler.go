package image

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pixlock/service/internal/response"
)

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new image Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// List godoc
//
//	@Summary		List images
//	@Description	Returns every image, newest first, each with a signed delivery URL. signedUrl is null when URL generation failed; the image still exists.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]DeliverableView}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, views)
}

// GetBySlug godoc
//
//	@Summary		Get image by slug
//	@Description	Returns a single image with a signed delivery URL, regardless of visibility.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			slug	path		string	true	"Image slug"
//	@Success		200		{object}	response.Envelope{data=DeliverableView}
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/images/{slug} [get]
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "image not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, view)
}

// GetPublicBySlug godoc
//
//	@Summary		Get public image by slug
//	@Description	Anonymous access. Private images and unknown slugs are both reported as not found.
//	@Tags			public
//	@Produce		json
//	@Param			slug	path		string	true	"Image slug"
//	@Success		200		{object}	response.Envelope{data=DeliverableView}
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/public/images/{slug} [get]
func (h *Handler) GetPublicBySlug(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetPublicBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "image not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, view)
}

// Upload godoc
//
//	@Summary		Upload image
//	@Description	Multipart upload. The slug is derived from the title; a title that collides with an existing slug is rejected with 409.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file		formData	file	true	"Image file"
//	@Param			title		formData	string	true	"Title"
//	@Param			description	formData	string	false	"Description"
//	@Param			visibility	formData	string	false	"public, unlisted, or private"	default(public)
//	@Success		201	{object}	response.Envelope{data=Image}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/images [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		response.BadRequest(w, "invalid or oversized multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "could not read uploaded file")
		return
	}

	in := UploadInput{
		Title:       r.FormValue("title"),
		Visibility:  r.FormValue("visibility"),
		Filename:    header.Filename,
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}
	if desc := r.FormValue("description"); desc != "" {
		in.Description = &desc
	}

	img, err := h.svc.Upload(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrDuplicateSlug):
			response.Conflict(w, "an image with this slug already exists, choose a different title")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, img)
}

// Remove godoc
//
//	@Summary		Delete image
//	@Description	Removes the blob from object storage first, then the catalog record. A storage failure aborts the delete and can be retried.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Image ID"
//	@Success		204	"deleted"
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/images/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid image id")
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "image not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}
