package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pixlock/service/internal/storage"
)

// ErrInvalidInput is returned when an upload fails validation before any
// side effect happens.
var ErrInvalidInput = errors.New("invalid input")

// ErrStorageWrite is returned when uploading the blob to object storage fails.
var ErrStorageWrite = errors.New("storage write failed")

// ErrStorageDelete is returned when removing the blob fails. The catalog
// record is left untouched so the record/blob pair stays consistent and the
// delete can be retried.
var ErrStorageDelete = errors.New("storage delete failed")

// ErrRecordDelete is returned when the blob was removed but deleting the
// catalog record failed. This is the one state where a record points at a
// missing blob; it is surfaced distinctly so operators know to retry the
// database side rather than investigate storage.
var ErrRecordDelete = errors.New("record delete failed")

// Store is the catalog persistence surface the service depends on.
// *Repository implements it against Postgres.
type Store interface {
	Insert(ctx context.Context, title, slug string, description *string, storageKey string, visibility Visibility) (*Image, error)
	GetByID(ctx context.Context, id int64) (*Image, error)
	GetBySlug(ctx context.Context, slug string) (*Image, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]Image, error)
	DeleteByID(ctx context.Context, id int64) error
}

// DeliverableView is an image record paired with a signed delivery URL,
// computed at read time and never persisted. SignedURL is nil only when URL
// generation failed; the record fields are still present.
type DeliverableView struct {
	Image
	SignedURL *string `json:"signedUrl"`
}

// UploadInput carries a validated-at-the-boundary upload request.
type UploadInput struct {
	Title       string
	Description *string
	Visibility  string
	Filename    string
	Data        []byte
	ContentType string
}

// Service owns the asset lifecycle: it is the only component that talks to
// both the catalog store and object storage, so the two can never diverge
// behind its back.
type Service struct {
	store   Store
	objects storage.ObjectStorage
	signer  *Resolver
}

// NewService creates a new asset Service.
func NewService(store Store, objects storage.ObjectStorage, signer *Resolver) *Service {
	return &Service{store: store, objects: objects, signer: signer}
}

// List returns every cataloged image, newest first, each paired with a
// signed delivery URL. Routing must only expose this to authenticated
// callers — anonymous listing does not exist.
func (s *Service) List(ctx context.Context) ([]DeliverableView, error) {
	images, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]DeliverableView, 0, len(images))
	for _, img := range images {
		views = append(views, s.view(ctx, img))
	}
	return views, nil
}

// GetBySlug returns the image with the given slug regardless of visibility.
// For authenticated callers only.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*DeliverableView, error) {
	img, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	v := s.view(ctx, *img)
	return &v, nil
}

// GetPublicBySlug resolves a slug for an anonymous caller. A private image
// and a missing slug both come back as ErrNotFound, so callers cannot probe
// which slugs exist.
func (s *Service) GetPublicBySlug(ctx context.Context, slug string) (*DeliverableView, error) {
	img, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !img.Visibility.ReadableBy(false) {
		return nil, ErrNotFound
	}
	v := s.view(ctx, *img)
	return &v, nil
}

// Upload stores the blob and then the catalog record, in that order, so a
// mid-operation failure can never leave a record without a blob. The reverse
// orphan (blob without record, after a duplicate slug or failed insert) is
// accepted and logged rather than auto-compensated.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Image, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	visibility, err := ParseVisibility(in.Visibility)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	slug := Slugify(title)
	if slug == "" {
		return nil, fmt.Errorf("%w: title %q yields an empty slug", ErrInvalidInput, in.Title)
	}

	key := newStorageKey(in.Filename)
	if err := s.objects.Put(ctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), in.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	// Cheap pre-check; a true race still lands on the unique index, which
	// surfaces the same ErrDuplicateSlug.
	exists, err := s.store.SlugExists(ctx, slug)
	if err != nil {
		s.logOrphan(key, slug, err)
		return nil, err
	}
	if exists {
		s.logOrphan(key, slug, ErrDuplicateSlug)
		return nil, ErrDuplicateSlug
	}

	img, err := s.store.Insert(ctx, title, slug, in.Description, key, visibility)
	if err != nil {
		s.logOrphan(key, slug, err)
		return nil, err
	}
	return img, nil
}

// Remove deletes an image: blob first, record second. A blob-delete failure
// aborts the whole operation leaving a consistent record/blob pair behind, so
// the call can simply be retried.
func (s *Service) Remove(ctx context.Context, id int64) error {
	img, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, img.StorageKey); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageDelete, err)
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			// A concurrent delete already removed the row; nothing dangles.
			return nil
		}
		return fmt.Errorf("%w: image %d still references removed blob %q: %v",
			ErrRecordDelete, id, img.StorageKey, err)
	}
	return nil
}

func (s *Service) view(ctx context.Context, img Image) DeliverableView {
	return DeliverableView{Image: img, SignedURL: s.signer.Resolve(ctx, img.StorageKey)}
}

// logOrphan records a blob that was written but never got a catalog record.
// There is no reconciliation sweep; the key in the log line is what an
// operator cleans up by hand.
func (s *Service) logOrphan(key, slug string, cause error) {
	log.Warn().Err(cause).Str("storage_key", key).Str("slug", slug).
		Msg("blob uploaded but record not created")
}

// newStorageKey generates a fresh opaque key, independent of both title and
// slug, preserving the uploaded file's extension.
func newStorageKey(filename string) string {
	return "images/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}
