// Package image manages the image catalog: records in Postgres, blobs in
// object storage, and time-limited signed delivery URLs.
package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Image is a cataloged image record. StorageKey locates the backing blob in
// the object store and is never the same thing as the slug.
type Image struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	StorageKey  string     `json:"storageKey"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ErrNotFound is returned when no image matches the given id or slug.
var ErrNotFound = errors.New("image not found")

// ErrDuplicateSlug is returned when another image already owns the slug,
// whether caught by the pre-insert check or by the unique index.
var ErrDuplicateSlug = errors.New("slug already exists")

// Repository handles all image table operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const imageColumns = `id, title, slug, description, storage_key, visibility, created_at, updated_at`

func scanImage(row pgx.Row) (*Image, error) {
	img := &Image{}
	err := row.Scan(&img.ID, &img.Title, &img.Slug, &img.Description,
		&img.StorageKey, &img.Visibility, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Insert persists a new image record and returns it. A unique violation on
// the slug index is reported as ErrDuplicateSlug so that racing creates and
// the pre-insert check surface the same error kind.
func (r *Repository) Insert(ctx context.Context, title, slug string, description *string, storageKey string, visibility Visibility) (*Image, error) {
	img, err := scanImage(r.db.QueryRow(ctx,
		`INSERT INTO images (title, slug, description, storage_key, visibility)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+imageColumns,
		title, slug, description, storageKey, visibility,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("insert image: %w", err)
	}
	return img, nil
}

// GetByID fetches an image by its surrogate id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Image, error) {
	img, err := scanImage(r.db.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM images WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image by id: %w", err)
	}
	return img, nil
}

// GetBySlug fetches an image by its public slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Image, error) {
	img, err := scanImage(r.db.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM images WHERE slug = $1`, slug,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image by slug: %w", err)
	}
	return img, nil
}

// SlugExists reports whether any image already owns the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM images WHERE slug = $1)`, slug,
	).Scan(&exists)
	return exists, err
}

// List returns all images ordered most-recently-created first.
func (r *Repository) List(ctx context.Context) ([]Image, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+imageColumns+` FROM images ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		images = append(images, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// DeleteByID removes the image record. ErrNotFound is returned when the row
// vanished between lookup and delete.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
