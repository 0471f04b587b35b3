package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangala-lk/backend/internal/domain/model"
)

const maxPhotosPerProfile = 10

type PhotoRepo struct {
	pool *pgxpool.Pool
}

// DeletedPhoto reports what a delete removed and which photo, if any, was
// promoted to main in its place.
type DeletedPhoto struct {
	Photo      model.Photo
	PromotedID int64
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

func MaxPhotosPerProfile() int {
	return maxPhotosPerProfile
}

const photoColumns = `id, profile_id, url, is_main, is_approved, original_name, size_bytes, mime_type, created_at`

// Create inserts one photo row. The per-profile cap and the first-photo
// main flag are decided while holding a lock on the profile row: locking
// the photo rows themselves is not enough, because a profile with no
// photos yet gives concurrent transactions nothing to collide on and both
// would insert a main photo.
func (r *PhotoRepo) Create(ctx context.Context, profileID int64, url, originalName string, sizeBytes int64, mimeType string) (model.Photo, error) {
	if r.pool == nil {
		return model.Photo{}, fmt.Errorf("postgres pool is nil")
	}

	var photo model.Photo
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		var lockedID int64
		err := tx.QueryRow(txCtx, `
SELECT id
FROM profiles
WHERE id = $1
FOR UPDATE
`, profileID).Scan(&lockedID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProfileNotFound
			}
			return fmt.Errorf("lock profile: %w", err)
		}

		var count int
		if err := tx.QueryRow(txCtx, `
SELECT COUNT(*)
FROM photos
WHERE profile_id = $1
`, profileID).Scan(&count); err != nil {
			return fmt.Errorf("count profile photos: %w", err)
		}

		if count >= maxPhotosPerProfile {
			return ErrPhotoLimitReached
		}

		row := tx.QueryRow(txCtx, `
INSERT INTO photos (profile_id, url, is_main, is_approved, original_name, size_bytes, mime_type, created_at)
VALUES ($1, $2, $3, false, $4, $5, $6, NOW())
RETURNING `+photoColumns, profileID, url, count == 0, originalName, sizeBytes, mimeType)

		p, err := scanPhoto(row)
		if err != nil {
			return fmt.Errorf("insert photo: %w", err)
		}
		photo = p
		return nil
	})
	if err != nil {
		return model.Photo{}, err
	}

	return photo, nil
}

func (r *PhotoRepo) Get(ctx context.Context, photoID int64) (model.Photo, error) {
	if r.pool == nil {
		return model.Photo{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+photoColumns+`
FROM photos
WHERE id = $1
`, photoID)

	photo, err := scanPhoto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Photo{}, ErrPhotoNotFound
		}
		return model.Photo{}, fmt.Errorf("get photo: %w", err)
	}

	return photo, nil
}

func (r *PhotoRepo) ListByProfile(ctx context.Context, profileID int64, approvedOnly bool) ([]model.Photo, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	query := `
SELECT ` + photoColumns + `
FROM photos
WHERE profile_id = $1
ORDER BY is_main DESC, created_at ASC, id ASC
`
	if approvedOnly {
		query = `
SELECT ` + photoColumns + `
FROM photos
WHERE profile_id = $1 AND is_approved
ORDER BY is_main DESC, created_at ASC, id ASC
`
	}

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list profile photos: %w", err)
	}
	defer rows.Close()

	photos := make([]model.Photo, 0)
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate photos: %w", rows.Err())
	}

	return photos, nil
}

func (r *PhotoRepo) CountByProfile(ctx context.Context, profileID int64) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM photos
WHERE profile_id = $1
`, profileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count profile photos: %w", err)
	}

	return count, nil
}

// SetMain clears the current main photo and flags the target in one
// transaction, so at most one main photo can exist per profile.
func (r *PhotoRepo) SetMain(ctx context.Context, profileID, photoID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	return WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(txCtx, `
UPDATE photos
SET is_main = false
WHERE profile_id = $1 AND is_main
`, profileID); err != nil {
			return fmt.Errorf("clear main photo: %w", err)
		}

		tag, err := tx.Exec(txCtx, `
UPDATE photos
SET is_main = true
WHERE id = $1 AND profile_id = $2
`, photoID, profileID)
		if err != nil {
			return fmt.Errorf("set main photo: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrPhotoNotFound
		}

		return nil
	})
}

// Delete removes the row and, when the deleted photo was main, promotes
// the oldest remaining photo of the same profile.
func (r *PhotoRepo) Delete(ctx context.Context, photoID int64) (DeletedPhoto, error) {
	if r.pool == nil {
		return DeletedPhoto{}, fmt.Errorf("postgres pool is nil")
	}

	var result DeletedPhoto
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(txCtx, `
DELETE FROM photos
WHERE id = $1
RETURNING `+photoColumns, photoID)

		photo, err := scanPhoto(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPhotoNotFound
			}
			return fmt.Errorf("delete photo: %w", err)
		}
		result.Photo = photo

		if !photo.IsMain {
			return nil
		}

		err = tx.QueryRow(txCtx, `
UPDATE photos
SET is_main = true
WHERE id = (
	SELECT id FROM photos
	WHERE profile_id = $1
	ORDER BY created_at ASC, id ASC
	LIMIT 1
)
RETURNING id
`, photo.ProfileID).Scan(&result.PromotedID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("promote replacement main photo: %w", err)
		}

		return nil
	})
	if err != nil {
		return DeletedPhoto{}, err
	}

	return result, nil
}

// SetApproved returns the updated photo so callers can notify the owner.
func (r *PhotoRepo) SetApproved(ctx context.Context, photoID int64) (model.Photo, error) {
	if r.pool == nil {
		return model.Photo{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE photos
SET is_approved = true
WHERE id = $1
RETURNING `+photoColumns, photoID)

	photo, err := scanPhoto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Photo{}, ErrPhotoNotFound
		}
		return model.Photo{}, fmt.Errorf("approve photo: %w", err)
	}

	return photo, nil
}

func scanPhoto(row pgx.Row) (model.Photo, error) {
	var p model.Photo
	err := row.Scan(
		&p.ID, &p.ProfileID, &p.URL, &p.IsMain, &p.IsApproved,
		&p.OriginalName, &p.SizeBytes, &p.MimeType, &p.CreatedAt,
	)
	return p, err
}
