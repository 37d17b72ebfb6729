package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// MediaRepository persists uploaded media metadata.
type MediaRepository interface {
	Create(ctx context.Context, media *domain.MediaFile) error
	ListByListing(ctx context.Context, listingID int64) ([]domain.MediaFile, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.MediaFile, error)
}

type mediaRepository struct {
	pool *pgxpool.Pool
}

// NewMediaRepository constructs repository.
func NewMediaRepository(pool *pgxpool.Pool) MediaRepository {
	return &mediaRepository{pool: pool}
}

func (r *mediaRepository) Create(ctx context.Context, media *domain.MediaFile) error {
	const query = `
        INSERT INTO media_files (filename, blob_url, listing_id, user_id, file_type)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING media_id, upload_date`
	return mapError(r.pool.QueryRow(ctx, query,
		media.FileName,
		media.BlobURL,
		media.ListingID,
		media.UserID,
		media.FileType,
	).Scan(&media.ID, &media.UploadedAt))
}

func (r *mediaRepository) ListByListing(ctx context.Context, listingID int64) ([]domain.MediaFile, error) {
	const query = `
        SELECT media_id, filename, blob_url, listing_id, user_id, file_type, upload_date
        FROM media_files WHERE listing_id=$1 ORDER BY media_id`
	return r.list(ctx, query, listingID)
}

func (r *mediaRepository) ListByUser(ctx context.Context, userID int64) ([]domain.MediaFile, error) {
	const query = `
        SELECT media_id, filename, blob_url, listing_id, user_id, file_type, upload_date
        FROM media_files WHERE user_id=$1 ORDER BY media_id`
	return r.list(ctx, query, userID)
}

func (r *mediaRepository) list(ctx context.Context, query string, arg any) ([]domain.MediaFile, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.MediaFile
	for rows.Next() {
		var media domain.MediaFile
		if err := rows.Scan(
			&media.ID,
			&media.FileName,
			&media.BlobURL,
			&media.ListingID,
			&media.UserID,
			&media.FileType,
			&media.UploadedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, media)
	}
	return result, rows.Err()
}
