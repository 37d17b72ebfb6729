package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ListingFilter captures listing search parameters.
type ListingFilter struct {
	Keyword  string
	SellerID *int64
	Limit    int
	Offset   int
}

// ListingRepository encapsulates listing persistence.
//
// Update and Delete take the owner the caller authorized against and only touch the row
// while it still belongs to that owner; otherwise they return domain.ErrResourceNotFound.
type ListingRepository interface {
	Create(ctx context.Context, sellerID int64, draft domain.ListingDraft) (*domain.Listing, error)
	FindByID(ctx context.Context, id int64) (*domain.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing, ownerID int64) error
	Delete(ctx context.Context, id, ownerID int64) error
}

type listingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository instantiates repository.
func NewListingRepository(pool *pgxpool.Pool) ListingRepository {
	return &listingRepository{pool: pool}
}

func (r *listingRepository) Create(ctx context.Context, sellerID int64, draft domain.ListingDraft) (*domain.Listing, error) {
	const query = `
        INSERT INTO listings (title, description, price, seller_id)
        VALUES ($1,$2,$3,$4)
        RETURNING listing_id, created_at`

	var listing domain.Listing
	if err := r.pool.QueryRow(ctx, query,
		draft.Title,
		draft.Description,
		draft.Price,
		sellerID,
	).Scan(&listing.ID, &listing.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return domain.NewListing(listing.ID, sellerID, draft, listing.CreatedAt), nil
}

func (r *listingRepository) FindByID(ctx context.Context, id int64) (*domain.Listing, error) {
	const query = `
        SELECT listing_id, title, description, price, seller_id, created_at, updated_at
        FROM listings WHERE listing_id=$1`

	var listing domain.Listing
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&listing.ID,
		&listing.Title,
		&listing.Description,
		&listing.Price,
		&listing.SellerID,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &listing, nil
}

func (r *listingRepository) List(ctx context.Context, filter ListingFilter) ([]domain.Listing, error) {
	const query = `
        SELECT listing_id, title, description, price, seller_id, created_at, updated_at
        FROM listings
        WHERE ($1::text = '' OR title ILIKE '%' || $1::text || '%' OR description ILIKE '%' || $1::text || '%')
          AND ($2::bigint IS NULL OR seller_id = $2::bigint)
        ORDER BY listing_id
        LIMIT $3 OFFSET $4`

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, query, escapeLike(filter.Keyword), filter.SellerID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Listing
	for rows.Next() {
		var listing domain.Listing
		if err := rows.Scan(
			&listing.ID,
			&listing.Title,
			&listing.Description,
			&listing.Price,
			&listing.SellerID,
			&listing.CreatedAt,
			&listing.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, listing)
	}
	return result, rows.Err()
}

func (r *listingRepository) Update(ctx context.Context, listing *domain.Listing, ownerID int64) error {
	const query = `
        UPDATE listings SET title=$1, description=$2, price=$3, updated_at=NOW()
        WHERE listing_id=$4 AND seller_id=$5
        RETURNING updated_at`

	return mapError(r.pool.QueryRow(ctx, query,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.ID,
		ownerID,
	).Scan(&listing.UpdatedAt))
}

func (r *listingRepository) Delete(ctx context.Context, id, ownerID int64) error {
	const query = `DELETE FROM listings WHERE listing_id=$1 AND seller_id=$2`

	cmd, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE metacharacters in user input match literally.
func escapeLike(keyword string) string {
	return likeEscaper.Replace(strings.TrimSpace(keyword))
}
