package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/pkg/database"
	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
	"github.com/Akshaybondre123/First-Startup/pkg/pagination"
)

// ReviewRepository implements repository.ReviewRepository on PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const (
	insertReviewSQL = `
		INSERT INTO reviews (id, restaurant_id, user_name, user_email, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	// The UPDATE takes a row lock on the restaurant, so concurrent reviews
	// of the same restaurant fold in one at a time.
	foldRatingSQL = `
		UPDATE restaurants
		SET rating_sum   = rating_sum + $2,
		    review_count = review_count + 1,
		    rating       = round(((rating_sum + $2) / (review_count + 1))::numeric, 1),
		    updated_at   = $3
		WHERE id = $1
		RETURNING rating, review_count`
)

// CreateWithAggregate inserts rv and updates the parent restaurant's running
// rating in the same transaction.
func (r *ReviewRepository) CreateWithAggregate(ctx context.Context, rv *domain.Review) (agg domain.Aggregate, err error) {
	ctx, end := database.TraceQuery(ctx, "CreateReview", insertReviewSQL)
	defer func() { end(err) }()

	agg.RestaurantID = rv.RestaurantID
	err = database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertReviewSQL,
			rv.ID,
			rv.RestaurantID,
			rv.UserName,
			rv.UserEmail,
			rv.Rating,
			rv.Comment,
			rv.CreatedAt,
		); err != nil {
			if database.IsPgCode(err, database.CodeForeignKeyViolation) {
				return apperrors.NotFound("Restaurant", "")
			}
			return fmt.Errorf("insert review: %w", err)
		}

		if err := tx.QueryRow(ctx, foldRatingSQL, rv.RestaurantID, float64(rv.Rating), rv.CreatedAt).
			Scan(&agg.Rating, &agg.ReviewCount); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NotFound("Restaurant", "")
			}
			return fmt.Errorf("update rating aggregate: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Aggregate{}, err
	}
	return agg, nil
}

// ListByRestaurant returns a page of reviews for a restaurant, newest first,
// with the total count.
func (r *ReviewRepository) ListByRestaurant(ctx context.Context, restaurantID string, p pagination.Params) (_ []domain.Review, total int, err error) {
	const stmt = `
		SELECT id, restaurant_id, user_name, user_email, rating, comment, created_at,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE restaurant_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListReviews", stmt)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, stmt, restaurantID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.RestaurantID,
			&rv.UserName,
			&rv.UserEmail,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	// An offset past the end returns no rows and so no window count.
	if len(reviews) == 0 && p.Offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT count(*) FROM reviews WHERE restaurant_id = $1`, restaurantID).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count reviews: %w", err)
		}
	}
	return reviews, total, nil
}
