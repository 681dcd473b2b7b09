package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/geo"
	"github.com/Akshaybondre123/First-Startup/pkg/database"
	apperrors "github.com/Akshaybondre123/First-Startup/pkg/errors"
)

const restaurantColumns = `id, slug, name, image, rating, rating_sum, review_count, price_range,
	cuisines, tags, features, address, description, lat, lng, verified,
	phone, email, website, operating_hours, created_at, updated_at`

// Mean Earth radius in km, kept in step with geo.EarthRadiusKm.
const haversineSQL = `6371 * 2 * atan2(sqrt(hv.h), sqrt(1 - hv.h))`

// RestaurantRepository implements repository.RestaurantRepository on
// PostgreSQL.
type RestaurantRepository struct {
	db database.DBTX
}

// NewRestaurantRepository creates a PostgreSQL-backed restaurant repository.
func NewRestaurantRepository(db database.DBTX) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// Create inserts a new restaurant.
func (r *RestaurantRepository) Create(ctx context.Context, rest *domain.Restaurant) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateRestaurant", insertRestaurantSQL)
	defer func() { end(err) }()

	return insertRestaurant(ctx, r.db, rest)
}

// CreateMany inserts every restaurant in one transaction. Nothing is written
// if any insert fails.
func (r *RestaurantRepository) CreateMany(ctx context.Context, rests []*domain.Restaurant) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateRestaurants", insertRestaurantSQL)
	defer func() { end(err) }()

	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, rest := range rests {
			if err := insertRestaurant(ctx, tx, rest); err != nil {
				return err
			}
		}
		return nil
	})
}

const insertRestaurantSQL = `
	INSERT INTO restaurants (` + restaurantColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

func insertRestaurant(ctx context.Context, db database.DBTX, rest *domain.Restaurant) error {
	rest.Normalize()
	hours, err := marshalHours(rest.OperatingHours)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, insertRestaurantSQL,
		rest.ID,
		rest.Slug,
		rest.Name,
		rest.Image,
		rest.Rating,
		rest.RatingSum,
		rest.ReviewCount,
		string(rest.PriceRange),
		rest.Cuisines,
		rest.Tags,
		rest.Features,
		rest.Address,
		rest.Description,
		rest.Location.Lat(),
		rest.Location.Lng(),
		rest.Verified,
		rest.Phone,
		rest.Email,
		rest.Website,
		hours,
		rest.CreatedAt,
		rest.UpdatedAt,
	)
	if err != nil {
		if database.IsPgCode(err, database.CodeUniqueViolation) {
			return apperrors.AlreadyExists("restaurant", "slug", rest.Slug)
		}
		return fmt.Errorf("insert restaurant: %w", err)
	}
	return nil
}

// GetByID retrieves a restaurant by its UUID.
func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	return r.getOne(ctx, "GetRestaurantByID", `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
}

// GetBySlug retrieves a restaurant by its slug.
func (r *RestaurantRepository) GetBySlug(ctx context.Context, slug string) (*domain.Restaurant, error) {
	return r.getOne(ctx, "GetRestaurantBySlug", `SELECT `+restaurantColumns+` FROM restaurants WHERE slug = $1`, slug)
}

func (r *RestaurantRepository) getOne(ctx context.Context, op, stmt, arg string) (rest *domain.Restaurant, err error) {
	ctx, end := database.TraceQuery(ctx, op, stmt)
	defer func() { end(err) }()

	rest, err = scanRestaurant(r.db.QueryRow(ctx, stmt, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Restaurant", "")
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return rest, nil
}

// Discover runs a discovery query. With a location it prefilters on the
// bounding box, computes the Haversine distance in SQL, and orders by it.
// Without one it orders by rating then verified.
func (r *RestaurantRepository) Discover(ctx context.Context, q *domain.DiscoveryQuery) (_ []domain.Restaurant, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if len(q.Tags) > 0 {
		conditions = append(conditions, fmt.Sprintf("tags && $%d", argIndex))
		args = append(args, q.Tags)
		argIndex++
	}

	if q.Verified {
		conditions = append(conditions, "verified")
	}

	if q.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`(name ILIKE $%[1]d
			OR address ILIKE $%[1]d
			OR description ILIKE $%[1]d
			OR EXISTS (SELECT 1 FROM unnest(cuisines) AS c WHERE c ILIKE $%[1]d)
			OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE $%[1]d))`, argIndex))
		args = append(args, "%"+escapeLike(q.Search)+"%")
		argIndex++
	}

	var stmt string
	if q.HasLocation() {
		lat, lng := *q.Lat, *q.Lng
		box := geo.BoundingBox(lat, lng, q.MaxDistanceMeters)

		conditions = append(conditions,
			fmt.Sprintf("lat BETWEEN $%d AND $%d", argIndex, argIndex+1),
			fmt.Sprintf("lng BETWEEN $%d AND $%d", argIndex+2, argIndex+3),
		)
		args = append(args, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
		argIndex += 4

		stmt = fmt.Sprintf(`
			SELECT %[1]s FROM (
				SELECT %[1]s, %[2]s AS distance_km
				FROM restaurants
				CROSS JOIN LATERAL (
					SELECT LEAST(1, power(sin(radians(lat - $%[3]d) / 2), 2)
						+ cos(radians($%[3]d)) * cos(radians(lat)) * power(sin(radians(lng - $%[4]d) / 2), 2)) AS h
				) AS hv
				%[5]s
			) AS nearby
			WHERE distance_km <= $%[6]d
			ORDER BY distance_km, created_at
			LIMIT %[7]d`,
			restaurantColumns, haversineSQL, argIndex, argIndex+1,
			whereClause(conditions), argIndex+2, domain.MaxResults,
		)
		args = append(args, lat, lng, q.MaxDistanceMeters/1000)
	} else {
		stmt = fmt.Sprintf(`SELECT %s FROM restaurants %s ORDER BY rating DESC, verified DESC, created_at LIMIT %d`,
			restaurantColumns, whereClause(conditions), domain.MaxResults)
	}

	ctx, end := database.TraceQuery(ctx, "DiscoverRestaurants", stmt)
	defer func() { end(err) }()

	return r.queryMany(ctx, stmt, args...)
}

// ListAll returns every restaurant, oldest first.
func (r *RestaurantRepository) ListAll(ctx context.Context) (_ []domain.Restaurant, err error) {
	stmt := `SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY created_at, id`

	ctx, end := database.TraceQuery(ctx, "ListRestaurants", stmt)
	defer func() { end(err) }()

	return r.queryMany(ctx, stmt)
}

func (r *RestaurantRepository) queryMany(ctx context.Context, stmt string, args ...any) ([]domain.Restaurant, error) {
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	defer rows.Close()

	out := []domain.Restaurant{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restaurant row: %w", err)
		}
		out = append(out, *rest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant rows: %w", err)
	}
	return out, nil
}

const updateRestaurantSQL = `
	UPDATE restaurants
	SET name = $2, image = $3, price_range = $4, cuisines = $5, tags = $6, features = $7,
	    address = $8, description = $9, lat = $10, lng = $11, verified = $12,
	    phone = $13, email = $14, website = $15, operating_hours = $16, updated_at = $17
	WHERE id = $1`

// Update writes the editable fields of rest. rating, rating_sum and
// review_count are owned by the review path and never written here.
func (r *RestaurantRepository) Update(ctx context.Context, rest *domain.Restaurant) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateRestaurant", updateRestaurantSQL)
	defer func() { end(err) }()

	rest.Normalize()
	hours, err := marshalHours(rest.OperatingHours)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, updateRestaurantSQL,
		rest.ID,
		rest.Name,
		rest.Image,
		string(rest.PriceRange),
		rest.Cuisines,
		rest.Tags,
		rest.Features,
		rest.Address,
		rest.Description,
		rest.Location.Lat(),
		rest.Location.Lng(),
		rest.Verified,
		rest.Phone,
		rest.Email,
		rest.Website,
		hours,
		rest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update restaurant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Restaurant", "")
	}
	return nil
}

// Delete removes a restaurant. Its reviews go with it.
func (r *RestaurantRepository) Delete(ctx context.Context, id string) (err error) {
	const stmt = `DELETE FROM restaurants WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "DeleteRestaurant", stmt)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete restaurant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Restaurant", "")
	}
	return nil
}

// Count returns the number of restaurants.
func (r *RestaurantRepository) Count(ctx context.Context) (n int, err error) {
	const stmt = `SELECT count(*) FROM restaurants`
	ctx, end := database.TraceQuery(ctx, "CountRestaurants", stmt)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, stmt).Scan(&n); err != nil {
		return 0, fmt.Errorf("count restaurants: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(s scanner) (*domain.Restaurant, error) {
	var (
		rest     domain.Restaurant
		price    string
		lat, lng float64
		hours    []byte
	)
	if err := s.Scan(
		&rest.ID,
		&rest.Slug,
		&rest.Name,
		&rest.Image,
		&rest.Rating,
		&rest.RatingSum,
		&rest.ReviewCount,
		&price,
		&rest.Cuisines,
		&rest.Tags,
		&rest.Features,
		&rest.Address,
		&rest.Description,
		&lat,
		&lng,
		&rest.Verified,
		&rest.Phone,
		&rest.Email,
		&rest.Website,
		&hours,
		&rest.CreatedAt,
		&rest.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rest.PriceRange = domain.PriceTier(price)
	rest.Location = domain.NewPoint(lat, lng)
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &rest.OperatingHours); err != nil {
			return nil, fmt.Errorf("unmarshal operating hours: %w", err)
		}
	}
	rest.Normalize()
	return &rest, nil
}

func marshalHours(h domain.OperatingHours) ([]byte, error) {
	if len(h) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal operating hours: %w", err)
	}
	return b, nil
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
