package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
	"github.com/vsconnecto/vsconnecto-api/pkg/metrics"
)

const userColumns = `
	id::text, full_name, email, role, phone, city, area, bio, profile_picture, provider_type,
	services, skills, experience, hourly_rate, availability, documents, preferences,
	address, landmark, pincode, profile_completed, rating::float8, completed_jobs, is_active,
	created_at, updated_at`

// UserRepository handles user profile data access
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool: pool,
	}
}

// GetByID fetches a single user. Returns an error wrapping ErrNotFound if there is no such user.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	start := time.Now()
	operation := "getUserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("user")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return user, nil
}

// UpdateProfile applies the non-nil fields of req and returns the stored profile.
// An empty, non-nil list clears the column.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.User, error) {
	start := time.Now()
	operation := "updateUserProfile"

	query := `
		UPDATE users SET
			phone             = COALESCE($2, phone),
			city              = COALESCE($3, city),
			area              = COALESCE($4, area),
			bio               = COALESCE($5, bio),
			profile_picture   = COALESCE($6, profile_picture),
			provider_type     = COALESCE($7, provider_type),
			services          = COALESCE($8::text[], services),
			skills            = COALESCE($9::text[], skills),
			experience        = COALESCE($10, experience),
			hourly_rate       = COALESCE($11, hourly_rate),
			availability      = COALESCE($12::text[], availability),
			documents         = COALESCE($13::jsonb, documents),
			preferences       = COALESCE($14::jsonb, preferences),
			address           = COALESCE($15, address),
			landmark          = COALESCE($16, landmark),
			pincode           = COALESCE($17, pincode),
			profile_completed = COALESCE($18, profile_completed)
		WHERE id = $1
		RETURNING ` + userColumns

	var providerType *string
	if req.ProviderType != nil {
		pt := string(*req.ProviderType)
		providerType = &pt
	}

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		id,
		req.Phone, req.City, req.Area, req.Bio, req.ProfilePicture, providerType,
		req.Services, req.Skills, req.Experience, req.HourlyRate, req.Availability,
		req.Documents, req.Preferences,
		req.Address, req.Landmark, req.Pincode,
		req.ProfileCompleted,
	))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("user")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.String("user_id", id))
	return user, nil
}

// ListActiveProviders returns every provider that can appear in search
func (r *UserRepository) ListActiveProviders(ctx context.Context) ([]*models.User, error) {
	start := time.Now()
	operation := "listActiveProviders"

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE role = 'provider' AND is_active AND profile_completed
		ORDER BY rating DESC, completed_jobs DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
			return nil, fmt.Errorf("failed to scan provider row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("error iterating provider rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.Int("count", len(users)))

	return users, nil
}

// Ping checks if the database connection is alive
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u            models.User
		role         string
		providerType string
	)

	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &role, &u.Phone, &u.City, &u.Area, &u.Bio, &u.ProfilePicture, &providerType,
		&u.Services, &u.Skills, &u.Experience, &u.HourlyRate, &u.Availability, &u.Documents, &u.Preferences,
		&u.Address, &u.Landmark, &u.Pincode, &u.ProfileCompleted, &u.Rating, &u.CompletedJobs, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Role = models.Role(role)
	u.ProviderType = models.ProviderType(providerType)
	return &u, nil
}

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.DBClientOperationDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.DBClientOperationTotal.WithLabelValues(operation, status).Inc()
}
