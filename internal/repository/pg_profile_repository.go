package repository

import (
	"context"
	"fmt"

	"parcel-notifier/internal/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ ProfileRepository = (*pgProfileRepository)(nil)

type pgProfileRepository struct {
	db     Querier
	query  string
	logger *zap.Logger
}

// NewPgProfileRepository создает репозиторий профилей поверх прямого подключения к PostgreSQL.
func NewPgProfileRepository(db Querier, table string, logger *zap.Logger) ProfileRepository {
	return &pgProfileRepository{
		db: db,
		// LIMIT 2: достаточно, чтобы отличить "ровно одну" строку от нескольких.
		query:  fmt.Sprintf(`SELECT fcm_token FROM %s WHERE id::text = $1 LIMIT 2`, pgx.Identifier{table}.Sanitize()),
		logger: logger.Named("PgProfileRepo"),
	}
}

func (r *pgProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	r.logger.Debug("Executing query", zap.String("query", r.query), zap.String("id", id))

	rows, err := r.db.Query(ctx, r.query, id)
	if err != nil {
		r.logger.Error("Failed to query profile", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	defer rows.Close()

	var (
		profile *models.Profile
		count   int
	)
	for rows.Next() {
		count++
		var token *string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profile = &models.Profile{FCMToken: token}
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate profile rows", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if count != 1 {
		r.logger.Warn("Expected exactly one profile row", zap.String("id", id), zap.Int("rows", count))
		return nil, models.ErrMultipleOrNoRows
	}
	return profile, nil
}
