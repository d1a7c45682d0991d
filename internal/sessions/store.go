// internal/sessions/store.go
package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"sizing-workers/internal/models"
	"sizing-workers/internal/sizing"

	"github.com/lib/pq"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Store persists measurement sessions in the measurement_sessions table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, session *models.MeasurementSession) error {
	measurements, err := json.Marshal(session.Measurements)
	if err != nil {
		return fmt.Errorf("encode measurements: %w", err)
	}

	matching := session.MatchingSizes
	if matching == nil {
		matching = []string{}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO measurement_sessions (
			id, user_id, product_id, product_slug, media_type, band_type,
			measurements, matching_sizes, recommended_size, recommended_length, created_at
		) VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11)`,
		session.ID,
		session.UserID,
		session.ProductID,
		session.ProductSlug,
		string(session.MediaType),
		string(session.BandType),
		measurements,
		pq.Array(matching),
		session.RecommendedSize,
		session.RecommendedLength,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert measurement session: %w", err)
	}
	return nil
}

// ListByUser returns a user's sessions, newest first. limit is clamped to
// [1, MaxListLimit]; zero means DefaultListLimit.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]models.MeasurementSession, error) {
	limit = ClampLimit(limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(product_id, ''), product_slug, media_type, COALESCE(band_type, ''),
			measurements, matching_sizes, COALESCE(recommended_size, ''), COALESCE(recommended_length, ''), created_at
		FROM measurement_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query measurement sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.MeasurementSession, 0, limit)
	for rows.Next() {
		var (
			ms           models.MeasurementSession
			media, band  string
			measurements []byte
			matching     []string
		)
		if err := rows.Scan(
			&ms.ID, &ms.UserID, &ms.ProductID, &ms.ProductSlug, &media, &band,
			&measurements, pq.Array(&matching), &ms.RecommendedSize, &ms.RecommendedLength, &ms.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan measurement session: %w", err)
		}
		if err := json.Unmarshal(measurements, &ms.Measurements); err != nil {
			return nil, fmt.Errorf("decode measurements of session %s: %w", ms.ID, err)
		}
		ms.MediaType = sizing.MediaType(media)
		ms.BandType = sizing.BandType(band)
		if matching == nil {
			matching = []string{}
		}
		ms.MatchingSizes = matching
		sessions = append(sessions, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurement sessions: %w", err)
	}
	return sessions, nil
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
