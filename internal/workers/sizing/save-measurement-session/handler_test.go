// internal/workers/sizing/save-measurement-session/handler_test.go
package savemeasurementsession

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sizing-workers/internal/catalog"
	apperrors "sizing-workers/internal/common/errors"
	"sizing-workers/internal/common/logger"
	"sizing-workers/internal/models"
	"sizing-workers/internal/sessions"
	"sizing-workers/internal/sizing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	session := payload.(*models.MeasurementSession)
	p.events = append(p.events, eventType+":"+session.ProductSlug)
	return p.err
}

func createTestHandler(t *testing.T, db *sql.DB) *Handler {
	return createTestHandlerWithEvents(t, db, nil)
}

func createTestHandlerWithEvents(t *testing.T, db *sql.DB, events EventPublisher) *Handler {
	t.Helper()
	provider, err := catalog.NewFixtureProvider(filepath.Join("..", "..", "..", "..", "configs", "fixtures"))
	require.NoError(t, err)

	h := NewHandler(&Config{Timeout: 5 * time.Second}, provider, sessions.NewStore(db), events, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h
}

func createInput() *Input {
	return &Input{
		UserID:            "user-1",
		ProductSlug:       "comfort",
		MediaType:         sizing.MediaTypeAG,
		BandType:          sizing.BandWide,
		Measurements:      sizing.MeasurementInput{CB: sizing.Float(20), CG: sizing.Float(55), Length: sizing.Float(100)},
		MatchingSizes:     []string{"I", "II"},
		RecommendedSize:   "I",
		RecommendedLength: "Normal",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO measurement_sessions`).
		WithArgs(
			sqlmock.AnyArg(), "user-1", "prod-comfort", "comfort", "AG", "ancha",
			[]byte(`{"cB":20,"cG":55,"length":100}`), sqlmock.AnyArg(), "I", "Normal", fixedNow,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := createTestHandler(t, db).Execute(context.Background(), createInput())

	require.NoError(t, err)
	_, parseErr := uuid.Parse(output.SessionID)
	assert.NoError(t, parseErr)
	assert.Equal(t, "2026-10-19T09:30:00Z", output.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_WithoutRecommendation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO measurement_sessions`).
		WithArgs(
			sqlmock.AnyArg(), "user-2", "prod-mondi", "mondi", "AD", "",
			[]byte(`{"cB":40}`), sqlmock.AnyArg(), "", "", fixedNow,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	input := &Input{
		UserID:       "user-2",
		ProductSlug:  "mondi",
		MediaType:    sizing.MediaTypeAD,
		Measurements: sizing.MeasurementInput{CB: sizing.Float(40)},
	}
	_, err = createTestHandler(t, db).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PublishesEvent(t *testing.T) {
	tests := []struct {
		name       string
		publishErr error
	}{
		{name: "published"},
		{name: "publish failure does not fail the job", publishErr: errors.New("throttled")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			mock.ExpectExec(`INSERT INTO measurement_sessions`).WillReturnResult(sqlmock.NewResult(0, 1))

			events := &recordingPublisher{err: tt.publishErr}
			output, err := createTestHandlerWithEvents(t, db, events).Execute(context.Background(), createInput())

			require.NoError(t, err)
			assert.NotEmpty(t, output.SessionID)
			assert.Equal(t, []string{"measurement-session.saved:comfort"}, events.events)
		})
	}
}

func TestHandler_Execute_NoEventOnSaveFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(`INSERT INTO measurement_sessions`).WillReturnError(errors.New("disk full"))

	events := &recordingPublisher{}
	_, err = createTestHandlerWithEvents(t, db, events).Execute(context.Background(), createInput())

	assert.ErrorIs(t, err, ErrSessionSaveFailed)
	assert.Empty(t, events.events)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Input)
		setup    func(sqlmock.Sqlmock)
		wantErr  error
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "missing user",
			mutate:   func(in *Input) { in.UserID = "" },
			wantErr:  ErrInvalidInput,
			wantCode: apperrors.ErrCodeInvalidMeasurementInput,
		},
		{
			name:     "invalid media type",
			mutate:   func(in *Input) { in.MediaType = "XY" },
			wantErr:  ErrInvalidInput,
			wantCode: apperrors.ErrCodeInvalidMeasurementInput,
		},
		{
			name:     "unknown product",
			mutate:   func(in *Input) { in.ProductSlug = "mystery" },
			wantErr:  ErrProductNotFound,
			wantCode: apperrors.ErrCodeProductNotFound,
		},
		{
			name: "insert fails",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO measurement_sessions`).WillReturnError(errors.New("connection reset by peer"))
			},
			wantErr:  ErrSessionSaveFailed,
			wantCode: apperrors.ErrCodeSessionSaveFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			if tt.setup != nil {
				tt.setup(mock)
			}
			input := createInput()
			if tt.mutate != nil {
				tt.mutate(input)
			}

			output, err := createTestHandler(t, db).Execute(context.Background(), input)

			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, classify(input, err).Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
