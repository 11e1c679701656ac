package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
)

type stubRow struct{ err error }

func (r stubRow) Scan(...any) error { return r.err }

type stubQuerier struct {
	execErr  error
	rowErr   error
	execSQL  string
	execArgs []any
}

func (q *stubQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (q *stubQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return stubRow{err: q.rowErr}
}

func (q *stubQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execSQL = sql
	q.execArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), q.execErr
}

func TestNewPredictionRepository(t *testing.T) {
	t.Run("creates repository with nil querier", func(t *testing.T) {
		repo := NewPredictionRepository(nil)
		assert.NotNil(t, repo)
		assert.Nil(t, repo.db)
	})
}

func TestPredictionRepository_Save(t *testing.T) {
	p, err := model.NewCostPrediction(
		model.Applicant{Sex: "female", Smoker: "yes", Region: "southwest", Age: 19, BMI: 27.9},
		16884.924, "v1",
	)
	require.NoError(t, err)

	q := &stubQuerier{}
	require.NoError(t, NewPredictionRepository(q).Save(context.Background(), p))

	assert.Contains(t, q.execSQL, "INSERT INTO predictions")
	require.Len(t, q.execArgs, 11)
	assert.Equal(t, p.ID(), q.execArgs[0])
	assert.Equal(t, "southwest", q.execArgs[6])
	assert.Equal(t, p.Cost(), q.execArgs[7])
	assert.Equal(t, 16884.924, q.execArgs[8])

	q.execErr = errors.New("relation does not exist")
	err = NewPredictionRepository(q).Save(context.Background(), p)
	assert.ErrorContains(t, err, "failed to save prediction")
}

func TestPredictionRepository_FindByID_NotFound(t *testing.T) {
	repo := NewPredictionRepository(&stubQuerier{rowErr: pgx.ErrNoRows})

	p, err := repo.FindByID(context.Background(), uuid.New())
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, model.ErrPredictionNotFound))
}

func TestPredictionRepository_FindByID_ScanError(t *testing.T) {
	repo := NewPredictionRepository(&stubQuerier{rowErr: errors.New("conn closed")})

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.False(t, errors.Is(err, model.ErrPredictionNotFound))
	assert.Contains(t, err.Error(), "failed to scan prediction")
}
