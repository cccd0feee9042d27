package credits

import (
	"context"
	"testing"
	"time"

	"psicanalise/internal/provider"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCreditsMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func creditRows(total, used int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"client_id", "provider_id", "session_type", "total", "used", "updated_at"}).
		AddRow(2, 1, "video", total, used, time.Now())
}

func TestAddCreditsFreshOrder(t *testing.T) {
	repo, mock, close := setupCreditsMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO credit_orders").
		WithArgs("pix-123", 2, 1, provider.SessionVideo, 4).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("INSERT INTO session_credits").
		WithArgs(2, 1, provider.SessionVideo, 4).
		WillReturnRows(creditRows(4, 0))
	mock.ExpectCommit()

	credit, granted, err := repo.AddCredits(context.Background(), "pix-123", 2, 1, provider.SessionVideo, 4)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 4, credit.Total)
	assert.Equal(t, 4, credit.Available())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A replayed order inserts nothing into credit_orders, so the balance update
// never runs: the webhook can be retried safely.
func TestAddCreditsReplayGrantsNothing(t *testing.T) {
	repo, mock, close := setupCreditsMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO credit_orders").
		WithArgs("pix-123", 2, 1, provider.SessionVideo, 4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT client_id").
		WithArgs(2, 1, provider.SessionVideo).
		WillReturnRows(creditRows(4, 1))

	credit, granted, err := repo.AddCredits(context.Background(), "pix-123", 2, 1, provider.SessionVideo, 4)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, 4, credit.Total)
	assert.Equal(t, 3, credit.Available())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBalanceMissingRowIsZero(t *testing.T) {
	repo, mock, close := setupCreditsMock(t)
	defer close()

	mock.ExpectQuery("SELECT client_id").
		WithArgs(2, 1, provider.SessionChat).
		WillReturnRows(sqlmock.NewRows([]string{"client_id"}))

	credit, err := repo.GetBalance(context.Background(), 2, 1, provider.SessionChat)
	require.NoError(t, err)
	assert.Equal(t, 0, credit.Available())
	assert.Equal(t, provider.SessionChat, credit.SessionType)
}

func TestAvailableClampsAtZero(t *testing.T) {
	assert.Equal(t, 0, Credit{Total: 3, Used: 3}.Available())
	assert.Equal(t, 0, Credit{Total: 3, Used: 5}.Available())
	assert.Equal(t, 2, Credit{Total: 5, Used: 3}.Available())
}
