package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psicanalise/internal/appointment"
	"psicanalise/internal/availability"
	"psicanalise/internal/provider"
)

// End-to-end slot computation against the real database: rules, a block and a
// booked appointment all feed into one GetSlots call.
func TestGetSlotsEndToEnd(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	cleanDatabase(t, database)

	providerID := createTestProvider(t, database)
	clientID := createTestUser(t, database, "client@test.local", "Client", "client")
	grantCredits(t, database, clientID, providerID, 1, provider.SessionVideo)

	// Monday 09:00-12:00 for video sessions.
	addRule(t, database, providerID, 1, "09:00", "12:00", provider.SessionVideo)

	loc := saoPauloLoc(t)
	day := nextMonday()
	dayStr := day.Format("2006-01-02")

	at := func(hour, min int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, loc)
	}

	apptRepo := appointment.NewRepository(database)
	svc := availability.NewService(
		availability.NewRepository(database),
		provider.NewRepository(database),
		apptRepo,
		10, // step minutes
		24, // lead hours
	)

	slots, err := svc.GetSlots(context.Background(), providerID, dayStr, provider.SessionVideo)
	require.NoError(t, err)
	// 50-minute sessions every 10 minutes: 09:00 through 11:10.
	require.Len(t, slots, 14)
	assert.True(t, slots[0].Start.Equal(at(9, 0)))
	assert.True(t, slots[len(slots)-1].Start.Equal(at(11, 10)))

	// Booking 10:00-10:50 removes every candidate overlapping it.
	_, err = apptRepo.BookWithCredit(context.Background(), clientID, providerID, provider.SessionVideo, at(10, 0), at(10, 50))
	require.NoError(t, err)

	slots, err = svc.GetSlots(context.Background(), providerID, dayStr, provider.SessionVideo)
	require.NoError(t, err)
	for _, s := range slots {
		assert.False(t, s.Start.Before(at(10, 50)) && s.End.After(at(10, 0)),
			"slot %s overlaps the booked appointment", s.Start)
	}
	// 09:00 and 09:10 survive before the booking, 10:50-11:10 after.
	require.Len(t, slots, 5)
	assert.True(t, slots[0].Start.Equal(at(9, 0)))
	assert.True(t, slots[2].Start.Equal(at(10, 50)))

	// A block over the tail wipes the remaining afternoon candidates.
	_, err = database.Exec(`
		INSERT INTO availability_blocks (provider_id, start_at, end_at, reason)
		VALUES ($1, $2, $3, 'personal')
	`, providerID, at(10, 50), at(12, 0))
	require.NoError(t, err)

	slots, err = svc.GetSlots(context.Background(), providerID, dayStr, provider.SessionVideo)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Start.Equal(at(9, 0)))
	assert.True(t, slots[1].Start.Equal(at(9, 10)))
}

func TestGetSlotsNoRulesForDay(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	cleanDatabase(t, database)

	providerID := createTestProvider(t, database)
	// Rule on Tuesday only; we ask for Monday.
	addRule(t, database, providerID, 2, "09:00", "12:00", provider.SessionVideo)

	svc := availability.NewService(
		availability.NewRepository(database),
		provider.NewRepository(database),
		appointment.NewRepository(database),
		10, 24,
	)

	slots, err := svc.GetSlots(context.Background(), providerID, nextMonday().Format("2006-01-02"), provider.SessionVideo)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetSlotsSessionTypesIndependent(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	cleanDatabase(t, database)

	providerID := createTestProvider(t, database)
	addRule(t, database, providerID, 1, "09:00", "10:00", provider.SessionVideo)
	addRule(t, database, providerID, 1, "14:00", "15:00", provider.SessionChat)

	svc := availability.NewService(
		availability.NewRepository(database),
		provider.NewRepository(database),
		appointment.NewRepository(database),
		10, 24,
	)

	dayStr := nextMonday().Format("2006-01-02")

	video, err := svc.GetSlots(context.Background(), providerID, dayStr, provider.SessionVideo)
	require.NoError(t, err)
	// 50 minutes in a one-hour window: 09:00 and 09:10 only.
	assert.Len(t, video, 2)

	chat, err := svc.GetSlots(context.Background(), providerID, dayStr, provider.SessionChat)
	require.NoError(t, err)
	// 30 minutes in a one-hour window: 14:00 through 14:30.
	assert.Len(t, chat, 4)
	for _, s := range chat {
		assert.Equal(t, provider.SessionChat, s.SessionType)
	}
}
