package persistence_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/supplyload-go/internal/adapters/persistence"
	"github.com/andrescamacho/supplyload-go/internal/domain/shared"
	"github.com/andrescamacho/supplyload-go/test/helpers"
)

func TestLoadingEventRepository_LogAndGetEvents(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Time{})
	repo := persistence.NewGormLoadingEventRepository(db, clock)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Log(ctx, "load-rover-1-abc", "Rover-1", "[Loading] Session started", "INFO", nil))
	clock.Advance(time.Second)
	require.NoError(t, repo.Log(ctx, "load-rover-1-abc", "Rover-1", "[Loading] Shortage of water", "WARN", map[string]interface{}{
		"resource": "water",
		"amount":   12.5,
	}))

	// Assert
	events, err := repo.GetEvents(ctx, "load-rover-1-abc", 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first
	assert.Equal(t, "[Loading] Shortage of water", events[0].Message)
	assert.Equal(t, "WARN", events[0].Level)
	assert.Equal(t, "Rover-1", events[0].Vehicle)
	assert.Equal(t, "water", events[0].Metadata["resource"])
	assert.Equal(t, 12.5, events[0].Metadata["amount"])
	assert.Nil(t, events[1].Metadata)
}

func TestLoadingEventRepository_DeduplicatesWithinWindow(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Time{})
	repo := persistence.NewGormLoadingEventRepository(db, clock)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Log(ctx, "s1", "Rover-1", "[Loading] Hold full", "INFO", nil))
	clock.Advance(30 * time.Second)
	require.NoError(t, repo.Log(ctx, "s1", "Rover-1", "[Loading] Hold full", "INFO", nil))
	require.NoError(t, repo.Log(ctx, "s2", "Rover-2", "[Loading] Hold full", "INFO", nil))
	clock.Advance(31 * time.Second)
	require.NoError(t, repo.Log(ctx, "s1", "Rover-1", "[Loading] Hold full", "INFO", nil))

	// Assert
	s1, err := repo.GetEvents(ctx, "s1", 0, nil, nil)
	require.NoError(t, err)
	assert.Len(t, s1, 2, "repeat inside 60s is dropped, repeat after it is kept")

	s2, err := repo.GetEvents(ctx, "s2", 0, nil, nil)
	require.NoError(t, err)
	assert.Len(t, s2, 1, "deduplication is per session")
}

func TestLoadingEventRepository_Filters(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Time{})
	repo := persistence.NewGormLoadingEventRepository(db, clock)
	ctx := context.Background()

	start := clock.Now()
	for i, level := range []string{"INFO", "WARN", "WARN", "ERROR"} {
		clock.Advance(time.Second)
		message := []string{"a", "b", "c", "d"}[i]
		require.NoError(t, repo.Log(ctx, "s1", "Rover-1", message, level, nil))
	}

	// Act
	warn := "WARN"
	warnings, err := repo.GetEvents(ctx, "s1", 0, &warn, nil)
	require.NoError(t, err)

	since := start.Add(2 * time.Second)
	recent, err := repo.GetEvents(ctx, "s1", 0, nil, &since)
	require.NoError(t, err)

	limited, err := repo.GetEvents(ctx, "s1", 1, nil, nil)
	require.NoError(t, err)

	// Assert
	assert.Len(t, warnings, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "d", recent[0].Message)
	assert.Equal(t, "c", recent[1].Message)
	require.Len(t, limited, 1)
	assert.Equal(t, "d", limited[0].Message)
}

func TestEventLogger_PersistsUnderSession(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormLoadingEventRepository(db, shared.NewMockClock(time.Time{}))
	logger := persistence.NewEventLogger(repo, "load-rover-1-abc", "Rover-1")

	// Act
	logger.Log("ERROR", "[Loading] Transfer failed", map[string]interface{}{"vehicle": "Rover-1"})

	// Assert
	events, err := repo.GetEvents(context.Background(), "load-rover-1-abc", 0, nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ERROR", events[0].Level)
	assert.Equal(t, "Rover-1", events[0].Metadata["vehicle"])
}

func TestEventLogger_ReportsWriteFailures(t *testing.T) {
	// Arrange
	repo := helpers.NewMockLoadingEventRepository()
	repo.LogErr = errors.New("disk full")
	var errOut bytes.Buffer
	logger := persistence.NewEventLogger(repo, "s1", "Rover-1").WithErrorOutput(&errOut)

	// Act
	logger.Log("INFO", "[Loading] Session started", nil)

	// Assert
	assert.Contains(t, errOut.String(), "disk full")
	assert.Contains(t, errOut.String(), "s1")
}

func TestEventLogger_ForwardsEveryLevel(t *testing.T) {
	// Arrange
	repo := helpers.NewMockLoadingEventRepository()
	var errOut bytes.Buffer
	logger := persistence.NewEventLogger(repo, "s1", "Rover-1").WithErrorOutput(&errOut)

	// Act
	logger.Log("INFO", "[Loading] Session started", nil)
	logger.Log("WARN", "[Loading] Shortage of water", map[string]interface{}{"resource": "water"})

	// Assert
	assert.ElementsMatch(t, []string{"[Loading] Session started", "[Loading] Shortage of water"}, repo.Messages())
	assert.Empty(t, errOut.String())
}
