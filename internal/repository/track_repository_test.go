package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/tj/assert"
	_ "modernc.org/sqlite"

	"github.com/bebablub/flyover-backend-go/internal/database"
	"github.com/bebablub/flyover-backend-go/internal/models"
)

// newTestRepo opens a fresh in-memory database with the full schema.
// MaxOpenConns is pinned to one so every statement sees the same
// in-memory database.
func newTestRepo(t *testing.T) *TrackRepository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	assert.NoError(t, err)
	assert.NoError(t, database.RunMigrations(db))

	return NewTrackRepository(db)
}

func testTrack(id string, createdAt time.Time) *models.Track {
	return &models.Track{
		ID:         id,
		Name:       "morning ride",
		PointCount: 1200,
		CreatedAt:  createdAt,
		ModifiedAt: createdAt,
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC().Truncate(time.Second)

	assert.NoError(t, repo.Create(testTrack("t1", now)))

	got, err := repo.GetByID("t1")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "morning ride", got.Name)
	assert.Equal(t, 1200, got.PointCount)
}

func TestCreateWithAttributes(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC().Truncate(time.Second)

	err := repo.CreateWithAttributes(testTrack("t1", now), map[string]interface{}{
		AttrStats: models.Stats{TotalDistanceM: 100},
	})
	assert.NoError(t, err)

	var got models.Stats
	ok, err := repo.GetAttribute("t1", AttrStats, &got)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100.0, got.TotalDistanceM)
}

func TestCreateWithAttributesRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC().Truncate(time.Second)
	assert.NoError(t, repo.Create(testTrack("t1", now)))

	// Duplicate primary key fails the insert; nothing may survive.
	err := repo.CreateWithAttributes(testTrack("t1", now), map[string]interface{}{
		AttrStats: models.Stats{TotalDistanceM: 100},
	})
	assert.Error(t, err)

	has, err := repo.HasAttribute("t1", AttrStats)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestGetMissingTrack(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByID("nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Now().UTC().Truncate(time.Second)

	assert.NoError(t, repo.Create(testTrack("old", base.Add(-time.Hour))))
	assert.NoError(t, repo.Create(testTrack("new", base)))

	tracks, err := repo.List()
	assert.NoError(t, err)
	assert.Len(t, tracks, 2)
	assert.Equal(t, "new", tracks[0].ID)
	assert.Equal(t, "old", tracks[1].ID)
}

func TestAttributeRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Create(testTrack("t1", time.Now().UTC())))

	min, max := 410.0, 980.0
	stats := models.Stats{
		TotalDistanceM: 42195,
		MovingTimeS:    7200,
		ElevationGainM: 550,
		MinElevationM:  &min,
		MaxElevationM:  &max,
	}
	assert.NoError(t, repo.SetAttribute("t1", AttrStats, stats))

	var got models.Stats
	ok, err := repo.GetAttribute("t1", AttrStats, &got)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, stats.TotalDistanceM, got.TotalDistanceM)
	assert.NotNil(t, got.MinElevationM)
	assert.Equal(t, min, *got.MinElevationM)
}

func TestAttributeUpsert(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Create(testTrack("t1", time.Now().UTC())))

	assert.NoError(t, repo.SetAttribute("t1", AttrStats, models.Stats{TotalDistanceM: 1}))
	assert.NoError(t, repo.SetAttribute("t1", AttrStats, models.Stats{TotalDistanceM: 2}))

	var got models.Stats
	ok, err := repo.GetAttribute("t1", AttrStats, &got)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.0, got.TotalDistanceM)
}

func TestAttributeMissing(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Create(testTrack("t1", time.Now().UTC())))

	var got models.Stats
	ok, err := repo.GetAttribute("t1", AttrStats, &got)
	assert.NoError(t, err)
	assert.False(t, ok)

	has, err := repo.HasAttribute("t1", AttrStats)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestHasAndDeleteAttribute(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Create(testTrack("t1", time.Now().UTC())))
	assert.NoError(t, repo.SetAttribute("t1", AttrWeatherSummary, models.WeatherSummary{TotalPoints: 5}))

	has, err := repo.HasAttribute("t1", AttrWeatherSummary)
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, repo.DeleteAttribute("t1", AttrWeatherSummary))
	has, err = repo.HasAttribute("t1", AttrWeatherSummary)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestDeleteCascadesAttributes(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Create(testTrack("t1", time.Now().UTC())))
	assert.NoError(t, repo.SetAttribute("t1", AttrStats, models.Stats{TotalDistanceM: 1}))

	assert.NoError(t, repo.Delete("t1"))

	got, err := repo.GetByID("t1")
	assert.NoError(t, err)
	assert.Nil(t, got)

	has, err := repo.HasAttribute("t1", AttrStats)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestUpdateName(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Create(testTrack("t1", time.Now().UTC())))

	assert.NoError(t, repo.UpdateName("t1", "evening ride"))

	got, err := repo.GetByID("t1")
	assert.NoError(t, err)
	assert.Equal(t, "evening ride", got.Name)
}

func TestTouchBumpsModifiedAt(t *testing.T) {
	repo := newTestRepo(t)
	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	assert.NoError(t, repo.Create(testTrack("t1", created)))

	assert.NoError(t, repo.Touch("t1"))

	got, err := repo.GetByID("t1")
	assert.NoError(t, err)
	assert.True(t, got.ModifiedAt.After(created))
}
