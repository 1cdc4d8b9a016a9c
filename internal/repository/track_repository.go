package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bebablub/flyover-backend-go/internal/database"
	"github.com/bebablub/flyover-backend-go/internal/models"
)

// Attribute keys of the per-track key-value store. The pipeline reads
// and writes derived artifacts through this interface only.
const (
	AttrStats          = "stats"
	AttrSeries         = "series"
	AttrWeatherData    = "weather_features"
	AttrWeatherSummary = "weather_summary"
	AttrWindSeries     = "wind_series"
)

// TrackRepository handles database operations for tracks and their
// derived attributes.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// Create inserts a new track row.
func (r *TrackRepository) Create(track *models.Track) error {
	return insertTrack(r.db, track)
}

// CreateWithAttributes inserts a track and its initial derived
// artifacts in one transaction, so a failed import persists nothing.
func (r *TrackRepository) CreateWithAttributes(track *models.Track, attrs map[string]interface{}) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if err := insertTrack(tx, track); err != nil {
			return err
		}
		for key, value := range attrs {
			if err := upsertAttribute(tx, track.ID, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertTrack(e execer, track *models.Track) error {
	query := `INSERT INTO tracks (id, name, point_count, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := e.Exec(query, track.ID, track.Name, track.PointCount, track.CreatedAt, track.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}
	return nil
}

// List returns all tracks, newest first.
func (r *TrackRepository) List() ([]models.Track, error) {
	query := `SELECT id, name, point_count, created_at, modified_at
		FROM tracks ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Name, &t.PointCount, &t.CreatedAt, &t.ModifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	return tracks, nil
}

// GetByID retrieves a single track, nil when absent.
func (r *TrackRepository) GetByID(id string) (*models.Track, error) {
	query := `SELECT id, name, point_count, created_at, modified_at
		FROM tracks WHERE id = ?`

	var t models.Track
	err := r.db.QueryRow(query, id).Scan(&t.ID, &t.Name, &t.PointCount, &t.CreatedAt, &t.ModifiedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	return &t, nil
}

// Delete removes a track; its attributes cascade.
func (r *TrackRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM tracks WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return nil
}

// UpdateName changes the display name of a track.
func (r *TrackRepository) UpdateName(id, name string) error {
	if _, err := r.db.Exec("UPDATE tracks SET name = ? WHERE id = ?", name, id); err != nil {
		return fmt.Errorf("failed to rename track: %w", err)
	}
	return nil
}

// Touch bumps the modification time, invalidating caches fingerprinted
// on it.
func (r *TrackRepository) Touch(id string) error {
	query := `UPDATE tracks SET modified_at = datetime('now') WHERE id = ?`
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to touch track: %w", err)
	}
	return nil
}

// SetAttribute stores a derived artifact as JSON. The upsert is
// idempotent: re-running a pipeline stage replaces its artifact
// wholesale.
func (r *TrackRepository) SetAttribute(trackID, key string, value interface{}) error {
	return upsertAttribute(r.db, trackID, key, value)
}

func upsertAttribute(e execer, trackID, key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode attribute %s: %w", key, err)
	}

	query := `INSERT INTO track_attributes (track_id, key, value, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT (track_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := e.Exec(query, trackID, key, string(encoded)); err != nil {
		return fmt.Errorf("failed to set attribute %s: %w", key, err)
	}
	return nil
}

// GetAttribute loads a derived artifact into out. Returns false when
// the attribute does not exist.
func (r *TrackRepository) GetAttribute(trackID, key string, out interface{}) (bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM track_attributes WHERE track_id = ? AND key = ?", trackID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get attribute %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("failed to decode attribute %s: %w", key, err)
	}
	return true, nil
}

// HasAttribute reports whether the artifact exists without decoding it.
func (r *TrackRepository) HasAttribute(trackID, key string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM track_attributes WHERE track_id = ? AND key = ?", trackID, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check attribute %s: %w", key, err)
	}
	return true, nil
}

// DeleteAttribute removes one derived artifact.
func (r *TrackRepository) DeleteAttribute(trackID, key string) error {
	if _, err := r.db.Exec("DELETE FROM track_attributes WHERE track_id = ? AND key = ?", trackID, key); err != nil {
		return fmt.Errorf("failed to delete attribute %s: %w", key, err)
	}
	return nil
}
