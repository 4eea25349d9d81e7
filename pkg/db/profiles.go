package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prepflow/studybuddy/pkg/studyprofile"
)

var _ studyprofile.DocumentStore = (*Store)(nil)

// GetProfile reads the profile document and its current version.
func (s *Store) GetProfile(ctx context.Context, userID string) (*studyprofile.ProfileDocument, error) {
	var row struct {
		Doc     string `db:"doc"`
		Version int64  `db:"version"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT doc, version FROM profiles WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, studyprofile.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile for user %s: %w", userID, err)
	}

	doc := &studyprofile.ProfileDocument{UserID: userID, Version: row.Version}
	if err := json.Unmarshal([]byte(row.Doc), &doc.Profile); err != nil {
		return nil, fmt.Errorf("decoding profile for user %s: %w", userID, err)
	}
	return doc, nil
}

// CreateProfile writes the skeleton document for a new user. Existing
// profiles are left untouched.
func (s *Store) CreateProfile(ctx context.Context, userID string, profile *studyprofile.StudyProfile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO profiles (user_id, doc, version) VALUES (?, ?, 1)
	`, userID, string(doc))
	if err != nil {
		return fmt.Errorf("creating profile for user %s: %w", userID, err)
	}
	return nil
}

// ReplaceProfile is a compare-and-swap: the write only lands when the
// stored version still matches expectedVersion.
func (s *Store) ReplaceProfile(ctx context.Context, userID string, profile *studyprofile.StudyProfile, expectedVersion int64) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET doc = ?, version = version + 1, updated_at = ?
		WHERE user_id = ? AND version = ?
	`, string(doc), time.Now().UTC(), userID, expectedVersion)
	if err != nil {
		return fmt.Errorf("writing profile for user %s: %w", userID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	// Distinguish a lost race from a missing document.
	var exists int
	if err := s.db.GetContext(ctx, &exists, `SELECT COUNT(1) FROM profiles WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("checking profile existence for user %s: %w", userID, err)
	}
	if exists == 0 {
		return studyprofile.ErrProfileNotFound
	}
	return studyprofile.ErrVersionConflict
}

// ArrayUnion appends values to a JSON list field in a single statement
// per value, without reading the document first. Each statement bumps the
// document version and refreshes lastUpdated, so concurrent appends never
// overwrite each other.
func (s *Store) ArrayUnion(ctx context.Context, userID string, path string, values ...any) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting append transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	lastUpdated := now.Format(time.RFC3339)
	appendPath := path + "[#]"

	for _, value := range values {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding value for %s: %w", path, err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE profiles
			SET doc = json_set(json_insert(doc, ?, json(?)), '$.lastUpdated', ?),
			    version = version + 1,
			    updated_at = ?
			WHERE user_id = ?
		`, appendPath, string(encoded), lastUpdated, now, userID)
		if err != nil {
			return fmt.Errorf("appending to %s for user %s: %w", path, userID, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return studyprofile.ErrProfileNotFound
		}
	}

	return tx.Commit()
}
