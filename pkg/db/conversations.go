package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one turn inside a recorded conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationRecord is what a chat turn persists: the exchanged
// messages, the raw facts extraction produced, and how many profile
// updates were applied.
type ConversationRecord struct {
	ID                  string
	UserID              string
	Date                string
	Messages            []ChatMessage
	ExtractedData       json.RawMessage
	AIModel             string
	ProfileUpdatesCount int
}

type conversationRow struct {
	ID                  string  `db:"id"`
	UserID              string  `db:"user_id"`
	Date                string  `db:"date"`
	Messages            string  `db:"messages"`
	ExtractedData       *string `db:"extracted_data"`
	AIModel             *string `db:"ai_model"`
	ProfileUpdatesCount int     `db:"profile_updates_count"`
}

// AddConversation persists one chat-turn record and returns its id.
func (s *Store) AddConversation(ctx context.Context, record ConversationRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Date == "" {
		record.Date = time.Now().UTC().Format(time.RFC3339)
	}

	messages, err := json.Marshal(record.Messages)
	if err != nil {
		return "", fmt.Errorf("encoding conversation messages: %w", err)
	}

	extracted := "{}"
	if len(record.ExtractedData) > 0 {
		extracted = string(record.ExtractedData)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, date, messages, extracted_data, ai_model, profile_updates_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.UserID, record.Date, string(messages), extracted, record.AIModel, record.ProfileUpdatesCount)
	if err != nil {
		return "", fmt.Errorf("recording conversation for user %s: %w", record.UserID, err)
	}

	return record.ID, nil
}

// GetRecentConversations returns the newest records first, capped at limit.
func (s *Store) GetRecentConversations(ctx context.Context, userID string, limit int) ([]ConversationRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []conversationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, date, messages, extracted_data, ai_model, profile_updates_count
		FROM conversations
		WHERE user_id = ?
		ORDER BY date DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading conversations for user %s: %w", userID, err)
	}

	records := make([]ConversationRecord, 0, len(rows))
	for _, row := range rows {
		record := ConversationRecord{
			ID:                  row.ID,
			UserID:              row.UserID,
			Date:                row.Date,
			ProfileUpdatesCount: row.ProfileUpdatesCount,
		}
		if err := json.Unmarshal([]byte(row.Messages), &record.Messages); err != nil {
			s.logger.Warn("Skipping conversation with malformed messages", "id", row.ID, "error", err)
			continue
		}
		if row.ExtractedData != nil {
			record.ExtractedData = json.RawMessage(*row.ExtractedData)
		}
		if row.AIModel != nil {
			record.AIModel = *row.AIModel
		}
		records = append(records, record)
	}

	return records, nil
}
