package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go"

	"github.com/prepflow/studybuddy/pkg/ai"
	"github.com/prepflow/studybuddy/pkg/db"
	"github.com/prepflow/studybuddy/pkg/helpers"
	"github.com/prepflow/studybuddy/pkg/studyprofile"
)

// How many past conversation records feed the reply context.
const historyLimit = 5

// TurnResult is what one chat turn returns to the caller.
type TurnResult struct {
	Reply          string `json:"reply"`
	ProfileUpdates int    `json:"profileUpdates"`
}

// ProfileUpdatedEvent is published on NATS after each turn that changed
// the profile.
type ProfileUpdatedEvent struct {
	UserID  string `json:"userId"`
	Applied int    `json:"applied"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// Service runs one chat turn per invocation: generate the assistant
// reply, then extract and apply profile updates. Extraction and apply
// run after the reply is produced, and their failures never fail the
// turn; the user just gets a reply without new profile facts.
type Service struct {
	logger    *log.Logger
	aiService ai.Completion
	extractor *studyprofile.Extractor
	applier   *studyprofile.Applier
	store     *db.Store
	nc        *nats.Conn
	model     string
}

func NewService(logger *log.Logger, aiService ai.Completion, extractor *studyprofile.Extractor, applier *studyprofile.Applier, store *db.Store, nc *nats.Conn, model string) *Service {
	return &Service{
		logger:    logger,
		aiService: aiService,
		extractor: extractor,
		applier:   applier,
		store:     store,
		nc:        nc,
		model:     model,
	}
}

func (s *Service) SendMessage(ctx context.Context, userID string, message string) (*TurnResult, error) {
	profile, err := s.loadOrInitProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	reply, err := s.generateReply(ctx, userID, message)
	if err != nil {
		return nil, fmt.Errorf("generating reply: %w", err)
	}

	extraction := s.extractor.Extract(ctx, message, profile)

	var applied studyprofile.ApplyResult
	if len(extraction.Updates) > 0 {
		applied = s.applier.Apply(ctx, userID, extraction.Updates)
	}

	s.recordTurn(ctx, userID, message, reply, extraction, applied)
	s.publishProfileUpdated(userID, applied)

	return &TurnResult{Reply: reply, ProfileUpdates: applied.Applied}, nil
}

func (s *Service) loadOrInitProfile(ctx context.Context, userID string) (*studyprofile.StudyProfile, error) {
	doc, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, studyprofile.ErrProfileNotFound) {
		if err := s.applier.InitProfile(ctx, userID); err != nil {
			return nil, err
		}
		doc, err = s.store.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &doc.Profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc.Profile, nil
}

func (s *Service) generateReply(ctx context.Context, userID string, message string) (string, error) {
	history := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(studyprofile.StudyBuddyPrompt),
	}

	records, err := s.store.GetRecentConversations(ctx, userID, historyLimit)
	if err != nil {
		s.logger.Warn("Could not load conversation history, replying without it", "user", userID, "error", err)
	} else {
		// Records come newest first; replay oldest first.
		for i := len(records) - 1; i >= 0; i-- {
			for _, msg := range helpers.SafeLastN(records[i].Messages, 6) {
				switch msg.Role {
				case "user":
					history = append(history, openai.UserMessage(msg.Content))
				case "assistant":
					history = append(history, openai.AssistantMessage(msg.Content))
				}
			}
		}
	}

	history = append(history, openai.UserMessage(message))

	completion, err := s.aiService.Completions(ctx, history, nil, s.model)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

func (s *Service) recordTurn(ctx context.Context, userID string, message string, reply string, extraction studyprofile.ExtractionResult, applied studyprofile.ApplyResult) {
	extracted, err := json.Marshal(extraction.Raw)
	if err != nil {
		extracted = []byte("{}")
	}

	_, err = s.store.AddConversation(ctx, db.ConversationRecord{
		UserID: userID,
		Messages: []db.ChatMessage{
			{Role: "user", Content: message},
			{Role: "assistant", Content: reply},
		},
		ExtractedData:       extracted,
		AIModel:             s.model,
		ProfileUpdatesCount: applied.Applied,
	})
	if err != nil {
		s.logger.Error("Failed to record conversation", "user", userID, "error", err)
	}
}

func (s *Service) publishProfileUpdated(userID string, applied studyprofile.ApplyResult) {
	if s.nc == nil || applied.Applied == 0 {
		return
	}

	event, err := json.Marshal(ProfileUpdatedEvent{
		UserID:  userID,
		Applied: applied.Applied,
		Skipped: applied.Skipped,
		Failed:  applied.Failed,
	})
	if err != nil {
		return
	}

	subject := fmt.Sprintf("profile.updated.%s", userID)
	if err := s.nc.Publish(subject, event); err != nil {
		s.logger.Error("Failed to publish profile update event", "subject", subject, "error", err)
	}
}
