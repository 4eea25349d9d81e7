package studyprofile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Retries for a versioned write that lost a race with a concurrent turn.
const maxWriteRetries = 3

// ApplyResult summarizes one batch of operations.
type ApplyResult struct {
	Applied int
	Skipped int
	Failed  int
}

// Applier applies planned operations to a user's persisted profile.
// Operations run strictly sequentially: several of them read-then-write
// the same document, and interleaving them would drop updates. A failure
// in one operation is logged and never aborts the rest of the batch.
type Applier struct {
	store  DocumentStore
	logger *log.Logger
	now    func() time.Time
}

func NewApplier(logger *log.Logger, store DocumentStore) *Applier {
	return &Applier{store: store, logger: logger, now: time.Now}
}

// InitProfile writes the empty skeleton for a new user. Calling it for an
// existing user is a no-op.
func (a *Applier) InitProfile(ctx context.Context, userID string) error {
	err := a.store.CreateProfile(ctx, userID, NewStudyProfile())
	if err != nil {
		return fmt.Errorf("initializing profile for user %s: %w", userID, err)
	}
	return nil
}

// CompleteSetup flips the setup flag. The transition is monotonic: once
// true it stays true, and enrichment continues regardless.
func (a *Applier) CompleteSetup(ctx context.Context, userID string) error {
	return a.mutate(ctx, userID, func(profile *StudyProfile) (bool, string) {
		if profile.SetupCompleted {
			return false, "setup already completed"
		}
		profile.SetupCompleted = true
		return true, ""
	})
}

// Apply dispatches each operation against the profile document. Keyed
// operations read current state, merge locally, and write back under a
// version check; purely additive kinds use the store's atomic ArrayUnion
// and skip the read entirely.
func (a *Applier) Apply(ctx context.Context, userID string, ops []UpdateOp) ApplyResult {
	var result ApplyResult

	for _, op := range ops {
		applied, err := a.applyOne(ctx, userID, op)
		switch {
		case err != nil:
			a.logger.Error("Profile update failed, continuing with batch",
				"user", userID, "kind", op.Kind(), "error", err)
			result.Failed++
		case applied:
			result.Applied++
		default:
			result.Skipped++
		}
	}

	return result
}

func (a *Applier) applyOne(ctx context.Context, userID string, op UpdateOp) (bool, error) {
	switch op := op.(type) {
	case AddEnhancedSubjectOp:
		return a.applySubject(ctx, userID, op.Subject)

	case AddSubjectTopicOp:
		return a.applyTopic(ctx, userID, op.Topic)

	case AddEnhancedBookOp:
		return a.applyBook(ctx, userID, op.Book)

	case UpdateUniversityTargetsOp:
		// No de-duplication on university targets: mentions are appended
		// as given.
		return a.applied(a.mutate(ctx, userID, func(profile *StudyProfile) (bool, string) {
			profile.UniversityTargets = append(profile.UniversityTargets, op.Targets...)
			return true, ""
		}))

	case AddHighLevelProjectOp:
		return a.applied(a.mutate(ctx, userID, func(profile *StudyProfile) (bool, string) {
			profile.Supercurricular.HighLevel = append(profile.Supercurricular.HighLevel, op.Project)
			return true, ""
		}))

	case AddMediumLevelActivityOp:
		return a.applied(a.mutate(ctx, userID, func(profile *StudyProfile) (bool, string) {
			profile.Supercurricular.MediumLevel = append(profile.Supercurricular.MediumLevel, op.Activity)
			return true, ""
		}))

	case AddCategorizedGoalsOp:
		// Each call appends a new week record, keeping the full history
		// of goal-setting events.
		return a.applied(a.mutate(ctx, userID, func(profile *StudyProfile) (bool, string) {
			profile.CategorizedGoals = append(profile.CategorizedGoals, GoalWeek{Week: op.Week, Goals: op.Goals})
			return true, ""
		}))

	case AddKnowledgeInsightsOp:
		values := make([]any, len(op.Insights))
		for i, insight := range op.Insights {
			values[i] = insight
		}
		return a.applied(a.store.ArrayUnion(ctx, userID, PathKnowledgeInsights, values...))

	case AddCompetitionsOp:
		values := make([]any, len(op.Competitions))
		for i, competition := range op.Competitions {
			values[i] = competition
		}
		return a.applied(a.store.ArrayUnion(ctx, userID, PathCompetitions, values...))

	case AddGradeTargetsOp:
		return a.applied(a.mutate(ctx, userID, func(profile *StudyProfile) (bool, string) {
			if profile.GradeTargets == nil {
				profile.GradeTargets = map[string]string{}
			}
			for subject, grade := range op.Targets {
				profile.GradeTargets[subject] = grade
			}
			return true, ""
		}))

	default:
		a.logger.Warn("Unknown operation kind ignored", "kind", op.Kind())
		return false, nil
	}
}

func (a *Applier) applySubject(ctx context.Context, userID string, subject CurrentSubject) (bool, error) {
	var added bool
	err := a.mutate(ctx, userID, func(profile *StudyProfile) (bool, string) {
		// Re-derived on every attempt: a retry after a version conflict may
		// find the subject written by the concurrent turn that won the race.
		added = false
		if profile.HasSubject(subject.Name) {
			return false, fmt.Sprintf("subject %q already tracked", subject.Name)
		}
		profile.CurrentSubjects = append(profile.CurrentSubjects, subject)
		added = true
		return true, ""
	})
	return added, err
}

func (a *Applier) applyTopic(ctx context.Context, userID string, topic SubjectTopic) (bool, error) {
	err := a.mutate(ctx, userID, func(profile *StudyProfile) (bool, string) {
		for i, existing := range profile.SubjectTopics {
			if equalFold(existing.Subject, topic.Subject) && equalFold(existing.Topic, topic.Topic) {
				profile.SubjectTopics[i].Confidence = topic.Confidence
				profile.SubjectTopics[i].Notes = topic.Notes
				profile.SubjectTopics[i].LastUpdated = topic.LastUpdated
				return true, ""
			}
		}
		profile.SubjectTopics = append(profile.SubjectTopics, topic)
		return true, ""
	})
	return err == nil, err
}

func (a *Applier) applyBook(ctx context.Context, userID string, book Book) (bool, error) {
	var added bool
	err := a.mutate(ctx, userID, func(profile *StudyProfile) (bool, string) {
		added = false
		if profile.HasBook(book.Title) {
			return false, fmt.Sprintf("book %q already tracked", book.Title)
		}
		profile.Supercurricular.LowLevel.Books = append(profile.Supercurricular.LowLevel.Books, book)
		added = true
		return true, ""
	})
	return added, err
}

// mutate runs a read-merge-write cycle under the document version,
// retrying on conflict with freshly read state.
func (a *Applier) mutate(ctx context.Context, userID string, merge func(*StudyProfile) (bool, string)) error {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		doc, err := a.store.GetProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("reading profile: %w", err)
		}

		changed, skipReason := merge(&doc.Profile)
		if !changed {
			a.logger.Debug("Profile update skipped", "user", userID, "reason", skipReason)
			return nil
		}

		doc.Profile.LastUpdated = a.now().UTC().Format(time.RFC3339)

		err = a.store.ReplaceProfile(ctx, userID, &doc.Profile, doc.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return fmt.Errorf("writing profile: %w", err)
		}
		a.logger.Debug("Profile write lost a version race, retrying", "user", userID, "attempt", attempt+1)
	}

	return fmt.Errorf("profile write for user %s: %w", userID, ErrVersionConflict)
}

func (a *Applier) applied(err error) (bool, error) {
	if err != nil {
		return false, err
	}
	return true, nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
