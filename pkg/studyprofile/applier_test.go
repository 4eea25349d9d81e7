package studyprofile

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApplier(store DocumentStore) *Applier {
	return NewApplier(log.New(io.Discard), store)
}

func TestApplyBookIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	op := AddEnhancedBookOp{Book: Book{Title: "Capital in the Twenty-First Century", Status: "reading"}}

	first := applier.Apply(context.Background(), "user-1", []UpdateOp{op})
	assert.Equal(t, 1, first.Applied)

	// Same title again, with different case and padding.
	op.Book.Title = "  capital in the twenty-first century "
	second := applier.Apply(context.Background(), "user-1", []UpdateOp{op})
	assert.Equal(t, 0, second.Applied)
	assert.Equal(t, 1, second.Skipped)

	books := store.profile("user-1").Supercurricular.LowLevel.Books
	require.Len(t, books, 1)
	assert.Equal(t, "Capital in the Twenty-First Century", books[0].Title)
}

func TestApplyTopicMergesInsteadOfDuplicating(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	first := AddSubjectTopicOp{Topic: SubjectTopic{
		Subject: "Maths", Topic: "Integration", Confidence: ConfidenceNeedsRelearning,
		DateAdded: "2025-03-01", LastUpdated: "2025-03-01",
	}}
	second := AddSubjectTopicOp{Topic: SubjectTopic{
		Subject: "maths", Topic: "INTEGRATION", Confidence: ConfidenceConfident,
		Notes: "nailed it in the mock", DateAdded: "2025-03-08", LastUpdated: "2025-03-08",
	}}

	applier.Apply(context.Background(), "user-1", []UpdateOp{first})
	applier.Apply(context.Background(), "user-1", []UpdateOp{second})

	topics := store.profile("user-1").SubjectTopics
	require.Len(t, topics, 1)
	assert.Equal(t, "Maths", topics[0].Subject)
	assert.Equal(t, ConfidenceConfident, topics[0].Confidence)
	assert.Equal(t, "nailed it in the mock", topics[0].Notes)
	assert.Equal(t, "2025-03-01", topics[0].DateAdded)
	assert.Equal(t, "2025-03-08", topics[0].LastUpdated)
}

func TestApplySubjectDedupIsExactMatch(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	ops := []UpdateOp{
		AddEnhancedSubjectOp{Subject: CurrentSubject{Name: "Economics"}},
		AddEnhancedSubjectOp{Subject: CurrentSubject{Name: "Economics", Level: "A-Level"}},
		// Different case is a different subject under exact-match compare.
		AddEnhancedSubjectOp{Subject: CurrentSubject{Name: "economics"}},
	}

	result := applier.Apply(context.Background(), "user-1", ops)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, 1, result.Skipped)

	subjects := store.profile("user-1").CurrentSubjects
	require.Len(t, subjects, 2)
	assert.Equal(t, "Economics", subjects[0].Name)
	assert.Empty(t, subjects[0].Level)
	assert.Equal(t, "economics", subjects[1].Name)
}

func TestApplyUniversityTargetsAppendWithoutDedup(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	op := UpdateUniversityTargetsOp{Targets: []UniversityTarget{
		{Name: "Cambridge", Course: "Economics"},
	}}

	// Repeated mentions are recorded as given, never collapsed.
	first := applier.Apply(context.Background(), "user-1", []UpdateOp{op})
	second := applier.Apply(context.Background(), "user-1", []UpdateOp{op})
	assert.Equal(t, 1, first.Applied)
	assert.Equal(t, 1, second.Applied)

	targets := store.profile("user-1").UniversityTargets
	require.Len(t, targets, 2)
	assert.Equal(t, "Cambridge", targets[0].Name)
	assert.Equal(t, "Cambridge", targets[1].Name)
}

func TestApplySupercurricularProjectsAppend(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	result := applier.Apply(context.Background(), "user-1", []UpdateOp{
		AddHighLevelProjectOp{Project: Project{Name: "EPQ on behavioural economics", Status: "in progress"}},
		AddMediumLevelActivityOp{Activity: Project{Name: "Economics society talk", Subject: "Economics"}},
		AddHighLevelProjectOp{Project: Project{Name: "EPQ on behavioural economics", Status: "in progress"}},
	})
	assert.Equal(t, 3, result.Applied)

	profile := store.profile("user-1")
	require.Len(t, profile.Supercurricular.HighLevel, 2)
	assert.Equal(t, "EPQ on behavioural economics", profile.Supercurricular.HighLevel[0].Name)
	require.Len(t, profile.Supercurricular.MediumLevel, 1)
	assert.Equal(t, "Economics society talk", profile.Supercurricular.MediumLevel[0].Name)
}

func TestApplyGradeTargetsLastWriteWins(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	applier.Apply(context.Background(), "user-1", []UpdateOp{
		AddGradeTargetsOp{Targets: map[string]string{"Maths": "A"}},
	})
	applier.Apply(context.Background(), "user-1", []UpdateOp{
		AddGradeTargetsOp{Targets: map[string]string{"Maths": "A*"}},
	})

	targets := store.profile("user-1").GradeTargets
	assert.Equal(t, map[string]string{"Maths": "A*"}, targets)
}

func TestApplyPartialFailureIsolation(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	store.failWrites[2] = errors.New("store write exploded")
	applier := testApplier(store)

	ops := []UpdateOp{
		AddEnhancedSubjectOp{Subject: CurrentSubject{Name: "Economics"}},
		AddEnhancedBookOp{Book: Book{Title: "The Wealth of Nations", Status: "reading"}},
		AddGradeTargetsOp{Targets: map[string]string{"Economics": "A*"}},
	}

	result := applier.Apply(context.Background(), "user-1", ops)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, 1, result.Failed)

	profile := store.profile("user-1")
	require.Len(t, profile.CurrentSubjects, 1)
	assert.Empty(t, profile.Supercurricular.LowLevel.Books)
	assert.Equal(t, "A*", profile.GradeTargets["Economics"])
}

func TestApplyRetriesOnVersionConflict(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	store.failWrites[1] = ErrVersionConflict
	applier := testApplier(store)

	result := applier.Apply(context.Background(), "user-1", []UpdateOp{
		AddEnhancedSubjectOp{Subject: CurrentSubject{Name: "Physics"}},
	})

	assert.Equal(t, 1, result.Applied)
	assert.Len(t, store.profile("user-1").CurrentSubjects, 1)
}

func TestApplySubjectLostRaceCountsAsSkip(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	// The conflicting writer lands the same subject before the retry
	// re-reads, so the retry must report a skip, not an apply.
	store.failWrites[1] = ErrVersionConflict
	store.raceWriters[1] = func(profile *StudyProfile) {
		profile.CurrentSubjects = append(profile.CurrentSubjects, CurrentSubject{Name: "Physics"})
	}
	applier := testApplier(store)

	result := applier.Apply(context.Background(), "user-1", []UpdateOp{
		AddEnhancedSubjectOp{Subject: CurrentSubject{Name: "Physics"}},
	})

	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, store.profile("user-1").CurrentSubjects, 1)
}

func TestApplyBookLostRaceCountsAsSkip(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	store.failWrites[1] = ErrVersionConflict
	store.raceWriters[1] = func(profile *StudyProfile) {
		profile.Supercurricular.LowLevel.Books = append(profile.Supercurricular.LowLevel.Books,
			Book{Title: "The Wealth of Nations", Status: "reading"})
	}
	applier := testApplier(store)

	result := applier.Apply(context.Background(), "user-1", []UpdateOp{
		AddEnhancedBookOp{Book: Book{Title: "the wealth of nations", Status: "reading"}},
	})

	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, store.profile("user-1").Supercurricular.LowLevel.Books, 1)
}

func TestApplyPureAppendsUseArrayUnion(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	result := applier.Apply(context.Background(), "user-1", []UpdateOp{
		AddKnowledgeInsightsOp{Insights: []KnowledgeInsight{
			{Concept: "Opportunity cost", FullInsight: "Every choice has a foregone alternative", Date: "2025-03-05"},
		}},
		AddCompetitionsOp{Competitions: []Competition{
			{Name: "UKMT Senior Challenge", Status: "interested", AddedDate: "2025-03-05"},
		}},
	})

	assert.Equal(t, 2, result.Applied)

	profile := store.profile("user-1")
	require.Len(t, profile.KnowledgeInsights, 1)
	assert.Equal(t, "Opportunity cost", profile.KnowledgeInsights[0].Concept)
	require.Len(t, profile.Competitions, 1)
	assert.Equal(t, "UKMT Senior Challenge", profile.Competitions[0].Name)
}

func TestApplyGoalsAppendsWeekRecordPerCall(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	op := AddCategorizedGoalsOp{
		Week:  "2025-03-03",
		Goals: []Goal{{Text: "Finish chapter 3", Timeframe: "weekly"}},
	}

	applier.Apply(context.Background(), "user-1", []UpdateOp{op})
	applier.Apply(context.Background(), "user-1", []UpdateOp{op})

	weeks := store.profile("user-1").CategorizedGoals
	require.Len(t, weeks, 2)
	assert.Equal(t, "2025-03-03", weeks[0].Week)
	assert.Equal(t, "2025-03-03", weeks[1].Week)
}

type mysteryOp struct{}

func (mysteryOp) Kind() OpKind { return OpKind("mystery") }
func (mysteryOp) isUpdateOp()  {}

func TestApplyIgnoresUnknownOperationKinds(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	result := applier.Apply(context.Background(), "user-1", []UpdateOp{
		mysteryOp{},
		AddEnhancedSubjectOp{Subject: CurrentSubject{Name: "Chemistry"}},
	})

	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
}

func TestApplyRefreshesLastUpdated(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	require.Empty(t, store.profile("user-1").LastUpdated)

	applier.Apply(context.Background(), "user-1", []UpdateOp{
		AddEnhancedSubjectOp{Subject: CurrentSubject{Name: "Biology"}},
	})

	assert.NotEmpty(t, store.profile("user-1").LastUpdated)
}

func TestCompleteSetupIsMonotonic(t *testing.T) {
	store := newFakeStore()
	store.seed("user-1", NewStudyProfile())
	applier := testApplier(store)

	require.NoError(t, applier.CompleteSetup(context.Background(), "user-1"))
	assert.True(t, store.profile("user-1").SetupCompleted)

	// Second call is a no-op, not an error.
	require.NoError(t, applier.CompleteSetup(context.Background(), "user-1"))
	assert.True(t, store.profile("user-1").SetupCompleted)
}

func TestInitProfileIsIdempotent(t *testing.T) {
	store := newFakeStore()
	applier := testApplier(store)

	require.NoError(t, applier.InitProfile(context.Background(), "user-1"))

	applier.Apply(context.Background(), "user-1", []UpdateOp{
		AddEnhancedSubjectOp{Subject: CurrentSubject{Name: "Economics"}},
	})

	// Re-initializing must not wipe the enriched profile.
	require.NoError(t, applier.InitProfile(context.Background(), "user-1"))
	assert.Len(t, store.profile("user-1").CurrentSubjects, 1)
}
