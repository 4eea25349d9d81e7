package studyprofile

import "time"

// Default values filled in for optional fields the model omitted.
const (
	defaultConfidence    = ConfidenceNeedsRevision
	defaultBookStatus    = "reading"
	defaultGoalTimeframe = "weekly"
	defaultCompStatus    = "interested"
)

// Planner converts raw extracted facts into typed update operations. It
// performs no I/O. Operations are emitted in a fixed category order so a
// given input always produces the same sequence: subjects, topics, books,
// universities, high level projects, medium level activities, goals,
// insights, competitions, then grade targets derived from subjects.
type Planner struct {
	now func() time.Time
}

func NewPlanner() *Planner {
	return &Planner{now: time.Now}
}

// NewPlannerWithClock is for tests that assert planned timestamps.
func NewPlannerWithClock(now func() time.Time) *Planner {
	return &Planner{now: now}
}

// Plan maps each non-empty category of facts to one or more operations.
// Timestamps are stamped here, at planning time.
func (p *Planner) Plan(raw ExtractedFacts) []UpdateOp {
	now := p.now()
	today := now.Format("2006-01-02")

	var ops []UpdateOp

	for _, subject := range raw.Subjects {
		if subject.Name == "" {
			continue
		}
		ops = append(ops, AddEnhancedSubjectOp{Subject: CurrentSubject{
			Name:         subject.Name,
			Level:        subject.Level,
			CurrentGrade: subject.CurrentGrade,
			TargetGrade:  subject.TargetGrade,
		}})
	}

	for _, topic := range raw.SubjectTopics {
		if topic.Subject == "" || topic.Topic == "" {
			continue
		}
		confidence := topic.Confidence
		if confidence == "" {
			confidence = defaultConfidence
		}
		ops = append(ops, AddSubjectTopicOp{Topic: SubjectTopic{
			Subject:     topic.Subject,
			Topic:       topic.Topic,
			Confidence:  confidence,
			Notes:       topic.Notes,
			DateAdded:   today,
			LastUpdated: today,
		}})
	}

	for _, book := range raw.Books {
		if book.Title == "" {
			continue
		}
		status := book.Status
		if status == "" {
			status = defaultBookStatus
		}
		ops = append(ops, AddEnhancedBookOp{Book: Book{
			Title:               book.Title,
			Author:              book.Author,
			Subject:             book.Subject,
			Status:              status,
			Type:                book.Type,
			StartDate:           today,
			TotalPages:          book.TotalPages,
			WeeklyInsights:      []string{},
			KeyLearnings:        []string{},
			PersonalReflections: []string{},
		}})
	}

	if len(raw.Universities) > 0 {
		targets := make([]UniversityTarget, 0, len(raw.Universities))
		for _, uni := range raw.Universities {
			if uni.Name == "" {
				continue
			}
			targets = append(targets, UniversityTarget{
				Name:         uni.Name,
				Course:       uni.Course,
				Priority:     uni.Priority,
				Requirements: uni.Requirements,
				Modules:      uni.Modules,
				Department:   uni.Department,
				Tutors:       uni.Tutors,
			})
		}
		if len(targets) > 0 {
			ops = append(ops, UpdateUniversityTargetsOp{Targets: targets})
		}
	}

	for _, project := range raw.HighLevelProjects {
		if project.Name == "" {
			continue
		}
		ops = append(ops, AddHighLevelProjectOp{Project: Project{
			Name:        project.Name,
			Description: project.Description,
			Subject:     project.Subject,
			Status:      project.Status,
			StartDate:   today,
		}})
	}

	for _, activity := range raw.MediumLevelActivities {
		if activity.Name == "" {
			continue
		}
		ops = append(ops, AddMediumLevelActivityOp{Activity: Project{
			Name:        activity.Name,
			Description: activity.Description,
			Subject:     activity.Subject,
			Status:      activity.Status,
			StartDate:   today,
		}})
	}

	if len(raw.Goals) > 0 {
		goals := make([]Goal, 0, len(raw.Goals))
		created := now.Format(time.RFC3339)
		for _, goal := range raw.Goals {
			if goal.Text == "" {
				continue
			}
			timeframe := goal.Timeframe
			if timeframe == "" {
				timeframe = defaultGoalTimeframe
			}
			goals = append(goals, Goal{
				Text:      goal.Text,
				Timeframe: timeframe,
				Category:  goal.Category,
				Created:   created,
				Completed: false,
				Priority:  goal.Priority,
			})
		}
		if len(goals) > 0 {
			ops = append(ops, AddCategorizedGoalsOp{Week: weekStart(now), Goals: goals})
		}
	}

	if len(raw.Insights) > 0 {
		insights := make([]KnowledgeInsight, 0, len(raw.Insights))
		for _, insight := range raw.Insights {
			if insight.Concept == "" {
				continue
			}
			insights = append(insights, KnowledgeInsight{
				Concept:                    insight.Concept,
				FullInsight:                insight.FullInsight,
				Source:                     insight.Source,
				PageReference:              insight.PageReference,
				PersonalStatementRelevance: insight.PersonalStatementRelevance,
				ConnectionToStudies:        insight.ConnectionToStudies,
				FollowUpQuestions:          insight.FollowUpQuestions,
				UniversityRelevance:        insight.UniversityRelevance,
				Date:                       today,
				Reviewed:                   false,
			})
		}
		if len(insights) > 0 {
			ops = append(ops, AddKnowledgeInsightsOp{Insights: insights})
		}
	}

	if len(raw.Competitions) > 0 {
		competitions := make([]Competition, 0, len(raw.Competitions))
		for _, comp := range raw.Competitions {
			if comp.Name == "" {
				continue
			}
			status := comp.Status
			if status == "" {
				status = defaultCompStatus
			}
			competitions = append(competitions, Competition{
				Name:        comp.Name,
				Subject:     comp.Subject,
				Deadline:    comp.Deadline,
				Status:      status,
				AddedDate:   today,
				ReminderSet: false,
			})
		}
		if len(competitions) > 0 {
			ops = append(ops, AddCompetitionsOp{Competitions: competitions})
		}
	}

	// Subjects with a target grade fan out into a second operation kind.
	gradeTargets := map[string]string{}
	for _, subject := range raw.Subjects {
		if subject.Name != "" && subject.TargetGrade != "" {
			gradeTargets[subject.Name] = subject.TargetGrade
		}
	}
	if len(gradeTargets) > 0 {
		ops = append(ops, AddGradeTargetsOp{Targets: gradeTargets})
	}

	return ops
}

// weekStart returns the Monday of the week containing t, as an ISO date.
func weekStart(t time.Time) string {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday).Format("2006-01-02")
}
