package studyprofile

import (
	"strings"

	"github.com/samber/lo"
)

// Topic confidence levels accepted from extraction.
const (
	ConfidenceConfident       = "confident"
	ConfidenceNeedsRevision   = "needs to revise"
	ConfidenceNeedsRelearning = "needs to learn again"
)

type CurrentSubject struct {
	Name         string `json:"name"`
	Level        string `json:"level,omitempty"`
	CurrentGrade string `json:"currentGrade,omitempty"`
	TargetGrade  string `json:"targetGrade,omitempty"`
}

type SubjectTopic struct {
	Subject     string `json:"subject"`
	Topic       string `json:"topic"`
	Confidence  string `json:"confidence"`
	Notes       string `json:"notes,omitempty"`
	DateAdded   string `json:"dateAdded"`
	LastUpdated string `json:"lastUpdated"`
}

type UniversityTarget struct {
	Name         string   `json:"name"`
	Course       string   `json:"course,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Requirements string   `json:"requirements,omitempty"`
	Modules      []string `json:"modules,omitempty"`
	Department   string   `json:"department,omitempty"`
	Tutors       []string `json:"tutors,omitempty"`
}

type Project struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Status      string `json:"status,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
}

type Book struct {
	Title               string   `json:"title"`
	Author              string   `json:"author,omitempty"`
	Subject             string   `json:"subject,omitempty"`
	Status              string   `json:"status"`
	Type                string   `json:"type,omitempty"`
	StartDate           string   `json:"startDate,omitempty"`
	CurrentPage         int      `json:"currentPage,omitempty"`
	TotalPages          int      `json:"totalPages,omitempty"`
	WeeklyInsights      []string `json:"weeklyInsights,omitempty"`
	KeyLearnings        []string `json:"keyLearnings,omitempty"`
	PersonalReflections []string `json:"personalReflections,omitempty"`
}

type Goal struct {
	Text      string `json:"text"`
	Timeframe string `json:"timeframe"`
	Category  string `json:"category,omitempty"`
	Created   string `json:"created"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority,omitempty"`
}

// GoalWeek groups the goals recorded for one ISO calendar week. A new
// record is appended per planning call, preserving the history of
// goal-setting events for a week rather than collapsing them.
type GoalWeek struct {
	Week  string `json:"week"`
	Goals []Goal `json:"goals"`
}

type KnowledgeInsight struct {
	Concept                    string   `json:"concept"`
	FullInsight                string   `json:"fullInsight"`
	Source                     string   `json:"source,omitempty"`
	PageReference              string   `json:"pageReference,omitempty"`
	PersonalStatementRelevance string   `json:"personalStatementRelevance,omitempty"`
	ConnectionToStudies        string   `json:"connectionToStudies,omitempty"`
	FollowUpQuestions          []string `json:"followUpQuestions,omitempty"`
	UniversityRelevance        []string `json:"universityRelevance,omitempty"`
	Date                       string   `json:"date"`
	Reviewed                   bool     `json:"reviewed"`
}

type Competition struct {
	Name        string `json:"name"`
	Subject     string `json:"subject,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	Status      string `json:"status"`
	AddedDate   string `json:"addedDate"`
	ReminderSet bool   `json:"reminderSet"`
}

type Supercurricular struct {
	HighLevel   []Project `json:"highLevel"`
	MediumLevel []Project `json:"mediumLevel"`
	LowLevel    LowLevel  `json:"lowLevel"`
}

type LowLevel struct {
	Books []Book `json:"books"`
}

// StudyProfile is the per-user aggregate of tracked academic and
// supercurricular facts. Every mutation is additive or a field-level
// overwrite; nothing here deletes previously recorded facts.
type StudyProfile struct {
	CurrentSubjects   []CurrentSubject   `json:"currentSubjects"`
	SubjectTopics     []SubjectTopic     `json:"subjectTopics"`
	UniversityTargets []UniversityTarget `json:"universityTargets"`
	Supercurricular   Supercurricular    `json:"supercurricular"`
	CategorizedGoals  []GoalWeek         `json:"categorizedGoals"`
	KnowledgeInsights []KnowledgeInsight `json:"knowledgeInsights"`
	Competitions      []Competition      `json:"competitions"`
	GradeTargets      map[string]string  `json:"gradeTargets"`
	SetupCompleted    bool               `json:"setupCompleted"`
	LastUpdated       string             `json:"lastUpdated,omitempty"`
}

// NewStudyProfile returns the empty skeleton written at account creation.
func NewStudyProfile() *StudyProfile {
	return &StudyProfile{
		CurrentSubjects:   []CurrentSubject{},
		SubjectTopics:     []SubjectTopic{},
		UniversityTargets: []UniversityTarget{},
		Supercurricular: Supercurricular{
			HighLevel:   []Project{},
			MediumLevel: []Project{},
			LowLevel:    LowLevel{Books: []Book{}},
		},
		CategorizedGoals:  []GoalWeek{},
		KnowledgeInsights: []KnowledgeInsight{},
		Competitions:      []Competition{},
		GradeTargets:      map[string]string{},
	}
}

// NormalizeTitle is the merge key for books: lowercased and trimmed.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// HasBook reports whether a book with the given title is already tracked,
// comparing normalized titles.
func (p *StudyProfile) HasBook(title string) bool {
	normalized := NormalizeTitle(title)
	for _, book := range p.Supercurricular.LowLevel.Books {
		if NormalizeTitle(book.Title) == normalized {
			return true
		}
	}
	return false
}

// HasSubject reports whether a subject is tracked, by exact name match.
func (p *StudyProfile) HasSubject(name string) bool {
	for _, subject := range p.CurrentSubjects {
		if subject.Name == name {
			return true
		}
	}
	return false
}

// TrackedBookTitles returns the normalized titles of all tracked books.
func (p *StudyProfile) TrackedBookTitles() []string {
	return lo.Map(p.Supercurricular.LowLevel.Books, func(book Book, _ int) string {
		return NormalizeTitle(book.Title)
	})
}
