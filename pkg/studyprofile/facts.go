package studyprofile

// ExtractedFacts is the schema the LLM is asked to fill. Decoding is
// strict in shape but lenient in content: unknown fields are dropped and
// missing optional fields are defaulted later by the planner.
type ExtractedFacts struct {
	Subjects              []ExtractedSubject     `json:"subjects,omitempty"`
	SubjectTopics         []ExtractedTopic       `json:"subjectTopics,omitempty"`
	Books                 []ExtractedBook        `json:"books,omitempty"`
	Universities          []ExtractedUniversity  `json:"universities,omitempty"`
	HighLevelProjects     []ExtractedProject     `json:"highLevelProjects,omitempty"`
	MediumLevelActivities []ExtractedProject     `json:"mediumLevelActivities,omitempty"`
	Goals                 []ExtractedGoal        `json:"goals,omitempty"`
	Insights              []ExtractedInsight     `json:"insights,omitempty"`
	Competitions          []ExtractedCompetition `json:"competitions,omitempty"`
}

// IsEmpty reports whether extraction produced no candidate facts at all.
func (f ExtractedFacts) IsEmpty() bool {
	return len(f.Subjects) == 0 &&
		len(f.SubjectTopics) == 0 &&
		len(f.Books) == 0 &&
		len(f.Universities) == 0 &&
		len(f.HighLevelProjects) == 0 &&
		len(f.MediumLevelActivities) == 0 &&
		len(f.Goals) == 0 &&
		len(f.Insights) == 0 &&
		len(f.Competitions) == 0
}

type ExtractedSubject struct {
	Name         string `json:"name"`
	Level        string `json:"level,omitempty"`
	CurrentGrade string `json:"currentGrade,omitempty"`
	TargetGrade  string `json:"targetGrade,omitempty"`
}

type ExtractedTopic struct {
	Subject    string `json:"subject"`
	Topic      string `json:"topic"`
	Confidence string `json:"confidence,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type ExtractedBook struct {
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Status     string `json:"status,omitempty"`
	Type       string `json:"type,omitempty"`
	TotalPages int    `json:"totalPages,omitempty"`
}

type ExtractedUniversity struct {
	Name         string   `json:"name"`
	Course       string   `json:"course,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Requirements string   `json:"requirements,omitempty"`
	Modules      []string `json:"modules,omitempty"`
	Department   string   `json:"department,omitempty"`
	Tutors       []string `json:"tutors,omitempty"`
}

type ExtractedProject struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Status      string `json:"status,omitempty"`
}

type ExtractedGoal struct {
	Text      string `json:"text"`
	Timeframe string `json:"timeframe,omitempty"`
	Category  string `json:"category,omitempty"`
	Priority  string `json:"priority,omitempty"`
}

type ExtractedInsight struct {
	Concept                    string   `json:"concept"`
	FullInsight                string   `json:"fullInsight"`
	Source                     string   `json:"source,omitempty"`
	PageReference              string   `json:"pageReference,omitempty"`
	PersonalStatementRelevance string   `json:"personalStatementRelevance,omitempty"`
	ConnectionToStudies        string   `json:"connectionToStudies,omitempty"`
	FollowUpQuestions          []string `json:"followUpQuestions,omitempty"`
	UniversityRelevance        []string `json:"universityRelevance,omitempty"`
}

type ExtractedCompetition struct {
	Name     string `json:"name"`
	Subject  string `json:"subject,omitempty"`
	Deadline string `json:"deadline,omitempty"`
	Status   string `json:"status,omitempty"`
}
