package studyprofile

// OpKind names an update operation. Kinds are serialized into logs and
// conversation records, so the strings are stable.
type OpKind string

const (
	OpAddEnhancedSubject      OpKind = "addEnhancedSubject"
	OpAddSubjectTopic         OpKind = "addSubjectTopic"
	OpAddEnhancedBook         OpKind = "addEnhancedBook"
	OpUpdateUniversityTargets OpKind = "updateUniversityTargets"
	OpAddHighLevelProject     OpKind = "addHighLevelProject"
	OpAddMediumLevelActivity  OpKind = "addMediumLevelActivity"
	OpAddCategorizedGoals     OpKind = "addCategorizedGoals"
	OpAddKnowledgeInsights    OpKind = "addKnowledgeInsights"
	OpAddCompetitions         OpKind = "addCompetitions"
	OpAddGradeTargets         OpKind = "addGradeTargets"
)

// UpdateOp is a closed union over the planned mutation kinds. The applier
// switches exhaustively over the concrete types; anything else is logged
// and ignored rather than treated as fatal.
type UpdateOp interface {
	Kind() OpKind
	isUpdateOp()
}

type AddEnhancedSubjectOp struct {
	Subject CurrentSubject
}

type AddSubjectTopicOp struct {
	Topic SubjectTopic
}

type AddEnhancedBookOp struct {
	Book Book
}

type UpdateUniversityTargetsOp struct {
	Targets []UniversityTarget
}

type AddHighLevelProjectOp struct {
	Project Project
}

type AddMediumLevelActivityOp struct {
	Activity Project
}

type AddCategorizedGoalsOp struct {
	Week  string
	Goals []Goal
}

type AddKnowledgeInsightsOp struct {
	Insights []KnowledgeInsight
}

type AddCompetitionsOp struct {
	Competitions []Competition
}

type AddGradeTargetsOp struct {
	Targets map[string]string
}

func (AddEnhancedSubjectOp) Kind() OpKind      { return OpAddEnhancedSubject }
func (AddSubjectTopicOp) Kind() OpKind         { return OpAddSubjectTopic }
func (AddEnhancedBookOp) Kind() OpKind         { return OpAddEnhancedBook }
func (UpdateUniversityTargetsOp) Kind() OpKind { return OpUpdateUniversityTargets }
func (AddHighLevelProjectOp) Kind() OpKind     { return OpAddHighLevelProject }
func (AddMediumLevelActivityOp) Kind() OpKind  { return OpAddMediumLevelActivity }
func (AddCategorizedGoalsOp) Kind() OpKind     { return OpAddCategorizedGoals }
func (AddKnowledgeInsightsOp) Kind() OpKind    { return OpAddKnowledgeInsights }
func (AddCompetitionsOp) Kind() OpKind         { return OpAddCompetitions }
func (AddGradeTargetsOp) Kind() OpKind         { return OpAddGradeTargets }

func (AddEnhancedSubjectOp) isUpdateOp()      {}
func (AddSubjectTopicOp) isUpdateOp()         {}
func (AddEnhancedBookOp) isUpdateOp()         {}
func (UpdateUniversityTargetsOp) isUpdateOp() {}
func (AddHighLevelProjectOp) isUpdateOp()     {}
func (AddMediumLevelActivityOp) isUpdateOp()  {}
func (AddCategorizedGoalsOp) isUpdateOp()     {}
func (AddKnowledgeInsightsOp) isUpdateOp()    {}
func (AddCompetitionsOp) isUpdateOp()         {}
func (AddGradeTargetsOp) isUpdateOp()         {}
