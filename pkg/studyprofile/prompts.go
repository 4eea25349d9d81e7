package studyprofile

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// FactExtractionPrompt is the system prompt handed to the LLM. The
// placeholders are filled per call with the user's current profile state
// so the model is steered away from re-extracting facts already tracked.
const FactExtractionPrompt = `
You are a study-profile fact extractor for a university-preparation assistant.
Return **only valid JSON**. No commentary.

Extract structured facts the student states about their studies:
- subjects they are taking (with level, current grade, target grade)
- topics within subjects and how confident they feel about them
- books they are reading (title, author, subject, reading status)
- universities they are targeting (name, course, priority)
- high-level projects (EPQ, research, olympiad preparation)
- medium-level activities (lectures, podcasts, clubs, MOOCs)
- goals they set themselves (text, timeframe, category, priority)
- insights they share from their reading (concept plus full explanation)
- competitions they mention entering or considering

Only extract facts that are explicitly stated. Do not infer or invent.
Omit any category with nothing to report.

## Already tracked

The student already tracks these books (lowercased titles). Do NOT
re-extract any of them:
{tracked_books}

Current profile summary:
{profile_summary}

## Output schema
` + "```json\n" + `{
  "subjects": [{"name": "", "level": "", "currentGrade": "", "targetGrade": ""}],
  "subjectTopics": [{"subject": "", "topic": "", "confidence": "confident|needs to revise|needs to learn again", "notes": ""}],
  "books": [{"title": "", "author": "", "subject": "", "status": "reading|completed|planned", "type": "", "totalPages": 0}],
  "universities": [{"name": "", "course": "", "priority": ""}],
  "highLevelProjects": [{"name": "", "description": "", "subject": "", "status": ""}],
  "mediumLevelActivities": [{"name": "", "description": "", "subject": "", "status": ""}],
  "goals": [{"text": "", "timeframe": "", "category": "", "priority": ""}],
  "insights": [{"concept": "", "fullInsight": "", "source": "", "pageReference": ""}],
  "competitions": [{"name": "", "subject": "", "deadline": "", "status": ""}]
}
` + "```"

// BuildExtractionPrompt fills the extraction prompt with the books the
// profile already tracks and a compact summary of its current state.
func BuildExtractionPrompt(profile *StudyProfile) string {
	trackedBooks := "none"
	if titles := profile.TrackedBookTitles(); len(titles) > 0 {
		trackedBooks = "- " + strings.Join(titles, "\n- ")
	}

	prompt := strings.ReplaceAll(FactExtractionPrompt, "{tracked_books}", trackedBooks)
	prompt = strings.ReplaceAll(prompt, "{profile_summary}", summarizeProfile(profile))
	return prompt
}

func summarizeProfile(profile *StudyProfile) string {
	var summary strings.Builder

	if len(profile.CurrentSubjects) > 0 {
		names := lo.Map(profile.CurrentSubjects, func(subject CurrentSubject, _ int) string {
			if subject.TargetGrade != "" {
				return fmt.Sprintf("%s (target %s)", subject.Name, subject.TargetGrade)
			}
			return subject.Name
		})
		summary.WriteString("Subjects: " + strings.Join(names, ", ") + "\n")
	}

	if len(profile.UniversityTargets) > 0 {
		names := lo.Map(profile.UniversityTargets, func(target UniversityTarget, _ int) string {
			if target.Course != "" {
				return fmt.Sprintf("%s (%s)", target.Name, target.Course)
			}
			return target.Name
		})
		summary.WriteString("University targets: " + strings.Join(names, ", ") + "\n")
	}

	if count := len(profile.Supercurricular.LowLevel.Books); count > 0 {
		summary.WriteString(fmt.Sprintf("Books tracked: %d\n", count))
	}

	if summary.Len() == 0 {
		return "Empty profile, nothing tracked yet."
	}
	return summary.String()
}

// StudyBuddyPrompt is the system prompt for the conversational reply,
// which is generated independently of fact extraction.
const StudyBuddyPrompt = `You are a friendly, encouraging study buddy for a
student preparing for university applications. Answer questions about their
subjects, reading, and goals. Keep replies concise and practical. Never
mention that facts are being extracted from the conversation.`
