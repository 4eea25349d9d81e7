package studyprofile

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
)

const ExtractStudyFactsToolName = "EXTRACT_STUDY_FACTS"

var extractStudyFactsTool = openai.ChatCompletionToolParam{
	Type: "function",
	Function: openai.FunctionDefinitionParam{
		Name: ExtractStudyFactsToolName,
		Description: param.NewOpt(
			"Record structured study facts the student explicitly stated: subjects, subject topics, books, university targets, supercurricular projects and activities, goals, knowledge insights, and competitions. Omit any category with nothing to report. Never record books that are already tracked.",
		),
		Parameters: openai.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"subjects": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":         map[string]any{"type": "string"},
							"level":        map[string]any{"type": "string", "description": "e.g. GCSE, A-Level, IB"},
							"currentGrade": map[string]any{"type": "string"},
							"targetGrade":  map[string]any{"type": "string"},
						},
						"required":             []string{"name"},
						"additionalProperties": false,
					},
				},
				"subjectTopics": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"subject": map[string]any{"type": "string"},
							"topic":   map[string]any{"type": "string"},
							"confidence": map[string]any{
								"type": "string",
								"enum": []string{"confident", "needs to revise", "needs to learn again"},
							},
							"notes": map[string]any{"type": "string"},
						},
						"required":             []string{"subject", "topic"},
						"additionalProperties": false,
					},
				},
				"books": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":      map[string]any{"type": "string"},
							"author":     map[string]any{"type": "string"},
							"subject":    map[string]any{"type": "string"},
							"status":     map[string]any{"type": "string", "enum": []string{"reading", "completed", "planned"}},
							"type":       map[string]any{"type": "string"},
							"totalPages": map[string]any{"type": "integer"},
						},
						"required":             []string{"title"},
						"additionalProperties": false,
					},
				},
				"universities": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":         map[string]any{"type": "string"},
							"course":       map[string]any{"type": "string"},
							"priority":     map[string]any{"type": "string"},
							"requirements": map[string]any{"type": "string"},
							"modules":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
							"department":   map[string]any{"type": "string"},
							"tutors":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
						"required":             []string{"name"},
						"additionalProperties": false,
					},
				},
				"highLevelProjects": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":        map[string]any{"type": "string"},
							"description": map[string]any{"type": "string"},
							"subject":     map[string]any{"type": "string"},
							"status":      map[string]any{"type": "string"},
						},
						"required":             []string{"name"},
						"additionalProperties": false,
					},
				},
				"mediumLevelActivities": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":        map[string]any{"type": "string"},
							"description": map[string]any{"type": "string"},
							"subject":     map[string]any{"type": "string"},
							"status":      map[string]any{"type": "string"},
						},
						"required":             []string{"name"},
						"additionalProperties": false,
					},
				},
				"goals": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"text":      map[string]any{"type": "string"},
							"timeframe": map[string]any{"type": "string"},
							"category":  map[string]any{"type": "string"},
							"priority":  map[string]any{"type": "string"},
						},
						"required":             []string{"text"},
						"additionalProperties": false,
					},
				},
				"insights": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"concept":                    map[string]any{"type": "string"},
							"fullInsight":                map[string]any{"type": "string"},
							"source":                     map[string]any{"type": "string"},
							"pageReference":              map[string]any{"type": "string"},
							"personalStatementRelevance": map[string]any{"type": "string"},
							"connectionToStudies":        map[string]any{"type": "string"},
							"followUpQuestions":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
							"universityRelevance":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
						"required":             []string{"concept", "fullInsight"},
						"additionalProperties": false,
					},
				},
				"competitions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":     map[string]any{"type": "string"},
							"subject":  map[string]any{"type": "string"},
							"deadline": map[string]any{"type": "string"},
							"status":   map[string]any{"type": "string"},
						},
						"required":             []string{"name"},
						"additionalProperties": false,
					},
				},
			},
			"additionalProperties": false,
		},
	},
}
