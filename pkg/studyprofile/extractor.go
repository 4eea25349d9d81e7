package studyprofile

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"

	"github.com/prepflow/studybuddy/pkg/ai"
)

// ExtractionResult carries both the planned operations and the raw facts
// they were derived from. The raw facts are recorded alongside the
// conversation for later inspection.
type ExtractionResult struct {
	Updates []UpdateOp
	Raw     ExtractedFacts
}

// Extractor turns a free-text chat message into planned profile updates.
// It fails soft: a failed LLM call or unparseable response yields an
// empty result, never an error, so the chat turn can still complete.
type Extractor struct {
	completions ai.Completion
	planner     *Planner
	model       string
	logger      *log.Logger
}

func NewExtractor(logger *log.Logger, completions ai.Completion, planner *Planner, model string) *Extractor {
	return &Extractor{
		completions: completions,
		planner:     planner,
		model:       model,
		logger:      logger,
	}
}

// Extract calls the LLM with a de-duplication-aware prompt, decodes the
// response into typed facts, filters out books already tracked in the
// profile, and plans the resulting update operations.
func (e *Extractor) Extract(ctx context.Context, message string, profile *StudyProfile) ExtractionResult {
	if strings.TrimSpace(message) == "" {
		return ExtractionResult{}
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(BuildExtractionPrompt(profile)),
		openai.UserMessage(message),
	}
	tools := []openai.ChatCompletionToolParam{extractStudyFactsTool}

	response, err := e.completions.Completions(ctx, messages, tools, e.model)
	if err != nil {
		e.logger.Error("LLM completion failed during fact extraction", "error", err)
		return ExtractionResult{}
	}

	raw, ok := e.decodeFacts(response)
	if !ok {
		return ExtractionResult{}
	}

	raw.Books = filterTrackedBooks(raw.Books, profile)

	if raw.IsEmpty() {
		e.logger.Debug("No new facts extracted from message")
		return ExtractionResult{Raw: raw}
	}

	ops := e.planner.Plan(raw)
	e.logger.Info("Facts extracted from message", "operations", len(ops))
	return ExtractionResult{Updates: ops, Raw: raw}
}

// decodeFacts prefers the EXTRACT_STUDY_FACTS tool call; when the model
// answers with plain content instead, it strips an optional Markdown code
// fence and parses the remainder as JSON.
func (e *Extractor) decodeFacts(response openai.ChatCompletionMessage) (ExtractedFacts, bool) {
	for _, toolCall := range response.ToolCalls {
		if toolCall.Function.Name != ExtractStudyFactsToolName {
			e.logger.Warn("LLM called an unexpected tool during extraction", "tool", toolCall.Function.Name)
			continue
		}
		var facts ExtractedFacts
		if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &facts); err != nil {
			e.logger.Warn("Failed to unmarshal extraction tool arguments", "error", err)
			continue
		}
		return facts, true
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return ExtractedFacts{}, false
	}

	var facts ExtractedFacts
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &facts); err != nil {
		e.logger.Warn("Extraction response was not valid JSON", "error", err)
		return ExtractedFacts{}, false
	}
	return facts, true
}

// filterTrackedBooks drops books whose normalized title is already in the
// profile, regardless of the prompt instruction. The applier repeats the
// same check against fresh state before writing.
func filterTrackedBooks(books []ExtractedBook, profile *StudyProfile) []ExtractedBook {
	if len(books) == 0 {
		return books
	}
	kept := books[:0]
	for _, book := range books {
		if profile.HasBook(book.Title) {
			continue
		}
		kept = append(kept, book)
	}
	return kept
}

// stripCodeFence removes an optional ```json ... ``` wrapper. The
// language tag is matched case-insensitively since models emit it both
// ways.
func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if len(content) >= 4 && strings.EqualFold(content[:4], "json") {
		content = content[4:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
