package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptRelevanceJudge asks for a JSON relevance judgement.
	// The template expects %s placeholders for the question and the document text.
	PromptRelevanceJudge = "relevance_judge"

	// PromptRelevanceFallback asks for a bare 0-100 score.
	// The template expects %s placeholders for the question and the text excerpt.
	PromptRelevanceFallback = "relevance_fallback"

	// PromptAnswerInstructions is the instruction block placed in every answer prompt.
	// It has no format placeholders.
	PromptAnswerInstructions = "answer_instructions"

	// PromptNoSources replaces the instruction block when no document is included.
	// It has no format placeholders.
	PromptNoSources = "no_sources"
)
