package services

import "github.com/custodia-labs/coach/internal/core/ports/driven"

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const (
	defaultRelevanceJudgePrompt = `You are assessing whether a document helps answer a teacher's question about the Canvas LMS.

Question: %s

Document:
%s

Respond with ONLY a JSON object, no other text, using exactly these keys:
{
  "relevanceScore": <integer 0-100, 0 means the document does not help at all>,
  "confidence": <integer 0-100, how sure you are of the score>,
  "reasoning": "<one or two sentences>",
  "relevantSections": ["<verbatim excerpt, at most 3 excerpts of at most 300 words each>"],
  "summary": "<what the document says about the question>",
  "keyPoints": ["<at most 5 short points>"]
}`

	defaultRelevanceFallbackPrompt = `Rate from 0 to 100 how useful this excerpt is for answering the question. Reply with a single number only.

Question: %s

Excerpt:
%s

Score:`

	defaultAnswerInstructions = `INSTRUCTIONS:
You are Canvas Coach, an assistant for teachers using the Canvas LMS.
Search exhaustively through ALL documents below before answering; the answer may be spread over several documents.
Answer in the language of the question. Give concrete steps where the documents describe a procedure.
Cite the document names you used. If the documents do not contain the answer, say so explicitly.`

	defaultNoSourcesInstructions = `INSTRUCTIONS:
You are Canvas Coach, an assistant for teachers using the Canvas LMS.
No relevant source documents were found for this question.
Start your answer by stating clearly that no relevant source was found in the user's documents.
Then answer from general knowledge of the Canvas LMS, in the language of the question, and do not claim that the answer comes from the documents.`
)

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptRelevanceJudge:     defaultRelevanceJudgePrompt,
		driven.PromptRelevanceFallback:  defaultRelevanceFallbackPrompt,
		driven.PromptAnswerInstructions: defaultAnswerInstructions,
		driven.PromptNoSources:          defaultNoSourcesInstructions,
	}
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}
