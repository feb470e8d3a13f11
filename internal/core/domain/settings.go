package domain

import (
	"strconv"
	"strings"
)

const unknownDescription = "Unknown"

// LLMProvider identifies the hosted completion service.
type LLMProvider string

// Available LLM providers.
const (
	// LLMProviderGemini is the Gemini API with an API key.
	LLMProviderGemini LLMProvider = "gemini"

	// LLMProviderVertex is Gemini on Google Cloud Vertex AI.
	LLMProviderVertex LLMProvider = "vertex"
)

// IsValid returns true if the provider is recognised.
func (p LLMProvider) IsValid() bool {
	return p == LLMProviderGemini || p == LLMProviderVertex
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p LLMProvider) RequiresAPIKey() bool {
	return p == LLMProviderGemini
}

// String returns the string representation.
func (p LLMProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p LLMProvider) Description() string {
	switch p {
	case LLMProviderGemini:
		return "Gemini API (API key)"
	case LLMProviderVertex:
		return "Gemini on Vertex AI (Google Cloud credentials)"
	default:
		return unknownDescription
	}
}

// PipelineSettings tunes context assembly.
type PipelineSettings struct {
	// MaxContextChars is the character budget of the assembled prompt.
	MaxContextChars int

	// FetchConcurrency caps parallel document downloads.
	FetchConcurrency int

	// JudgeConcurrency caps parallel LLM relevance judgements.
	JudgeConcurrency int

	// JudgeTextLimit is how many characters of a document the judge sees.
	JudgeTextLimit int

	// MaxFiles caps how many candidate files one question fetches.
	MaxFiles int

	// DefaultMode is used when a request does not name a mode.
	DefaultMode AskMode
}

// ScoringSettings holds heuristic scorer weights.
type ScoringSettings struct {
	// TermWeight is added per case-insensitive term occurrence.
	TermWeight int

	// EmphasisBonus is added once per term found labelled or emphasised.
	EmphasisBonus int

	// InstructionBonus is added per occurrence of an instructional word.
	InstructionBonus int

	// PriorityHigh is the score above which a document is HIGH priority.
	PriorityHigh int

	// PriorityMedium is the score above which a document is MEDIUM priority.
	PriorityMedium int
}

// RankingSettings configures the smart-search ranker.
type RankingSettings struct {
	// RelevanceFloor drops results whose rescaled score is at or below it.
	RelevanceFloor int
}

// LLMSettings holds completion service configuration.
type LLMSettings struct {
	Provider LLMProvider
	Model    string

	// APIKey is required for the Gemini API.
	APIKey string

	// BaseURL overrides the Gemini API endpoint.
	BaseURL string

	// Project and Location are required for Vertex AI.
	Project  string
	Location string

	// RequestsPerSecond throttles calls to the provider.
	RequestsPerSecond int
}

// IsConfigured returns true if the provider can be constructed.
func (l LLMSettings) IsConfigured() bool {
	switch l.Provider {
	case LLMProviderGemini:
		return l.APIKey != ""
	case LLMProviderVertex:
		return l.Project != "" && l.Location != ""
	default:
		return false
	}
}

// DropboxSettings holds document store configuration.
type DropboxSettings struct {
	// AppKey and AppSecret identify the registered Dropbox app.
	AppKey    string
	AppSecret string

	// Root is the folder to enumerate; empty means the whole account.
	Root string

	// NameFilter keeps only files whose name contains one of these keywords.
	NameFilter []string

	// RequestsPerSecond throttles API calls.
	RequestsPerSecond int
}

// OAuthSettings configures the local authorisation callback.
type OAuthSettings struct {
	RedirectPort int
}

// AppSettings is the complete application configuration.
type AppSettings struct {
	Pipeline PipelineSettings
	Scoring  ScoringSettings
	Ranking  RankingSettings
	LLM      LLMSettings
	Dropbox  DropboxSettings
	OAuth    OAuthSettings
}

// DefaultAppSettings returns the defaults used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Pipeline: PipelineSettings{
			MaxContextChars:  180000,
			FetchConcurrency: 6,
			JudgeConcurrency: 4,
			JudgeTextLimit:   30000,
			MaxFiles:         40,
			DefaultMode:      AskModeHeuristic,
		},
		Scoring: ScoringSettings{
			TermWeight:       10,
			EmphasisBonus:    5,
			InstructionBonus: 3,
			PriorityHigh:     50,
			PriorityMedium:   20,
		},
		Ranking: RankingSettings{
			RelevanceFloor: 10,
		},
		LLM: LLMSettings{
			Provider:          LLMProviderGemini,
			Model:             "gemini-2.0-flash",
			Location:          "europe-west4",
			RequestsPerSecond: 5,
		},
		Dropbox: DropboxSettings{
			RequestsPerSecond: 8,
		},
		OAuth: OAuthSettings{
			RedirectPort: 53682,
		},
	}
}

// Lookup returns the display value of a setting by its dotted key.
func (s AppSettings) Lookup(key string) (string, bool) {
	itoa := strconv.Itoa
	switch key {
	case "pipeline.max_context_chars":
		return itoa(s.Pipeline.MaxContextChars), true
	case "pipeline.fetch_concurrency":
		return itoa(s.Pipeline.FetchConcurrency), true
	case "pipeline.judge_concurrency":
		return itoa(s.Pipeline.JudgeConcurrency), true
	case "pipeline.judge_text_limit":
		return itoa(s.Pipeline.JudgeTextLimit), true
	case "pipeline.max_files":
		return itoa(s.Pipeline.MaxFiles), true
	case "pipeline.default_mode":
		return string(s.Pipeline.DefaultMode), true
	case "scoring.term_weight":
		return itoa(s.Scoring.TermWeight), true
	case "scoring.emphasis_bonus":
		return itoa(s.Scoring.EmphasisBonus), true
	case "scoring.instruction_bonus":
		return itoa(s.Scoring.InstructionBonus), true
	case "scoring.priority_high":
		return itoa(s.Scoring.PriorityHigh), true
	case "scoring.priority_medium":
		return itoa(s.Scoring.PriorityMedium), true
	case "ranking.relevance_floor":
		return itoa(s.Ranking.RelevanceFloor), true
	case "llm.provider":
		return string(s.LLM.Provider), true
	case "llm.model":
		return s.LLM.Model, true
	case "llm.api_key":
		return s.LLM.APIKey, true
	case "llm.base_url":
		return s.LLM.BaseURL, true
	case "llm.project":
		return s.LLM.Project, true
	case "llm.location":
		return s.LLM.Location, true
	case "llm.requests_per_second":
		return itoa(s.LLM.RequestsPerSecond), true
	case "dropbox.app_key":
		return s.Dropbox.AppKey, true
	case "dropbox.app_secret":
		return s.Dropbox.AppSecret, true
	case "dropbox.root":
		return s.Dropbox.Root, true
	case "dropbox.name_filter":
		return strings.Join(s.Dropbox.NameFilter, ", "), true
	case "dropbox.requests_per_second":
		return itoa(s.Dropbox.RequestsPerSecond), true
	case "oauth.redirect_port":
		return itoa(s.OAuth.RedirectPort), true
	default:
		return "", false
	}
}
