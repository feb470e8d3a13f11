// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Lists and downloads candidate documents (Dropbox, local library)
//   - TextExtractor: Turns file bytes into plain text, per extension
//   - CompletionService: One-shot and streaming LLM completions
//   - CredentialProvider: Supplies the bearer token for the document store
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PromptStore: Custom prompts. Without it, built-in prompts are used.
//   - OAuthClient: Interactive connection flow. Without it, only token connect works.
//   - AnswerExporter, DirectoryWatcher: CLI conveniences.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
