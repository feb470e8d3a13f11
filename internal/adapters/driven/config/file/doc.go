// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the coach home directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with environment overrides
//   - PromptStore: user-editable prompt templates
package file
