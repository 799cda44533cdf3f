// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.docqa.
//
// Adapters:
//   - ConfigStore: TOML configuration with dot-path keys
//   - PromptStore: user-editable prompt templates
package file
