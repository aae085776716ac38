// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration in ~/.comply/config.toml
//   - PromptStore: user-editable prompt templates in ~/.comply/prompts
//   - PromptWatcher: reloads the prompt cache when a template file changes
package file
