// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML configuration (YAML accepted on read)
//   - PromptStore: user-editable prompt files with embedded defaults
package file
