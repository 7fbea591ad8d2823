// Package config loads and validates parley configuration.
//
// Configuration is YAML with two conveniences:
//
//   - ${VAR_NAME} patterns are expanded from the environment before
//     parsing, so secrets like the Groq API key stay out of the file
//   - duration fields are written as Go duration strings ("30s", "1h")
//
// Default() returns a runnable configuration for the common case where no
// file exists; Load(path) reads, expands, parses, and validates a file.
package config
