// Package file provides file-based implementations of the configuration
// ports: a TOML config store at ~/.scanprep/config.toml and an editable
// prompt template store under ~/.scanprep/prompts/.
package file
