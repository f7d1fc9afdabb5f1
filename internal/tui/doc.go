// Package tui holds the interactive terminal prompts: delete confirmation,
// idea entry and the blueprint edit form.
package tui
