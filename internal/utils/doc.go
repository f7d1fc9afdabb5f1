// Package utils provides input validation and sanitizing shared by the
// store service and the front ends.
//
// Validation:
//   - Idea text: trimmed, non-empty, bounded length
//   - Blueprint text fields: bounded length per field
//   - Path ids: bounded length, safe characters only
//
// Sanitizing strips HTML from stored text using bluemonday's strict policy.
//
// Example Usage:
//
//	idea, err := utils.ValidateIdea(input)
//
//	s := utils.NewSanitizer()
//	s.Draft(&draft)
package utils
