// Package blueprint defines the startup blueprint entity and its error taxonomy.
//
// A Blueprint is the structured business-plan artifact produced for one
// business idea: an identity (name and pitch), a value proposition, a SWOT
// analysis and a marketing strategy. The SWOT and marketing groups are
// all-or-nothing records; a Blueprint never carries a partially filled group.
//
// Key Components:
//   - Blueprint, SWOT, Marketing: the entity and its grouped value objects
//   - Draft, Patch: create and update payloads for the store
//   - Parse: decoding of raw generation-service output
//   - ValidationError, GenerationError, StoreError, ErrNotFound
//
// Example:
//
//	bp, err := blueprint.Parse(rawModelOutput)
//	if err != nil {
//	    var gerr *blueprint.GenerationError
//	    errors.As(err, &gerr)
//	}
package blueprint
