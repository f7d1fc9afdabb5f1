// Package submission implements the idea submission lifecycle.
//
// A Controller validates idea text, runs at most one generation request at
// a time and exposes the result as immutable snapshots:
//
//	Idle -> Validating -> Idle(error)
//	                   -> Submitting -> Presenting(blueprint)
//	                                 -> Idle(error)
//
// Example Usage:
//
//	ctrl := submission.New(client, submission.WithLogger(logger))
//	defer ctrl.Close()
//	unsubscribe := ctrl.Subscribe(render)
//	defer unsubscribe()
//	err := ctrl.Submit(ctx, "A fintech app for freelancers")
package submission
