// Package collection implements management of the saved blueprint
// collection: load, refresh, search, create, update and delete against a
// store.Store.
//
// Every remote call runs as a cancellable task tagged with a sequence
// number. Confirmed writes are recorded with the sequence current at
// confirmation, and a list response is merged as follows:
//   - a list issued before an already applied list is discarded
//   - otherwise every write confirmed after the list was issued is replayed
//     on top of it
//
// A refresh issued before a delete therefore never brings the deleted
// blueprint back, whichever order the responses arrive in.
package collection
