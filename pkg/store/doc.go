// Package store persists goal networks and their node positions.
//
// A [Store] loads the network of one user, replaces it wholesale, and
// updates the stored position of a single goal. Every Store is a
// [layout.PositionSaver], so it can be handed straight to a layout engine.
//
// # Backends
//
//   - memory: in-process maps, for tests and one-shot CLI runs
//   - file: one JSON document per user in a directory
//   - sqlite: a local database file (pure Go driver, no cgo)
//   - redis: goal hashes plus per-user id sets and edge lists
//   - mongo: goals and relationships collections
//
// [Open] selects a backend from a [Config]. Wrap a store with [Retrying] to
// retry transient failures with exponential backoff.
//
// # Visibility
//
// Network never returns goals of a [HiddenKinds] type, nor edges touching
// them. PutNetwork stores them anyway so no data is lost on a round trip
// through a client that filters differently.
//
// # Errors
//
// SavePosition rejects non-finite coordinates with INVALID_COORDINATE
// before touching the backend and reports an unknown goal with NOT_FOUND.
// Backend failures carry PERSISTENCE or NETWORK_ERROR codes; failures worth
// retrying are additionally wrapped in [RetryableError].
package store
