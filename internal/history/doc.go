// Package history persists the outcome of every planning request.
//
// Each request, successful or not, becomes a Record stored as one JSON file
// in the plans directory (~/.roboplan/plans/<id>.json). Records keep the
// scene and instruction the plan was built from, so a plan can be audited
// or replayed without calling the perception model again.
//
// Key concepts:
//   - Record: one request, its inputs and either a plan or a failure
//   - Store: interface for saving, loading, listing and deleting records
//   - FileStore: Store backed by atomic JSON writes through fsops
package history
