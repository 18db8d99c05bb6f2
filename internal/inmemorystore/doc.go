// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the taskstore.Store interface.
//
// # Purpose
//
// This package keeps task state rows for a single scheduler run. Rows live in
// a sync.Map keyed by (cycle, name, submit_num), so writers updating
// different task instances never contend on a shared lock.
//
// # Characteristics
//
//   - **Ephemeral:** Created fresh for each run, nothing is written to disk
//   - **Thread-Safe:** Uses sync.Map for concurrent access
//   - **Stable Order:** Selects return rows in first-write order
//
// # When to Use
//
// This implementation is suitable for:
//   - Simulated runs and validation
//   - Tests of the task pool
//
// A run that must survive a restart needs a persistent implementation.
package inmemorystore
