// Package services defines the shared error taxonomy used by planners and
// executors.
//
// Sentinel markers classify failures (validation, configuration, conflict,
// external tool, transient I/O), and Wrap composes them with stage and
// operation context into a single error chain. Executors record per-item
// failures as strings and keep going; only a missing scan root is fatal.
package services
