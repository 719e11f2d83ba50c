// Package testutil provides utilities for testing mothball components.
//
// Key components:
//   - Env: bundles a schema set, configuration registry, and in-memory
//     sink, with the standard fixture types registered
//   - Company/Employee fixtures: the live and archived record shapes
//     used across engine tests
//   - File helpers for tests that exercise rule files on disk
//
// Usage guidelines:
//   - Engine tests should use Env with the in-memory sink
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil
