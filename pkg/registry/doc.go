// Package registry provides a generic, type-safe registry system
// used for managing type schemas and clone configurations. Registries
// are created explicitly and passed to their consumers; there is no
// package-level shared state.
package registry
