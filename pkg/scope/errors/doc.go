// Package errors provides rich error types for scope parsing and loading.
//
// Scope files are authored by tenants through a UI, so error messages carry
// source locations and suggested fixes rather than bare strings. ErrorList
// accumulates multiple errors so a single load pass can report every problem
// in a file instead of stopping at the first.
package errors
