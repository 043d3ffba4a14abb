// Package kernel holds the value objects shared by every aggregate of the
// orders domain: UUID identifiers and recipient Email addresses.
//
// Both are immutable and must be built through their constructors; a zero
// value fails Validate.
package kernel
