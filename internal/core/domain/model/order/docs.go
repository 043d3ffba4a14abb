// Package order contains the rental Order aggregate.
//
// An order bundles devices (items) for an assignee, moves forward through
// CREATED, IN_PROCESS, DISPATCHED and FINISHED, and keeps the status every
// device had when it was reserved so the devices can be restored once the
// order finishes. Notification status is tracked separately and never
// participates in the lifecycle.
package order
