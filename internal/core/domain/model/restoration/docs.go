// Package restoration models the ledger of device restorations owed by
// finished orders. A Restoration is opened in the same transaction that
// finishes its order and can be completed exactly once.
package restoration
