// Package services contains application services shared by the command
// handlers: resolving who must be notified about an order and publishing
// lifecycle events on a best-effort basis.
package services
