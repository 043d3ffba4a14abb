// Package ports declares the interfaces the application core needs from the
// outside world: persistence behind a unit of work, the device inventory, the
// identity directory, the message broker and the idempotency key store.
package ports
