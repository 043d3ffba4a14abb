// Package device models what the orders domain knows about rentable devices:
// their condition status as reported by the inventory service, the state to
// restore a device to once its order finishes, and the unavailability error
// raised when the inventory cannot satisfy a request.
package device
