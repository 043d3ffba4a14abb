// Package services holds domain services that span the order and device models.
//
// DeviceAllocator turns the inventory's view of the requested devices into
// order items, refusing devices that are missing or cannot be rented.
package services
