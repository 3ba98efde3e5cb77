// Package store synchronizes lattice records with DynamoDB.
//
// The mapper core in package model produces and consumes in-memory typed
// items; this package owns the round trip. [Store.Save] creates
// unpersisted records with a conditional full put and updates persisted
// ones with a partial expression built from the record's changed fields,
// SET for new values and REMOVE for fields cleared to nil, so unchanged
// attributes never travel. [Store.Find] hydrates a clean record from a
// GetItem result.
//
// Transient-failure retry, query planning, and table provisioning belong
// to callers; the store maps only conditional-check failures onto its
// sentinel errors and passes everything else through unchanged, including
// item-size rejections.
//
// # Errors
//
//   - [ErrNotFound] - no item for the requested id
//   - [ErrAlreadyExists] - create hit an existing id
//   - [ErrMissingID] - record has no usable id value
package store
