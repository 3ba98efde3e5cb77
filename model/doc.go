// Package model is the typed-attribute core of the lattice object mapper
// for DynamoDB.
//
// Application code declares named, typed fields on a [Definition]; records
// built from a definition coerce values between the typed domain and the
// DynamoDB attribute representation, track which fields changed since the
// last clean point, resolve defaults per record, and compose field sets
// across single-table inheritance hierarchies.
//
// # Key Features
//
//   - Eager type casting on write (invalid values fail at the call site)
//   - Lazy dirty tracking with structural before/after comparison
//   - Producer defaults invoked fresh per record, never shared
//   - Snapshot-and-overlay field inheritance for single-table hierarchies
//   - Storage aliases and pluggable per-field serializers
//   - Accessor wrapping with the generated accessor as the base
//
// # Declaring Types
//
//	account := model.Define("account", "accounts").
//		Field("email", coerce.String).
//		Field("visits", coerce.Integer, model.WithDefault(0)).
//		Field("deliverable", coerce.Boolean).
//		Field("tags", coerce.Serialized, model.WithDefaultFunc(func() any {
//			return map[string]any{}
//		}))
//
// Subtypes share the parent's table and snapshot its field set:
//
//	admin := account.Extend("admin").
//		Field("scopes", coerce.Serialized)
//
// # Records
//
//	rec, err := account.New(map[string]any{"email": "a@example.com"})
//	rec.Set("visits", "101")      // casts to int64(101)
//	rec.ChangedFields()           // ["id", "type", "email", "visits"]
//	item, err := rec.DumpItem(false)
//	rec2, err := model.Hydrate(account, item)
//
// # Errors
//
//   - [UnknownFieldError] - name absent from the field set
//   - [TypeCastError] - value cannot be coerced to the declared type
//   - [SerializationError] - a serialized-field codec failed
package model
