// Package value is the data model for validated records.
//
// A Value is a tagged union over five kinds: absent, primitive, nested
// record, reference and choice. A Record is an immutable, named, ordered
// collection of fields holding Values. Records are assembled once (normally
// by package builder) and never change afterwards: list fields are copied
// on assembly and exposed only through read-only List views.
//
// Fields shared by every resource-like record (id and extensions) live in
// CommonFields, which Record embeds by value.
package value
