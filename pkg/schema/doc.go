// Package schema holds the entity metadata registry: table, column, and
// relation descriptors accumulated when entity structs are declared and
// consulted by the query composer at compile time.
//
// Relation types beyond HasMany (BelongsTo, HasOne, ManyToMany) are
// parsed and stored here but not realized by the query composer's
// Include operation, which only knows how to widen a projection across
// a one-to-many join. Composing one of the other kinds returns a
// SchemaError: making them full citizens would require deciding how a
// to-one relation's dot-prefixed columns collapse during rehydration
// and how a many-to-many junction table is named and joined.
package schema
