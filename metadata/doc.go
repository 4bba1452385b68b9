// Package metadata implements the reflective entity-metadata registry (the
// "M" component of the query engine, spec.md §4.1): given a schema
// definition — a velox.Schema/velox.Viewer embedding type whose
// Fields/Edges/Indexes/Mixin/Config methods describe an entity — it builds
// an immutable EntityDescriptor carrying the table name, column list,
// primary key, and relationship edges, and caches it process-wide keyed by
// the schema's reflect.Type.
//
// Field discovery follows the teacher's schema DSL (schema/field,
// schema/edge, schema/index, schema/mixin) rather than struct tags: a
// schema's Fields() method is the entity-level annotation surface spec.md
// describes abstractly. A field named "id" (case-insensitively, after
// mixin composition) is the implicit primary key, mirroring the teacher's
// own ent-derived convention — there is no explicit PrimaryKey() builder
// method on field.Descriptor.
package metadata
