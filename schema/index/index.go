// Package index provides fluent builders for defining composite and
// unique indexes in Velox ORM schemas.
package index

import "github.com/veloxdb/velox/schema"

// Descriptor is the reflective index metadata produced by a schema's
// Indexes() method, consumed by H when emitting CREATE INDEX statements.
type Descriptor struct {
	Fields      []string
	Edges       []string
	Unique      bool
	StorageKey  string
	Annotations []schema.Annotation
}

// Builder accumulates a Descriptor via chained calls, finished with
// Descriptor().
type Builder struct {
	desc *Descriptor
}

// Fields starts (or extends) an index over the given field names.
func Fields(names ...string) *Builder {
	return &Builder{desc: &Descriptor{Fields: names}}
}

// Edges starts (or extends) an index that additionally covers the foreign
// key column(s) of the named edges — typically used for per-tenant
// uniqueness constraints (e.g. unique "slug" scoped to "organization").
func Edges(names ...string) *Builder {
	return &Builder{desc: &Descriptor{Edges: names}}
}

// Fields appends field names to an index started with Edges.
func (b *Builder) Fields(names ...string) *Builder {
	b.desc.Fields = append(b.desc.Fields, names...)
	return b
}

// Edges appends edge names to an index.
func (b *Builder) Edges(names ...string) *Builder {
	b.desc.Edges = append(b.desc.Edges, names...)
	return b
}

// Unique marks the index UNIQUE.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// StorageKey overrides the generated index name.
func (b *Builder) StorageKey(name string) *Builder {
	b.desc.StorageKey = name
	return b
}

// Annotations attaches annotations to the index.
func (b *Builder) Annotations(annotations ...schema.Annotation) *Builder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor returns the accumulated index descriptor.
func (b *Builder) Descriptor() *Descriptor { return b.desc }
