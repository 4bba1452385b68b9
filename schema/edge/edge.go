package edge

import (
	"reflect"

	"github.com/veloxdb/velox/schema"
)

// ThroughInfo names the join-table entity an M2M edge is routed through.
type ThroughInfo struct {
	N string // edge name on the through entity
	T string // through entity's type name
}

// StorageKey overrides the column(s)/table/constraint-name an edge is
// physically stored under (spec.md §4.1 "storage key override").
type StorageKey struct {
	Table   string
	Columns []string
	Symbols []string
}

// StorageKeyOption configures a StorageKey; see Table, Columns, Column,
// Symbol and Symbols.
type StorageKeyOption func(*StorageKey)

// Table sets the join table name (M2M edges).
func Table(name string) StorageKeyOption {
	return func(k *StorageKey) { k.Table = name }
}

// Columns sets the foreign-key column names.
func Columns(cols ...string) StorageKeyOption {
	return func(k *StorageKey) { k.Columns = cols }
}

// Column is Columns for the common single-column case.
func Column(col string) StorageKeyOption {
	return func(k *StorageKey) { k.Columns = []string{col} }
}

// Symbol sets the foreign-key constraint name.
func Symbol(s string) StorageKeyOption {
	return func(k *StorageKey) { k.Symbols = []string{s} }
}

// Symbols sets the constraint names for a multi-column (M2M) foreign key.
func Symbols(ss ...string) StorageKeyOption {
	return func(k *StorageKey) { k.Symbols = ss }
}

// Descriptor is the reflective edge metadata produced by a schema's
// Edges() method. A bidirectional declaration (edge.To(...).From(...))
// produces two Descriptors, each pointing at the other via Ref.
type Descriptor struct {
	Name        string
	Type        string // referenced entity's type name
	Inverse     bool
	Unique      bool
	Required    bool
	Immutable   bool
	Comment     string
	Tag         string
	Field       string
	RefName     string // set by edge.From(...).Ref(name) (single-sided form)
	Through     *ThroughInfo
	StorageKey  *StorageKey
	Annotations []schema.Annotation
	Ref         *Descriptor // the other side, for a bidirectional declaration
}

// Builder accumulates a Descriptor (or a bidirectional pair) via chained
// calls, finished with Descriptor().
type Builder struct {
	desc *Descriptor
}

func typeName(typ any) string {
	t := reflect.TypeOf(typ)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// To declares the forward (association) side of an edge to the entity
// type of typ, e.g. edge.To("posts", Post{}).
func To(name string, typ any) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: typeName(typ)}}
}

// From declares the inverse (back-reference) side of an edge, to be
// completed with Ref to name the association side it points back to.
func From(name string, typ any) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: typeName(typ), Inverse: true}}
}

// Descriptor returns the currently focused edge descriptor.
func (b *Builder) Descriptor() *Descriptor { return b.desc }

// Unique marks the current side O2O/O2M-unique.
func (b *Builder) Unique() *Builder { b.desc.Unique = true; return b }

// Required marks the current side non-optional.
func (b *Builder) Required() *Builder { b.desc.Required = true; return b }

// Immutable forbids the current side from being changed after creation.
func (b *Builder) Immutable() *Builder { b.desc.Immutable = true; return b }

// Comment attaches a comment to the current side.
func (b *Builder) Comment(c string) *Builder { b.desc.Comment = c; return b }

// StructTag attaches a raw Go struct tag to the current side.
func (b *Builder) StructTag(tag string) *Builder { b.desc.Tag = tag; return b }

// Field binds the current side to an already-declared foreign-key field.
func (b *Builder) Field(name string) *Builder { b.desc.Field = name; return b }

// Ref names the association-side edge an edge.From(...) back-reference
// points to (the single-sided inverse-declaration form).
func (b *Builder) Ref(name string) *Builder { b.desc.RefName = name; return b }

// Through routes an M2M edge through a join-table entity.
func (b *Builder) Through(name string, typ any) *Builder {
	b.desc.Through = &ThroughInfo{N: name, T: typeName(typ)}
	return b
}

// StorageKey overrides the current side's physical storage.
func (b *Builder) StorageKey(opts ...StorageKeyOption) *Builder {
	k := &StorageKey{}
	for _, opt := range opts {
		opt(k)
	}
	b.desc.StorageKey = k
	return b
}

// Annotations attaches annotations to the current side.
func (b *Builder) Annotations(annotations ...schema.Annotation) *Builder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// From completes a bidirectional declaration: it names the inverse side of
// the edge built so far and shifts focus to it, so every call chained
// after From applies to the inverse side while everything chained before
// it stays bound to the association side, reachable via Descriptor().Ref.
func (b *Builder) From(name string) *Builder {
	assoc := b.desc
	inv := &Descriptor{Name: name, Type: assoc.Type, Inverse: true}
	inv.Ref = assoc
	assoc.Ref = inv
	b.desc = inv
	return b
}
