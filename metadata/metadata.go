package metadata

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"
	"golang.org/x/sync/singleflight"

	"github.com/veloxdb/velox"
	"github.com/veloxdb/velox/schema/edge"
	"github.com/veloxdb/velox/schema/field"
	"github.com/veloxdb/velox/schema/index"
)

// ColumnFlag is a bit in a ColumnDescriptor's flag set (spec.md §3
// "ColumnDescriptor").
type ColumnFlag uint8

const (
	FlagPrimaryKey ColumnFlag = 1 << iota
	FlagAutoIncrement
	FlagStringPreferred
	FlagNullable
	FlagIndexed
)

// Has reports whether f has every bit of test set.
func (f ColumnFlag) Has(test ColumnFlag) bool { return f&test == test }

// ColumnDescriptor is the immutable per-field metadata spec.md §3 names.
type ColumnDescriptor struct {
	Name    string // logical field name, e.g. "CreatedAt"
	Column  string // wire column name, e.g. "created_at"
	GoType  string // e.g. "string", "int64", "time.Time"
	Flags   ColumnFlag
	Default any
	Field   *field.Descriptor // handle back to the declaring field
}

// EdgeKind tags a RelationshipEdge's variant (spec.md §3).
type EdgeKind int

const (
	ToOne EdgeKind = iota
	ToMany
	ManyToMany
)

// RelationshipEdge is a tagged-union navigation edge from one
// EntityDescriptor to another.
type RelationshipEdge struct {
	Kind EdgeKind
	Name string

	// TargetType is the navigated-to entity's Go type name, resolved
	// lazily through the owning Registry (so cyclic schemas don't deadlock
	// descriptorFor).
	TargetType string

	// ToOne
	OwnerFK  string // FK column on this side's table
	TargetPK string // PK column on the target's table

	// ToMany (inverse of a ToOne declared on the target)
	InverseFK string

	// ManyToMany
	JunctionTable string
	LeftFK        string
	RightFK       string

	Unique   bool
	Required bool
}

// EntityDescriptor is the immutable, process-cached metadata summary of a
// domain type (spec.md §3).
type EntityDescriptor struct {
	Type    reflect.Type
	Name    string // Go type name, e.g. "User"
	Table   string
	Columns []*ColumnDescriptor
	PK      *ColumnDescriptor
	Edges   []*RelationshipEdge

	byColumn map[string]*ColumnDescriptor
	byName   map[string]*ColumnDescriptor
	byEdge   map[string]*RelationshipEdge
}

// Column looks up a column descriptor by its wire column name.
func (d *EntityDescriptor) Column(column string) (*ColumnDescriptor, bool) {
	c, ok := d.byColumn[column]
	return c, ok
}

// Field looks up a column descriptor by its logical field name.
func (d *EntityDescriptor) Field(name string) (*ColumnDescriptor, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// Edge looks up a relationship edge by its navigation name.
func (d *EntityDescriptor) Edge(name string) (*RelationshipEdge, bool) {
	e, ok := d.byEdge[name]
	return e, ok
}

// ColumnMap returns the ordered {columnName -> ColumnDescriptor} mapping
// spec.md §4.1 names, in declaration order.
func (d *EntityDescriptor) ColumnMap() []*ColumnDescriptor {
	out := make([]*ColumnDescriptor, len(d.Columns))
	copy(out, d.Columns)
	return out
}

// schemaSource is the duck-typed surface a schema definition must provide.
// velox.Schema supplies a zero-value default for every method, so embedders
// only override what they use.
type schemaSource interface {
	Fields() []velox.Field
	Edges() []velox.Edge
	Indexes() []velox.Index
	Mixin() []velox.Mixin
	Config() velox.Config
}

// Registry builds and caches EntityDescriptors for a family of related
// schema definitions. Schemas must be registered (so FK/navigation targets
// named by type can be resolved) before DescriptorFor is called on any
// schema that references another by name.
//
// A Registry is safe for concurrent use: cache population is read-mostly
// after warm-up (spec.md §5 "Shared-resource policy") and concurrent
// descriptorFor misses for the same type collapse into a single build via
// singleflight, matching the "concurrent readers must see either a
// fully-populated or absent entry" invariant.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]schemaSource // type name -> schema instance
	cache   map[string]*EntityDescriptor
	group   singleflight.Group
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		schemas: make(map[string]schemaSource),
		cache:   make(map[string]*EntityDescriptor),
	}
}

func typeNameOf(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// Register adds schema definitions to the registry by their Go type name,
// so other schemas' edges can resolve navigation targets named by type.
// Register does not itself build any EntityDescriptor.
func (r *Registry) Register(schemas ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range schemas {
		src, ok := s.(schemaSource)
		if !ok {
			return fmt.Errorf("metadata: %T does not implement the schema surface (embed velox.Schema)", s)
		}
		name := typeNameOf(s)
		if name == "" {
			return fmt.Errorf("metadata: cannot name type %T", s)
		}
		r.schemas[name] = src
	}
	return nil
}

// DescriptorFor returns the EntityDescriptor for schema, building and
// caching it on first call (spec.md §4.1 "descriptorFor(T)", idempotent
// and memoised).
func (r *Registry) DescriptorFor(schema any) (*EntityDescriptor, error) {
	name := typeNameOf(schema)
	if name == "" {
		return nil, velox.NewMetadataError(fmt.Sprintf("%T", schema), "cannot determine type name")
	}
	r.mu.RLock()
	if d, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return d, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.group.Do(name, func() (any, error) {
		r.mu.RLock()
		if d, ok := r.cache[name]; ok {
			r.mu.RUnlock()
			return d, nil
		}
		r.mu.RUnlock()
		d, err := r.build(name, schema)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[name] = d
		r.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EntityDescriptor), nil
}

// Lookup returns the cached descriptor for the named type without
// building it, for use while resolving another descriptor's FK targets.
func (r *Registry) Lookup(typeName string) (*EntityDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.cache[typeName]
	return d, ok
}

func (r *Registry) schemaOf(typeName string) (schemaSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[typeName]
	return s, ok
}

// build performs the one-time reflective extraction described by spec.md
// §4.1: it merges mixins, resolves the field list, infers table name and
// primary key, and translates edge.Descriptors into RelationshipEdges.
func (r *Registry) build(name string, schemaVal any) (*EntityDescriptor, error) {
	src, ok := schemaVal.(schemaSource)
	if !ok {
		return nil, velox.NewMetadataError(name, "does not implement the schema surface (embed velox.Schema)")
	}

	fields, edges, indexes := mergeMixins(src)

	if len(fields) == 0 {
		return nil, velox.NewMetadataError(name, "no fields declared (no entity annotation present)")
	}

	columns := make([]*ColumnDescriptor, 0, len(fields))
	byColumn := make(map[string]*ColumnDescriptor, len(fields))
	byName := make(map[string]*ColumnDescriptor, len(fields))
	var pk *ColumnDescriptor

	for _, fd := range fields {
		col := fd.StorageKey
		if col == "" {
			col = fd.Name
		}
		if _, dup := byColumn[col]; dup {
			return nil, velox.NewMetadataError(name, fmt.Sprintf("duplicate column name %q", col))
		}
		var flags ColumnFlag
		if fd.Nillable || fd.Optional {
			flags |= FlagNullable
		}
		if len(fd.EnumValues) > 0 {
			flags |= FlagStringPreferred
		}
		if strings.EqualFold(fd.Name, "id") {
			flags |= FlagPrimaryKey
			if fd.Info != nil && (fd.Info.Ident == "int" || fd.Info.Ident == "int64" || fd.Info.Ident == "uint64") {
				flags |= FlagAutoIncrement
			}
		}
		cd := &ColumnDescriptor{
			Name:    fd.Name,
			Column:  col,
			GoType:  goTypeOf(fd),
			Flags:   flags,
			Default: fd.Default,
			Field:   fd,
		}
		columns = append(columns, cd)
		byColumn[col] = cd
		byName[fd.Name] = cd
		if flags.Has(FlagPrimaryKey) {
			if pk != nil {
				return nil, velox.NewMetadataError(name, fmt.Sprintf("multiple primary-key columns: %q and %q", pk.Column, cd.Column))
			}
			pk = cd
		}
	}
	if pk == nil {
		return nil, velox.NewMetadataError(name, "no primary-key column (expected a field named \"id\")")
	}

	for _, idx := range indexes {
		for _, fname := range idx.Fields {
			if c, ok := byName[fname]; ok {
				c.Flags |= FlagIndexed
			}
		}
	}

	relEdges := make([]*RelationshipEdge, 0, len(edges))
	byEdge := make(map[string]*RelationshipEdge, len(edges))
	for _, ed := range edges {
		re, err := r.resolveEdge(name, byColumn, ed)
		if err != nil {
			return nil, err
		}
		relEdges = append(relEdges, re)
		byEdge[re.Name] = re
	}

	table := name
	if cfg := src.Config(); cfg.Table != "" {
		table = cfg.Table
	} else {
		table = inflect.Pluralize(strings.ToLower(table[:1]) + table[1:])
	}

	return &EntityDescriptor{
		Type:     reflect.TypeOf(schemaVal),
		Name:     name,
		Table:    table,
		Columns:  columns,
		PK:       pk,
		Edges:    relEdges,
		byColumn: byColumn,
		byName:   byName,
		byEdge:   byEdge,
	}, nil
}

// resolveEdge translates one edge.Descriptor into a RelationshipEdge,
// checking only that the target type is registered; FK column names
// ("<lowercased type name>_id") are derived from type names, so the target
// need not have been built yet.
func (r *Registry) resolveEdge(owner string, ownerCols map[string]*ColumnDescriptor, ed *edge.Descriptor) (*RelationshipEdge, error) {
	if _, ok := r.schemaOf(ed.Type); !ok {
		return nil, velox.NewMetadataError(owner, fmt.Sprintf("edge %q references unregistered type %q", ed.Name, ed.Type))
	}

	fkColumn := func(typeName string) string {
		return strings.ToLower(typeName) + "_id"
	}

	switch {
	case ed.Through != nil:
		left := fkColumn(owner)
		right := fkColumn(ed.Type)
		table := inflect.Pluralize(strings.ToLower(owner)) + "_" + inflect.Pluralize(strings.ToLower(ed.Type))
		if ed.StorageKey != nil && ed.StorageKey.Table != "" {
			table = ed.StorageKey.Table
		}
		if ed.StorageKey != nil && len(ed.StorageKey.Columns) == 2 {
			left, right = ed.StorageKey.Columns[0], ed.StorageKey.Columns[1]
		}
		return &RelationshipEdge{
			Kind: ManyToMany, Name: ed.Name, TargetType: ed.Type,
			JunctionTable: table, LeftFK: left, RightFK: right,
			Unique: ed.Unique, Required: ed.Required,
		}, nil

	// edge.From(...).Ref(...): the back-reference completing a .To edge
	// declared on the target type.
	case ed.Inverse:
		if ed.Unique {
			// The owning row physically stores the FK on its own table
			// (e.g. Post.author: posts.user_id -> users.id).
			fk := fkColumn(ed.Type)
			if ed.Field != "" {
				fk = ed.Field
			}
			if ed.StorageKey != nil && len(ed.StorageKey.Columns) == 1 {
				fk = ed.StorageKey.Columns[0]
			}
			if _, ok := ownerCols[fk]; !ok {
				return nil, velox.NewMetadataError(owner, fmt.Sprintf("edge %q field %q is not a declared column", ed.Name, fk))
			}
			return &RelationshipEdge{
				Kind: ToOne, Name: ed.Name, TargetType: ed.Type,
				OwnerFK: fk, TargetPK: "id", Unique: ed.Unique, Required: ed.Required,
			}, nil
		}
		fk := fkColumn(owner)
		if ed.Field != "" {
			fk = ed.Field
		}
		return &RelationshipEdge{
			Kind: ToMany, Name: ed.Name, TargetType: ed.Type,
			InverseFK: fk, Unique: ed.Unique, Required: ed.Required,
		}, nil

	// edge.To(...): the forward/owning declaration.
	default:
		if ed.Unique {
			// O2O forward: FK lives on this owner's own table.
			fk := fkColumn(ed.Type)
			if ed.Field != "" {
				fk = ed.Field
			}
			if ed.StorageKey != nil && len(ed.StorageKey.Columns) == 1 {
				fk = ed.StorageKey.Columns[0]
			}
			if _, ok := ownerCols[fk]; !ok {
				return nil, velox.NewMetadataError(owner, fmt.Sprintf("edge %q field %q is not a declared column", ed.Name, fk))
			}
			return &RelationshipEdge{
				Kind: ToOne, Name: ed.Name, TargetType: ed.Type,
				OwnerFK: fk, TargetPK: "id", Unique: ed.Unique, Required: ed.Required,
			}, nil
		}
		// O2M forward: FK lives on the target's table, pointing back at
		// this owner (spec.md §9 open question: the parent node's
		// descriptor is used unconditionally, never a placeholder type).
		fk := fkColumn(owner)
		if ed.StorageKey != nil && len(ed.StorageKey.Columns) == 1 {
			fk = ed.StorageKey.Columns[0]
		}
		return &RelationshipEdge{
			Kind: ToMany, Name: ed.Name, TargetType: ed.Type,
			InverseFK: fk, Unique: ed.Unique, Required: ed.Required,
		}, nil
	}
}

// mergeMixins flattens a schema's own Fields/Edges/Indexes with those
// contributed by its Mixin() list, in mixin-then-own declaration order,
// matching the teacher's mixin composition convention
// (contrib/mixin, schema/mixin).
func mergeMixins(src schemaSource) ([]*field.Descriptor, []*edge.Descriptor, []*index.Descriptor) {
	var fields []*field.Descriptor
	var edges []*edge.Descriptor
	var indexes []*index.Descriptor

	for _, m := range src.Mixin() {
		for _, f := range m.Fields() {
			fields = append(fields, f.Descriptor())
		}
		for _, e := range m.Edges() {
			edges = append(edges, e.Descriptor())
		}
		for _, i := range m.Indexes() {
			indexes = append(indexes, i.Descriptor())
		}
	}
	for _, f := range src.Fields() {
		fields = append(fields, f.Descriptor())
	}
	for _, e := range src.Edges() {
		edges = append(edges, e.Descriptor())
	}
	for _, i := range src.Indexes() {
		indexes = append(indexes, i.Descriptor())
	}
	return fields, edges, indexes
}

func goTypeOf(fd *field.Descriptor) string {
	if fd.Info == nil {
		return "any"
	}
	return fd.Info.Ident
}

// SortedEdgeNames returns the navigation edge names of d in lexical order,
// useful for deterministic iteration in tests and diagnostics.
func (d *EntityDescriptor) SortedEdgeNames() []string {
	names := make([]string, 0, len(d.Edges))
	for _, e := range d.Edges {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
