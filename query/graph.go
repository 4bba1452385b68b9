package query

import (
	"github.com/veloxdb/velox/dialect/sql/sqlgraph"
	"github.com/veloxdb/velox/metadata"
	"github.com/veloxdb/velox/schema/field"
)

// BuildGraph resolves descriptors for every schema value and assembles the
// sqlgraph.Schema the J (include/join) and X (predicate) components consult.
// It is the bridge from the struct-tag-free metadata registry to the
// table/column graph those packages are written against.
func BuildGraph(reg *metadata.Registry, schemas ...any) (*sqlgraph.Schema, error) {
	descs := make([]*metadata.EntityDescriptor, 0, len(schemas))
	byName := make(map[string]*metadata.EntityDescriptor, len(schemas))
	for _, s := range schemas {
		d, err := reg.DescriptorFor(s)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
		byName[d.Name] = d
	}

	g := &sqlgraph.Schema{}
	for _, d := range descs {
		g.Nodes = append(g.Nodes, nodeFor(d))
	}
	for _, d := range descs {
		for _, e := range d.Edges {
			target := byName[e.TargetType]
			spec := edgeSpecFor(d, target, e)
			if err := g.AddE(e.Name, spec, d.Name, e.TargetType); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func nodeFor(d *metadata.EntityDescriptor) *sqlgraph.Node {
	fields := make(map[string]*sqlgraph.FieldSpec, len(d.Columns))
	for _, c := range d.Columns {
		if c == d.PK {
			continue
		}
		fields[c.Name] = &sqlgraph.FieldSpec{Column: c.Column, Type: fieldTypeOf(c.GoType)}
	}
	return &sqlgraph.Node{
		Type: d.Name,
		NodeSpec: sqlgraph.NodeSpec{
			Table: d.Table,
			ID:    &sqlgraph.FieldSpec{Column: d.PK.Column, Type: fieldTypeOf(d.PK.GoType)},
		},
		Fields: fields,
	}
}

// edgeSpecFor translates a metadata.RelationshipEdge into the EdgeSpec shape
// dialect/sql/sqlgraph.walk expects: Inverse set when the FK lives on the
// owning node's own table (metadata.ToOne), clear when it lives on the
// target's table (metadata.ToMany), and a two-column junction spec for
// metadata.ManyToMany.
func edgeSpecFor(owner, target *metadata.EntityDescriptor, e *metadata.RelationshipEdge) *sqlgraph.EdgeSpec {
	switch e.Kind {
	case metadata.ToOne:
		return &sqlgraph.EdgeSpec{
			Rel:     sqlgraph.O2O,
			Inverse: true,
			Table:   owner.Table,
			Columns: []string{e.OwnerFK},
		}
	case metadata.ToMany:
		table := ""
		if target != nil {
			table = target.Table
		}
		return &sqlgraph.EdgeSpec{
			Rel:     sqlgraph.O2M,
			Inverse: false,
			Table:   table,
			Columns: []string{e.InverseFK},
		}
	default: // metadata.ManyToMany
		return &sqlgraph.EdgeSpec{
			Rel:     sqlgraph.M2M,
			Table:   e.JunctionTable,
			Columns: []string{e.LeftFK, e.RightFK},
		}
	}
}

func fieldTypeOf(goType string) field.Type {
	switch goType {
	case "string":
		return field.TypeString
	case "bool":
		return field.TypeBool
	case "int":
		return field.TypeInt
	case "int8":
		return field.TypeInt8
	case "int16":
		return field.TypeInt16
	case "int32":
		return field.TypeInt32
	case "int64":
		return field.TypeInt64
	case "uint":
		return field.TypeUint
	case "uint8":
		return field.TypeUint8
	case "uint16":
		return field.TypeUint16
	case "uint32":
		return field.TypeUint32
	case "uint64":
		return field.TypeUint64
	case "float32":
		return field.TypeFloat32
	case "float64":
		return field.TypeFloat64
	case "time.Time":
		return field.TypeTime
	case "uuid.UUID":
		return field.TypeUUID
	default:
		return field.TypeOther
	}
}
