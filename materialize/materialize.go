// Package materialize implements the row materialiser (the "R" component,
// spec.md §4.8): converting a dialect/sql ColumnScanner's rows into Go
// values, driven by a metadata.EntityDescriptor rather than generated
// per-type Scan methods. It is the reflective counterpart of ent's
// generated *ent.XScan: one materialiser handles every registered entity.
package materialize

import (
	"database/sql"
	"fmt"
	"reflect"

	"github.com/veloxdb/velox"
	"github.com/veloxdb/velox/dialect/sql/schema"
	"github.com/veloxdb/velox/dialect/sqlschema"
	"github.com/veloxdb/velox/metadata"
	"github.com/veloxdb/velox/schema/field"
)

// Rows is the minimal scanning surface a materialiser consumes, satisfied
// by dialect/sql.Rows and by database/sql.Rows directly.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// Record is a single materialised row, keyed by logical field name (not
// wire column name), the shape a caller without a generated struct can
// consume directly.
type Record map[string]any

// Materializer scans Rows into Records or, via Into, into a caller-provided
// struct slice, resolving each wire column against an EntityDescriptor
// (spec.md §4.8 "bind columns by ordinal position, independent of SELECT
// order").
type Materializer struct {
	desc *metadata.EntityDescriptor
}

// New returns a Materializer bound to desc.
func New(desc *metadata.EntityDescriptor) *Materializer {
	return &Materializer{desc: desc}
}

// Records scans every row of rows into a Record, matching SELECT columns to
// the descriptor by name (unknown columns are ignored, missing columns are
// simply absent from the Record rather than an error, since a narrowed
// projection is a normal query shape).
func (m *Materializer) Records(rows Rows) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, velox.NewMaterialisationError("", err.Error())
	}
	plan, err := m.plan(cols)
	if err != nil {
		return nil, err
	}

	var out []Record
	for rows.Next() {
		dest := make([]any, len(cols))
		for i, cd := range plan {
			if cd == nil {
				var discard any
				dest[i] = &discard
				continue
			}
			dest[i] = newScanDest(cd)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, velox.NewMaterialisationError("", err.Error())
		}
		rec := make(Record, len(plan))
		for i, cd := range plan {
			if cd == nil {
				continue
			}
			v, err := readScanDest(cd, dest[i])
			if err != nil {
				return nil, velox.NewMaterialisationError(cd.Column, err.Error())
			}
			rec[cd.Name] = v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, velox.NewMaterialisationError("", err.Error())
	}
	return out, nil
}

// Into scans rows into dst, a pointer to a slice of struct pointers, by
// assigning each column's materialised value to the struct field sharing
// its logical field name (spec.md §4.8 "emit a concrete record for the
// caller's declared shape"). Fields not present on the destination type
// are skipped silently, matching Records' narrowed-projection tolerance.
func (m *Materializer) Into(rows Rows, dst any) error {
	records, err := m.Records(rows)
	if err != nil {
		return err
	}
	slicePtr := reflect.ValueOf(dst)
	if slicePtr.Kind() != reflect.Pointer || slicePtr.Elem().Kind() != reflect.Slice {
		return velox.NewUsageError("materialize.Into: dst must be a pointer to a slice")
	}
	elemType := slicePtr.Elem().Type().Elem()
	isPtr := elemType.Kind() == reflect.Pointer
	structType := elemType
	if isPtr {
		structType = elemType.Elem()
	}

	out := reflect.MakeSlice(slicePtr.Elem().Type(), 0, len(records))
	for _, rec := range records {
		sv := reflect.New(structType)
		for name, v := range rec {
			fv := sv.Elem().FieldByName(exportedName(name))
			if !fv.IsValid() || !fv.CanSet() || v == nil {
				continue
			}
			assign(fv, v)
		}
		if isPtr {
			out = reflect.Append(out, sv)
		} else {
			out = reflect.Append(out, sv.Elem())
		}
	}
	slicePtr.Elem().Set(out)
	return nil
}

// plan resolves each SELECT column name to its ColumnDescriptor, in
// ordinal order, so the scan targets line up with rows.Scan regardless of
// projection order.
func (m *Materializer) plan(cols []string) ([]*metadata.ColumnDescriptor, error) {
	plan := make([]*metadata.ColumnDescriptor, len(cols))
	for i, col := range cols {
		if cd, ok := m.desc.Column(col); ok {
			plan[i] = cd
		}
	}
	return plan, nil
}

func newScanDest(cd *metadata.ColumnDescriptor) any {
	if cd.Field != nil && cd.Field.ValueScanner != nil {
		var raw sql.NullString
		return &raw
	}
	switch cd.GoType {
	case "string":
		return new(sql.NullString)
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return new(sql.NullInt64)
	case "float32", "float64":
		return new(sql.NullFloat64)
	case "bool":
		return new(sql.NullBool)
	case "time.Time":
		return new(sql.NullTime)
	default:
		var v any
		return &v
	}
}

func readScanDest(cd *metadata.ColumnDescriptor, dest any) (any, error) {
	switch d := dest.(type) {
	case *sql.NullString:
		if !d.Valid {
			return nil, nil
		}
		return d.String, nil
	case *sql.NullInt64:
		if !d.Valid {
			return nil, nil
		}
		return coerceInt(cd.GoType, d.Int64), nil
	case *sql.NullFloat64:
		if !d.Valid {
			return nil, nil
		}
		return d.Float64, nil
	case *sql.NullBool:
		if !d.Valid {
			return nil, nil
		}
		return d.Bool, nil
	case *sql.NullTime:
		if !d.Valid {
			return nil, nil
		}
		return d.Time, nil
	case *any:
		return *d, nil
	default:
		return nil, fmt.Errorf("materialize: unsupported scan destination %T", dest)
	}
}

func coerceInt(goType string, v int64) any {
	switch goType {
	case "int":
		return int(v)
	case "int8":
		return int8(v)
	case "int16":
		return int16(v)
	case "int32":
		return int32(v)
	case "uint":
		return uint(v)
	case "uint8":
		return uint8(v)
	case "uint16":
		return uint16(v)
	case "uint32":
		return uint32(v)
	case "uint64":
		return uint64(v)
	default:
		return v
	}
}

func assign(fv reflect.Value, v any) {
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(fv.Type()) {
		fv.Set(rv)
		return
	}
	if rv.Type().ConvertibleTo(fv.Type()) {
		fv.Set(rv.Convert(fv.Type()))
	}
}

func exportedName(fieldName string) string {
	if fieldName == "" {
		return fieldName
	}
	b := []byte(fieldName)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// TableFor derives a schema.Table suitable for the H component from desc,
// turning a registered entity into DDL input without a second description
// of the same columns.
func TableFor(desc *metadata.EntityDescriptor) *schema.Table {
	t := &schema.Table{Name: desc.Table}
	for _, cd := range desc.Columns {
		col := &schema.Column{
			Name:      cd.Column,
			Type:      goTypeToFieldType(cd.GoType),
			Nullable:  cd.Flags.Has(metadata.FlagNullable),
			Increment: cd.Flags.Has(metadata.FlagAutoIncrement),
			Default:   cd.Default,
		}
		applySQLAnnotation(col, cd)
		t.AddColumn(col)
		if cd.Flags.Has(metadata.FlagPrimaryKey) {
			t.PrimaryKey = append(t.PrimaryKey, col)
		}
	}
	return t
}

// applySQLAnnotation overlays a dialect/sqlschema.Annotation attached to
// cd's declaring field onto col, letting a schema author override the
// column's size, raw type, collation or default without a second
// description of the column (spec.md §4.9's "H derives DDL from the same
// descriptor X and R already consume").
func applySQLAnnotation(col *schema.Column, cd *metadata.ColumnDescriptor) {
	if cd.Field == nil {
		return
	}
	for _, a := range cd.Field.Annotations {
		ann, ok := a.(sqlschema.Annotation)
		if !ok {
			continue
		}
		if ann.Size > 0 {
			col.Size = ann.Size
		}
		if ann.ColumnType != "" {
			col.RawType = ann.ColumnType
		}
		if ann.Collation != "" {
			col.Collation = ann.Collation
		}
		if ann.DefaultExpr != "" {
			col.Default = schema.RawExpr(ann.DefaultExpr)
		} else if ann.Default != "" {
			col.Default = ann.Default
		}
	}
}

func goTypeToFieldType(goType string) field.Type {
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
