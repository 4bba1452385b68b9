package field

// Type identifies the storage-level kind of a column, independent of its Go
// type. It is attached to sqlgraph.FieldSpec and schema.Column so the J and
// H components can make type-aware decisions (driver increment support,
// default literal quoting) without importing reflect.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeBool
	TypeTime
	TypeJSON
	TypeUUID
	TypeBytes
	TypeEnum
	TypeString
	TypeOther
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint
	TypeUint64
	TypeFloat32
	TypeFloat64
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeTime:    "time.Time",
	TypeJSON:    "json",
	TypeUUID:    "uuid.UUID",
	TypeBytes:   "[]byte",
	TypeEnum:    "enum",
	TypeString:  "string",
	TypeOther:   "other",
	TypeInt8:    "int8",
	TypeInt16:   "int16",
	TypeInt32:   "int32",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeUint8:   "uint8",
	TypeUint16:  "uint16",
	TypeUint32:  "uint32",
	TypeUint:    "uint",
	TypeUint64:  "uint64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
}

// String returns the canonical Go-flavoured name of t.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Numeric reports whether t is an integer or floating-point kind, the set
// eligible for database-side auto-increment.
func (t Type) Numeric() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt, TypeInt64,
		TypeUint8, TypeUint16, TypeUint32, TypeUint, TypeUint64,
		TypeFloat32, TypeFloat64:
		return true
	default:
		return false
	}
}

// Integer reports whether t is one of the signed or unsigned integer kinds.
func (t Type) Integer() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt, TypeInt64,
		TypeUint8, TypeUint16, TypeUint32, TypeUint, TypeUint64:
		return true
	default:
		return false
	}
}
