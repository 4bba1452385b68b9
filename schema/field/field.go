// Package field provides fluent builders for defining entity fields in Velox ORM.
package field

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"regexp"

	"github.com/veloxdb/velox/schema"
)

// Info describes a field's Go-level type, consumed by the metadata
// registry when it generates the struct field for a descriptor.
type Info struct {
	Ident        string // e.g. "string", "int64", "uuid.UUID", "time.Time"
	PkgPath      string // e.g. "github.com/google/uuid"
	Nillable     bool
	valueScanner bool
}

// String returns the Go type identifier.
func (i Info) String() string { return i.Ident }

// ValueScanner reports whether this type requires a custom ValueScanner to
// round-trip through database/sql (spec.md §4.2 "V" converter seam).
func (i Info) ValueScanner() bool { return i.valueScanner }

// ValueScannerFunc adapts a pair of plain functions into a Descriptor's
// custom scan/value pair for type T, using S as the driver-native
// intermediate (e.g. S = sql.NullString for T = string).
type ValueScannerFunc[T any, S any] struct {
	Value func(T) (driver.Value, error)
	Scan  func(any) (T, error)
}

// TypeValueScanner is a marker ValueScanner keyed only by T, used when the
// type itself (e.g. a Stringer) is sufficient to pick a scan strategy.
type TypeValueScanner[T any] struct{}

// BinaryValueScanner scans T through its encoding.BinaryMarshaler/
// BinaryUnmarshaler pair (e.g. *url.URL via its Text form).
type BinaryValueScanner[T any] struct{}

// Validator is a predicate checked against a field value before a create
// or update mutation (spec.md's value-level validation seam). A non-nil
// error aborts the mutation with a ValueError.
type Validator func(any) error

// Descriptor is the reflective field metadata produced by a schema's
// Fields() method and consumed by the metadata registry (M).
type Descriptor struct {
	Name            string
	Info            *Info
	Unique          bool
	Optional        bool
	Nillable        bool
	Immutable       bool
	Sensitive       bool
	Comment         string
	Deprecated      string
	StorageKey      string
	Default         any
	UpdateDefaultFn any
	Validators      []Validator
	Tags            map[string]string // ValidateCreate/ValidateUpdate struct-tag rules
	EnumValues      []string
	SchemaTypes     map[string]string
	Annotations     []schema.Annotation
	ValueScanner    any
	Err             error
}

type fieldBuilder struct {
	desc *Descriptor
}

func newBuilder(name, ident string) *fieldBuilder {
	return &fieldBuilder{desc: &Descriptor{
		Name:        name,
		Info:        &Info{Ident: ident},
		SchemaTypes: map[string]string{},
		Tags:        map[string]string{},
	}}
}

// Descriptor returns the accumulated field descriptor.
func (b *fieldBuilder) Descriptor() *Descriptor { return b.desc }

// Unique marks the field UNIQUE.
func (b *fieldBuilder) Unique() *fieldBuilder { b.desc.Unique = true; return b }

// Optional marks the field as not required on create; the metadata
// registry also marks its column nullable.
func (b *fieldBuilder) Optional() *fieldBuilder { b.desc.Optional = true; return b }

// Nillable marks the field nullable in the DB and pointer-typed in Go.
func (b *fieldBuilder) Nillable() *fieldBuilder {
	b.desc.Nillable = true
	b.desc.Info.Nillable = true
	return b
}

// Immutable forbids the field from being set on update.
func (b *fieldBuilder) Immutable() *fieldBuilder { b.desc.Immutable = true; return b }

// Sensitive excludes the field from logging/string-formatting output.
func (b *fieldBuilder) Sensitive() *fieldBuilder { b.desc.Sensitive = true; return b }

// Comment attaches a DB comment, rendered by H's CREATE TABLE emission.
func (b *fieldBuilder) Comment(c string) *fieldBuilder { b.desc.Comment = c; return b }

// Deprecated marks the field deprecated with a migration hint.
func (b *fieldBuilder) Deprecated(reason string) *fieldBuilder {
	b.desc.Deprecated = reason
	return b
}

// StorageKey overrides the column name (defaults to Name).
func (b *fieldBuilder) StorageKey(key string) *fieldBuilder { b.desc.StorageKey = key; return b }

// Default sets a literal or zero-arg function default.
func (b *fieldBuilder) Default(v any) *fieldBuilder { b.desc.Default = v; return b }

// DefaultFunc is an alias for Default kept for readability at call sites
// that pass a function value (e.g. time.Now, uuid.New).
func (b *fieldBuilder) DefaultFunc(fn any) *fieldBuilder { return b.Default(fn) }

// UpdateDefault sets a function invoked to refresh the field on every
// update (e.g. an UpdatedAt timestamp mixin).
func (b *fieldBuilder) UpdateDefault(fn any) *fieldBuilder {
	b.desc.UpdateDefaultFn = fn
	return b
}

// Validate appends a custom validator.
func (b *fieldBuilder) Validate(v Validator) *fieldBuilder {
	b.desc.Validators = append(b.desc.Validators, v)
	return b
}

// ValidateCreate attaches a go-playground/validator-style rule string
// checked on create.
func (b *fieldBuilder) ValidateCreate(rule string) *fieldBuilder {
	b.desc.Tags["create"] = rule
	return b
}

// ValidateUpdate attaches a validation rule string checked on update.
func (b *fieldBuilder) ValidateUpdate(rule string) *fieldBuilder {
	b.desc.Tags["update"] = rule
	return b
}

// Annotations attaches schema annotations (e.g. sqlschema.ColumnType).
func (b *fieldBuilder) Annotations(annotations ...schema.Annotation) *fieldBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// SchemaType overrides the column type per dialect name.
func (b *fieldBuilder) SchemaType(types map[string]string) *fieldBuilder {
	for k, v := range types {
		b.desc.SchemaTypes[k] = v
	}
	return b
}

// GoType overrides the field's Go type, used by UUID/Custom/Other to bind
// a concrete external type and infer whether it needs a ValueScanner.
func (b *fieldBuilder) GoType(v any) *fieldBuilder {
	t := reflect.TypeOf(v)
	if t == nil {
		b.desc.Err = fmt.Errorf("field: GoType value must not be nil")
		return b
	}
	b.desc.Info.Ident = t.String()
	b.desc.Info.PkgPath = t.PkgPath()
	_, hasScan := v.(interface{ Scan(any) error })
	_, hasValue := v.(driver.Valuer)
	b.desc.Info.valueScanner = hasScan || hasValue || b.desc.ValueScanner != nil
	return b
}

// ValueScanner sets a custom scan/value strategy for the field's Go type.
func (b *fieldBuilder) ValueScanner(v any) *fieldBuilder {
	b.desc.ValueScanner = v
	b.desc.Info.valueScanner = true
	return b
}

// String declares a string-typed field.
func String(name string) *fieldBuilder { return newBuilder(name, "string") }

// Text declares a long-text string field (rendered as TEXT by H).
func Text(name string) *fieldBuilder {
	b := newBuilder(name, "string")
	b.desc.SchemaTypes["default"] = "text"
	return b
}

// Int declares an int-typed field.
func Int(name string) *fieldBuilder { return newBuilder(name, "int") }

// Int64 declares an int64-typed field.
func Int64(name string) *fieldBuilder { return newBuilder(name, "int64") }

// Float64 declares a float64-typed field.
func Float64(name string) *fieldBuilder { return newBuilder(name, "float64") }

// Bool declares a bool-typed field.
func Bool(name string) *fieldBuilder { return newBuilder(name, "bool") }

// Time declares a time.Time-typed field.
func Time(name string) *fieldBuilder {
	b := newBuilder(name, "time.Time")
	b.desc.Info.PkgPath = "time"
	return b
}

// UUID declares a field whose Go type is the type of typ (typically
// uuid.UUID{} or a pointer to it), wiring github.com/google/uuid.
func UUID(name string, typ any) *fieldBuilder {
	b := newBuilder(name, "uuid.UUID")
	b.GoType(typ)
	b.desc.Info.valueScanner = true
	return b
}

// Enum declares a string-backed enum field; call Values to set its domain.
func Enum(name string) *fieldBuilder { return newBuilder(name, "string") }

// Values sets an enum field's allowed values.
func (b *fieldBuilder) Values(vs ...string) *fieldBuilder {
	b.desc.EnumValues = vs
	return b
}

// JSON declares a field whose Go type is the type of typ ("any" when typ
// is nil), marked as needing a ValueScanner.
func JSON(name string, typ any) *fieldBuilder {
	b := newBuilder(name, "any")
	if typ != nil {
		b.desc.Info.Ident = reflect.TypeOf(typ).String()
	}
	b.desc.Info.valueScanner = true
	return b
}

// Bytes declares a []byte field.
func Bytes(name string) *fieldBuilder { return newBuilder(name, "[]byte") }

// Custom declares a field with an arbitrary external Go type, same as
// Other — kept as a separate name for readability at call sites.
func Custom(name string, typ any) *fieldBuilder { return Other(name, typ) }

// Other declares a field with an arbitrary external Go type requiring a
// ValueScanner (decimal.Decimal, net/url.URL, ...).
func Other(name string, typ any) *fieldBuilder {
	b := newBuilder(name, "any")
	b.GoType(typ)
	return b
}

// --- string validators -------------------------------------------------

// NotEmpty rejects the empty string.
func (b *fieldBuilder) NotEmpty() *fieldBuilder {
	return b.Validate(func(v any) error {
		if s, _ := v.(string); s == "" {
			return fmt.Errorf("field %q: value must not be empty", b.desc.Name)
		}
		return nil
	})
}

// MinLen rejects strings shorter than n.
func (b *fieldBuilder) MinLen(n int) *fieldBuilder {
	return b.Validate(func(v any) error {
		if s, _ := v.(string); len(s) < n {
			return fmt.Errorf("field %q: length must be >= %d", b.desc.Name, n)
		}
		return nil
	})
}

// MaxLen rejects strings longer than n.
func (b *fieldBuilder) MaxLen(n int) *fieldBuilder {
	return b.Validate(func(v any) error {
		if s, _ := v.(string); len(s) > n {
			return fmt.Errorf("field %q: length must be <= %d", b.desc.Name, n)
		}
		return nil
	})
}

// Match rejects strings not matching re.
func (b *fieldBuilder) Match(re *regexp.Regexp) *fieldBuilder {
	return b.Validate(func(v any) error {
		if s, _ := v.(string); !re.MatchString(s) {
			return fmt.Errorf("field %q: value does not match pattern", b.desc.Name)
		}
		return nil
	})
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email rejects strings that don't look like an email address.
func (b *fieldBuilder) Email() *fieldBuilder {
	return b.Match(emailPattern)
}

// --- numeric validators -------------------------------------------------

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// NonNegative rejects values less than zero.
func (b *fieldBuilder) NonNegative() *fieldBuilder {
	return b.Validate(func(v any) error {
		if n, ok := numeric(v); ok && n < 0 {
			return fmt.Errorf("field %q: value must be non-negative", b.desc.Name)
		}
		return nil
	})
}

// Positive rejects values less than or equal to zero.
func (b *fieldBuilder) Positive() *fieldBuilder {
	return b.Validate(func(v any) error {
		if n, ok := numeric(v); ok && n <= 0 {
			return fmt.Errorf("field %q: value must be positive", b.desc.Name)
		}
		return nil
	})
}

// Max rejects values greater than n.
func (b *fieldBuilder) Max(n float64) *fieldBuilder {
	return b.Validate(func(v any) error {
		if f, ok := numeric(v); ok && f > n {
			return fmt.Errorf("field %q: value must be <= %v", b.desc.Name, n)
		}
		return nil
	})
}

// Min rejects values less than n.
func (b *fieldBuilder) Min(n float64) *fieldBuilder {
	return b.Validate(func(v any) error {
		if f, ok := numeric(v); ok && f < n {
			return fmt.Errorf("field %q: value must be >= %v", b.desc.Name, n)
		}
		return nil
	})
}

// Range rejects values outside [min, max].
func (b *fieldBuilder) Range(min, max float64) *fieldBuilder {
	return b.Min(min).Max(max)
}
