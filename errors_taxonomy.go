package velox

import (
	"errors"
	"fmt"
)

// The error kinds below are the engine's own taxonomy (spec.md §7),
// distinct from the repository-style errors above (NotFoundError,
// ConstraintError, ...) which describe the outcome of a CRUD call. These
// describe failures inside the query pipeline itself: bad configuration,
// bad metadata, an unsupported expression, a value that cannot be
// serialised, a broken pool, and so on.

// ConfigError reports malformed or insufficient connection configuration.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("velox: config: %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("velox: config: %s", e.Msg)
}

// NewConfigError returns a new ConfigError for the named field.
func NewConfigError(field, msg string) *ConfigError {
	return &ConfigError{Field: field, Msg: msg}
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// MetadataError reports invalid or missing schema declarations on a
// domain type: no table name, no primary key, a duplicate column, or an
// unresolved foreign-key/navigation target.
type MetadataError struct {
	Type string
	Msg  string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("velox: metadata: %s: %s", e.Type, e.Msg)
}

// NewMetadataError returns a new MetadataError for the given type name.
func NewMetadataError(typ, msg string) *MetadataError {
	return &MetadataError{Type: typ, Msg: msg}
}

// IsMetadataError reports whether err is a MetadataError.
func IsMetadataError(err error) bool {
	var e *MetadataError
	return errors.As(err, &e)
}

// TranslationError reports a predicate or update AST containing a
// construct the expression translator does not support, naming the
// offending method or node.
type TranslationError struct {
	Node string
	Msg  string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("velox: translate: %s: %s", e.Node, e.Msg)
}

// NewTranslationError returns a new TranslationError naming the node
// (method name, operator, ...) that could not be translated.
func NewTranslationError(node, msg string) *TranslationError {
	return &TranslationError{Node: node, Msg: msg}
}

// IsTranslationError reports whether err is a TranslationError.
func IsTranslationError(err error) bool {
	var e *TranslationError
	return errors.As(err, &e)
}

// UsageError reports an API call with an internally inconsistent
// combination of options: HAVING without GROUP BY, SKIP/TAKE without
// ORDER BY outside the permitted TOP-equivalent case, two terminal calls
// on one transaction, or a duplicate savepoint name.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return fmt.Sprintf("velox: usage: %s", e.Msg) }

// NewUsageError returns a new UsageError.
func NewUsageError(msg string) *UsageError { return &UsageError{Msg: msg} }

// IsUsageError reports whether err is a UsageError.
func IsUsageError(err error) bool {
	var e *UsageError
	return errors.As(err, &e)
}

// ValueError reports a value that cannot be safely serialised to its
// wire form: an embedded NUL byte in a string, or an unrepresentable
// timestamp.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string { return fmt.Sprintf("velox: value: %s", e.Msg) }

// NewValueErrorMsg returns a new ValueError. Named to avoid colliding
// with the existing field-validation ValueError constructor naming
// convention used by NewValidationError.
func NewValueErrorMsg(msg string) *ValueError { return &ValueError{Msg: msg} }

// IsValueError reports whether err is a ValueError.
func IsValueError(err error) bool {
	var e *ValueError
	return errors.As(err, &e)
}

// SchemaError reports a CREATE TABLE/INDEX generation request that
// references an unknown type or field.
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string { return fmt.Sprintf("velox: schema: %s", e.Msg) }

// NewSchemaError returns a new SchemaError.
func NewSchemaError(msg string) *SchemaError { return &SchemaError{Msg: msg} }

// IsSchemaError reports whether err is a SchemaError.
func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// MaterialisationError reports a row missing a required column, or
// carrying a value that cannot be converted to its declared field type.
type MaterialisationError struct {
	Column string
	Msg    string
}

func (e *MaterialisationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("velox: materialise: column %q: %s", e.Column, e.Msg)
	}
	return fmt.Sprintf("velox: materialise: %s", e.Msg)
}

// NewMaterialisationError returns a new MaterialisationError for the
// given column.
func NewMaterialisationError(column, msg string) *MaterialisationError {
	return &MaterialisationError{Column: column, Msg: msg}
}

// IsMaterialisationError reports whether err is a MaterialisationError.
func IsMaterialisationError(err error) bool {
	var e *MaterialisationError
	return errors.As(err, &e)
}

// ConnectionError wraps a driver-level failure to connect, read, or
// write, preserving the underlying driver error.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("velox: connection: %v", e.Err) }

// Unwrap returns the wrapped driver error.
func (e *ConnectionError) Unwrap() error { return e.Err }

// NewConnectionError wraps err as a ConnectionError.
func NewConnectionError(err error) *ConnectionError { return &ConnectionError{Err: err} }

// IsConnectionError reports whether err is a ConnectionError.
func IsConnectionError(err error) bool {
	var e *ConnectionError
	return errors.As(err, &e)
}

// TimeoutError reports a pool acquisition or driver-level operation that
// exceeded its deadline.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("velox: timeout: %s", e.Op) }

// Timeout reports true, satisfying the net.Error-shaped convention some
// callers probe for.
func (e *TimeoutError) Timeout() bool { return true }

// NewTimeoutError returns a new TimeoutError for the given operation.
func NewTimeoutError(op string) *TimeoutError { return &TimeoutError{Op: op} }

// IsTimeoutError reports whether err is a TimeoutError.
func IsTimeoutError(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// CancelledError reports a caller-initiated cancellation of an async
// operation (pool acquire, row fetch, execute).
type CancelledError struct {
	Op string
}

func (e *CancelledError) Error() string { return fmt.Sprintf("velox: cancelled: %s", e.Op) }

// NewCancelledError returns a new CancelledError for the given operation.
func NewCancelledError(op string) *CancelledError { return &CancelledError{Op: op} }

// IsCancelledError reports whether err is a CancelledError.
func IsCancelledError(err error) bool {
	var e *CancelledError
	return errors.As(err, &e)
}

// ObjectDisposedError reports use of a pool, connection, or transaction
// after it has been disposed/terminated.
type ObjectDisposedError struct {
	Object string
}

func (e *ObjectDisposedError) Error() string {
	return fmt.Sprintf("velox: %s is disposed", e.Object)
}

// NewObjectDisposedError returns a new ObjectDisposedError naming the
// disposed object kind ("pool", "connection", "transaction").
func NewObjectDisposedError(object string) *ObjectDisposedError {
	return &ObjectDisposedError{Object: object}
}

// IsObjectDisposedError reports whether err is an ObjectDisposedError.
func IsObjectDisposedError(err error) bool {
	var e *ObjectDisposedError
	return errors.As(err, &e)
}

// IncludeError reports an invalid navigation path, or include nesting
// exceeding the planner's configured depth limit.
type IncludeError struct {
	Path string
	Msg  string
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("velox: include %q: %s", e.Path, e.Msg)
}

// NewIncludeError returns a new IncludeError for the given dotted path.
func NewIncludeError(path, msg string) *IncludeError {
	return &IncludeError{Path: path, Msg: msg}
}

// IsIncludeError reports whether err is an IncludeError.
func IsIncludeError(err error) bool {
	var e *IncludeError
	return errors.As(err, &e)
}
