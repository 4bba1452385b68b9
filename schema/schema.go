// Package schema defines the annotation primitives shared by the field,
// edge, index and mixin builder packages.
package schema

// Annotation is extra, builder-attached metadata consumed by the metadata
// registry (M) or the schema builder (H) — e.g. a DB comment, a column
// type override, or a GraphQL-style directive in a larger system.
// Annotation implementations are typically small structs named
// "<Concern>Annotation" with a package-level constructor.
type Annotation interface {
	// Name identifies the annotation's kind, used as a map key when a
	// descriptor's annotation list is merged or looked up.
	Name() string
}

// Merger is implemented by annotations that know how to combine with a
// previous instance of themselves, e.g. when a mixin and its embedding
// schema each attach the same annotation kind.
type Merger interface {
	Merge(other Annotation) Annotation
}

// CommentAnnotation attaches a free-text comment to a field, edge, index
// or schema, rendered as a DB comment or doc string by downstream tooling.
type CommentAnnotation struct {
	Text string
}

// Name implements Annotation.
func (*CommentAnnotation) Name() string { return "Comment" }

// Comment returns a CommentAnnotation wrapping text.
func Comment(text string) *CommentAnnotation {
	return &CommentAnnotation{Text: text}
}
