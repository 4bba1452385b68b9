package field

import "github.com/veloxdb/velox/schema"

// Annotation attaches raw Go struct tags to a field, keyed by tag name
// (e.g. "json", "yaml"), merged across mixins by StructTag key.
type Annotation struct {
	StructTag map[string]string
}

// Name implements schema.Annotation.
func (Annotation) Name() string { return "Field" }

// Merge implements schema.Merger, combining StructTag maps with other's
// entries taking precedence.
func (a Annotation) Merge(other schema.Annotation) schema.Annotation {
	var ant Annotation
	switch o := other.(type) {
	case Annotation:
		ant = o
	case *Annotation:
		ant = *o
	default:
		return a
	}
	merged := make(map[string]string, len(a.StructTag)+len(ant.StructTag))
	for k, v := range a.StructTag {
		merged[k] = v
	}
	for k, v := range ant.StructTag {
		merged[k] = v
	}
	a.StructTag = merged
	return a
}

var (
	_ schema.Annotation = Annotation{}
	_ schema.Merger     = Annotation{}
)
