// Package sqlgraph resolves the edge-traversal predicates built with
// querylanguage (HasEdge, HasEdgeWith) against a graph of node/edge storage
// specs, translating them into EXISTS/IN subqueries attached to a
// dialect/sql Selector.
package sqlgraph

import (
	"fmt"

	"github.com/veloxdb/velox/dialect/sql"
	"github.com/veloxdb/velox/querylanguage"
	"github.com/veloxdb/velox/schema/field"
)

// Rel describes the cardinality of an edge between two node types.
type Rel int

const (
	O2O Rel = iota
	O2M
	M2O
	M2M
)

// FieldSpec binds one of a node's fields to its storage column.
type FieldSpec struct {
	Column string
	Type   field.Type
}

// NodeSpec describes the table a node type is stored in and its primary key.
type NodeSpec struct {
	Table string
	ID    *FieldSpec
}

// EdgeSpec describes how an edge is physically stored.
//
// For O2M/O2O the edge is a foreign key living on the "many"/child side's
// own table (Table is that table, Columns[0] its FK column). For M2M the
// edge lives on a join table (Table), with Columns[0] referencing the owning
// node's ID and Columns[1] referencing the target node's ID.
type EdgeSpec struct {
	Rel     Rel
	Inverse bool
	Table   string
	Columns []string

	to string
}

// Node is one entity type in the graph.
type Node struct {
	Type string
	NodeSpec
	Fields map[string]*FieldSpec

	edges map[string]*EdgeSpec
}

func (n *Node) field(name string) (*FieldSpec, error) {
	if fs, ok := n.Fields[name]; ok {
		return fs, nil
	}
	if n.ID != nil && n.ID.Column == name {
		return n.ID, nil
	}
	return nil, fmt.Errorf("sqlgraph: node %q has no field %q", n.Type, name)
}

func (n *Node) edge(name string) (*EdgeSpec, error) {
	if e, ok := n.edges[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("sqlgraph: node %q has no edge %q", n.Type, name)
}

// Schema is the runtime graph metadata EvalP resolves predicates against.
type Schema struct {
	Nodes []*Node
}

func (g *Schema) node(typ string) (*Node, error) {
	for _, n := range g.Nodes {
		if n.Type == typ {
			return n, nil
		}
	}
	return nil, fmt.Errorf("sqlgraph: node type %q not found", typ)
}

// Node returns the graph node for typ, for callers outside this package
// (the query builder) that need its table/column metadata directly.
func (g *Schema) Node(typ string) (*Node, error) {
	return g.node(typ)
}

// AddE registers an edge named name, from the from node type to the to node
// type, validating both ends exist in the schema.
func (g *Schema) AddE(name string, spec *EdgeSpec, from, to string) error {
	fromNode, err := g.node(from)
	if err != nil {
		return err
	}
	if _, err := g.node(to); err != nil {
		return err
	}
	spec.to = to
	if fromNode.edges == nil {
		fromNode.edges = make(map[string]*EdgeSpec)
	}
	fromNode.edges[name] = spec
	return nil
}

// EvalP resolves p against typ's graph metadata and attaches the translated
// predicate to s's WHERE clause.
func (g *Schema) EvalP(typ string, p querylanguage.P, s *sql.Selector) error {
	n, err := g.node(typ)
	if err != nil {
		return err
	}
	pred, err := g.eval(n, s, p)
	if err != nil {
		return err
	}
	s.Where(pred)
	return nil
}

func (g *Schema) eval(n *Node, s *sql.Selector, p querylanguage.P) (*sql.Predicate, error) {
	switch p.Kind {
	case querylanguage.KindFieldCmp:
		return g.evalFieldCmp(n, s, p)
	case querylanguage.KindFieldsEQ:
		fs1, err := n.field(p.Field)
		if err != nil {
			return nil, err
		}
		fs2, err := n.field(p.Field2)
		if err != nil {
			return nil, err
		}
		return sql.ColumnsEQ(s.C(fs1.Column), s.C(fs2.Column)), nil
	case querylanguage.KindAnd:
		preds, err := g.evalAll(n, s, p.Children)
		if err != nil {
			return nil, err
		}
		return sql.And(preds...), nil
	case querylanguage.KindOr:
		preds, err := g.evalAll(n, s, p.Children)
		if err != nil {
			return nil, err
		}
		return sql.Or(preds...), nil
	case querylanguage.KindHasEdge:
		return g.evalHasEdge(n, p.Edge, nil)
	case querylanguage.KindHasEdgeWith:
		return g.evalHasEdge(n, p.Edge, p.EdgeWith)
	default:
		return nil, fmt.Errorf("sqlgraph: unknown predicate kind %v", p.Kind)
	}
}

func (g *Schema) evalAll(n *Node, s *sql.Selector, ps []querylanguage.P) ([]*sql.Predicate, error) {
	out := make([]*sql.Predicate, 0, len(ps))
	for _, child := range ps {
		pred, err := g.eval(n, s, child)
		if err != nil {
			return nil, err
		}
		out = append(out, pred)
	}
	return out, nil
}

func (g *Schema) evalFieldCmp(n *Node, s *sql.Selector, p querylanguage.P) (*sql.Predicate, error) {
	fs, err := n.field(p.Field)
	if err != nil {
		return nil, err
	}
	col := s.C(fs.Column)
	if tc, ok := p.Value.(querylanguage.TimeConst); ok {
		return sql.CmpNow(s.Dialect(), p.Op, col, tc.Value, tc.Epsilon), nil
	}
	switch p.Op {
	case "=":
		return sql.EQ(col, p.Value), nil
	case "<>":
		return sql.NEQ(col, p.Value), nil
	case ">":
		return sql.GT(col, p.Value), nil
	case ">=":
		return sql.GTE(col, p.Value), nil
	case "<":
		return sql.LT(col, p.Value), nil
	case "<=":
		return sql.LTE(col, p.Value), nil
	case "hasPrefix":
		return sql.HasPrefix(col, p.Value), nil
	case "hasSuffix":
		return sql.HasSuffix(col, p.Value), nil
	case "contains":
		return sql.Contains(col, p.Value), nil
	case "isNull":
		return sql.IsNull(col), nil
	case "notNull":
		return sql.NotNull(col), nil
	default:
		return nil, fmt.Errorf("sqlgraph: unsupported comparison %q", p.Op)
	}
}

// evalHasEdge translates a HasEdge/HasEdgeWith predicate on node n into an
// EXISTS subquery (O2O/O2M/M2O) or an IN subquery (M2M), optionally narrowed
// by with against the target node's fields.
func (g *Schema) evalHasEdge(n *Node, edgeName string, with []querylanguage.P) (*sql.Predicate, error) {
	e, err := n.edge(edgeName)
	if err != nil {
		return nil, err
	}
	target, err := g.node(e.to)
	if err != nil {
		return nil, err
	}

	if e.Rel == M2M {
		return g.evalM2M(n, target, e, with)
	}
	return g.evalToOne(n, target, e, with)
}

// evalToOne handles O2O/O2M/M2O edges: the edge's own table carries a
// foreign key column pointing back at n's ID, so membership is expressed as
// an EXISTS subquery correlated on that FK.
func (g *Schema) evalToOne(n, target *Node, e *EdgeSpec, with []querylanguage.P) (*sql.Predicate, error) {
	sub := sql.Select(e.Table + "." + e.Columns[0]).From(sql.Table(e.Table))
	sub.Where(sql.ColumnsEQ(n.Table+"."+n.ID.Column, e.Table+"."+e.Columns[0]))
	if len(with) > 0 {
		preds, err := g.evalAll(target, sub, with)
		if err != nil {
			return nil, err
		}
		sub.Where(sql.And(preds...))
	}
	return sql.ExistsP(sub), nil
}

// evalM2M handles M2M edges: membership is resolved against the join table.
// With no narrowing predicates this is a plain "id IN (SELECT owner-col FROM
// join-table)"; with predicates, the join table is joined to the target's
// own table so the predicates can be evaluated against its columns.
func (g *Schema) evalM2M(n, target *Node, e *EdgeSpec, with []querylanguage.P) (*sql.Predicate, error) {
	sub := sql.Select(e.Table + "." + e.Columns[0]).From(sql.Table(e.Table))
	if len(with) == 0 {
		return sql.InSub(n.Table+"."+n.ID.Column, sub), nil
	}
	alias := "t1"
	joined := sql.Table(target.Table).As(alias)
	sub.Join(joined).On(e.Table+"."+e.Columns[1], alias+"."+target.ID.Column)

	aliasedTarget := &Node{Type: target.Type, NodeSpec: NodeSpec{Table: alias, ID: target.ID}, Fields: target.Fields}
	preds, err := g.evalAll(aliasedTarget, sql.Select().From(joined), with)
	if err != nil {
		return nil, err
	}
	sub.Where(sql.And(preds...))
	return sql.InSub(n.Table+"."+n.ID.Column, sub), nil
}
