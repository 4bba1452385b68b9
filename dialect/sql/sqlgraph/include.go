package sqlgraph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/veloxdb/velox/dialect/sql"
)

// IncludeNode is one navigation step in an include tree: a named edge
// traversal from its parent, given a table alias unique within the plan.
type IncludeNode struct {
	Name          string
	Path          string // dotted path from the root, e.g. "Author.Company"
	Edge          *EdgeSpec
	TargetType    string
	Alias         string
	JunctionAlias string // only set for M2M edges
	IsCollection  bool
	Children      []*IncludeNode

	ownerType  string // the node type this edge is declared on
	targetNode *Node  // resolved lazily by JoinClauses
}

// IncludePlan is the parsed, alias-assigned form of a caller's include
// paths, ready to emit a LEFT JOIN chain and an extended SELECT list
// (spec.md §4.4 "J" include/join planner).
type IncludePlan struct {
	Root     []*IncludeNode
	allNodes []*IncludeNode
}

// ParseIncludes resolves each dotted include path (e.g. "Author.Company")
// against the graph rooted at baseType into an alias-assigned tree, sharing
// nodes across paths with a common prefix so "Author" and "Author.Company"
// reuse the same join (spec.md §4.4 "include paths collapse shared
// prefixes into one join"). Paths exceeding maxDepth are rejected.
func (g *Schema) ParseIncludes(baseType string, paths []string, maxDepth int) (*IncludePlan, error) {
	plan := &IncludePlan{}
	byPath := make(map[string]*IncludeNode)
	next := 1 // t0 is the base table; includes start at t1

	for _, path := range paths {
		segments := strings.Split(path, ".")
		if maxDepth > 0 && len(segments) > maxDepth {
			return nil, incError(path, fmt.Sprintf("exceeds max include depth %d", maxDepth))
		}
		curType := baseType
		var parentChildren *[]*IncludeNode
		parentChildren = &plan.Root
		var cur string
		for _, seg := range segments {
			cur = joinPath(cur, seg)
			if node, ok := byPath[cur]; ok {
				curType = node.TargetType
				parentChildren = &node.Children
				continue
			}
			n, err := g.node(curType)
			if err != nil {
				return nil, incError(path, err.Error())
			}
			es, err := n.edge(seg)
			if err != nil {
				return nil, incError(path, err.Error())
			}
			node := &IncludeNode{
				Name:         seg,
				Path:         cur,
				Edge:         es,
				TargetType:   es.to,
				Alias:        "t" + strconv.Itoa(next),
				IsCollection: es.Rel == O2M || es.Rel == M2M,
				ownerType:    curType,
			}
			if es.Rel == M2M {
				node.JunctionAlias = "j" + strconv.Itoa(next)
			}
			next++
			byPath[cur] = node
			plan.allNodes = append(plan.allNodes, node)
			*parentChildren = append(*parentChildren, node)
			curType = node.TargetType
			parentChildren = &node.Children
		}
	}
	return plan, nil
}

func joinPath(prefix, seg string) string {
	if prefix == "" {
		return seg
	}
	return prefix + "." + seg
}

func incError(path, msg string) error {
	return fmt.Errorf("sqlgraph: include %q: %s", path, msg)
}

// SelectList renders the base table's columns plus every included node's
// columns, each qualified by its alias, in alias order (spec.md §4.4
// "extend the SELECT list with every included node's columns").
func (p *IncludePlan) SelectList(base *Node) []string {
	cols := make([]string, 0, len(base.Fields)+4*len(p.allNodes))
	cols = append(cols, qualifyAll("t0", base)...)
	for _, n := range sortedByAlias(p.allNodes) {
		target := n.targetNode
		if target != nil {
			cols = append(cols, qualifyAll(n.Alias, target)...)
		}
	}
	return cols
}

// qualifyAll lists alias-qualified column expressions for every field on n,
// each given a unique output name ("alias_column") so a flat result row can
// be disambiguated after fan-out joins duplicate the base row once per
// matched child.
func qualifyAll(alias string, n *Node) []string {
	names := make([]string, 0, len(n.Fields)+1)
	names = append(names, fmt.Sprintf("%s.%s AS %s_%s", alias, n.ID.Column, alias, n.ID.Column))
	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fs := n.Fields[k]
		names = append(names, fmt.Sprintf("%s.%s AS %s_%s", alias, fs.Column, alias, fs.Column))
	}
	return names
}

// JoinClauses attaches a LEFT JOIN for every node in the plan to sel,
// walking the tree so a child's join condition can reference its parent's
// alias. M2M edges emit two joins: one to the junction table, one from the
// junction to the target (spec.md §4.4 "M2M include expands to two joins").
func (p *IncludePlan) JoinClauses(g *Schema, baseAlias string, sel *sql.Selector) error {
	return p.walk(g, baseAlias, p.Root, sel)
}

func (p *IncludePlan) walk(g *Schema, parentAlias string, nodes []*IncludeNode, sel *sql.Selector) error {
	for _, n := range nodes {
		parent, err := g.node(n.ownerType)
		if err != nil {
			return err
		}
		target, err := g.node(n.TargetType)
		if err != nil {
			return err
		}
		n.targetNode = target

		switch n.Edge.Rel {
		case M2M:
			junction := sql.Table(n.Edge.Table).As(n.JunctionAlias)
			sel.LeftJoin(junction).On(
				parentAlias+"."+parent.ID.Column,
				n.JunctionAlias+"."+n.Edge.Columns[0],
			)
			tv := sql.Table(target.Table).As(n.Alias)
			sel.LeftJoin(tv).On(
				n.JunctionAlias+"."+n.Edge.Columns[1],
				n.Alias+"."+target.ID.Column,
			)
		default: // O2O, O2M, M2O: FK lives on n.Edge.Table
			tv := sql.Table(target.Table).As(n.Alias)
			if n.Edge.Inverse {
				sel.LeftJoin(tv).On(
					parentAlias+"."+n.Edge.Columns[0],
					n.Alias+"."+target.ID.Column,
				)
			} else {
				sel.LeftJoin(tv).On(
					parentAlias+"."+parent.ID.Column,
					n.Alias+"."+n.Edge.Columns[0],
				)
			}
		}
		if err := p.walk(g, n.Alias, n.Children, sel); err != nil {
			return err
		}
	}
	return nil
}

func sortedByAlias(nodes []*IncludeNode) []*IncludeNode {
	out := make([]*IncludeNode, len(nodes))
	copy(out, nodes)
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}
