// Package scheduler implements the Scheduler / SQL Emitter's ordering half: given
// the Differ's change list and the Linker's dependency graph, produce a totally ordered sequence
// of internal/sqlgen statements such that every statement's prerequisites are already satisfied.
package scheduler

import (
	"github.com/dbsync/dbsync/internal/differ"
	"github.com/dbsync/dbsync/internal/graph"
	"github.com/dbsync/dbsync/internal/linker"
	"github.com/dbsync/dbsync/internal/model"
	"github.com/dbsync/dbsync/internal/sqlgen"
)

// sqlVertex is one scheduler graph node. Most changes become a single vertex carrying every
// statement sqlgen renders for that change; a Create(Table) becomes two vertices instead --
// "#header" (columns, PK, CHECKs, parent table -- never a foreign key) and "#tail"
// (foreign keys, unique constraints, indexes, triggers, rules, owner, comment), linked header->tail. Splitting table
// creates this way is what makes a mutual-FK cycle between two tables schedulable at all: neither table's header depends on the other, so both can be emitted before either tail
// needs the other table to exist.
type sqlVertex struct {
	id string
	stmts []sqlgen.Statement
}

func (v sqlVertex) GetId() string { return v.id }

const (
	headerSuffix = "#header"
	tailSuffix = "#tail"
)

// restVertexIDs records which vertex a change should be attached to depending on its role in an
// edge: dependent is the vertex to use as the "requires" side when the required object is a table
// the change's foreign keys reference (a table create's tail, which holds the FKs; addRestEdges
// uses dependency for every other requirement, since the header already names the table's schema,
// column types and parent table); dependency is the vertex to use as the "required" side (a table
// create's header, since the table exists as soon as its header runs).
// For every change kind other than Create(Table) both fields hold the same single vertex id.
type restVertexIDs struct {
	dependent string
	dependency string
}

// Schedule builds a two-bucket DAG -- DROPs toposorted among themselves and emitted first, then
// Creates/Alters/Renames/Grants/Comments toposorted together -- and returns the flattened,
// ordered statement list.
func Schedule(changes []differ.Change, deps *linker.Graph) ([]sqlgen.Statement, error) {
	dropGraph := graph.NewGraph[sqlVertex]()
	restGraph := graph.NewGraph[sqlVertex]()

	restVertexByKey := map[string]restVertexIDs{}
	dropVertexByKey := map[string]string{}

	for i, c := range changes {
		if c.ChangeKind == differ.Create {
			if t, ok := c.Object.(model.Table); ok {
				id := changeKey(c)
				headerID, tailID := id+headerSuffix, id+tailSuffix
				restGraph.AddVertex(sqlVertex{id: headerID, stmts: []sqlgen.Statement{sqlgen.CreateTableHeader(t)}})
				restGraph.AddVertex(sqlVertex{id: tailID, stmts: sqlgen.CreateTableTail(t)})
				_ = restGraph.AddEdge(headerID, tailID)
				restVertexByKey[id] = restVertexIDs{dependent: tailID, dependency: headerID}
				continue
			}
		}

		stmts, err := sqlgen.Generate(c)
		if err != nil {
			return nil, err
		}
		if len(stmts) == 0 {
			continue
		}

		v := sqlVertex{id: vertexID(i, c), stmts: stmts}
		if c.ChangeKind == differ.Drop {
			dropGraph.AddVertex(v)
			dropVertexByKey[objectKey(c.Object)] = v.id
		} else {
			restGraph.AddVertex(v)
			restVertexByKey[changeKey(c)] = restVertexIDs{dependent: v.id, dependency: v.id}
		}
	}

	addDropEdges(changes, dropGraph, dropVertexByKey, deps)
	addRestEdges(changes, restGraph, restVertexByKey, deps)

	dropOrder, err := dropGraph.TopologicallySort()
	if err != nil {
		return nil, err
	}
	restOrder, err := restGraph.TopologicallySort()
	if err != nil {
		return nil, err
	}

	var out []sqlgen.Statement
	for _, v := range dropOrder {
		out = append(out, v.stmts...)
	}
	for _, v := range restOrder {
		out = append(out, v.stmts...)
	}
	return out, nil
}

func vertexID(i int, c differ.Change) string {
	return string(c.ChangeKind) + "#" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func objectKey(o model.Object) string {
	if o == nil {
		return ""
	}
	return o.Key().String()
}

// changeKey identifies the "owning" object a non-drop change should be scheduled relative to: for
// Create/Alter/GrantRevoke/Comment it's the object's own key; for Rename it's the new key, since
// everything downstream of a rename refers to the object by its new identity.
func changeKey(c differ.Change) string {
	switch c.ChangeKind {
	case differ.Rename:
		return c.NewKey.String()
	case differ.Alter:
		return c.New.Key().String()
	default:
		return objectKey(c.Object)
	}
}

// addDropEdges implements Drop(A) rule: every Drop(B) where B->A depends on Drop(A)
// (drop dependents first). Walking deps edges A->B ("A requires B"), a drop of B must happen after
// every drop of A that required it, so an edge drop(A) -> drop(B) means A's drop is scheduled
// before B's in topological order (the algorithm emits vertices with no incoming edges first).
func addDropEdges(changes []differ.Change, g *graph.Graph[sqlVertex], byKey map[string]string, deps *linker.Graph) {
	for _, c := range changes {
		if c.ChangeKind != differ.Drop {
			continue
		}
		aID, ok := byKey[objectKey(c.Object)]
		if !ok {
			continue
		}
		for _, other := range changes {
			if other.ChangeKind != differ.Drop {
				continue
			}
			bID, ok := byKey[objectKey(other.Object)]
			if !ok || bID == aID {
				continue
			}
			if linker.Requires(deps, c.Object.Key(), other.Object.Key()) {
				_ = g.AddEdge(aID, bID)
			}
		}
	}
}

// addRestEdges implements Create/Alter rule: if A requires B, B must be created
// before A, so the edge runs from dependency(B) to A -- the reverse direction of addDropEdges,
// since create order and drop order are always mirror images of each other. For a table create A
// the edge ends at A's tail when B is a table A's foreign keys reference, and at A's header
// otherwise (the header names A's schema, column types and parent table); a table's dependency
// vertex is its header (the table exists, as far as anything depending on it cares, as soon as its
// header statement runs).
func addRestEdges(changes []differ.Change, g *graph.Graph[sqlVertex], byKey map[string]restVertexIDs, deps *linker.Graph) {
	for _, c := range changes {
		if c.ChangeKind == differ.Drop {
			continue
		}
		aKey := changeObjectModelKey(c)
		aIDs, ok := byKey[changeKey(c)]
		if !ok || aKey == nil {
			continue
		}
		for _, other := range changes {
			if other.ChangeKind == differ.Drop {
				continue
			}
			bKey := changeObjectModelKey(other)
			bIDs, ok := byKey[changeKey(other)]
			if !ok || bKey == nil || bKey.String() == aKey.String() {
				continue
			}
			if linker.Requires(deps, *aKey, *bKey) {
				to := aIDs.dependency
				if t, ok := c.Object.(model.Table); ok && c.ChangeKind == differ.Create {
					for _, fk := range t.ForeignKeys {
						ref := model.Table{SchemaQualifiedName: model.SchemaQualifiedName{SchemaName: fk.RefSchema, Name: fk.RefTable}}
						if ref.Key().Equal(*bKey) {
							to = aIDs.dependent
						}
					}
				}
				_ = g.AddEdge(bIDs.dependency, to)
			}
		}
	}
}

func changeObjectModelKey(c differ.Change) *model.Key {
	switch c.ChangeKind {
	case differ.Rename:
		k := c.NewKey
		return &k
	case differ.Alter:
		if c.New != nil {
			k := c.New.Key()
			return &k
		}
	default:
		if c.Object != nil {
			k := c.Object.Key()
			return &k
		}
	}
	return nil
}
