// Package graph implements the bidirectional dependency graph of
// spec.md §3/§4.D: for each (sheet, cell) vertex, its outgoing references
// and incoming dependents. Grounded on kalexmills-spreadsheets'
// refersTo/referredFrom maps, generalized to string vertex keys so the
// same graph can hold vertices for cells whose sheet does not (yet) exist
// (spec.md's "forward-declared references").
package graph

// Vertex is an opaque graph key produced by workbook's vertexKey helper
// (lower(sheet) joined to lower(addr) by a separator guaranteed not to
// appear in either half). The graph package itself is key-shape agnostic.
type Vertex string

type Graph struct {
	outgoing map[Vertex]map[Vertex]int // multiset: vertex -> target -> count
	incoming map[Vertex]map[Vertex]int
}

func New() *Graph {
	return &Graph{
		outgoing: make(map[Vertex]map[Vertex]int),
		incoming: make(map[Vertex]map[Vertex]int),
	}
}

// AddEdge adds one u->v edge. Edges are multiset semantics (spec.md §3):
// adding the same edge twice requires two RemoveEdge calls to fully clear
// it. The engine does add duplicates (a reference repeated in one formula,
// overlapping ranges, INDIRECT re-recording its edge on each evaluation);
// ClearOutgoing removes every instance, and Outgoing/Incoming list each
// neighbor once (spec.md I2).
func (g *Graph) AddEdge(u, v Vertex) {
	if g.outgoing[u] == nil {
		g.outgoing[u] = make(map[Vertex]int)
	}
	if g.incoming[v] == nil {
		g.incoming[v] = make(map[Vertex]int)
	}
	g.outgoing[u][v]++
	g.incoming[v][u]++
}

// RemoveEdge removes one instance of u->v, symmetrically on both maps
// (I1). Removing a non-existent edge is a no-op.
func (g *Graph) RemoveEdge(u, v Vertex) {
	if g.outgoing[u][v] > 0 {
		g.outgoing[u][v]--
		if g.outgoing[u][v] == 0 {
			delete(g.outgoing[u], v)
			if len(g.outgoing[u]) == 0 {
				delete(g.outgoing, u)
			}
		}
	}
	if g.incoming[v][u] > 0 {
		g.incoming[v][u]--
		if g.incoming[v][u] == 0 {
			delete(g.incoming[v], u)
			if len(g.incoming[v]) == 0 {
				delete(g.incoming, v)
			}
		}
	}
}

// ClearOutgoing removes every u->* edge, returning the distinct set of
// former targets (so callers can decide whether a now-unreferenced dangling
// vertex should be dropped).
func (g *Graph) ClearOutgoing(u Vertex) []Vertex {
	targets := g.outgoing[u]
	if len(targets) == 0 {
		return nil
	}
	out := make([]Vertex, 0, len(targets))
	for v, n := range targets {
		out = append(out, v)
		for i := 0; i < n; i++ {
			g.RemoveEdge(u, v)
		}
	}
	return out
}

// Outgoing returns the distinct set of cells u's formula references.
// Lookups on absent vertices yield an empty (nil) list, never fail.
func (g *Graph) Outgoing(u Vertex) []Vertex {
	return distinctKeys(g.outgoing[u])
}

// Incoming returns the distinct set of cells that reference v.
func (g *Graph) Incoming(v Vertex) []Vertex {
	return distinctKeys(g.incoming[v])
}

// HasIncoming reports whether any cell currently references v.
func (g *Graph) HasIncoming(v Vertex) bool {
	return len(g.incoming[v]) > 0
}

// DropVertex removes all edges touching v in both directions, used when a
// cell's vertex is garbage (no content, no incoming edges).
func (g *Graph) DropVertex(v Vertex) {
	for u := range g.outgoing[v] {
		delete(g.incoming[u], v)
		if len(g.incoming[u]) == 0 {
			delete(g.incoming, u)
		}
	}
	delete(g.outgoing, v)
	for u := range g.incoming[v] {
		delete(g.outgoing[u], v)
		if len(g.outgoing[u]) == 0 {
			delete(g.outgoing, u)
		}
	}
	delete(g.incoming, v)
}

// Vertices returns every vertex currently touched by at least one edge
// (as a source or a target). A vertex with no edges at all never affects
// recomputation, so it need not be enumerated.
func (g *Graph) Vertices() []Vertex {
	seen := make(map[Vertex]bool)
	for v := range g.outgoing {
		seen[v] = true
	}
	for v := range g.incoming {
		seen[v] = true
	}
	out := make([]Vertex, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out
}

func distinctKeys(m map[Vertex]int) []Vertex {
	if len(m) == 0 {
		return nil
	}
	out := make([]Vertex, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	return out
}

// RenameSheetVertices replaces every vertex key, as a source and as a
// target, with rekey(key), preserving all edges (counts are summed where
// two keys map to the same one). rekey lets workbook supply its own
// vertex-key encoding, and choose which keys change, without graph
// depending on it.
func (g *Graph) RenameSheetVertices(rekey func(Vertex) Vertex) {
	g.outgoing = rekeyAll(g.outgoing, rekey)
	g.incoming = rekeyAll(g.incoming, rekey)
}

func rekeyAll(m map[Vertex]map[Vertex]int, rekey func(Vertex) Vertex) map[Vertex]map[Vertex]int {
	out := make(map[Vertex]map[Vertex]int, len(m))
	for v, targets := range m {
		newTargets := make(map[Vertex]int, len(targets))
		for t, n := range targets {
			newTargets[rekey(t)] += n
		}
		nv := rekey(v)
		if out[nv] == nil {
			out[nv] = newTargets
		} else {
			for t, n := range newTargets {
				out[nv][t] += n
			}
		}
	}
	return out
}
