package graph

// Reachable computes the set of vertices reachable from start by
// repeatedly following outgoing and incoming edges in either direction —
// the "incoming* ∪ outgoing*" subgraph of spec.md §4.F step 6, i.e. every
// cell whose value could possibly change as a result of a commit at
// start.
func Reachable(g *Graph, start Vertex) map[Vertex]bool {
	visited := map[Vertex]bool{start: true}
	queue := []Vertex{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, n := range g.Outgoing(v) {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
		for _, n := range g.Incoming(v) {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return visited
}

// HasSelfLoop reports whether v references itself directly.
func (g *Graph) HasSelfLoop(v Vertex) bool {
	return g.outgoing[v][v] > 0
}

type tarjanFrame struct {
	v         Vertex
	neighbors []Vertex
	i         int
}

// StronglyConnectedComponents runs an iterative Tarjan SCC restricted to
// the given vertex set (design notes §9: "recursive formulations overflow
// for deep chains"). Vertices not in the set are not visited even if an
// edge points at them — by construction (Reachable's transitive closure
// over outgoing edges) every outgoing target of a vertex in the set is
// itself in the set, so this never silently truncates a real cycle.
func StronglyConnectedComponents(g *Graph, vertices map[Vertex]bool) [][]Vertex {
	index := make(map[Vertex]int)
	low := make(map[Vertex]int)
	onStack := make(map[Vertex]bool)
	var stack []Vertex
	var sccs [][]Vertex
	counter := 0

	neighborsIn := func(v Vertex) []Vertex {
		var out []Vertex
		for _, n := range g.Outgoing(v) {
			if vertices[n] {
				out = append(out, n)
			}
		}
		return out
	}

	for v0 := range vertices {
		if _, seen := index[v0]; seen {
			continue
		}
		var work []*tarjanFrame
		index[v0] = counter
		low[v0] = counter
		counter++
		stack = append(stack, v0)
		onStack[v0] = true
		work = append(work, &tarjanFrame{v: v0, neighbors: neighborsIn(v0)})

		for len(work) > 0 {
			top := work[len(work)-1]
			if top.i < len(top.neighbors) {
				w := top.neighbors[top.i]
				top.i++
				if _, seen := index[w]; !seen {
					index[w] = counter
					low[w] = counter
					counter++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, &tarjanFrame{v: w, neighbors: neighborsIn(w)})
				} else if onStack[w] {
					if index[w] < low[top.v] {
						low[top.v] = index[w]
					}
				}
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1]
				if low[top.v] < low[parent.v] {
					low[parent.v] = low[top.v]
				}
			}
			if low[top.v] == index[top.v] {
				var scc []Vertex
				for {
					n := len(stack) - 1
					w := stack[n]
					stack = stack[:n]
					onStack[w] = false
					scc = append(scc, w)
					if w == top.v {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}
	return sccs
}

// CyclicVertices returns the set of vertices belonging to a cycle: every
// member of an SCC of size > 1, plus any singleton SCC with a self-loop
// (spec.md §4.F step 6).
func CyclicVertices(g *Graph, vertices map[Vertex]bool) map[Vertex]bool {
	cyclic := make(map[Vertex]bool)
	for _, scc := range StronglyConnectedComponents(g, vertices) {
		if len(scc) > 1 {
			for _, v := range scc {
				cyclic[v] = true
			}
			continue
		}
		if len(scc) == 1 && g.HasSelfLoop(scc[0]) {
			cyclic[scc[0]] = true
		}
	}
	return cyclic
}
