package graph

import "sort"

// KahnOrder computes a topological order over scope, excluding preResolved
// vertices (cells already forced to CircularReference — spec.md §4.F step
// 8), such that every vertex is emitted only after all the vertices its
// outgoing edges point to (within scope, and not preResolved) have already
// been emitted. This is the "reverse-outgoing" order spec.md requires so a
// cell is recomputed only once every cell it references has stabilized.
//
// Ties are broken lexicographically so recomputation order is
// deterministic for a given graph shape, which matters for reproducible
// tests even though spec.md P2 guarantees the final values don't depend on
// order.
func KahnOrder(g *Graph, scope map[Vertex]bool, preResolved map[Vertex]bool) []Vertex {
	indegree := make(map[Vertex]int, len(scope))
	for u := range scope {
		if preResolved[u] {
			continue
		}
		count := 0
		for _, w := range g.Outgoing(u) {
			if scope[w] && !preResolved[w] {
				count++
			}
		}
		indegree[u] = count
	}

	var ready []Vertex
	for u, d := range indegree {
		if d == 0 {
			ready = append(ready, u)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	var order []Vertex
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		u := ready[0]
		ready = ready[1:]
		order = append(order, u)
		for _, w := range g.Incoming(u) {
			if preResolved[w] {
				continue
			}
			if _, ok := indegree[w]; !ok {
				continue
			}
			indegree[w]--
			if indegree[w] == 0 {
				ready = append(ready, w)
			}
		}
	}
	return order
}
