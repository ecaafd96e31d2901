package workbook

import (
	"strings"

	"gridcalc/graph"
)

// vertexSep joins a vertex key's sheet and address halves. It must never
// appear inside a valid sheet name: address.ValidSheetName's sheetAlphabet
// permits '!' (and a wide range of other punctuation) in a sheet name, so
// '!' cannot be the separator — a sheet literally named "Q1!Report" would
// mis-split. The ASCII unit-separator control character is outside every
// character ValidSheetName accepts and outside address.Normalized's
// lowercase-letters-and-digits output, so it cannot collide with either
// half.
const vertexSep = "\x1f"

// vertexKey builds the dependency-graph key for (sheetLower, addrLower),
// matching the Vertex shape documented in graph.Vertex.
func vertexKey(sheetLower, addrLower string) graph.Vertex {
	return graph.Vertex(sheetLower + vertexSep + addrLower)
}

// splitVertex reverses vertexKey.
func splitVertex(v graph.Vertex) (sheetLower, addrLower string) {
	s := string(v)
	i := strings.IndexByte(s, vertexSep[0])
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}
