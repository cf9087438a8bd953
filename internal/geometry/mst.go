package geometry

import "math"

// treeEdge joins two input indices of a spanning tree.
type treeEdge struct {
	From int
	To   int
}

// minimumSpanningTree runs Prim's algorithm on a dense symmetric weight
// matrix, starting from vertex 0. Ties go to the lowest vertex index, so the
// edge set is stable for identical input.
func minimumSpanningTree(w [][]float64) []treeEdge {
	n := len(w)
	if n < 2 {
		return nil
	}
	inTree := make([]bool, n)
	key := make([]float64, n)
	parent := make([]int, n)
	for i := range key {
		key[i] = math.Inf(1)
		parent[i] = -1
	}
	key[0] = 0
	edges := make([]treeEdge, 0, n-1)
	for range n {
		u := -1
		for v := range n {
			if !inTree[v] && (u < 0 || key[v] < key[u]) {
				u = v
			}
		}
		inTree[u] = true
		if parent[u] >= 0 {
			edges = append(edges, treeEdge{From: parent[u], To: u})
		}
		for v := range n {
			if !inTree[v] && w[u][v] < key[v] {
				key[v] = w[u][v]
				parent[v] = u
			}
		}
	}
	return edges
}
