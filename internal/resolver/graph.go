package resolver

import "slices"

// graph is an adjacency list over stable node indices.
// Node i is the i-th command of the phase in registration order.
type graph struct {
	names []string
	index map[string]int
	succ  [][]int // u must run before every v in succ[u]
	next  [][]int // priority successors, in declaration order
}

func newGraph(names []string) *graph {
	g := &graph{
		names: names,
		index: make(map[string]int, len(names)),
		succ:  make([][]int, len(names)),
		next:  make([][]int, len(names)),
	}
	for i, n := range names {
		g.index[n] = i
	}
	return g
}

func (g *graph) addEdge(u, v int) {
	if !slices.Contains(g.succ[u], v) {
		g.succ[u] = append(g.succ[u], v)
	}
}

func (g *graph) addNext(u, v int) {
	g.addEdge(u, v)
	if !slices.Contains(g.next[u], v) {
		g.next[u] = append(g.next[u], v)
	}
}

// findCycle runs a colouring depth-first search and returns the first cycle found as a
// closed path of names (the first node repeated at the end), or nil.
func (g *graph) findCycle() []string {
	const (
		white = iota
		grey
		black
	)
	color := make([]int, len(g.names))
	var path []int
	var found []int

	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = grey
		path = append(path, u)
		for _, v := range g.succ[u] {
			switch color[v] {
			case grey:
				start := slices.Index(path, v)
				found = append(slices.Clone(path[start:]), v)
				return true
			case white:
				if dfs(v) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		color[u] = black
		return false
	}

	for u := range g.names {
		if color[u] == white && dfs(u) {
			out := make([]string, 0, len(found))
			for _, i := range found {
				out = append(out, g.names[i])
			}
			return out
		}
	}
	return nil
}

// sort returns a topological order. It assumes the graph is acyclic.
// When a node is emitted, its priority successors that became ready are emitted next
// (depth first, in declaration order); otherwise the lowest ready index wins.
func (g *graph) sort() []int {
	n := len(g.names)
	indeg := make([]int, n)
	for u := range g.succ {
		for _, v := range g.succ[u] {
			indeg[v]++
		}
	}

	done := make([]bool, n)
	order := make([]int, 0, n)
	var stack []int

	for len(order) < n {
		u := -1
		for len(stack) > 0 && u < 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !done[top] {
				u = top
			}
		}
		if u < 0 {
			for i := 0; i < n; i++ {
				if !done[i] && indeg[i] == 0 {
					u = i
					break
				}
			}
		}
		if u < 0 {
			break
		}

		done[u] = true
		order = append(order, u)
		for _, v := range g.succ[u] {
			indeg[v]--
		}
		for i := len(g.next[u]) - 1; i >= 0; i-- {
			if v := g.next[u][i]; !done[v] && indeg[v] == 0 {
				stack = append(stack, v)
			}
		}
	}
	return order
}
