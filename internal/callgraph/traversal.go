package callgraph

// Traverse performs BFS from start in the given direction. maxDepth <= 0
// means unbounded. The starting node is excluded from the result.
func (g *Graph) Traverse(start string, forward bool, maxDepth int) []string {
	if _, ok := g.Nodes[start]; !ok {
		return nil
	}
	visited := map[string]bool{start: true}
	type item struct {
		key   string
		depth int
	}
	queue := []item{{start, 0}}
	var order []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}
		for _, next := range g.neighbors(cur.key, forward) {
			if visited[next] {
				continue
			}
			visited[next] = true
			order = append(order, next)
			queue = append(queue, item{next, cur.depth + 1})
		}
	}
	return order
}

func (g *Graph) neighbors(key string, forward bool) []string {
	var idxs []int
	if forward {
		idxs = g.out[key]
	} else {
		idxs = g.in[key]
	}
	out := make([]string, 0, len(idxs))
	for _, idx := range idxs {
		e := g.Edges[idx]
		if forward {
			out = append(out, e.To)
		} else {
			out = append(out, e.From)
		}
	}
	return out
}

// ForwardReachable is Traverse(start, true, maxDepth).
func (g *Graph) ForwardReachable(start string, maxDepth int) []string {
	return g.Traverse(start, true, maxDepth)
}

// InverseReachable is Traverse(start, false, maxDepth).
func (g *Graph) InverseReachable(start string, maxDepth int) []string {
	return g.Traverse(start, false, maxDepth)
}

// ResolutionRate is ResolvedCount / ResolutionAttempts, 1.0 when there
// were no attempts at all.
func (g *Graph) ResolutionRate() float64 {
	if g.ResolutionAttempts == 0 {
		return 1.0
	}
	return float64(g.ResolvedCount) / float64(g.ResolutionAttempts)
}
