package openapi

import (
	"github.com/frankie567/openapi-tools/internal/model"
)

// DefaultMaxCycleDepth is the longest reference cycle Resolve reports.
const DefaultMaxCycleDepth = 64

type ResolveOptions struct {
	// MaxDepth bounds the length of cycles that mark a schema cyclic,
	// counted in schemas along the cycle. Reference placeholders are not
	// counted, so A -> B -> A through two properties has length 2. Zero
	// means DefaultMaxCycleDepth.
	MaxDepth int
}

// Resolve returns a copy of g with dangling edges and cyclic schemas
// marked. It never fails and leaves g untouched.
func Resolve(g *model.Graph, opts ResolveOptions) *model.Graph {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxCycleDepth
	}
	out := g.Clone()
	for i := range out.Edges {
		out.Edges[i].Dangling = !out.Has(out.Edges[i].To)
	}
	for _, scc := range stronglyConnected(out) {
		members := make(map[model.Locator]bool, len(scc))
		for _, l := range scc {
			members[l] = true
		}
		for _, l := range scc {
			if onCycle(out, l, members, opts.MaxDepth) {
				s, _ := out.Schema(l)
				s.Cyclic = true
			}
		}
	}
	return out
}

// successors lists the schema children of l that exist in g.
func successors(g *model.Graph, l model.Locator) []model.Locator {
	s, ok := g.Schema(l)
	if !ok {
		return nil
	}
	var out []model.Locator
	for _, c := range s.Children() {
		if _, ok := g.Schema(c); ok {
			out = append(out, c)
		}
	}
	return out
}

// stronglyConnected runs Tarjan's algorithm without recursion and returns
// the components that can hold a cycle: those with more than one member,
// or a single member pointing at itself.
func stronglyConnected(g *model.Graph) [][]model.Locator {
	type frame struct {
		node model.Locator
		next []model.Locator
	}
	var (
		index   = map[model.Locator]int{}
		low     = map[model.Locator]int{}
		onStack = map[model.Locator]bool{}
		stack   []model.Locator
		counter int
		out     [][]model.Locator
	)

	for _, root := range g.Schemas() {
		if _, seen := index[root.Locator]; seen {
			continue
		}
		visit := func(l model.Locator) frame {
			index[l] = counter
			low[l] = counter
			counter++
			stack = append(stack, l)
			onStack[l] = true
			return frame{node: l, next: successors(g, l)}
		}
		work := []frame{visit(root.Locator)}
		for len(work) > 0 {
			top := &work[len(work)-1]
			if len(top.next) > 0 {
				w := top.next[0]
				top.next = top.next[1:]
				if _, seen := index[w]; !seen {
					work = append(work, visit(w))
				} else if onStack[w] && index[w] < low[top.node] {
					low[top.node] = index[w]
				}
				continue
			}

			v := top.node
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1].node
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}
			if low[v] != index[v] {
				continue
			}
			var scc []model.Locator
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 || selfLoop(g, v) {
				out = append(out, scc)
			}
		}
	}
	return out
}

func selfLoop(g *model.Graph, l model.Locator) bool {
	for _, c := range successors(g, l) {
		if c == l {
			return true
		}
	}
	return false
}

// onCycle reports whether start can reach itself through at most maxDepth
// schemas without leaving its strongly connected component. Reference
// placeholders cost nothing, so the search is a 0-1 BFS.
func onCycle(g *model.Graph, start model.Locator, scc map[model.Locator]bool, maxDepth int) bool {
	dist := map[model.Locator]int{start: 0}
	queue := []model.Locator{start}
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]
		for _, c := range successors(g, l) {
			cost := hopCost(g, c)
			d := dist[l] + cost
			if d > maxDepth {
				continue
			}
			if c == start {
				return true
			}
			if !scc[c] {
				continue
			}
			if old, seen := dist[c]; seen && old <= d {
				continue
			}
			dist[c] = d
			if cost == 0 {
				queue = append([]model.Locator{c}, queue...)
			} else {
				queue = append(queue, c)
			}
		}
	}
	return false
}

func hopCost(g *model.Graph, l model.Locator) int {
	if s, ok := g.Schema(l); ok && s.Kind == model.KindRef {
		return 0
	}
	return 1
}
