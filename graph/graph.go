// Package graph turns the class references found in constant pools into a
// directed graph.
package graph

import (
	"sort"

	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"github.com/dhamidi/classpool/classfile"
)

// Build constructs a lattice.Graph from parsed classes keyed by name. Each
// class becomes a node. Each class it refers to, other than itself, becomes
// an edge and, if it is not one of the keys, a node too.
func Build(classes map[string]*classfile.ClassFile) *lattice.Graph {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)

	g := &lattice.Graph{}
	seen := make(map[string]bool)
	addNode := func(n string) {
		if !seen[n] {
			seen[n] = true
			g.Nodes = append(g.Nodes, n)
		}
	}
	for _, name := range names {
		addNode(name)
		for _, ref := range classes[name].ClassNames() {
			if ref == name {
				continue
			}
			addNode(ref)
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: name,
				Callee: ref,
			})
		}
	}
	g.Dedup()
	return g
}

// Reachable returns every node reachable from roots, roots included,
// sorted. Roots that are not in the graph are ignored.
func Reachable(g *lattice.Graph, roots []string) []string {
	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n] = true
	}
	succ := make(map[string][]string)
	for _, e := range g.Edges {
		succ[e.Caller] = append(succ[e.Caller], e.Callee)
	}

	seen := make(map[string]bool)
	var queue []string
	for _, r := range roots {
		if known[r] && !seen[r] {
			seen[r] = true
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range succ[n] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	keep := make([]string, 0, len(seen))
	for n := range seen {
		keep = append(keep, n)
	}
	sort.Strings(keep)
	return keep
}

// Restrict returns the subgraph induced by names.
func Restrict(g *lattice.Graph, names []string) *lattice.Graph {
	in := make(map[string]bool, len(names))
	for _, n := range names {
		in[n] = true
	}
	sub := &lattice.Graph{}
	for _, n := range g.Nodes {
		if in[n] {
			sub.Nodes = append(sub.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if in[e.Caller] && in[e.Callee] {
			sub.Edges = append(sub.Edges, e)
		}
	}
	return sub
}

// DOT renders g in Graphviz format.
func DOT(g *lattice.Graph, name string) string {
	return render.DOT(g, name)
}
