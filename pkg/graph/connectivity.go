package graph

import (
	"sort"

	"github.com/aretw0/mosaic/pkg/domain"
)

// WouldCreateSeparateGroups reports whether an edge between source and target
// would start a group disconnected from the existing one.
//
// The existing group is the component reachable from the source of the first
// edge, treating edges as undirected and ignoring their status. With no edges
// every connection is allowed. Otherwise the connection is allowed when at
// least one endpoint already belongs to that group.
func WouldCreateSeparateGroups(source, target string, edges []domain.Edge) bool {
	if len(edges) == 0 {
		return false
	}
	group := Component(edges[0].Source, edges)
	return !group[source] && !group[target]
}

// Component returns the set of node ids reachable from seed over edges,
// treated as undirected. The seed is always part of the set.
func Component(seed string, edges []domain.Edge) map[string]bool {
	adj := adjacency(edges)
	visited := map[string]bool{seed: true}
	stack := []string{seed}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[id] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return visited
}

// Components partitions the node ids touched by edges into connected groups.
// Isolated nodes are not reported. Groups are sorted for stable output.
func Components(edges []domain.Edge) [][]string {
	seen := make(map[string]bool)
	var groups [][]string
	for _, e := range edges {
		if seen[e.Source] {
			continue
		}
		var group []string
		for id := range Component(e.Source, edges) {
			seen[id] = true
			group = append(group, id)
		}
		sort.Strings(group)
		groups = append(groups, group)
	}
	return groups
}

// Connected reports whether every edge belongs to a single group.
func Connected(edges []domain.Edge) bool {
	return len(Components(edges)) <= 1
}

// StaysConnected reports whether edges remain a single group whichever of the
// tentative edges are later dropped.
//
// Settled edges must form one group, and every tentative edge must touch it.
// With no settled edges, tentative edges must pairwise share an endpoint, so
// any surviving subset still forms one group.
func StaysConnected(edges []domain.Edge, tentative func(domain.Edge) bool) bool {
	var settled, open []domain.Edge
	for _, e := range edges {
		if tentative(e) {
			open = append(open, e)
		} else {
			settled = append(settled, e)
		}
	}

	if len(settled) == 0 {
		for i := range open {
			for j := i + 1; j < len(open); j++ {
				if !sharesEndpoint(open[i], open[j]) {
					return false
				}
			}
		}
		return true
	}

	if !Connected(settled) {
		return false
	}
	group := Component(settled[0].Source, settled)
	for _, e := range open {
		if !group[e.Source] && !group[e.Target] {
			return false
		}
	}
	return true
}

func sharesEndpoint(a, b domain.Edge) bool {
	return a.Touches(b.Source) || a.Touches(b.Target)
}

func adjacency(edges []domain.Edge) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}
	return adj
}
