package link

import "sort"

func sortStrings(s []string) {
	sort.Strings(s)
}

// createsCycle reports whether adding target -> deps would close a cycle.
// The candidate edge is not in the graph yet, so a direct self-reference is
// checked on its own before walking the existing edges from each dep.
func (r *Registry) createsCycle(target string, deps []Reference) bool {
	for _, dep := range deps {
		if dep.String() == target {
			return true
		}
	}
	for _, dep := range deps {
		if r.reachable(dep.String(), target) {
			return true
		}
	}
	return false
}

// reachable walks the existing dependency graph from start and reports
// whether goal can be reached.
func (r *Registry) reachable(start, goal string) bool {
	visited := make(map[string]bool)
	stack := []string{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == goal {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		for next := range r.graph[n] {
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return false
}
