package order

import "container/heap"

// TopoSort orders the graph with Kahn's algorithm. Among ready nodes the
// smallest index always goes first, so the result only depends on the
// declaration order.
//
// Nodes that cannot be ordered because of a cycle are returned in original
// order as cycles and are also appended to order, so order is always a
// permutation of 0..Len()-1.
func TopoSort(g *Graph) (order []int, cycles []int) {
	n := g.Len()
	indeg := make([]int, n)
	dependents := make([][]int, n)
	for i := 0; i < n; i++ {
		for _, j := range g.Deps(i) {
			indeg[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ready := &minHeap{}
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}

	order = make([]int, 0, n)
	visited := make([]bool, n)
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, i)
		visited[i] = true
		for _, d := range dependents[i] {
			indeg[d]--
			if indeg[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	for i := 0; i < n; i++ {
		if !visited[i] {
			cycles = append(cycles, i)
		}
	}
	order = append(order, cycles...)
	return order, cycles
}

type minHeap []int

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *minHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
