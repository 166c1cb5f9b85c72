package grammar

import (
	"math"

	"github.com/emirpasic/gods/stacks/arraystack"
)

type digraphFrame struct {
	vertex int
	depth  int
	edge   int
}

// digraph computes, for every vertex x, the smallest set F(x) satisfying
//
//	F(x) = base(x) ∪ ∪{ F(y) | x R y }
//
// relation[x] lists the vertices y with x R y. Vertices of a strongly connected component end up
// with equal sets, each owned by its vertex. The traversal keeps its own stacks instead of
// recursing so that long relation chains cannot overflow the goroutine stack.
func digraph(relation [][]int, base []terminalSet) []terminalSet {
	n := len(relation)
	f := make([]terminalSet, n)
	depth := make([]int, n)
	vertices := arraystack.New()
	frames := arraystack.New()

	enter := func(x int) {
		vertices.Push(x)
		d := vertices.Size()
		depth[x] = d
		f[x] = base[x].clone()
		frames.Push(&digraphFrame{
			vertex: x,
			depth:  d,
		})
	}

	for v := 0; v < n; v++ {
		if depth[v] != 0 {
			continue
		}

		enter(v)
		for !frames.Empty() {
			top, _ := frames.Peek()
			fr := top.(*digraphFrame)
			x := fr.vertex

			if fr.edge < len(relation[x]) {
				y := relation[x][fr.edge]
				if depth[y] == 0 {
					// Come back to the same edge once y is done.
					enter(y)
					continue
				}
				if depth[y] < depth[x] {
					depth[x] = depth[y]
				}
				f[x].union(f[y])
				fr.edge++
				continue
			}

			frames.Pop()
			if depth[x] == fr.depth {
				for {
					top, _ := vertices.Pop()
					w := top.(int)
					depth[w] = math.MaxInt
					if w == x {
						break
					}
					f[w] = f[x].clone()
				}
			}
		}
	}

	return f
}
