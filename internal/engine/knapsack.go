package engine

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	"github.com/piwi3910/RollCut/internal/model"
)

// pricingResult is the outcome of the knapsack pricing subproblem:
// the best objective Σ dᵢxᵢ found and one maximizing count vector,
// indexed like the normalized demand.
type pricingResult struct {
	value    float64
	counts   []int
	timedOut bool
}

// totalPieces returns Σ xᵢ for the solution.
func (r pricingResult) totalPieces() int {
	n := 0
	for _, c := range r.counts {
		n += c
	}
	return n
}

// solvePricing maximizes Σ dᵢxᵢ subject to Σ ℓᵢxᵢ ≤ rollLength and
// 0 ≤ xᵢ ≤ qᵢ. The workhorse is a 1-D dynamic program over capacities
// with power-of-two decomposition of the bounded counts; when the DP
// table would blow the cell budget it falls back to best-first
// branch-and-bound. Ties in objective prefer more pieces, then more
// used length, then lexicographically larger counts.
func (s *Solver) solvePricing(ctx context.Context, duals []float64, demand []model.DemandLine, rollLength int, deadline time.Time) (pricingResult, error) {
	if rollLength+1 > s.settings.MaxDPCells {
		return solvePricingBnB(ctx, duals, demand, rollLength, s.settings.MaxBnBNodes, deadline)
	}
	return solvePricingDP(ctx, duals, demand, rollLength, deadline)
}

// dpChunk is one 0/1 super-item from the power-of-two decomposition of a
// bounded item: taking it adds count pieces of one demand entry.
type dpChunk struct {
	item   int
	count  int
	weight int
	value  float64
}

// decomposeItems splits each bounded item into power-of-two chunks.
// Items are emitted last-demand-entry first so the first (longest)
// entry is processed last and wins lexicographic ties in the DP.
func decomposeItems(duals []float64, demand []model.DemandLine, rollLength int) []dpChunk {
	var chunks []dpChunk
	for i := len(demand) - 1; i >= 0; i-- {
		d := demand[i]
		maxCount := d.Quantity
		if byCap := rollLength / d.Length; byCap < maxCount {
			maxCount = byCap
		}
		for step := 1; maxCount > 0; step *= 2 {
			take := step
			if take > maxCount {
				take = maxCount
			}
			chunks = append(chunks, dpChunk{
				item:   i,
				count:  take,
				weight: take * d.Length,
				value:  float64(take) * duals[i],
			})
			maxCount -= take
		}
	}
	return chunks
}

// cellBetter reports whether the (value, pieces, used) tuple of a new
// composition beats the incumbent cell. Full equality counts as better:
// later-processed chunks belong to earlier demand entries, so accepting
// ties steers the backtrack toward lexicographically larger counts.
func cellBetter(nv float64, np, nu int32, v float64, p, u int32) bool {
	if nv != v {
		return nv > v
	}
	if np != p {
		return np > p
	}
	return nu >= u
}

func solvePricingDP(ctx context.Context, duals []float64, demand []model.DemandLine, rollLength int, deadline time.Time) (pricingResult, error) {
	capacity := rollLength
	val := make([]float64, capacity+1)
	pieces := make([]int32, capacity+1)
	used := make([]int32, capacity+1)

	chunks := decomposeItems(duals, demand, capacity)
	words := (capacity + 64) / 64
	taken := make([][]uint64, len(chunks))

	processed := 0
	timedOut := false
	for r, ch := range chunks {
		// Row boundary: cancellation and budget checks happen here.
		if err := ctx.Err(); err != nil {
			return pricingResult{}, fmt.Errorf("%w: pricing interrupted", model.ErrCancelled)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			timedOut = true
			break
		}
		row := make([]uint64, words)
		taken[r] = row
		for c := capacity; c >= ch.weight; c-- {
			from := c - ch.weight
			nv := val[from] + ch.value
			np := pieces[from] + int32(ch.count)
			nu := used[from] + int32(ch.weight)
			if cellBetter(nv, np, nu, val[c], pieces[c], used[c]) {
				val[c] = nv
				pieces[c] = np
				used[c] = nu
				row[c/64] |= 1 << (c % 64)
			}
		}
		processed++
	}

	// Backtrack from the full-capacity cell: the DP is monotone in
	// capacity, so it holds the best solution overall.
	counts := make([]int, len(demand))
	c := capacity
	for r := processed - 1; r >= 0; r-- {
		if taken[r][c/64]&(1<<(c%64)) != 0 {
			counts[chunks[r].item] += chunks[r].count
			c -= chunks[r].weight
		}
	}

	return pricingResult{value: val[capacity], counts: counts, timedOut: timedOut}, nil
}

// ─── Branch-and-bound fallback ─────────────────────────────────────

// bnbNode is one partial assignment: counts fixed for items [0, idx).
type bnbNode struct {
	idx    int
	capTop int
	value  float64
	counts []int
	bound  float64
	seq    int
}

type bnbQueue []*bnbNode

func (q bnbQueue) Len() int { return len(q) }
func (q bnbQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound > q[j].bound
	}
	return q[i].seq < q[j].seq
}
func (q bnbQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *bnbQueue) Push(x any)   { *q = append(*q, x.(*bnbNode)) }
func (q *bnbQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// solvePricingBnB is the large-capacity fallback: best-first search with
// the fractional relaxation bound value + capacity·maxᵢ(dᵢ/ℓᵢ) over the
// remaining items. Exhausting the node budget is a hard failure; Solve
// downgrades it per the error policy.
func solvePricingBnB(ctx context.Context, duals []float64, demand []model.DemandLine, rollLength, nodeBudget int, deadline time.Time) (pricingResult, error) {
	n := len(demand)

	// suffixRatio[i] = max over items j ≥ i of dⱼ/ℓⱼ, floored at zero.
	suffixRatio := make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		ratio := duals[i] / float64(demand[i].Length)
		if ratio < 0 {
			ratio = 0
		}
		suffixRatio[i] = ratio
		if suffixRatio[i+1] > suffixRatio[i] {
			suffixRatio[i] = suffixRatio[i+1]
		}
	}

	incumbent := pricingResult{counts: make([]int, n)}
	seq := 0
	root := &bnbNode{capTop: rollLength, counts: make([]int, n), bound: float64(rollLength) * suffixRatio[0]}
	queue := &bnbQueue{root}
	heap.Init(queue)

	expanded := 0
	for queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return pricingResult{}, fmt.Errorf("%w: pricing interrupted", model.ErrCancelled)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			incumbent.timedOut = true
			return incumbent, nil
		}
		node := heap.Pop(queue).(*bnbNode)
		if node.bound < incumbent.value {
			continue
		}
		if node.idx == n {
			candidate := pricingResult{value: node.value, counts: node.counts}
			if leafBetter(candidate, incumbent, demand) {
				incumbent = candidate
			}
			continue
		}
		expanded++
		if expanded > nodeBudget {
			return pricingResult{}, fmt.Errorf("%w: branch-and-bound node budget (%d) exhausted", model.ErrResourceExceeded, nodeBudget)
		}

		d := demand[node.idx]
		maxCount := d.Quantity
		if byCap := node.capTop / d.Length; byCap < maxCount {
			maxCount = byCap
		}
		for count := maxCount; count >= 0; count-- {
			child := &bnbNode{
				idx:    node.idx + 1,
				capTop: node.capTop - count*d.Length,
				value:  node.value + float64(count)*duals[node.idx],
				counts: append([]int(nil), node.counts...),
				seq:    seq,
			}
			child.counts[node.idx] = count
			child.bound = child.value + float64(child.capTop)*suffixRatio[child.idx]
			seq++
			if child.bound < incumbent.value {
				continue
			}
			heap.Push(queue, child)
		}
	}
	return incumbent, nil
}

// leafBetter applies the pricing tie rules to a complete assignment:
// larger objective, then more pieces, then more used length, then
// lexicographically larger counts.
func leafBetter(c, best pricingResult, demand []model.DemandLine) bool {
	if c.value != best.value {
		return c.value > best.value
	}
	if cp, bp := c.totalPieces(), best.totalPieces(); cp != bp {
		return cp > bp
	}
	if cu, bu := usedLength(c.counts, demand), usedLength(best.counts, demand); cu != bu {
		return cu > bu
	}
	for i := range c.counts {
		if c.counts[i] != best.counts[i] {
			return c.counts[i] > best.counts[i]
		}
	}
	return false
}

func usedLength(counts []int, demand []model.DemandLine) int {
	total := 0
	for i, n := range counts {
		total += n * demand[i].Length
	}
	return total
}
