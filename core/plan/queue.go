package plan

import (
	"container/heap"

	"github.com/kilianp07/pumpplan/core/model"
)

type entry struct {
	rank    rank
	version uint32
}

type candidateHeap struct {
	items []entry
	dir   Direction
}

func (h *candidateHeap) Len() int { return len(h.items) }
func (h *candidateHeap) Less(i, j int) bool {
	return h.items[i].rank.before(h.items[j].rank, h.dir)
}
func (h *candidateHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *candidateHeap) Push(x any)   { h.items = append(h.items, x.(entry)) }
func (h *candidateHeap) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	return it
}

// queue yields candidates in the same order as SelectExtremal over a range of
// rows. Entries carry the version of their cell at push time; an entry whose
// cell has changed since is stale and skipped, and the cell is pushed again
// through touch. Within a single-direction pass eligibility never comes back
// once lost, so dropping ineligible entries is safe.
type queue struct {
	rc     *RunContext
	h      candidateHeap
	admit  func(c *model.Cell, side model.Side) bool
	parked parking
}

type parkedEntry struct {
	cand  Candidate
	reach int
}

// parking orders set-aside candidates by the largest gap they can absorb.
type parking []parkedEntry

func (p parking) Len() int           { return len(p) }
func (p parking) Less(i, j int) bool { return p[i].reach > p[j].reach }
func (p parking) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p *parking) Push(x any)        { *p = append(*p, x.(parkedEntry)) }
func (p *parking) Pop() any {
	old := *p
	n := len(old)
	it := old[n-1]
	*p = old[:n-1]
	return it
}

// newQueue admits facilities that can take a full step in dir.
func newQueue(rc *RunContext, from, to int, dir Direction) *queue {
	return buildQueue(rc, from, to, dir, func(c *model.Cell, side model.Side) bool {
		_, ok := rc.moveFor(c, side, dir)
		return ok
	})
}

// newPartialQueue admits every facility that can still move in dir, including
// those whose full step is blocked but which may take a partial one.
func newPartialQueue(rc *RunContext, from, to int, dir Direction) *queue {
	return buildQueue(rc, from, to, dir, func(c *model.Cell, side model.Side) bool {
		return rc.movable(c, side, dir)
	})
}

func buildQueue(rc *RunContext, from, to int, dir Direction, admit func(*model.Cell, model.Side) bool) *queue {
	q := &queue{rc: rc, h: candidateHeap{dir: dir}, admit: admit}
	for d := from; d < to; d++ {
		row := rc.Grid.Row(d)
		for i := range row {
			c := &row[i]
			for _, side := range model.Sides {
				if admit(c, side) {
					q.h.items = append(q.h.items, entry{rank: rankOf(c, side, dir), version: rc.version(c)})
				}
			}
		}
	}
	heap.Init(&q.h)
	return q
}

func (q *queue) Len() int { return q.h.Len() }

// next returns the best candidate still admitted.
func (q *queue) next() (Candidate, bool) {
	for q.h.Len() > 0 {
		e := heap.Pop(&q.h).(entry)
		c := q.rc.Grid.Cell(e.rank.day, e.rank.hour)
		if e.version != q.rc.version(c) || !q.admit(c, e.rank.side) {
			continue
		}
		return Candidate{Day: e.rank.day, Hour: e.rank.hour, Side: e.rank.side}, true
	}
	return Candidate{}, false
}

// pop returns the best candidate still eligible together with its full step.
func (q *queue) pop() (Candidate, move, bool) {
	for {
		cand, ok := q.next()
		if !ok {
			return Candidate{}, move{}, false
		}
		c := q.rc.Grid.Cell(cand.Day, cand.Hour)
		if m, ok := q.rc.moveFor(c, cand.Side, q.h.dir); ok {
			return cand, m, true
		}
	}
}

// touch re-queues both facilities of c after a mutation.
func (q *queue) touch(c *model.Cell) {
	for _, side := range model.Sides {
		if q.admit(c, side) {
			heap.Push(&q.h, entry{rank: rankOf(c, side, q.h.dir), version: q.rc.version(c)})
		}
	}
}

// park sets cand aside until the gap shrinks to reach or below.
func (q *queue) park(cand Candidate, reach int) {
	heap.Push(&q.parked, parkedEntry{cand: cand, reach: reach})
}

// release returns to the queue every parked candidate able to absorb gap.
func (q *queue) release(gap int) {
	for q.parked.Len() > 0 && q.parked[0].reach >= gap {
		e := heap.Pop(&q.parked).(parkedEntry)
		c := q.rc.Grid.Cell(e.cand.Day, e.cand.Hour)
		heap.Push(&q.h, entry{rank: rankOf(c, e.cand.Side, q.h.dir), version: q.rc.version(c)})
	}
}
