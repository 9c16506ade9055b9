package delivery

import (
	"container/heap"
	"time"

	"mockabis/internal/abis/models"
)

type task struct {
	id       string
	delivery models.Delivery
	due      time.Time
	seq      uint64
}

// taskHeap orders tasks by deadline. seq breaks ties so equal deadlines pop
// in scheduling order, although callers must not rely on it.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(*task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// delayQueue is not safe for concurrent use; the scheduler guards it.
type delayQueue struct {
	tasks taskHeap
	seq   uint64
}

func (q *delayQueue) push(t *task) {
	q.seq++
	t.seq = q.seq
	heap.Push(&q.tasks, t)
}

// popDue removes every task due at or before now and reports the next deadline.
func (q *delayQueue) popDue(now time.Time) (due []*task, next time.Time, ok bool) {
	for q.tasks.Len() > 0 {
		head := q.tasks[0]
		if head.due.After(now) {
			return due, head.due, true
		}
		due = append(due, heap.Pop(&q.tasks).(*task))
	}
	return due, time.Time{}, false
}

// drain empties the queue, returning what was left.
func (q *delayQueue) drain() []*task {
	left := []*task(q.tasks)
	q.tasks = nil
	return left
}

func (q *delayQueue) len() int { return q.tasks.Len() }
