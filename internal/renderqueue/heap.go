package renderqueue

import "container/heap"

// jobHeap orders queued jobs by tier, then by submission time within a tier.
// Each job tracks its own index so Submit can promote it in place.
type jobHeap []*Job

var _ heap.Interface = (*jobHeap)(nil)

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	return a.SubmittedAt.Before(b.SubmittedAt)
}

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *jobHeap) Push(x any) {
	job := x.(*Job)
	job.heapIndex = len(*h)
	*h = append(*h, job)
}

func (h *jobHeap) Pop() any {
	old := *h
	last := len(old) - 1
	job := old[last]
	old[last] = nil
	job.heapIndex = -1
	*h = old[:last]
	return job
}

// Fix restores ordering after the job at index i changed tier.
func (h *jobHeap) Fix(i int) {
	heap.Fix(h, i)
}
