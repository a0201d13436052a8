package timer

import (
	"container/heap"
	"time"

	"reveille/internal/core"
)

type entry struct {
	alarmID   int
	triggerAt time.Time
	payload   core.AlarmDefinition
	seq       uint64 // insertion order breaks ties between equal instants
}

// entryHeap is a min-heap of entries ordered by trigger instant
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].triggerAt.Equal(h[j].triggerAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].triggerAt.Before(h[j].triggerAt)
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// removeByID removes the entry armed for alarmID
func (h *entryHeap) removeByID(alarmID int) (entry, bool) {
	for i, e := range *h {
		if e.alarmID == alarmID {
			heap.Remove(h, i)
			return e, true
		}
	}
	return entry{}, false
}

func (h entryHeap) find(alarmID int) (entry, bool) {
	for _, e := range h {
		if e.alarmID == alarmID {
			return e, true
		}
	}
	return entry{}, false
}
