// Implements the WaitQueue, which holds cloudlets admitted to a VM but not
// yet executing. Cloudlets are enqueued on arrival and leave in FIFO order.

package sim

import (
	"fmt"
	"strings"
)

// WaitQueue represents a FIFO queue of cloudlets waiting for free PEs on a VM.
type WaitQueue struct {
	queue []*Cloudlet // FIFO queue of cloudlets
}

// Enqueue adds a cloudlet to the back of the wait queue.
func (wq *WaitQueue) Enqueue(c *Cloudlet) {
	wq.queue = append(wq.queue, c)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range wq.queue {
		sb.WriteString(fmt.Sprint(c.ID))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of cloudlets in the queue.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Peek returns the cloudlet at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Peek() *Cloudlet {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[0]
}

// Dequeue removes and returns the cloudlet at the front of the queue.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Dequeue() *Cloudlet {
	if len(wq.queue) == 0 {
		return nil
	}
	c := wq.queue[0]
	wq.queue = wq.queue[1:]
	return c
}

// Remove deletes the cloudlet with the given id, preserving the order of the
// rest. Returns nil if it is not queued.
func (wq *WaitQueue) Remove(id int) *Cloudlet {
	for i, c := range wq.queue {
		if c.ID == id {
			wq.queue = append(wq.queue[:i:i], wq.queue[i+1:]...)
			return c
		}
	}
	return nil
}
