package export

import "github.com/fwojciec/semjson"

// Unlimited is the recursion depth of a page whose dependencies are
// expanded without limit.
const Unlimited = -1

// Task is a page queued for export with its requested recursion depth.
type Task struct {
	Ref   *semjson.PageRef
	Depth int
}

// doneSet maps page hashes to the depth at which they were exported. It
// holds at most max entries; when full, the oldest backjump entries are
// evicted in insertion order.
type doneSet struct {
	depths   map[string]int
	order    []string
	max      int
	backjump int
}

func newDoneSet(max, backjump int) *doneSet {
	if max <= 0 {
		max = DefaultMaxCacheSize
	}
	if backjump <= 0 {
		backjump = DefaultCacheBackjump
	}
	if backjump > max {
		backjump = max
	}
	return &doneSet{
		depths:   make(map[string]int),
		max:      max,
		backjump: backjump,
	}
}

// isDone reports whether hash was exported at depth sufficient for depth.
func (s *doneSet) isDone(hash string, depth int) bool {
	done, ok := s.depths[hash]
	if !ok {
		return false
	}
	return done == Unlimited || (depth != Unlimited && done >= depth)
}

// mark records hash as exported at depth. It never lowers a recorded depth.
func (s *doneSet) mark(hash string, depth int) {
	if len(s.depths) >= s.max {
		s.evict()
	}
	if s.isDone(hash, depth) {
		return
	}
	if _, ok := s.depths[hash]; !ok {
		s.order = append(s.order, hash)
	}
	s.depths[hash] = depth
}

func (s *doneSet) evict() {
	n := s.backjump
	if n > len(s.order) {
		n = len(s.order)
	}
	for _, hash := range s.order[:n] {
		delete(s.depths, hash)
	}
	s.order = append([]string(nil), s.order[n:]...)
}

func (s *doneSet) len() int {
	return len(s.depths)
}

// taskQueue is an insertion-ordered set of tasks keyed by page hash.
// Removed tasks leave their slot in order behind; each slot carries the
// sequence number of its push so that a stale slot is never mistaken for a
// later push of the same hash.
type taskQueue struct {
	tasks map[string]queuedTask
	order []queueSlot
	seq   uint64
}

type queuedTask struct {
	task Task
	seq  uint64
}

type queueSlot struct {
	hash string
	seq  uint64
}

func newTaskQueue() *taskQueue {
	return &taskQueue{tasks: make(map[string]queuedTask)}
}

func (q *taskQueue) has(hash string) bool {
	_, ok := q.tasks[hash]
	return ok
}

func (q *taskQueue) push(t Task) {
	hash := t.Ref.Hash()
	if q.has(hash) {
		return
	}
	q.seq++
	q.tasks[hash] = queuedTask{task: t, seq: q.seq}
	q.order = append(q.order, queueSlot{hash: hash, seq: q.seq})
}

// pop removes and returns the oldest task.
func (q *taskQueue) pop() (Task, bool) {
	for len(q.order) > 0 {
		slot := q.order[0]
		q.order = q.order[1:]
		if qt, ok := q.tasks[slot.hash]; ok && qt.seq == slot.seq {
			delete(q.tasks, slot.hash)
			return qt.task, true
		}
	}
	return Task{}, false
}

// remove drops hash from the queue. Its slot in the order is skipped lazily.
func (q *taskQueue) remove(hash string) {
	delete(q.tasks, hash)
}

// retain keeps only the tasks for which keep returns true.
func (q *taskQueue) retain(keep func(Task) bool) {
	for hash, qt := range q.tasks {
		if !keep(qt.task) {
			delete(q.tasks, hash)
		}
	}
}

func (q *taskQueue) len() int {
	return len(q.tasks)
}

// tracker combines the queue and done-set of one export run.
type tracker struct {
	done  *doneSet
	queue *taskQueue
}

func newTracker(cfg Config) *tracker {
	return &tracker{
		done:  newDoneSet(cfg.MaxCacheSize, cfg.CacheBackjump),
		queue: newTaskQueue(),
	}
}

// isHashDone reports whether hash needs no export at depth.
func (t *tracker) isHashDone(hash string, depth int) bool {
	return t.done.isDone(hash, depth)
}

// markHashAsDone records hash as exported at depth and unqueues it.
func (t *tracker) markHashAsDone(hash string, depth int) {
	t.done.mark(hash, depth)
	t.queue.remove(hash)
}

// queuePage enqueues ref unless it is already done at depth or queued.
func (t *tracker) queuePage(ref *semjson.PageRef, depth int) bool {
	hash := ref.Hash()
	if t.isHashDone(hash, depth) || t.queue.has(hash) {
		return false
	}
	t.queue.push(Task{Ref: ref, Depth: depth})
	return true
}
