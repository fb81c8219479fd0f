package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// JobFunc is the callback invoked when a scheduled job fires. It receives the
// task id carried by the job and runs in its own goroutine, so a slow callback
// never blocks the firing loop.
type JobFunc func(taskID int64)

type job struct {
	key    string
	fireAt time.Time
	fn     JobFunc
	taskID int64
	index  int // position in the heap, -1 once removed
}

// Scheduler keeps an in-memory, time-ordered set of one-shot jobs keyed by an
// opaque string. At most one job exists per key: scheduling an existing key
// replaces the pending job. Jobs are not persisted and do not survive restart.
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]*job
	pq   jobQueue

	wake     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func New() *Scheduler {
	return &Scheduler{
		jobs:    make(map[string]*job),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Schedule registers a one-shot job. A pending job under the same key is
// replaced atomically. Fire times not strictly in the future are ignored.
func (s *Scheduler) Schedule(key string, fireAt time.Time, fn JobFunc, taskID int64) {
	if !fireAt.After(time.Now()) {
		return
	}

	s.mu.Lock()
	if old, ok := s.jobs[key]; ok {
		heap.Remove(&s.pq, old.index)
	}
	j := &job{key: key, fireAt: fireAt, fn: fn, taskID: taskID}
	s.jobs[key] = j
	heap.Push(&s.pq, j)
	s.mu.Unlock()

	s.notify()
}

// Cancel removes a pending job. Unknown keys are a no-op.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	if j, ok := s.jobs[key]; ok {
		heap.Remove(&s.pq, j.index)
		delete(s.jobs, key)
	}
	s.mu.Unlock()
}

// Contains reports whether a job is pending under key.
func (s *Scheduler) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[key]
	return ok
}

// Len returns the number of pending jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// FireTime returns the pending fire time for key, if any.
func (s *Scheduler) FireTime(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[key]; ok {
		return j.fireAt, true
	}
	return time.Time{}, false
}

// Run executes the firing loop until ctx is done or Stop is called. Due jobs
// are removed from the pending set first and then fired in their own
// goroutines, in non-decreasing fire-time order. No lock is held while a
// callback runs.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Msg("scheduler started")
	for {
		due, wait := s.collectDue(time.Now())
		for _, j := range due {
			log.Debug().Str("key", j.key).Time("fire_at", j.fireAt).Msg("job fired")
			go j.fn(j.taskID)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logStop()
			return
		case <-s.stopped:
			timer.Stop()
			s.logStop()
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Stop halts the firing loop. Pending jobs are dropped; the startup rebuild is
// responsible for recovering any still-relevant reminders on the next run.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

const idleWait = time.Hour

// collectDue pops every job due at now and returns them in fire-time order,
// along with how long the loop should sleep before rechecking.
func (s *Scheduler) collectDue(now time.Time) ([]*job, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*job
	for s.pq.Len() > 0 && !s.pq[0].fireAt.After(now) {
		j := heap.Pop(&s.pq).(*job)
		delete(s.jobs, j.key)
		due = append(due, j)
	}

	wait := idleWait
	if s.pq.Len() > 0 {
		wait = s.pq[0].fireAt.Sub(now)
	}
	return due, wait
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) logStop() {
	s.mu.Lock()
	pending := len(s.jobs)
	s.mu.Unlock()
	log.Info().Int("pending_dropped", pending).Msg("scheduler stopped")
}

// jobQueue is a min-heap over fire times.
type jobQueue []*job

func (q jobQueue) Len() int            { return len(q) }
func (q jobQueue) Less(i, j int) bool  { return q[i].fireAt.Before(q[j].fireAt) }
func (q jobQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *jobQueue) Push(x interface{}) {
	j := x.(*job)
	j.index = len(*q)
	*q = append(*q, j)
}
func (q *jobQueue) Pop() interface{} {
	old := *q
	n := len(old)
	j := old[n-1]
	old[n-1] = nil
	j.index = -1
	*q = old[:n-1]
	return j
}
