// Package audit hands authentication events to a fire-and-forget background
// sink so the authorization decision never blocks on audit writes.
package audit

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink accepts work to be executed outside the request path.
// Enqueue must never block and must never fail the caller.
type Sink interface {
	Enqueue(fn func())
}

// BackgroundSink runs enqueued functions on a fixed pool of workers. When the
// queue is full the work is dropped with a warning; losing an audit record is
// preferable to stalling an authorization decision.
type BackgroundSink struct {
	queue    chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewBackgroundSink(workers, queueSize int) *BackgroundSink {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 256
	}

	s := &BackgroundSink{
		queue: make(chan func(), queueSize),
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *BackgroundSink) Enqueue(fn func()) {
	select {
	case s.queue <- fn:
	default:
		logrus.Warn("BackgroundSink::Enqueue(): queue full, dropping audit work")
	}
}

// Close stops accepting work and waits for queued work to drain.
func (s *BackgroundSink) Close() {
	s.stopOnce.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}

func (s *BackgroundSink) worker() {
	defer s.wg.Done()
	for fn := range s.queue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logrus.Errorf("BackgroundSink::worker(): recovered from panic: %v", r)
				}
			}()
			fn()
		}()
	}
}
