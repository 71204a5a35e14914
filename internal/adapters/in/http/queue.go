package http

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"orderbot/internal/core/application/usecases/commands"
)

const laneDepth = 64

// eventQueue runs inbound events off the request path. Each phone hashes to
// one lane, so its events keep arrival order; lanes run in parallel.
type eventQueue struct {
	handler InboundEventHandler
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	lanes  []chan commands.HandleInboundEventCommand
	wg     sync.WaitGroup
}

func newEventQueue(handler InboundEventHandler, workers int, logger *slog.Logger) *eventQueue {
	q := &eventQueue{
		handler: handler,
		logger:  logger,
		lanes:   make([]chan commands.HandleInboundEventCommand, workers),
	}
	for i := range q.lanes {
		lane := make(chan commands.HandleInboundEventCommand, laneDepth)
		q.lanes[i] = lane
		q.wg.Add(1)
		go q.drain(lane)
	}
	return q
}

// enqueue blocks while the phone's lane is full. It reports false once the queue is closed.
func (q *eventQueue) enqueue(cmd commands.HandleInboundEventCommand) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	q.lanes[q.laneOf(cmd.Event().Phone.String())] <- cmd
	return true
}

// close stops accepting events and waits until the queued ones are handled.
func (q *eventQueue) close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		for _, lane := range q.lanes {
			close(lane)
		}
	}
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *eventQueue) drain(lane <-chan commands.HandleInboundEventCommand) {
	defer q.wg.Done()
	// turns are answered over WhatsApp, so they do not depend on any request context
	ctx := context.Background()
	for cmd := range lane {
		if err := q.handler.Handle(ctx, cmd); err != nil {
			q.logger.Error("inbound event failed",
				"phone", cmd.Event().Phone.String(),
				"message_id", cmd.Event().MessageID,
				"error", err)
		}
	}
}

func (q *eventQueue) laneOf(phone string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(phone))
	return int(h.Sum32() % uint32(len(q.lanes)))
}
