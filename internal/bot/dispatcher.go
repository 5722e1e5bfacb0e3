package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultQueueSize is the per-worker buffer of pending updates.
const DefaultQueueSize = 64

// HandlerFunc processes one update.
type HandlerFunc func(ctx context.Context, upd tgbotapi.Update)

// Dispatcher fans updates out to a fixed set of workers. Every update of a
// user goes to the same worker (telegram id mod Workers), so one user's
// updates are handled in order while different users proceed in parallel.
type Dispatcher struct {
	Workers   int
	QueueSize int
}

// Shard returns the worker index for a Telegram id.
func Shard(telegramID int64, workers int) int {
	if workers <= 1 {
		return 0
	}
	if telegramID < 0 {
		telegramID = -telegramID
	}
	return int(telegramID % int64(workers))
}

// Run reads updates until ctx is canceled or the channel is closed, then
// lets the workers finish what was already queued and returns.
//
// Handlers run with a context that is not canceled on shutdown so an update
// in progress is completed rather than cut off halfway through a form.
func (d Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update, handle HandlerFunc) {
	n := d.Workers
	if n < 1 {
		n = 1
	}
	size := d.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}

	workCtx := context.WithoutCancel(ctx)
	queues := make([]chan tgbotapi.Update, n)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan tgbotapi.Update, size)
		wg.Add(1)
		go func(q <-chan tgbotapi.Update) {
			defer wg.Done()
			for upd := range q {
				handle(workCtx, upd)
			}
		}(queues[i])
	}
	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			select {
			case queues[Shard(SenderID(upd), n)] <- upd:
			case <-ctx.Done():
				return
			}
		}
	}
}
