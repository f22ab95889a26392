package scheduler

import (
	"context"

	"github.com/hibiken/asynq"

	"onepath_dispatch_backend/platform/logger"

	"onepath_dispatch_backend/internal/events"
	"onepath_dispatch_backend/internal/session"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	store  session.Store
	bus    events.Bus
	log    *logger.Logger
}

// NewWorker creates the expiry worker.
func NewWorker(redisURL string, store session.Store, bus events.Bus, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		store:  store,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskSessionExpire, w.handleSessionExpire)

	return w, nil
}

// Run serves expiry tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleSessionExpire(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSessionExpirePayload(task)
	if err != nil {
		return err
	}

	removed, err := w.store.Clear(ctx, payload.RequestID)
	if err != nil {
		return err
	}
	if !removed {
		// Already cleared explicitly; nothing to expire.
		return nil
	}

	w.log.SessionEvent("expired", payload.RequestID)
	return w.bus.PublishSync(ctx, events.SessionCleared{
		BaseEvent: events.NewBaseEvent(),
		RequestID: payload.RequestID,
		Expired:   true,
	})
}
