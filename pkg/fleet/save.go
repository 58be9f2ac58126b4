package fleet

import (
	"context"

	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/repositories"
	"github.com/ch1nq/arcadio-go/pkg/repositories/models"
	"github.com/remeh/sizedwaitgroup"
)

const DefaultMaxConcurrentSaves = 4

type SaveMatchWorker struct {
	repository    repositories.Repository
	saveMatchChan <-chan SaveMatchRequest
	saves         sizedwaitgroup.SizedWaitGroup
}

type NewSaveMatchWorkerOptions struct {
	Repository    repositories.Repository
	SaveMatchChan <-chan SaveMatchRequest
	// MaxConcurrentSaves bounds repository writes in flight at once.
	MaxConcurrentSaves int
}

type SaveMatchRequest struct {
	Match *models.Match
}

// NewSaveMatchWorker creates a new SaveMatchWorker.
// The worker writes finished games to the repository with a bounded
// number of writes in flight. A slow database backs up the request
// channel rather than the game loops.
func NewSaveMatchWorker(opts NewSaveMatchWorkerOptions) *SaveMatchWorker {
	if opts.MaxConcurrentSaves <= 0 {
		opts.MaxConcurrentSaves = DefaultMaxConcurrentSaves
	}
	return &SaveMatchWorker{
		repository:    opts.Repository,
		saveMatchChan: opts.SaveMatchChan,
		saves:         sizedwaitgroup.New(opts.MaxConcurrentSaves),
	}
}

// Start processes save requests until the context is cancelled, then
// waits for in-flight writes to finish.
func (w *SaveMatchWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.saves.Wait()
			return
		case saveRequest := <-w.saveMatchChan:
			if err := w.saves.AddWithContext(ctx); err != nil {
				w.saves.Wait()
				return
			}
			go func() {
				defer w.saves.Done()
				w.saveMatch(ctx, saveRequest)
			}()
		}
	}
}

func (w *SaveMatchWorker) saveMatch(ctx context.Context, saveRequest SaveMatchRequest) {
	if err := w.repository.SaveMatch(ctx, saveRequest.Match); err != nil {
		log.Error("Failed to save match %s: %v", saveRequest.Match.ID, err)
	}
}
