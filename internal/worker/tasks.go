package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

const TaskVerifyBalances = "ledger:verify_balances"

// Enqueuer schedules ledger background tasks. It satisfies
// service.TaskEnqueuer.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueVerifyBalances queues a low-priority pass that checks every
// materialized balance against a replay of the ledger log.
func (e *Enqueuer) EnqueueVerifyBalances(ctx context.Context) error {
	task := asynq.NewTask(TaskVerifyBalances, nil)
	_, err := e.client.EnqueueContext(ctx, task, asynq.Queue("low"), asynq.MaxRetry(3))
	return err
}
