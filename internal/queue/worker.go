package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandleSyncStatusesTask(ctx context.Context, task *asynq.Task) error {
	var payload SyncStatusesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	lock, err := j.locks.Acquire(ctx)
	if err != nil {
		log.Printf("Error acquiring the sync lock: %v", err)
		return nil
	}
	if lock == nil {
		// A previous cycle is still running, e.g. after a slow network call
		// overran the schedule interval. Skip; the next trigger retries.
		log.Println("Previous sync cycle still running; skipping")
		return nil
	}
	defer lock.Release(ctx)

	if err := j.sync.Poll(ctx); err != nil {
		log.Printf("Sync cycle failed: %v", err)
	}

	return nil
}
