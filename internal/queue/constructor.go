package queue

import (
	"github.com/janboddez/import-from-pixelfed/internal/repository"
	"github.com/janboddez/import-from-pixelfed/internal/service"
)

type Queue struct {
	sync  service.SyncService
	locks repository.SyncLockRepository
}

func NewQueue(sync service.SyncService, locks repository.SyncLockRepository) *Queue {
	return &Queue{
		sync:  sync,
		locks: locks,
	}
}

const TaskTypeSyncStatuses = "sync:statuses"

type SyncStatusesPayload struct {
	Reason string `json:"reason"`
}
