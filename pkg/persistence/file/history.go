package file

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/google/uuid"
)

const historyCollection = "history"

// HistoryRepository is the append-only firing log on the file system. A
// process-wide mutex serializes append-and-check so the (schedule, instant,
// group) dedup key holds within one process; multi-instance deployments need
// the postgresql implementation, whose unique index enforces the key.
type HistoryRepository struct {
	root string
	mu   sync.Mutex
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(root string) *HistoryRepository {
	return &HistoryRepository{root: root}
}

// RecordFiring appends one firing record. It fails with ErrDuplicateFiring
// when the same schedule, firing instant and group was already recorded.
func (hr *HistoryRepository) RecordFiring(ctx context.Context, record *models.FiringRecord) error {
	hr.mu.Lock()
	defer hr.mu.Unlock()

	existing, err := hr.listAll(ctx)
	if err != nil {
		return err
	}

	for _, other := range existing {
		if other.ScheduleID == record.ScheduleID &&
			other.FiredAt.Equal(record.FiredAt) &&
			other.GroupID == record.GroupID {
			return persistence.NewEntityError("RecordFiring", "firing", record.ScheduleID, persistence.ErrDuplicateFiring)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate firing record ID: %w", err)
	}

	record.ID = id.String()
	record.CreatedAt = time.Now().UTC()

	return writeDocument(hr.root, historyCollection, record.ID, record)
}

// ListBySchedule returns all firing records for a schedule, oldest first.
func (hr *HistoryRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]*models.FiringRecord, error) {
	all, err := hr.listAll(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*models.FiringRecord, 0)

	for _, record := range all {
		if record.ScheduleID == scheduleID {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].FiredAt.Before(records[j].FiredAt)
	})

	return records, nil
}

// LastFiring returns the most recent firing record for a schedule.
func (hr *HistoryRepository) LastFiring(ctx context.Context, scheduleID string) (*models.FiringRecord, error) {
	records, err := hr.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, persistence.NewEntityError("LastFiring", "firing", scheduleID, persistence.ErrFiringNotFound)
	}

	return records[len(records)-1], nil
}

func (hr *HistoryRepository) listAll(_ context.Context) ([]*models.FiringRecord, error) {
	ids, err := documentIDs(hr.root, historyCollection)
	if err != nil {
		return nil, err
	}

	records := make([]*models.FiringRecord, 0, len(ids))

	for _, id := range ids {
		var record models.FiringRecord

		found, err := readDocument(hr.root, historyCollection, id, &record)
		if err != nil {
			return nil, err
		}

		if found {
			records = append(records, &record)
		}
	}

	return records, nil
}
