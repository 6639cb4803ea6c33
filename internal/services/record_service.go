package services

import (
	"context"
	"fmt"

	"moneybook/internal/core"
	"moneybook/internal/feed"
	"moneybook/internal/log"
	"moneybook/internal/storage"
)

// RecordService writes records to the store and announces each change on the
// feed. It implements session.RecordWriter.
type RecordService struct {
	store    storage.RecordStore
	notifier feed.Notifier
	logger   *log.Logger
	events   *log.StructuredLogger
}

func NewRecordService(store storage.RecordStore, notifier feed.Notifier, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentRecords)
	return &RecordService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		events:   log.NewStructuredLogger(logger),
	}
}

// Create saves the record and publishes a change notification
func (s *RecordService) Create(ctx context.Context, n core.NewRecord) (core.Record, error) {
	rec, err := s.store.CreateRecord(ctx, n)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}
	s.events.LogRecordCreated(ctx, rec.OwnerID, string(rec.Period), rec.ID, string(rec.Kind), rec.Amount)

	s.publish(ctx, feed.Change{
		OwnerID:  rec.OwnerID,
		Period:   rec.Period,
		RecordID: rec.ID,
		Action:   feed.ActionCreated,
	})
	return rec, nil
}

// Delete removes the record and publishes a change notification
func (s *RecordService) Delete(ctx context.Context, ownerID, id string) error {
	rec, err := s.store.DeleteRecord(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.events.LogRecordDeleted(ctx, ownerID, string(rec.Period), id)

	s.publish(ctx, feed.Change{
		OwnerID:  ownerID,
		Period:   rec.Period,
		RecordID: id,
		Action:   feed.ActionDeleted,
	})
	return nil
}

// The write already succeeded; a failed notification only delays live views.
func (s *RecordService) publish(ctx context.Context, c feed.Change) {
	if s.notifier == nil {
		s.logger.WarnContext(ctx, "No change notifier configured, skipping notification")
		return
	}
	if err := s.notifier.Notify(ctx, c); err != nil {
		s.events.LogError(ctx, "Failed to publish record change", err, log.OpNotify,
			log.NewFields().WithScope(c.OwnerID, string(c.Period)))
	}
}
