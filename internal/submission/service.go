package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/metrics"
	"github.com/mauv0809/catchboard/internal/pubsub"
	"github.com/mauv0809/catchboard/internal/store"
	"github.com/sethvargo/go-retry"
)

// New creates a new submission Service.
func New(store Store, pubsub pubsub.PubSubClient, metrics metrics.Metrics, retryCfg RetryConfig) *Service {
	if retryCfg.BaseDelay <= 0 {
		retryCfg = DefaultRetryConfig
	}
	return &Service{
		store:   store,
		pubsub:  pubsub,
		metrics: metrics,
		retry:   retryCfg,
		now:     time.Now,
	}
}

// SubmitHourly records an hourly catch report. A request whose RequestID
// matches the stored entry is answered with the stored entry and not applied
// twice. In dry-run mode the intent is validated and authorized only.
func (s *Service) SubmitHourly(ctx context.Context, intent HourlyIntent, dryRun bool) (HourlyResult, error) {
	role, err := parseRole(intent.Role)
	if err == nil {
		err = entry.ValidateHourly(intent.Hour, intent.FishCount, intent.TotalWeight)
	}
	if err != nil {
		s.metrics.IncSubmissionRejected(metrics.KindHourly, metrics.ReasonValidation)
		return HourlyResult{}, err
	}
	if err := s.checkCompetitor(ctx, metrics.KindHourly, intent.CompetitorID); err != nil {
		return HourlyResult{}, err
	}

	requestID := intent.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	next := entry.HourlyEntry{
		CompetitorID: intent.CompetitorID,
		Hour:         intent.Hour,
		FishCount:    intent.FishCount,
		TotalWeight:  intent.TotalWeight,
		Source:       role,
		RequestID:    requestID,
	}

	var (
		result HourlyResult
		// last is the entry the final attempt was authorized against.
		last *entry.HourlyEntry
	)
	err = retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		last = nil
		current, err := s.store.GetHourlyEntry(ctx, intent.CompetitorID, intent.Hour)
		if errors.Is(err, store.ErrNotFound) {
			current = entry.HourlyEntry{Status: entry.StatusEmpty}
		} else if err != nil {
			return retry.RetryableError(err)
		}
		if intent.RequestID != "" && current.RequestID == intent.RequestID && current.Status != entry.StatusError {
			result = HourlyResult{Entry: current, Replayed: true}
			return nil
		}

		status, err := entry.Submit(current.Status, current.Source, role, !intent.Offline)
		if err != nil {
			return err
		}
		last = &current
		next.Status = status
		next.Timestamp = s.now().UTC()
		if dryRun {
			next.Version = current.Version
			result = HourlyResult{Entry: next, DryRun: true}
			return nil
		}

		written, err := s.store.PutHourlyEntry(ctx, next, current.Version)
		if err != nil {
			log.Debug("Retrying hourly entry write", "competitorID", next.CompetitorID, "hour", next.Hour, "error", err)
			return retry.RetryableError(err)
		}
		result = HourlyResult{Entry: written}
		return nil
	})
	if err != nil {
		var markError func(context.Context) error
		if last != nil {
			markError = func(ctx context.Context) error {
				status, err := entry.Fail(last.Status, last.Source, role)
				if err != nil {
					return err
				}
				next.Status = status
				if next.Timestamp.IsZero() {
					next.Timestamp = s.now().UTC()
				}
				return s.store.MarkHourlyError(ctx, next, last.Version)
			}
		}
		return HourlyResult{}, s.fail(ctx, metrics.KindHourly, err, markError)
	}

	if result.Replayed {
		log.Info("Hourly entry already applied", "competitorID", intent.CompetitorID, "hour", intent.Hour, "requestID", requestID)
		return result, nil
	}
	if dryRun {
		log.Info("[Dry Run] Would have submitted hourly entry", "competitorID", intent.CompetitorID, "hour", intent.Hour, "status", result.Entry.Status)
		return result, nil
	}

	s.metrics.IncSubmissionAccepted(metrics.KindHourly)
	log.Info("Submitted hourly entry", "competitorID", intent.CompetitorID, "hour", intent.Hour, "status", result.Entry.Status, "version", result.Entry.Version)
	s.publish(ctx, pubsub.EventEntrySubmitted, pubsub.EntrySubmittedEvent{
		Kind:         metrics.KindHourly,
		CompetitorID: result.Entry.CompetitorID,
		Hour:         result.Entry.Hour,
		Status:       result.Entry.Status,
		Source:       result.Entry.Source,
		Version:      result.Entry.Version,
		RequestID:    result.Entry.RequestID,
		SubmittedAt:  result.Entry.Timestamp,
	})
	return result, nil
}

// SubmitBigCatch records the biggest fish of a competitor. It follows the
// same rules as SubmitHourly.
func (s *Service) SubmitBigCatch(ctx context.Context, intent BigCatchIntent, dryRun bool) (BigCatchResult, error) {
	role, err := parseRole(intent.Role)
	if err == nil {
		err = entry.ValidateBigCatch(intent.BiggestCatch)
	}
	if err != nil {
		s.metrics.IncSubmissionRejected(metrics.KindBigCatch, metrics.ReasonValidation)
		return BigCatchResult{}, err
	}
	if err := s.checkCompetitor(ctx, metrics.KindBigCatch, intent.CompetitorID); err != nil {
		return BigCatchResult{}, err
	}

	requestID := intent.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	next := entry.BigCatchEntry{
		CompetitorID: intent.CompetitorID,
		BiggestCatch: intent.BiggestCatch,
		Source:       role,
		RequestID:    requestID,
	}

	var (
		result BigCatchResult
		// last is the entry the final attempt was authorized against.
		last *entry.BigCatchEntry
	)
	err = retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		last = nil
		current, err := s.store.GetBigCatchEntry(ctx, intent.CompetitorID)
		if errors.Is(err, store.ErrNotFound) {
			current = entry.BigCatchEntry{Status: entry.StatusEmpty}
		} else if err != nil {
			return retry.RetryableError(err)
		}
		if intent.RequestID != "" && current.RequestID == intent.RequestID && current.Status != entry.StatusError {
			result = BigCatchResult{Entry: current, Replayed: true}
			return nil
		}

		status, err := entry.Submit(current.Status, current.Source, role, !intent.Offline)
		if err != nil {
			return err
		}
		last = &current
		next.Status = status
		next.Timestamp = s.now().UTC()
		if dryRun {
			next.Version = current.Version
			result = BigCatchResult{Entry: next, DryRun: true}
			return nil
		}

		written, err := s.store.PutBigCatchEntry(ctx, next, current.Version)
		if err != nil {
			log.Debug("Retrying big catch entry write", "competitorID", next.CompetitorID, "error", err)
			return retry.RetryableError(err)
		}
		result = BigCatchResult{Entry: written}
		return nil
	})
	if err != nil {
		var markError func(context.Context) error
		if last != nil {
			markError = func(ctx context.Context) error {
				status, err := entry.Fail(last.Status, last.Source, role)
				if err != nil {
					return err
				}
				next.Status = status
				if next.Timestamp.IsZero() {
					next.Timestamp = s.now().UTC()
				}
				return s.store.MarkBigCatchError(ctx, next, last.Version)
			}
		}
		return BigCatchResult{}, s.fail(ctx, metrics.KindBigCatch, err, markError)
	}

	if result.Replayed {
		log.Info("Big catch entry already applied", "competitorID", intent.CompetitorID, "requestID", requestID)
		return result, nil
	}
	if dryRun {
		log.Info("[Dry Run] Would have submitted big catch entry", "competitorID", intent.CompetitorID, "status", result.Entry.Status)
		return result, nil
	}

	s.metrics.IncSubmissionAccepted(metrics.KindBigCatch)
	log.Info("Submitted big catch entry", "competitorID", intent.CompetitorID, "biggestCatch", result.Entry.BiggestCatch, "status", result.Entry.Status)
	s.publish(ctx, pubsub.EventEntrySubmitted, pubsub.EntrySubmittedEvent{
		Kind:         metrics.KindBigCatch,
		CompetitorID: result.Entry.CompetitorID,
		Status:       result.Entry.Status,
		Source:       result.Entry.Source,
		Version:      result.Entry.Version,
		RequestID:    result.Entry.RequestID,
		SubmittedAt:  result.Entry.Timestamp,
	})
	return result, nil
}

// BeginHourlyEdit reports whether role may start editing the hourly entry.
// On success the returned status is in_progress; it is not persisted.
func (s *Service) BeginHourlyEdit(ctx context.Context, competitorID string, hour int, role entry.Role) (entry.Status, error) {
	parsed, err := parseRole(role)
	if err == nil {
		err = entry.ValidateHourly(hour, 0, 0)
	}
	if err != nil {
		return "", err
	}
	current, err := s.store.GetHourlyEntry(ctx, competitorID, hour)
	if errors.Is(err, store.ErrNotFound) {
		current = entry.HourlyEntry{Status: entry.StatusEmpty}
	} else if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return entry.BeginEdit(current.Status, current.Source, parsed)
}

// SyncOffline promotes offline entries to their locked status after
// connectivity is restored.
func (s *Service) SyncOffline(ctx context.Context, intent SyncIntent, dryRun bool) (SyncResult, error) {
	if intent.Role != "" {
		if _, err := parseRole(intent.Role); err != nil {
			return SyncResult{}, err
		}
	}
	filter := store.SyncFilter{Role: intent.Role, CompetitorIDs: intent.CompetitorIDs}

	if dryRun {
		n, err := s.countOffline(ctx, filter)
		if err != nil {
			return SyncResult{}, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		log.Info("[Dry Run] Would have synced offline entries", "count", n, "role", intent.Role)
		return SyncResult{Synced: n, DryRun: true}, nil
	}

	var synced int
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		n, err := s.store.SyncOffline(ctx, filter)
		if err != nil {
			return retry.RetryableError(err)
		}
		synced = n
		return nil
	})
	if err != nil {
		log.Error("Failed to sync offline entries", "error", err)
		return SyncResult{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.metrics.AddEntriesSynced(synced)
	log.Info("Synced offline entries", "count", synced, "role", intent.Role)
	if synced > 0 {
		s.publish(ctx, pubsub.EventEntriesSynced, pubsub.EntriesSyncedEvent{
			Role:          intent.Role,
			CompetitorIDs: intent.CompetitorIDs,
			Synced:        synced,
			SyncedAt:      s.now().UTC(),
		})
	}
	return SyncResult{Synced: synced}, nil
}

func (s *Service) backoff() retry.Backoff {
	return retry.WithMaxRetries(s.retry.MaxRetries, retry.NewExponential(s.retry.BaseDelay))
}

func (s *Service) checkCompetitor(ctx context.Context, kind, competitorID string) error {
	if competitorID == "" {
		s.metrics.IncSubmissionRejected(kind, metrics.ReasonValidation)
		return &entry.ValidationError{Field: "competitorId", Reason: "is required"}
	}
	_, err := s.store.GetCompetitor(ctx, competitorID)
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.IncSubmissionRejected(kind, metrics.ReasonUnknownTarget)
		return fmt.Errorf("competitor %s: %w", competitorID, store.ErrNotFound)
	}
	if err != nil {
		s.metrics.IncSubmissionRejected(kind, metrics.ReasonPersistence)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// fail classifies a submission error. Authorization failures and abandoned
// requests leave the stored entry untouched. Otherwise markError, when set,
// flags the entry the last attempt was authorized against as errored; it is
// nil when that attempt never got past reading the entry.
func (s *Service) fail(ctx context.Context, kind string, err error, markError func(context.Context) error) error {
	if errors.Is(err, entry.ErrNotAuthorized) {
		s.metrics.IncSubmissionRejected(kind, metrics.ReasonUnauthorized)
		log.Warn("Rejected entry submission", "kind", kind, "error", err)
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Warn("Entry submission abandoned", "kind", kind, "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, ctxErr)
	}

	s.metrics.IncSubmissionRejected(kind, metrics.ReasonPersistence)
	s.metrics.IncPersistenceFailure(kind)
	log.Error("Entry write failed after retries", "kind", kind, "error", err)
	if markError != nil {
		if markErr := markError(context.WithoutCancel(ctx)); markErr != nil {
			log.Error("Failed to flag entry as errored", "kind", kind, "error", markErr)
		}
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func (s *Service) countOffline(ctx context.Context, filter store.SyncFilter) (int, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	matches := func(status entry.Status, source entry.Role, competitorID string) bool {
		if !status.Offline() || (filter.Role != "" && source != filter.Role) {
			return false
		}
		if len(filter.CompetitorIDs) == 0 {
			return true
		}
		for _, id := range filter.CompetitorIDs {
			if id == competitorID {
				return true
			}
		}
		return false
	}
	n := 0
	for _, e := range snap.Hourly {
		if matches(e.Status, e.Source, e.CompetitorID) {
			n++
		}
	}
	for _, e := range snap.BigCatches {
		if matches(e.Status, e.Source, e.CompetitorID) {
			n++
		}
	}
	return n, nil
}

func (s *Service) publish(ctx context.Context, topic pubsub.EventType, event any) {
	if err := s.pubsub.SendMessage(ctx, topic, event); err != nil {
		log.Error("Failed to publish event", "topic", topic, "error", err)
	}
}

func parseRole(role entry.Role) (entry.Role, error) {
	if role == "" {
		return "", &entry.ValidationError{Field: "role", Reason: "is required"}
	}
	parsed, err := entry.ParseRole(string(role))
	if err != nil {
		return "", &entry.ValidationError{Field: "role", Reason: err.Error()}
	}
	return parsed, nil
}
