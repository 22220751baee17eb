package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/ndelgado/cargotrack/internal/domain/errors"
	"github.com/ndelgado/cargotrack/internal/domain/model"
)

// OrderRepositoryStub stores orders in-memory for tests.
type OrderRepositoryStub struct {
	mu          sync.Mutex
	Orders      map[string]*model.Order
	Transitions []model.StateTransitionEvent
	Err         error
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[string]*model.Order)}
}

func (s *OrderRepositoryStub) Create(ctx context.Context, id, clientID string, state int) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Orders[id]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	order := &model.Order{ID: id, ClientID: clientID, State: state, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.Orders[id] = order
	return order, nil
}

func (s *OrderRepositoryStub) Get(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *OrderRepositoryStub) SetState(ctx context.Context, id string, previous, next int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	order, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.State = next
	order.UpdatedAt = at
	s.Transitions = append(s.Transitions, model.StateTransitionEvent{
		OrderID:       id,
		ClientID:      order.ClientID,
		PreviousState: previous,
		NewState:      next,
		OccurredAt:    at,
	})
	return nil
}

// NotificationRepositoryStub keeps notifications in-memory and enforces
// the dedupe-key uniqueness the real store provides.
type NotificationRepositoryStub struct {
	mu            sync.Mutex
	Notifications []model.Notification
	Receipts      map[string]map[string]time.Time
	InsertErr     error
	ExistsErr     error
}

// NewNotificationRepositoryStub constructs the stub.
func NewNotificationRepositoryStub() *NotificationRepositoryStub {
	return &NotificationRepositoryStub{Receipts: make(map[string]map[string]time.Time)}
}

func (s *NotificationRepositoryStub) Insert(ctx context.Context, n *model.Notification) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return "", s.InsertErr
	}
	if n.DedupeKey != "" {
		for _, existing := range s.Notifications {
			if existing.DedupeKey == n.DedupeKey {
				return "", domainErrors.ErrAlreadyExists
			}
		}
	}
	s.Notifications = append(s.Notifications, *n)
	return n.ID, nil
}

func (s *NotificationRepositoryStub) ExistsSince(ctx context.Context, audienceType model.AudienceType, audienceValue, orderID, title string, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ExistsErr != nil {
		return false, s.ExistsErr
	}
	for _, n := range s.Notifications {
		if n.AudienceType == audienceType && n.AudienceValue == audienceValue &&
			n.OrderID == orderID && n.Title == title && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *NotificationRepositoryStub) List(ctx context.Context, audienceType model.AudienceType, audienceValue string, limit int, readerID string) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Notification
	for _, n := range s.Notifications {
		if n.AudienceType != audienceType || n.AudienceValue != audienceValue {
			continue
		}
		if readerID != "" {
			if receipts, ok := s.Receipts[n.ID]; ok {
				_, n.Read = receipts[readerID]
			}
		}
		result = append(result, n)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *NotificationRepositoryStub) MarkRead(ctx context.Context, notificationID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Receipts[notificationID] == nil {
		s.Receipts[notificationID] = make(map[string]time.Time)
	}
	s.Receipts[notificationID][userID] = time.Now()
	return nil
}

// ByAudience returns stored notifications addressed to one audience.
func (s *NotificationRepositoryStub) ByAudience(audienceType model.AudienceType, audienceValue string) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Notification
	for _, n := range s.Notifications {
		if n.AudienceType == audienceType && n.AudienceValue == audienceValue {
			result = append(result, n)
		}
	}
	return result
}

// RateRepositoryStub is an in-memory append-only rate history.
type RateRepositoryStub struct {
	mu        sync.Mutex
	Records   []model.ExchangeRateRecord
	nextID    int64
	InsertErr error
	QueryErr  error
}

// NewRateRepositoryStub constructs the stub.
func NewRateRepositoryStub() *RateRepositoryStub {
	return &RateRepositoryStub{}
}

func (s *RateRepositoryStub) Insert(ctx context.Context, rec *model.ExchangeRateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.nextID++
	rec.ID = s.nextID
	s.Records = append(s.Records, *rec)
	return nil
}

func (s *RateRepositoryStub) LatestValidSince(ctx context.Context, since time.Time) (*model.ExchangeRateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	var best *model.ExchangeRateRecord
	for i := range s.Records {
		rec := &s.Records[i]
		if rec.IsFallback || rec.Timestamp.Before(since) {
			continue
		}
		if best == nil || rec.Timestamp.After(best.Timestamp) {
			best = rec
		}
	}
	if best == nil {
		return nil, domainErrors.ErrNotFound
	}
	copied := *best
	return &copied, nil
}

func (s *RateRepositoryStub) LatestAny(ctx context.Context) (*model.ExchangeRateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	if len(s.Records) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	best := &s.Records[0]
	for i := range s.Records {
		rec := &s.Records[i]
		if rec.Timestamp.After(best.Timestamp) || (rec.Timestamp.Equal(best.Timestamp) && rec.ID > best.ID) {
			best = rec
		}
	}
	copied := *best
	return &copied, nil
}

func (s *RateRepositoryStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Records) == 0 {
		return 0, nil
	}
	newest := 0
	for i := range s.Records {
		if s.Records[i].Timestamp.After(s.Records[newest].Timestamp) {
			newest = i
		}
	}
	var kept []model.ExchangeRateRecord
	var deleted int64
	for i := range s.Records {
		if i != newest && s.Records[i].Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, s.Records[i])
	}
	s.Records = kept
	return deleted, nil
}
