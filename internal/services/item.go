package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itemmanager/apiserver/internal/events"
	"github.com/itemmanager/apiserver/internal/logging"
	"github.com/itemmanager/apiserver/internal/store"
	"github.com/itemmanager/apiserver/types"
	"go.uber.org/zap"
)

var ErrItemNotFound = errors.New("item not found")

// SampleItems is the catalogue written by the seed command.
var SampleItems = []types.Item{
	{Name: "Laptop", Description: "High-performance laptop for work and gaming", Price: 1299.99},
	{Name: "Coffee Mug", Description: "Ceramic coffee mug with funny programming quotes", Price: 15.99},
	{Name: "Wireless Mouse", Description: "Ergonomic wireless mouse with USB receiver", Price: 29.99},
	{Name: "Notebook", Description: "Spiral-bound notebook for taking notes", Price: 7.50},
	{Name: "USB Cable", Description: "USB-C to USB-A cable, 6 feet long", Price: 12.99},
}

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	List(ctx context.Context) ([]types.Item, error)
	Get(ctx context.Context, id int64) (types.Item, error)
	Create(ctx context.Context, item types.Item) (types.Item, error)
	Update(ctx context.Context, id int64, patch types.ItemPatch) (types.Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// EventPublisher receives an event after every successful item write.
type EventPublisher interface {
	Publish(ctx context.Context, event events.ItemEvent) error
}

// ItemService encapsulates item use-cases.
type ItemService struct {
	repo      ItemRepository
	publisher EventPublisher
	log       *logging.Logger
	now       func() time.Time
}

// NewItemService constructs an ItemService. publisher may be nil, in which
// case no events are sent.
func NewItemService(repo ItemRepository, publisher EventPublisher, log *logging.Logger) *ItemService {
	if log == nil {
		log = logging.NewNop()
	}
	return &ItemService{
		repo:      repo,
		publisher: publisher,
		log:       log.Named("items"),
		now:       time.Now,
	}
}

func (s *ItemService) List(ctx context.Context) ([]types.Item, error) {
	return s.repo.List(ctx)
}

func (s *ItemService) Get(ctx context.Context, id int64) (types.Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Item{}, ErrItemNotFound
		}
		return types.Item{}, err
	}
	return item, nil
}

func (s *ItemService) Create(ctx context.Context, item types.Item) (types.Item, error) {
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return types.Item{}, err
	}
	s.publish(ctx, events.ItemCreated, created)
	return created, nil
}

// Update applies patch to the item. An empty patch returns the item as it
// is and publishes nothing.
func (s *ItemService) Update(ctx context.Context, id int64, patch types.ItemPatch) (types.Item, error) {
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Item{}, ErrItemNotFound
		}
		return types.Item{}, err
	}
	if !patch.Empty() {
		s.publish(ctx, events.ItemUpdated, updated)
	}
	return updated, nil
}

func (s *ItemService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}
	s.publish(ctx, events.ItemDeleted, types.Item{ID: id})
	return nil
}

// Seed inserts SampleItems, first clearing the table when reset is set.
func (s *ItemService) Seed(ctx context.Context, reset bool) ([]types.Item, error) {
	if reset {
		removed, err := s.repo.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("clear items: %w", err)
		}
		s.log.Info("cleared items", zap.Int64("removed", removed))
	}

	created := make([]types.Item, 0, len(SampleItems))
	for _, sample := range SampleItems {
		item, err := s.Create(ctx, sample)
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", sample.Name, err)
		}
		created = append(created, item)
	}
	return created, nil
}

func (s *ItemService) publish(ctx context.Context, eventType events.EventType, item types.Item) {
	if s.publisher == nil {
		return
	}
	event := events.ItemEvent{Type: eventType, Item: item, OccurredAt: s.now().UTC()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithContext(ctx).Warn("publish item event failed",
			zap.String("type", string(eventType)),
			zap.Int64("item_id", item.ID),
			zap.Error(err),
		)
	}
}
