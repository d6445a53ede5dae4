package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/itemmanager/apiserver/internal/events"
	"github.com/itemmanager/apiserver/internal/store"
	"github.com/itemmanager/apiserver/types"
)

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[int64]types.User
	nextID    int64
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]types.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return types.User{}, r.createErr
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

type fakeItemRepo struct {
	mu     sync.Mutex
	items  map[int64]types.Item
	nextID int64
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[int64]types.Item{}}
}

func (r *fakeItemRepo) List(context.Context) ([]types.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]types.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *fakeItemRepo) Get(_ context.Context, id int64) (types.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return types.Item{}, store.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) Create(_ context.Context, item types.Item) (types.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item, nil
}

func (r *fakeItemRepo) Update(_ context.Context, id int64, patch types.ItemPatch) (types.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return types.Item{}, store.ErrNotFound
	}
	item = patch.Apply(item)
	r.items[id] = item
	return item, nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *fakeItemRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.items))
	r.items = map[int64]types.Item{}
	return n, nil
}

type recordingPublisher struct {
	events []events.ItemEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.ItemEvent) error {
	p.events = append(p.events, event)
	return p.err
}
