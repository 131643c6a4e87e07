// Package memory holds process-local repositories for development and
// tests. Data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/huertohogar/storefront-api/internal/core/domain"
	"github.com/huertohogar/storefront-api/internal/core/ports"
)

var (
	_ ports.UserRepository    = (*UserRepository)(nil)
	_ ports.ProductRepository = (*ProductRepository)(nil)
	_ ports.CartRepository    = (*CartRepository)(nil)
)

type UserRepository struct {
	mu     sync.RWMutex
	byName map[string]*domain.User
	nextID int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byName: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[username]
	return ok, nil
}

// Create stores the user; the username check and insert happen under one
// lock, matching the unique constraint of the real stores.
func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[user.Username]; ok {
		return nil, domain.ErrDuplicateIdentity
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.byName[stored.Username] = stored
	return cloneUser(stored), nil
}

type ProductRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*domain.Product
	nextID int64
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{byID: make(map[int64]*domain.Product)}
}

func (r *ProductRepository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Product, 0, len(r.byID))
	for _, p := range r.byID {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (r *ProductRepository) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *p
	c.ID = r.nextID
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *ProductRepository) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	c := *p
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

type CartRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*domain.CartItem
	nextID int64
}

func NewCartRepository() *CartRepository {
	return &CartRepository{byID: make(map[int64]*domain.CartItem)}
}

func (r *CartRepository) List(_ context.Context, owner string) ([]*domain.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.CartItem, 0)
	for _, it := range r.byID {
		if it.Owner == owner {
			c := *it
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CartRepository) FindByProduct(_ context.Context, owner string, productID int64) (*domain.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.byID {
		if it.Owner == owner && it.ProductID == productID {
			c := *it
			return &c, nil
		}
	}
	return nil, domain.ErrCartItemNotFound
}

func (r *CartRepository) Create(_ context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *item
	c.ID = r.nextID
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *CartRepository) UpdateQuantity(_ context.Context, owner string, id int64, quantity int) (*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.byID[id]
	if !ok || it.Owner != owner {
		return nil, domain.ErrCartItemNotFound
	}
	it.Quantity = quantity
	out := *it
	return &out, nil
}

func (r *CartRepository) Delete(_ context.Context, owner string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.byID[id]
	if !ok || it.Owner != owner {
		return domain.ErrCartItemNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *CartRepository) Clear(_ context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, it := range r.byID {
		if it.Owner == owner {
			delete(r.byID, id)
		}
	}
	return nil
}
