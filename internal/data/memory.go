package data

import (
	"cmp"
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
)

// memoryStore keeps owners and cars in process memory. It enforces the
// same constraints as the Postgres schema: unique phones, existing owner
// references, and cascading owner deletes.
type memoryStore struct {
	mu          sync.RWMutex
	owners      map[int64]Owner
	cars        map[int64]Car
	nextOwnerID int64
	nextCarID   int64
}

// NewMemoryModels returns Models backed by an empty in-memory store.
func NewMemoryModels() Models {
	s := &memoryStore{
		owners: make(map[int64]Owner),
		cars:   make(map[int64]Car),
	}
	return Models{
		Owners: memoryOwners{s},
		Cars:   memoryCars{s},
	}
}

type memoryOwners struct{ s *memoryStore }

func (m memoryOwners) phoneTaken(phone string, exceptID int64) bool {
	for id, o := range m.s.owners {
		if id != exceptID && o.Phone == phone {
			return true
		}
	}
	return false
}

func (m memoryOwners) Insert(_ context.Context, owner *Owner) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if m.phoneTaken(owner.Phone, 0) {
		return ErrDuplicatePhone
	}
	m.s.nextOwnerID++
	owner.ID = m.s.nextOwnerID
	m.s.owners[owner.ID] = *owner
	return nil
}

func (m memoryOwners) Get(_ context.Context, id int64) (*Owner, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	o, ok := m.s.owners[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &o, nil
}

func (m memoryOwners) Update(_ context.Context, owner *Owner) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.owners[owner.ID]; !ok {
		return ErrRecordNotFound
	}
	if m.phoneTaken(owner.Phone, owner.ID) {
		return ErrDuplicatePhone
	}
	m.s.owners[owner.ID] = *owner
	return nil
}

func (m memoryOwners) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.owners[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.s.owners, id)
	for carID, c := range m.s.cars {
		if c.OwnerID == id {
			delete(m.s.cars, carID)
		}
	}
	return nil
}

func (m memoryOwners) GetAll(_ context.Context, filter Filter, filters Filters) ([]*Owner, Metadata, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	matched := make([]Owner, 0, len(m.s.owners))
	for _, o := range m.s.owners {
		if filter.matches(o) {
			matched = append(matched, o)
		}
	}
	return paginate(matched, filters, func(o Owner) int64 { return o.ID })
}

type memoryCars struct{ s *memoryStore }

func (m memoryCars) Insert(_ context.Context, car *Car) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.owners[car.OwnerID]; !ok {
		return ErrOwnerNotFound
	}
	m.s.nextCarID++
	car.ID = m.s.nextCarID
	m.s.cars[car.ID] = *car
	return nil
}

func (m memoryCars) Get(_ context.Context, id int64) (*Car, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	c, ok := m.s.cars[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &c, nil
}

func (m memoryCars) Update(_ context.Context, car *Car) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.cars[car.ID]; !ok {
		return ErrRecordNotFound
	}
	if _, ok := m.s.owners[car.OwnerID]; !ok {
		return ErrOwnerNotFound
	}
	m.s.cars[car.ID] = *car
	return nil
}

func (m memoryCars) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.cars[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.s.cars, id)
	return nil
}

func (m memoryCars) GetAll(_ context.Context, filter Filter, filters Filters) ([]*Car, Metadata, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	matched := make([]Car, 0, len(m.s.cars))
	for _, c := range m.s.cars {
		if filter.matches(c) {
			matched = append(matched, c)
		}
	}
	return paginate(matched, filters, func(c Car) int64 { return c.ID })
}

// paginate orders items the way the Postgres queries do (sort column,
// then id ascending) and cuts out the requested page.
func paginate[T columnValuer](items []T, filters Filters, id func(T) int64) ([]*T, Metadata, error) {
	slices.SortFunc(items, func(a, b T) int {
		return cmp.Compare(id(a), id(b))
	})

	if column := filters.sortColumn(); column != "id" {
		desc := filters.sortDirection() == "DESC"
		sort.SliceStable(items, func(i, j int) bool {
			c := strings.Compare(items[i].columnValue(column), items[j].columnValue(column))
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	total := len(items)
	page := []*T{}
	start := min(max(filters.offset(), 0), total)
	end := min(start+filters.limit(), total)
	for i := start; i < end; i++ {
		page = append(page, &items[i])
	}
	return page, calculateMetadata(total, filters.Page, filters.PageSize), nil
}
