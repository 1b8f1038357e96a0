package memory

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/repository"
	"context"
	"sort"

	"github.com/google/uuid"
)

type manufacturerRepository struct {
	s *Store
}

func (r *manufacturerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Manufacturer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.manufacturers[id]
	if !ok {
		return nil, repository.ErrManufacturerNotFound
	}
	return &m, nil
}

func (r *manufacturerRepository) GetByName(ctx context.Context, name string) (*model.Manufacturer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.manufacturers {
		if m.Name == name {
			return &m, nil
		}
	}
	return nil, repository.ErrManufacturerNotFound
}

func (r *manufacturerRepository) GetAll(ctx context.Context) ([]model.Manufacturer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]model.Manufacturer, 0, len(r.s.manufacturers))
	for _, m := range r.s.manufacturers {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (r *manufacturerRepository) AddAll(ctx context.Context, manufacturers []model.Manufacturer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	known := make(map[string]bool, len(r.s.manufacturers))
	for _, m := range r.s.manufacturers {
		known[m.Name] = true
	}
	for _, m := range manufacturers {
		if known[m.Name] {
			continue
		}
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		r.s.manufacturers[m.ID] = m
		known[m.Name] = true
	}
	return nil
}

type statusRepository struct {
	s *Store
}

func (r *statusRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ComputerStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.statuses[id]
	if !ok {
		return nil, repository.ErrStatusNotFound
	}
	return &st, nil
}

func (r *statusRepository) GetByName(ctx context.Context, name string) (*model.ComputerStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, st := range r.s.statuses {
		if st.Name == name {
			return &st, nil
		}
	}
	return nil, repository.ErrStatusNotFound
}

func (r *statusRepository) GetAll(ctx context.Context) ([]model.ComputerStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]model.ComputerStatus, 0, len(r.s.statuses))
	for _, st := range r.s.statuses {
		all = append(all, st)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (r *statusRepository) AddAll(ctx context.Context, statuses []model.ComputerStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	known := make(map[string]bool, len(r.s.statuses))
	for _, st := range r.s.statuses {
		known[st.Name] = true
	}
	for _, st := range statuses {
		if known[st.Name] {
			continue
		}
		if st.ID == uuid.Nil {
			st.ID = uuid.New()
		}
		r.s.statuses[st.ID] = st
		known[st.Name] = true
	}
	return nil
}
