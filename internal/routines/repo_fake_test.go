package routines

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory routinesRepo honoring ownership and name uniqueness.
type fakeRepo struct {
	mutex    sync.Mutex
	routines map[uuid.UUID]*Routine
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		routines: map[uuid.UUID]*Routine{},
	}
}

func (f *fakeRepo) List(_ context.Context, userID uuid.UUID) ([]Routine, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	var list []Routine
	for _, r := range f.routines {
		if r.UserID == userID {
			list = append(list, *r)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].DisplayOrder < list[j].DisplayOrder
	})
	return list, nil
}

func (f *fakeRepo) Get(_ context.Context, userID, id uuid.UUID) (*Routine, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	r, ok := f.routines[id]
	if !ok || r.UserID != userID {
		return nil, ErrRoutineNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, userID uuid.UUID, name string, displayOrder *int) (*Routine, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	nextOrder := 0
	for _, r := range f.routines {
		if r.UserID != userID {
			continue
		}
		if r.Name == name {
			return nil, ErrDuplicateRoutineName
		}
		if r.DisplayOrder >= nextOrder {
			nextOrder = r.DisplayOrder + 1
		}
	}

	if displayOrder != nil {
		nextOrder = *displayOrder
	}

	now := time.Now()
	r := &Routine{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		DisplayOrder: nextOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
		Exercises:    []RoutineExercise{},
	}
	f.routines[r.ID] = r
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, userID, id uuid.UUID, update RoutineUpdate) (*Routine, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	r, ok := f.routines[id]
	if !ok || r.UserID != userID {
		return nil, ErrRoutineNotFound
	}
	if update.Name != nil {
		for _, other := range f.routines {
			if other.ID != id && other.UserID == userID && other.Name == *update.Name {
				return nil, ErrDuplicateRoutineName
			}
		}
		r.Name = *update.Name
	}
	if update.DisplayOrder != nil {
		r.DisplayOrder = *update.DisplayOrder
	}
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	r, ok := f.routines[id]
	if !ok || r.UserID != userID {
		return ErrRoutineNotFound
	}
	delete(f.routines, id)
	return nil
}
