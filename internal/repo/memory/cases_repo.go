package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lostboitest/casemanage/internal/domain/courtcase"
)

// CasesRepo is an in-memory stand-in for the postgres repo with the same
// contract. Used by tests and store-less development runs.
type CasesRepo struct {
	mu       sync.RWMutex
	items    map[int64]courtcase.Case
	byNumber map[string]int64
	nextID   int64
}

func NewCasesRepo() *CasesRepo {
	return &CasesRepo{
		items:    make(map[int64]courtcase.Case),
		byNumber: make(map[string]int64),
		nextID:   1,
	}
}

func (r *CasesRepo) GetAll(ctx context.Context) ([]courtcase.Case, error) {
	r.mu.RLock()
	output := make([]courtcase.Case, 0, len(r.items))

	for _, c := range r.items {
		output = append(output, c)
	}
	r.mu.RUnlock()

	// stable iteration order
	sort.Slice(output, func(i, j int) bool { return output[i].ID < output[j].ID })

	return output, nil
}

func (r *CasesRepo) GetByID(ctx context.Context, id int64) (courtcase.Case, error) {
	r.mu.RLock()
	c, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return courtcase.Case{}, courtcase.ErrNotFound
	}

	return c, nil
}

func (r *CasesRepo) GetByNumber(ctx context.Context, caseNumber string) (courtcase.Case, error) {
	r.mu.RLock()
	id, ok := r.byNumber[caseNumber]
	c := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return courtcase.Case{}, courtcase.ErrNotFound
	}

	return c, nil
}

func (r *CasesRepo) Create(ctx context.Context, c courtcase.Case) (courtcase.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.byNumber[c.CaseNumber]

	if exists {
		return courtcase.Case{}, courtcase.ErrDuplicateCaseNumber
	}

	c.ID = r.nextID
	r.nextID++

	r.items[c.ID] = c
	r.byNumber[c.CaseNumber] = c.ID

	return c, nil
}

func (r *CasesRepo) Update(ctx context.Context, id int64, req courtcase.UpdateCaseRequest) (courtcase.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[id]

	if !ok {
		return courtcase.Case{}, courtcase.ErrNotFound
	}

	updated, err := existing.ApplyUpdate(req)

	if err != nil {
		return courtcase.Case{}, err
	}

	r.items[id] = updated

	return updated, nil
}

func (r *CasesRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]

	if !ok {
		// idempotent: absence is not an error
		return nil
	}

	delete(r.items, id)
	delete(r.byNumber, c.CaseNumber)

	return nil
}
