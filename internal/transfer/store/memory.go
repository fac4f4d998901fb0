package store

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgerror"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkguid"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	ids   pkguid.NumberID
	txs   map[string]entity.Transaction
	order []string
}

func NewInMemoryStore(ids pkguid.NumberID) *InMemoryStore {
	return &InMemoryStore{
		ids: ids,
		txs: make(map[string]entity.Transaction),
	}
}

func (s *InMemoryStore) Save(ctx context.Context, tx entity.Transaction) (entity.Transaction, error) {
	if !tx.Resolved() {
		return entity.Transaction{}, entity.ErrUnresolvedVerdict
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.FormatInt(s.ids.Generate(), 10)
	if _, exists := s.txs[id]; exists {
		return entity.Transaction{}, pkgerror.NewBusiness("transaction already exists", pkgerror.CodeConflict)
	}

	tx.ID = id
	s.txs[id] = tx
	s.order = append(s.order, id)

	return tx, nil
}

func (s *InMemoryStore) Get(ctx context.Context, id string) (entity.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[id]
	if !ok {
		return entity.Transaction{}, pkgerror.ErrNotFound
	}

	return tx, nil
}

// ListByVerdict returns stored transactions with the given verdict in save order.
func (s *InMemoryStore) ListByVerdict(ctx context.Context, verdict entity.Verdict) []entity.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entity.Transaction, 0)
	for _, id := range s.order {
		if tx := s.txs[id]; tx.Verdict == verdict {
			items = append(items, tx)
		}
	}

	return items
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.txs)
}

// IDs returns all stored identifiers, sorted.
func (s *InMemoryStore) IDs() []string {
	s.mu.RLock()
	ids := append([]string(nil), s.order...)
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}
