package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

// Repositorios atados a una "transacción" en memoria: asumen que el
// caller (Store.Run / Store.RunDonation) ya tiene el mutex tomado.

type lotStore struct{ s *Store }

var _ repository.LotRepository = (*lotStore)(nil)

func (r *lotStore) Decrement(_ context.Context, locationID, productID string, amount decimal.Decimal) (decimal.Decimal, error) {
	lot, ok := r.s.lots[lotKey(locationID, productID)]
	if !ok || !amount.IsPositive() {
		return decimal.Zero, nil
	}
	actual := decimal.Min(amount, lot.Quantity)
	lot.Quantity = lot.Quantity.Sub(actual)
	lot.UpdatedAt = r.s.Now()
	return actual, nil
}

func (r *lotStore) Increment(_ context.Context, locationID, productID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	key := lotKey(locationID, productID)
	lot, ok := r.s.lots[key]
	if !ok {
		lot = &entity.StockLot{LocationID: locationID, ProductID: productID, Quantity: decimal.Zero}
		r.s.lots[key] = lot
	}
	lot.Quantity = lot.Quantity.Add(amount)
	lot.UpdatedAt = r.s.Now()
	return nil
}

func (r *lotStore) ListForProducts(_ context.Context, productIDs []string) ([]entity.StockLot, error) {
	wanted := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = true
	}
	var lots []entity.StockLot
	for _, lot := range r.s.lots {
		if wanted[lot.ProductID] && lot.Quantity.IsPositive() {
			lots = append(lots, *lot)
		}
	}
	sort.Slice(lots, func(i, j int) bool {
		if !lots[i].UpdatedAt.Equal(lots[j].UpdatedAt) {
			return lots[i].UpdatedAt.Before(lots[j].UpdatedAt)
		}
		return lots[i].LocationID < lots[j].LocationID
	})
	return lots, nil
}

type productStore struct{ s *Store }

var _ repository.ProductRepository = (*productStore)(nil)

func (r *productStore) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productStore) SearchByName(_ context.Context, fragment string) ([]entity.Product, error) {
	frag := allocation.FoldName(fragment)
	var out []entity.Product
	for _, p := range r.s.products {
		if strings.Contains(allocation.FoldName(p.Name), frag) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type requestStore struct{ s *Store }

var _ repository.RequestRepository = (*requestStore)(nil)

func (r *requestStore) GetByID(_ context.Context, id string) (*entity.Request, error) {
	req, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *req
	return &copied, nil
}

// GetForUpdate en memoria equivale a GetByID: el mutex del Store ya
// serializa la transacción completa.
func (r *requestStore) GetForUpdate(ctx context.Context, id string) (*entity.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *requestStore) UpdateAllocation(_ context.Context, req *entity.Request) error {
	stored, ok := r.s.requests[req.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.CumulativeDelivered = req.CumulativeDelivered
	stored.State = req.State
	stored.UpdatedAt = req.UpdatedAt
	return nil
}

func (r *requestStore) Create(_ context.Context, req *entity.Request) error {
	if _, exists := r.s.requests[req.ID]; exists {
		return domain.ErrDuplicate
	}
	copied := *req
	r.s.requests[req.ID] = &copied
	return nil
}

type donationStore struct{ s *Store }

var _ repository.DonationRepository = (*donationStore)(nil)

func (r *donationStore) GetByID(_ context.Context, id string) (*entity.Donation, error) {
	don, ok := r.s.donations[id]
	if !ok {
		return nil, nil
	}
	copied := *don
	return &copied, nil
}

func (r *donationStore) GetForUpdate(ctx context.Context, id string) (*entity.Donation, error) {
	return r.GetByID(ctx, id)
}

func (r *donationStore) UpdateState(_ context.Context, don *entity.Donation) error {
	stored, ok := r.s.donations[don.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.State = don.State
	stored.UpdatedAt = don.UpdatedAt
	return nil
}

func (r *donationStore) Create(_ context.Context, don *entity.Donation) error {
	if _, exists := r.s.donations[don.ID]; exists {
		return domain.ErrDuplicate
	}
	copied := *don
	r.s.donations[don.ID] = &copied
	return nil
}

type eventStore struct{ s *Store }

var _ repository.AllocationEventRepository = (*eventStore)(nil)

func (r *eventStore) Create(_ context.Context, event *entity.AllocationEvent) error {
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r *eventStore) ListByRequest(_ context.Context, requestID string) ([]entity.AllocationEvent, error) {
	var out []entity.AllocationEvent
	for _, e := range r.s.events {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type movementStore struct{ s *Store }

var _ repository.MovementRepository = (*movementStore)(nil)

func (r *movementStore) Create(_ context.Context, movement *entity.Movement) error {
	if len(movement.Details) == 0 {
		return domain.ErrInvalidInput
	}
	copied := *movement
	copied.Details = append([]entity.MovementDetail(nil), movement.Details...)
	r.s.movements = append(r.s.movements, copied)
	return nil
}

func (r *movementStore) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			copied := m
			copied.Details = append([]entity.MovementDetail(nil), m.Details...)
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *movementStore) List(_ context.Context, filter repository.MovementFilter) ([]entity.Movement, error) {
	var out []entity.Movement
	for _, m := range r.s.movements {
		if filter.From != nil && m.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.Date.After(*filter.To) {
			continue
		}
		if !movementMatches(m, filter) {
			continue
		}
		copied := m
		copied.Details = append([]entity.MovementDetail(nil), m.Details...)
		out = append(out, copied)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func movementMatches(m entity.Movement, filter repository.MovementFilter) bool {
	if filter.ProductID == "" && filter.Direction == "" {
		return true
	}
	for _, d := range m.Details {
		if filter.ProductID != "" && d.ProductID != filter.ProductID {
			continue
		}
		if filter.Direction != "" && d.Direction != filter.Direction {
			continue
		}
		return true
	}
	return false
}

// Variantes con lock propio, para usar fuera de una transacción.

type lockedEventStore struct{ s *Store }

var _ repository.AllocationEventRepository = (*lockedEventStore)(nil)

func (r *lockedEventStore) Create(ctx context.Context, event *entity.AllocationEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&eventStore{r.s}).Create(ctx, event)
}

func (r *lockedEventStore) ListByRequest(ctx context.Context, requestID string) ([]entity.AllocationEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&eventStore{r.s}).ListByRequest(ctx, requestID)
}

type lockedMovementStore struct{ s *Store }

var _ repository.MovementRepository = (*lockedMovementStore)(nil)

func (r *lockedMovementStore) Create(ctx context.Context, movement *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&movementStore{r.s}).Create(ctx, movement)
}

func (r *lockedMovementStore) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&movementStore{r.s}).GetByID(ctx, id)
}

func (r *lockedMovementStore) List(ctx context.Context, filter repository.MovementFilter) ([]entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&movementStore{r.s}).List(ctx, filter)
}
