package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

var _ allocation.TxRunner = (*Store)(nil)

// Store almacenamiento en memoria para tests y desarrollo local.
// Implementa allocation.TxRunner: cada Run corre bajo un mutex global y
// toma una instantánea del estado; si el callback falla, el estado se
// restaura (mismas garantías de atomicidad que la transacción SQL, a
// escala de un proceso).
type Store struct {
	mu        sync.Mutex
	products  map[string]entity.Product
	lots      map[string]*entity.StockLot // key: locationID|productID
	requests  map[string]*entity.Request
	donations map[string]*entity.Donation
	events    []entity.AllocationEvent
	movements []entity.Movement

	// Now inyectable para tests que controlan updated_at de los lotes.
	Now func() time.Time
}

// NewStore construye el almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]entity.Product),
		lots:      make(map[string]*entity.StockLot),
		requests:  make(map[string]*entity.Request),
		donations: make(map[string]*entity.Donation),
		Now:       time.Now,
	}
}

func lotKey(locationID, productID string) string {
	return locationID + "|" + productID
}

// SeedProduct registra un producto del catálogo.
func (s *Store) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SeedLot registra un lote con su updated_at inicial.
func (s *Store) SeedLot(lot entity.StockLot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := lot
	s.lots[lotKey(lot.LocationID, lot.ProductID)] = &copied
}

// SeedRequest registra una solicitud.
func (s *Store) SeedRequest(req entity.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := req
	s.requests[req.ID] = &copied
}

// SeedDonation registra una donación.
func (s *Store) SeedDonation(don entity.Donation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := don
	s.donations[don.ID] = &copied
}

// Lot devuelve una copia del lote (o nil) para aserciones en tests.
func (s *Store) Lot(locationID, productID string) *entity.StockLot {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[lotKey(locationID, productID)]
	if !ok {
		return nil
	}
	copied := *lot
	return &copied
}

// Request devuelve una copia de la solicitud (o nil) para aserciones.
func (s *Store) Request(id string) *entity.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil
	}
	copied := *req
	return &copied
}

// Movements devuelve una copia de todas las cabeceras registradas.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Movement, len(s.movements))
	copy(out, s.movements)
	return out
}

// Events devuelve una copia de todos los eventos registrados.
func (s *Store) Events() []entity.AllocationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.AllocationEvent, len(s.events))
	copy(out, s.events)
	return out
}

// snapshot copia el estado mutable para poder revertir.
func (s *Store) snapshot() *Store {
	snap := &Store{
		products:  make(map[string]entity.Product, len(s.products)),
		lots:      make(map[string]*entity.StockLot, len(s.lots)),
		requests:  make(map[string]*entity.Request, len(s.requests)),
		donations: make(map[string]*entity.Donation, len(s.donations)),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.lots {
		copied := *v
		snap.lots[k] = &copied
	}
	for k, v := range s.requests {
		copied := *v
		snap.requests[k] = &copied
	}
	for k, v := range s.donations {
		copied := *v
		snap.donations[k] = &copied
	}
	snap.events = append([]entity.AllocationEvent(nil), s.events...)
	snap.movements = append([]entity.Movement(nil), s.movements...)
	return snap
}

func (s *Store) restore(snap *Store) {
	s.products = snap.products
	s.lots = snap.lots
	s.requests = snap.requests
	s.donations = snap.donations
	s.events = snap.events
	s.movements = snap.movements
}

// Run ejecuta fn como una transacción: mutex global + instantánea, se
// restaura el estado si fn falla.
func (s *Store) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	requestRepo repository.RequestRepository,
	eventRepo repository.AllocationEventRepository,
	movementRepo repository.MovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	err := fn(&lotStore{s}, &productStore{s}, &requestStore{s}, &eventStore{s}, &movementStore{s})
	if err != nil {
		s.restore(snap)
	}
	return err
}

// RunDonation como Run, incluyendo el repositorio de donaciones.
func (s *Store) RunDonation(ctx context.Context, fn func(
	donationRepo repository.DonationRepository,
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	requestRepo repository.RequestRepository,
	eventRepo repository.AllocationEventRepository,
	movementRepo repository.MovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	err := fn(&donationStore{s}, &lotStore{s}, &productStore{s}, &requestStore{s}, &eventStore{s}, &movementStore{s})
	if err != nil {
		s.restore(snap)
	}
	return err
}

// EventRepo devuelve un repositorio de eventos fuera de transacción
// (lecturas del historial).
func (s *Store) EventRepo() repository.AllocationEventRepository {
	return &lockedEventStore{s}
}

// MovementRepo devuelve un repositorio del libro fuera de transacción
// (consultas de reportes).
func (s *Store) MovementRepo() repository.MovementRepository {
	return &lockedMovementStore{s}
}
