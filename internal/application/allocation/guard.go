package allocation

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultGuardTTL ventana de gracia tras completar una ejecución: absorbe
// el doble clic del usuario sin bloquear reintentos legítimos.
const DefaultGuardTTL = 2 * time.Second

// DuplicateGuard serializa ejecuciones concurrentes por clave de negocio
// (solicitud o donación). Una segunda llamada con la misma clave en vuelo
// recibe el mismo resultado pendiente (singleflight); una llamada dentro
// de la ventana de gracia posterior recibe el resultado recién terminado.
// Es una salvaguarda de un solo proceso; la transición atómica autoritativa
// vive en la capa de almacenamiento.
type DuplicateGuard struct {
	group singleflight.Group
	ttl   time.Duration

	mu   sync.Mutex
	held map[string]heldResult

	now func() time.Time // inyectable en tests
}

type heldResult struct {
	value     interface{}
	err       error
	expiresAt time.Time
}

// NewDuplicateGuard construye el guard; ttl <= 0 usa DefaultGuardTTL.
func NewDuplicateGuard(ttl time.Duration) *DuplicateGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &DuplicateGuard{
		ttl:  ttl,
		held: make(map[string]heldResult),
		now:  time.Now,
	}
}

// Do ejecuta fn con exclusión por clave. Si hay una ejecución en vuelo
// para la clave, espera y devuelve su resultado sin ejecutar fn de nuevo.
// Si la clave terminó hace menos de la ventana de gracia, devuelve ese
// resultado almacenado. Pasada la ventana, la clave se libera y fn se
// ejecuta normalmente.
func (g *DuplicateGuard) Do(key string, fn func() (interface{}, error)) (interface{}, error) {
	g.mu.Lock()
	if h, ok := g.held[key]; ok {
		if g.now().Before(h.expiresAt) {
			g.mu.Unlock()
			return h.value, h.err
		}
		delete(g.held, key)
	}
	g.mu.Unlock()

	value, err, _ := g.group.Do(key, func() (interface{}, error) {
		v, e := fn()
		g.mu.Lock()
		g.held[key] = heldResult{value: v, err: e, expiresAt: g.now().Add(g.ttl)}
		g.mu.Unlock()
		return v, e
	})
	return value, err
}
