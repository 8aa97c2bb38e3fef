// Package cache guarda en memoria las ramas ya cargadas de cada árbol para
// que la navegación perezosa no repita consultas: los hijos de un nodo se
// piden al almacén una sola vez hasta la próxima escritura.
package cache

import (
	"sync"

	"cocinaclinica/internal/dto"

	"github.com/google/uuid"
)

// ArbolCache es seguro para uso concurrente. Una instancia por árbol.
type ArbolCache struct {
	mu            sync.RWMutex
	raices        []dto.NodoResponse
	raicesValidas bool
	hijos         map[uuid.UUID][]dto.NodoResponse
	expandidos    map[uuid.UUID]struct{}
}

func NewArbolCache() *ArbolCache {
	return &ArbolCache{
		hijos:      make(map[uuid.UUID][]dto.NodoResponse),
		expandidos: make(map[uuid.UUID]struct{}),
	}
}

func (c *ArbolCache) Raices() ([]dto.NodoResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.raicesValidas {
		return nil, false
	}
	return c.raices, true
}

func (c *ArbolCache) GuardarRaices(raices []dto.NodoResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raices = raices
	c.raicesValidas = true
}

func (c *ArbolCache) Hijos(parentID uuid.UUID) ([]dto.NodoResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hijos, ok := c.hijos[parentID]
	return hijos, ok
}

func (c *ArbolCache) GuardarHijos(parentID uuid.UUID, hijos []dto.NodoResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hijos[parentID] = hijos
}

// Expandir marca un nodo como abierto en la vista y devuelve si sus hijos ya
// están cacheados.
func (c *ArbolCache) Expandir(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expandidos[id] = struct{}{}
	_, cargado := c.hijos[id]
	return cargado
}

func (c *ArbolCache) Colapsar(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.expandidos, id)
}

func (c *ArbolCache) EstaExpandido(id uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.expandidos[id]
	return ok
}

// InvalidarTodo descarta raíces e hijos cacheados después de cualquier
// escritura en el árbol. El estado de expansión se conserva: la vista vuelve
// a abrirse donde estaba, con datos frescos.
func (c *ArbolCache) InvalidarTodo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raices = nil
	c.raicesValidas = false
	c.hijos = make(map[uuid.UUID][]dto.NodoResponse)
}
