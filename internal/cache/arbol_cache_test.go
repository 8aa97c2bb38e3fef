package cache

import (
	"fmt"
	"sync"
	"testing"

	"cocinaclinica/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodos(codigos ...string) []dto.NodoResponse {
	result := make([]dto.NodoResponse, 0, len(codigos))
	for _, c := range codigos {
		result = append(result, dto.NodoResponse{ID: uuid.NewString(), Codigo: c})
	}
	return result
}

func TestRaices(t *testing.T) {
	c := NewArbolCache()

	_, ok := c.Raices()
	assert.False(t, ok)

	c.GuardarRaices(nodos("1", "2"))
	raices, ok := c.Raices()
	require.True(t, ok)
	assert.Len(t, raices, 2)

	// Una lista vacía cacheada sigue siendo un acierto: árbol sin raíces
	c.GuardarRaices(nil)
	raices, ok = c.Raices()
	assert.True(t, ok)
	assert.Empty(t, raices)
}

func TestHijos(t *testing.T) {
	c := NewArbolCache()
	padre := uuid.New()

	_, ok := c.Hijos(padre)
	assert.False(t, ok)

	c.GuardarHijos(padre, nodos("1.01", "1.02"))
	hijos, ok := c.Hijos(padre)
	require.True(t, ok)
	assert.Len(t, hijos, 2)
}

func TestExpandirYColapsar(t *testing.T) {
	c := NewArbolCache()
	id := uuid.New()

	// Expandir sin hijos cacheados: hay que ir al almacén
	assert.False(t, c.Expandir(id))
	assert.True(t, c.EstaExpandido(id))

	c.GuardarHijos(id, nodos("1.01"))
	assert.True(t, c.Expandir(id))

	c.Colapsar(id)
	assert.False(t, c.EstaExpandido(id))
}

func TestInvalidarTodoConservaExpansion(t *testing.T) {
	c := NewArbolCache()
	id := uuid.New()
	c.GuardarRaices(nodos("1"))
	c.GuardarHijos(id, nodos("1.01"))
	c.Expandir(id)

	c.InvalidarTodo()

	_, ok := c.Raices()
	assert.False(t, ok)
	_, ok = c.Hijos(id)
	assert.False(t, ok)
	// La vista recuerda qué estaba abierto para recargarlo con datos frescos
	assert.True(t, c.EstaExpandido(id))
}

func TestAccesoConcurrente(t *testing.T) {
	c := NewArbolCache()
	padre := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.GuardarRaices(nodos(fmt.Sprintf("%d", i)))
			c.GuardarHijos(padre, nodos("x"))
			c.Raices()
			c.Hijos(padre)
			c.Expandir(padre)
			c.InvalidarTodo()
		}(i)
	}
	wg.Wait()
}
