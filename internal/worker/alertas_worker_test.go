package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDestinatarios(t *testing.T) {
	assert.Nil(t, ParseDestinatarios(""))
	assert.Nil(t, ParseDestinatarios(" , ,"))
	assert.Equal(t,
		[]string{"cocina@clinica.local", "compras@clinica.local"},
		ParseDestinatarios(" cocina@clinica.local, compras@clinica.local ,"))
}

func TestBuildAlertaBody(t *testing.T) {
	body := buildAlertaBody([]AlertaProducto{
		{Codigo: "1.01.01.01.01", Nombre: "Leche entera", StockActual: "3", StockMinimo: "10", Unidad: "L", Estado: "BAJO"},
		{Codigo: "1.02.01.01.01", Nombre: "Arroz", StockActual: "0", StockMinimo: "25", Unidad: "kg", Estado: "CRITICO"},
	})

	assert.Contains(t, body, "[BAJO] Leche entera (1.01.01.01.01): 3 L — mínimo 10 L")
	assert.Contains(t, body, "[CRITICO] Arroz")
	assert.Contains(t, body, "stock mínimo")
}
