package engine

import (
	"testing"

	"github.com/aethra/acueducto/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichRegistrationsScenario(t *testing.T) {
	regs := []models.Registration{{Code: "M1", PropertyID: 5, Status: models.RegistrationActive}}
	props := []models.Property{{ID: 5, Address: "Calle 1", OwnerCC: "100"}}
	users := []models.User{{CC: "100", FirstName: "Ana", LastName: "Ruiz"}}

	rows := EnrichRegistrations(regs, props, users)
	require.Len(t, rows, 1)
	assert.Equal(t, "M1", rows[0].Code)
	assert.Equal(t, "Calle 1", rows[0].Direccion)
	assert.Equal(t, "Ana Ruiz", rows[0].PropietarioNombre)
	assert.Equal(t, "100", rows[0].PropietarioCC)
	require.NotNil(t, rows[0].Usuario)
	assert.Equal(t, "100", rows[0].Usuario.CC)
}

func TestEnrichDanglingReferencesDegrade(t *testing.T) {
	fx := newFixture()

	regs := EnrichRegistrations(fx.registrations, fx.properties, fx.users)
	require.Len(t, regs, 3)
	// M2 -> predio 6 -> owner 999 missing
	assert.Equal(t, "Carrera 7", regs[1].Direccion)
	assert.Equal(t, "999", regs[1].PropietarioCC)
	assert.Equal(t, "", regs[1].PropietarioNombre)
	assert.Nil(t, regs[1].Usuario)
	// M3 -> predio 77 missing: everything after the miss is empty
	assert.Equal(t, "", regs[2].Direccion)
	assert.Equal(t, "", regs[2].TipoPredio)
	assert.Nil(t, regs[2].Predio)

	invs := EnrichInvoices(fx.invoices, fx.registrations, fx.properties, fx.users, testNow)
	require.Len(t, invs, 4)
	assert.Equal(t, "100", invs[0].Cedula)
	assert.Equal(t, "Ana Ruiz", invs[0].Propietario)
	assert.Equal(t, "3001234567", invs[0].Telefono)
	assert.Equal(t, "ana@example.com", invs[0].Correo)
	// owner missing: cedula falls back to the predio's propietario_cc
	assert.Equal(t, "999", invs[1].Cedula)
	assert.Equal(t, "", invs[1].Propietario)
	assert.Equal(t, "Carrera 7", invs[1].Direccion)
	// matrícula missing
	assert.Nil(t, invs[2].Matricula)
	assert.Equal(t, "", invs[2].Cedula)
	assert.Equal(t, "", invs[2].Direccion)

	reqs := EnrichRequests(fx.requests, fx.registrations, fx.properties, fx.users)
	require.Len(t, reqs, 2)
	assert.Equal(t, "Ana Ruiz", reqs[0].PropietarioNombre)
	assert.Equal(t, "Calle 1", reqs[0].Direccion)
	assert.NotNil(t, reqs[1].Matricula)
	assert.Equal(t, "", reqs[1].Direccion)
	assert.Equal(t, "", reqs[1].PropietarioNombre)

	props := EnrichProperties(fx.properties, fx.users)
	assert.Equal(t, "Ana Ruiz", props[0].PropietarioNombre)
	assert.Nil(t, props[1].Propietario)
}

func TestEnrichIsIdempotent(t *testing.T) {
	fx := newFixture()

	first := EnrichInvoices(fx.invoices, fx.registrations, fx.properties, fx.users, testNow)
	second := EnrichInvoices(fx.invoices, fx.registrations, fx.properties, fx.users, testNow)
	assert.Equal(t, first, second)

	// mutating an embedded record must not leak into the snapshot
	first[0].Usuario.FirstName = "Otra"
	third := EnrichInvoices(fx.invoices, fx.registrations, fx.properties, fx.users, testNow)
	assert.Equal(t, "Ana", third[0].Usuario.FirstName)
	assert.Equal(t, "Ana", fx.users[0].FirstName)
}

func TestIndexByLastWriteWins(t *testing.T) {
	users := []models.User{
		{CC: "1", FirstName: "Primero"},
		{CC: "1", FirstName: "Segundo"},
	}
	l := IndexBy(users, func(u models.User) string { return u.CC })
	require.NotNil(t, l.Find("1"))
	assert.Equal(t, "Segundo", l.Find("1").FirstName)
	assert.Nil(t, l.Find("2"))
}

func TestEnrichUsersFullName(t *testing.T) {
	rows := EnrichUsers([]models.User{{CC: "1", FirstName: "Ana"}, {CC: "2", LastName: "Ruiz"}})
	assert.Equal(t, "Ana", rows[0].NombreCompleto)
	assert.Equal(t, "Ruiz", rows[1].NombreCompleto)
}
