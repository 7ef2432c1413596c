package export

import (
	"bytes"
	"testing"

	"github.com/aethra/acueducto/internal/engine"
	"github.com/aethra/acueducto/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	users := engine.EnrichUsers([]models.User{
		{CC: "100", FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com"},
		{CC: "200", FirstName: "Luis", LastName: "Pérez"},
	})
	ds := engine.NewUsersDataset(users, engine.NewFormatter("CO"))
	v := ds.View(engine.Query{Sort: engine.Sort{Key: "cc", Direction: engine.SortAsc}}, 1, ds.Len())

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, v))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Usuarios Registrados"}, f.GetSheetList())
	rows, err := f.GetRows("Usuarios Registrados")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Cédula", rows[0][0])
	assert.Equal(t, "Nombre Completo", rows[0][1])
	assert.Equal(t, []string{"100", "Ana Ruiz", "-", "ana@example.com", "-"}, rows[1])
	assert.Equal(t, "Luis Pérez", rows[2][1])

	assert.Equal(t, "usuarios.xlsx", Filename(v))
}

func TestWriteXLSXEmptyView(t *testing.T) {
	v := engine.EmptyView(engine.KindInvoices, engine.Query{}, 10, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, v))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Facturas del Sistema")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(v.Columns))
}
