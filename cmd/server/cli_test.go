package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aethra/acueducto/internal/auth"
	"github.com/aethra/acueducto/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintViewAlignsCells(t *testing.T) {
	v := engine.View{
		Definition: engine.Definition{
			Title:   "Usuarios Registrados",
			Columns: []engine.Column{{Key: "cc", Label: "Cédula"}, {Key: "nombre_completo", Label: "Nombre Completo"}},
		},
		Rows: []engine.Record{
			{Cells: []engine.Cell{{Key: "cc", Text: "100"}, {Key: "nombre_completo", Text: "Ana Ruiz"}}},
		},
		TotalRows:  1,
		Page:       1,
		PageSize:   10,
		TotalPages: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, printView(&buf, v))

	lines := strings.Split(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "Cédula"))
	assert.Contains(t, lines[1], "Ana Ruiz")
	assert.Contains(t, buf.String(), "Usuarios Registrados: página 1 de 1 (1 registros)")
}

func TestPrintViewReturnsLoadError(t *testing.T) {
	err := printView(&bytes.Buffer{}, engine.View{Error: true, Message: "error al obtener facturas"})
	assert.EqualError(t, err, "error al obtener facturas")
}

func TestHashPasswordFromStdin(t *testing.T) {
	cmd := hashPasswordCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader("agua123\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.True(t, auth.CheckPassword("agua123", strings.TrimSpace(out.String())))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	cmd := hashPasswordCommand()
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}

func TestListRejectsUnknownDataset(t *testing.T) {
	root := rootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"list", "clientes"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dataset")
}
