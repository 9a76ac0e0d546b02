package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"Nome", "Email"},
		Rows: []map[string]string{
			{"Nome": "Silva, Maria", "Email": "maria@escola.edu.br"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Nome,Email", strings.TrimSpace(lines[0]))
	require.Contains(t, lines[1], `"Silva, Maria"`)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRenderDocument(t *testing.T) {
	exporter := NewPDFExporter()
	payload, err := exporter.RenderDocument(Document{
		Title:      "Declaracao de Matricula",
		Paragraphs: []string{"Declaramos, para os devidos fins, que o aluno esta matriculado."},
		Footer:     "Emitido em 31/08/2026",
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
