package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleDataset() Dataset {
	return Dataset{
		Title:    "Term IV",
		Subtitle: "2025-01-06 to 2025-01-31",
		Headers:  []string{"Part", "Justice", "Room", "Clerks"},
		Rows: []map[string]string{
			{"Part": "12", "Justice": "John Smith", "Room": "300", "Clerks": "Jane Doe, Mark Lee"},
			{"Part": "IA-5", "Justice": "Mary Jones", "Room": "1234A"},
		},
	}
}

func TestCSVRendererRender(t *testing.T) {
	out, err := NewCSVRenderer().Render(scheduleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Part,Justice,Room,Clerks", lines[0])
	assert.Equal(t, `12,John Smith,300,"Jane Doe, Mark Lee"`, lines[1])
	assert.Equal(t, "IA-5,Mary Jones,1234A,", lines[2])
}

func TestRenderersRequireHeaders(t *testing.T) {
	_, err := NewCSVRenderer().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFRenderer().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRendererRender(t *testing.T) {
	r := NewPDFRenderer()
	out, err := r.Render(scheduleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "application/pdf", r.ContentType())
	assert.Equal(t, "pdf", r.Extension())
}

func TestColumnWidthsSpanPage(t *testing.T) {
	widths := columnWidths(scheduleDataset())
	total := 0.0
	for _, w := range widths {
		total += w
	}
	assert.InDelta(t, pdfUsableWidth, total, 0.001)
	assert.Greater(t, widths[3], widths[0])
}
