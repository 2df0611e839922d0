package snapshot

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/smallbiznis/atlasbi/internal/config"
	"github.com/smallbiznis/atlasbi/internal/reshape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(config.Config{SnapshotDir: dir}, zap.NewNop())

	columns := []string{"invoice_id", "sku", "quantity", "note"}
	rows := []reshape.Row{
		{"invoice_id": "inv-1", "sku": "CLUSTER", "quantity": float64(3), "note": nil},
		{"invoice_id": "inv-1", "sku": "BACKUP", "quantity": 2.5, "note": "partial"},
	}

	path, err := exporter.Write("org-1", columns, rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoices_line_items_org-1.csv"), path)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, columns, records[0])
	assert.Equal(t, []string{"inv-1", "CLUSTER", "3", ""}, records[1])
	assert.Equal(t, []string{"inv-1", "BACKUP", "2.5", "partial"}, records[2])
}

func TestWriteSnapshotEmptyRows(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(config.Config{SnapshotDir: dir}, zap.NewNop())

	path, err := exporter.Write("org-2", []string{"invoice_id"}, nil)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "invoice_id\n", string(content))
}
