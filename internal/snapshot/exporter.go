// Package snapshot writes the per-organization CSV side artifact of a sync
// run.
package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/smallbiznis/atlasbi/internal/config"
	"github.com/smallbiznis/atlasbi/internal/reshape"
	"go.uber.org/zap"
)

type Exporter struct {
	dir string
	log *zap.Logger
}

func NewExporter(cfg config.Config, log *zap.Logger) *Exporter {
	return &Exporter{
		dir: cfg.SnapshotDir,
		log: log.Named("snapshot.exporter"),
	}
}

// Write serializes rows to invoices_line_items_{org_id}.csv in column order
// and returns the file path. NULL values become empty cells.
func (e *Exporter) Write(orgID string, columns []string, rows []reshape.Row) (string, error) {
	path := filepath.Join(e.dir, fmt.Sprintf("invoices_line_items_%s.csv", orgID))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(columns); err != nil {
		return "", fmt.Errorf("write snapshot header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, column := range columns {
			record[i] = formatCell(row[column])
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write snapshot row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush snapshot: %w", err)
	}

	e.log.Info("snapshot written",
		zap.String("org_id", orgID),
		zap.String("path", path),
		zap.Int("rows", len(rows)),
	)
	return path, nil
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
