package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/smallbiznis/atlasbi/internal/reshape"
	warehousedomain "github.com/smallbiznis/atlasbi/internal/warehouse/domain"
	"github.com/smallbiznis/atlasbi/pkg/db"
	"gorm.io/gorm"
)

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) warehousedomain.Repository {
	return &RepositoryImpl{db: conn}
}

func (r *RepositoryImpl) FinalizedInvoiceIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&warehousedomain.Invoice{}).
		Where("status_name <> ?", warehousedomain.StatusPending).
		Distinct().
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("fetch finalized invoice ids: %w", err)
	}

	frontier := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		frontier[id] = struct{}{}
	}
	return frontier, nil
}

func (r *RepositoryImpl) LatestInvoiceIDs(ctx context.Context, orgID string, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&warehousedomain.Invoice{}).
		Where("org_id = ?", orgID).
		Order("end_date DESC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("fetch latest invoice ids for org %s: %w", orgID, err)
	}
	return ids, nil
}

func (r *RepositoryImpl) ReplaceInvoices(ctx context.Context, rows []reshape.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Delete(&warehousedomain.Invoice{}).Error; err != nil {
				return fmt.Errorf("delete conflicting invoices: %w", err)
			}
		}
		for _, row := range rows {
			if err := tx.Table(warehousedomain.Invoice{}.TableName()).Create(map[string]any(row)).Error; err != nil {
				if db.IsDuplicateKeyErr(err) {
					return fmt.Errorf("duplicate invoice id %v in batch: %w", row["id"], err)
				}
				return fmt.Errorf("insert invoice %v: %w", row["id"], err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *RepositoryImpl) ReplaceLineItems(ctx context.Context, rows []reshape.Row, batchSize int) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	invoiceIDs := distinctInvoiceIDs(rows)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(invoiceIDs) > 0 {
			if err := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&warehousedomain.InvoiceLineItem{}).Error; err != nil {
				return fmt.Errorf("delete line items for reconciled invoices: %w", err)
			}
		}

		for start := 0; start < len(rows); start += batchSize {
			end := start + batchSize
			if end > len(rows) {
				end = len(rows)
			}

			batch := make([]map[string]any, 0, end-start)
			for _, row := range rows[start:end] {
				record := make(map[string]any, len(row)+1)
				for column, value := range row {
					record[column] = value
				}
				record["id"] = uuid.NewString()
				batch = append(batch, record)
			}

			if err := tx.Table(warehousedomain.InvoiceLineItem{}.TableName()).Create(batch).Error; err != nil {
				return fmt.Errorf("insert line item batch at offset %d: %w", start, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func distinctInvoiceIDs(rows []reshape.Row) []string {
	seen := make(map[string]struct{}, len(rows))
	var ids []string
	for _, row := range rows {
		id, ok := row["invoice_id"].(string)
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
