package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

type invoiceRepo struct {
	store[domain.Invoice]
}

func NewInvoiceRepository(db *gorm.DB) repository.InvoiceRepository {
	return &invoiceRepo{newStore[domain.Invoice](db, repository.InvoiceSchema)}
}

func (r *invoiceRepo) IDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).Pluck("id", &ids).Error
	return ids, translate(err)
}
