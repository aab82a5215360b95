package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
)

func feeItems(units int64) []domain.LineItem {
	return []domain.LineItem{{Description: "Monthly fee", Quantity: 1, UnitPrice: domain.Rupees(units)}}
}

func TestInvoiceIDsAreSequential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")

	var ids []string
	for i := 0; i < 3; i++ {
		inv, err := f.invoices.Create(ctx, domain.Invoice{MemberID: m.ID, Items: feeItems(100)})
		require.NoError(t, err)
		ids = append(ids, inv.ID)
	}
	assert.Equal(t, []string{"#MP0001", "#MP0002", "#MP0003"}, ids)

	// A fresh service, as after a restart, continues from the stored maximum.
	restarted := NewInvoiceService(f.repos, f.env)
	inv, err := restarted.Create(ctx, domain.Invoice{MemberID: m.ID, Items: feeItems(100)})
	require.NoError(t, err)
	assert.Equal(t, "#MP0004", inv.ID)
}

func TestInvoiceRejectedInputDoesNotConsumeID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")

	_, err := f.invoices.Create(ctx, domain.Invoice{MemberID: m.ID})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.invoices.Create(ctx, domain.Invoice{Items: feeItems(100)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.invoices.Create(ctx, domain.Invoice{MemberID: "ghost", Items: feeItems(100)})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	inv, err := f.invoices.Create(ctx, domain.Invoice{MemberID: m.ID, Items: feeItems(100)})
	require.NoError(t, err)
	assert.Equal(t, "#MP0001", inv.ID)
}

func TestInvoiceTotalsAreDerived(t *testing.T) {
	f := newFixture(t)
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")

	inv, err := f.invoices.Create(context.Background(), domain.Invoice{
		MemberID: m.ID,
		Items: []domain.LineItem{
			{Description: "Monthly fee", Quantity: 1, UnitPrice: domain.Rupees(1999)},
			{Description: "Locker", Quantity: 2, UnitPrice: domain.Rupees(150), Total: domain.Rupees(1)},
		},
		Subtotal: domain.Rupees(5),
		Total:    domain.Rupees(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", inv.MemberName)
	assert.Equal(t, domain.Rupees(300), inv.Items[1].Total)
	assert.Equal(t, domain.Rupees(2299), inv.Subtotal)
	assert.Equal(t, domain.Tax(domain.Rupees(2299)), inv.Tax)
	assert.Equal(t, inv.Subtotal+inv.Tax, inv.Total)
	assert.Equal(t, domain.InvoicePending, inv.Status)
	assert.Equal(t, f.clock.Now().Add(domain.DefaultPaymentTerm), inv.DueDate)

	stored, err := f.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Total, stored.Total)
	assert.Len(t, stored.Items, 2)
}

func TestInvoiceStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	inv, err := f.invoices.Create(ctx, domain.Invoice{MemberID: m.ID, Items: feeItems(100)})
	require.NoError(t, err)

	paid, err := f.invoices.UpdateStatus(ctx, inv.ID, domain.InvoicePaid)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidDate)
	assert.Equal(t, f.clock.Now(), *paid.PaidDate)

	back, err := f.invoices.UpdateStatus(ctx, inv.ID, domain.InvoiceOverdue)
	require.NoError(t, err)
	assert.Nil(t, back.PaidDate)

	_, err = f.invoices.UpdateStatus(ctx, inv.ID, "refunded")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.invoices.UpdateStatus(ctx, "#MP9999", domain.InvoicePaid)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestInvoiceUpdateItemsRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	inv, err := f.invoices.Create(ctx, domain.Invoice{MemberID: m.ID, Items: feeItems(100)})
	require.NoError(t, err)

	items := feeItems(200)
	updated, err := f.invoices.Update(ctx, inv.ID, domain.InvoicePatch{Items: &items})
	require.NoError(t, err)
	assert.Equal(t, domain.Rupees(200), updated.Subtotal)
	assert.Equal(t, domain.Rupees(236), updated.Total)

	empty := []domain.LineItem{}
	_, err = f.invoices.Update(ctx, inv.ID, domain.InvoicePatch{Items: &empty})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestInvoiceSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")

	var ids []string
	for _, units := range []int64{100, 200, 300} {
		inv, err := f.invoices.Create(ctx, domain.Invoice{MemberID: m.ID, Items: feeItems(units)})
		require.NoError(t, err)
		ids = append(ids, inv.ID)
	}
	_, err := f.invoices.UpdateStatus(ctx, ids[0], domain.InvoicePaid)
	require.NoError(t, err)
	_, err = f.invoices.UpdateStatus(ctx, ids[1], domain.InvoiceOverdue)
	require.NoError(t, err)

	sum, err := f.invoices.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, domain.Rupees(118), sum.TotalRevenue)
	assert.Equal(t, domain.Rupees(236), sum.OverdueAmount)
	assert.Equal(t, domain.Rupees(354), sum.PendingAmount)
	assert.Equal(t, 1, sum.ByStatus[domain.InvoicePending])
}

func TestDeleteInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	inv, err := f.invoices.Create(ctx, domain.Invoice{MemberID: m.ID, Items: feeItems(100)})
	require.NoError(t, err)

	require.NoError(t, f.invoices.Delete(ctx, inv.ID))
	_, err = f.invoices.Get(ctx, inv.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.members.Get(ctx, m.ID)
	assert.NoError(t, err)
}
