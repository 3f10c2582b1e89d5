package app

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"facility_compliance_bot/internal/domain/fuel"
	"facility_compliance_bot/internal/domain/workorder"
	idb "facility_compliance_bot/internal/infra/database"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

// fakeAlertClient records sent messages in order.
type fakeAlertClient struct {
	sent []sentMessage
}

type sentMessage struct {
	chatID int64
	text   string
}

func (f *fakeAlertClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

// fakeWorkOrderRepo is an in-memory workorder.Repository.
type fakeWorkOrderRepo struct {
	orders []*workorder.WorkOrder
}

func (f *fakeWorkOrderRepo) Create(_ context.Context, wo *workorder.WorkOrder) error {
	f.orders = append(f.orders, wo)
	return nil
}

func (f *fakeWorkOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	for _, wo := range f.orders {
		if wo.ID == id {
			return wo, nil
		}
	}
	return nil, idb.ErrWorkOrderNotFound
}

func (f *fakeWorkOrderRepo) Update(_ context.Context, wo *workorder.WorkOrder) error {
	for i, existing := range f.orders {
		if existing.ID == wo.ID {
			f.orders[i] = wo
			return nil
		}
	}
	return idb.ErrWorkOrderNotFound
}

func (f *fakeWorkOrderRepo) ListActive(_ context.Context) ([]*workorder.WorkOrder, error) {
	var active []*workorder.WorkOrder
	for _, wo := range f.orders {
		if !wo.Status.IsTerminal() {
			active = append(active, wo)
		}
	}
	return active, nil
}

func (f *fakeWorkOrderRepo) ListCreatedSince(_ context.Context, cutoff time.Time) ([]*workorder.WorkOrder, error) {
	var matched []*workorder.WorkOrder
	for _, wo := range f.orders {
		if !wo.CreatedAt.Before(cutoff) {
			matched = append(matched, wo)
		}
	}
	return matched, nil
}

// fakeFuelRepo is an in-memory fuel.Repository.
type fakeFuelRepo struct {
	deliveries      map[uuid.UUID]*fuel.Delivery
	reconciliations map[uuid.UUID]*fuel.MonthlyReconciliation
	audit           []*fuel.AuditEntry
	nextAuditID     int64
}

func newFakeFuelRepo() *fakeFuelRepo {
	return &fakeFuelRepo{
		deliveries:      make(map[uuid.UUID]*fuel.Delivery),
		reconciliations: make(map[uuid.UUID]*fuel.MonthlyReconciliation),
	}
}

func (f *fakeFuelRepo) CreateDelivery(_ context.Context, d *fuel.Delivery) error {
	cp := *d
	f.deliveries[d.ID] = &cp
	return nil
}

func (f *fakeFuelRepo) GetDeliveryByID(_ context.Context, id uuid.UUID) (*fuel.Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok {
		return nil, idb.ErrDeliveryNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeFuelRepo) UpdateDelivery(_ context.Context, d *fuel.Delivery) error {
	if _, ok := f.deliveries[d.ID]; !ok {
		return idb.ErrDeliveryNotFound
	}
	cp := *d
	f.deliveries[d.ID] = &cp
	return nil
}

func (f *fakeFuelRepo) ListDeliveriesForMonth(_ context.Context, month time.Time) ([]*fuel.Delivery, error) {
	var out []*fuel.Delivery
	for _, d := range f.deliveries {
		if d.DeliveryDate.Year() == month.Year() && d.DeliveryDate.Month() == month.Month() {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeFuelRepo) ListDeliveriesByEscalation(_ context.Context, status fuel.EscalationStatus) ([]*fuel.Delivery, error) {
	var out []*fuel.Delivery
	for _, d := range f.deliveries {
		if d.EscalationStatus == status {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeFuelRepo) AppendAudit(_ context.Context, entry *fuel.AuditEntry) error {
	f.nextAuditID++
	entry.ID = f.nextAuditID
	cp := *entry
	f.audit = append(f.audit, &cp)
	return nil
}

func (f *fakeFuelRepo) ListAudit(_ context.Context, deliveryID uuid.UUID) ([]*fuel.AuditEntry, error) {
	var out []*fuel.AuditEntry
	for _, e := range f.audit {
		if e.DeliveryID == deliveryID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeFuelRepo) CreateReconciliation(_ context.Context, r *fuel.MonthlyReconciliation) error {
	for _, existing := range f.reconciliations {
		if existing.Month.Equal(r.Month) && existing.BranchSite == r.BranchSite {
			return idb.ErrDuplicateReconciliation
		}
	}
	cp := *r
	f.reconciliations[r.ID] = &cp
	return nil
}

func (f *fakeFuelRepo) GetReconciliationByID(_ context.Context, id uuid.UUID) (*fuel.MonthlyReconciliation, error) {
	r, ok := f.reconciliations[id]
	if !ok {
		return nil, idb.ErrReconciliationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeFuelRepo) GetReconciliationByMonthAndSite(_ context.Context, month time.Time, site string) (*fuel.MonthlyReconciliation, error) {
	for _, r := range f.reconciliations {
		if r.Month.Year() == month.Year() && r.Month.Month() == month.Month() && r.BranchSite == site {
			cp := *r
			return &cp, nil
		}
	}
	return nil, idb.ErrReconciliationNotFound
}

func (f *fakeFuelRepo) UpdateReconciliation(_ context.Context, r *fuel.MonthlyReconciliation) error {
	if _, ok := f.reconciliations[r.ID]; !ok {
		return idb.ErrReconciliationNotFound
	}
	cp := *r
	f.reconciliations[r.ID] = &cp
	return nil
}

func (f *fakeFuelRepo) ListReconciliationsByStatus(_ context.Context, status fuel.ReconciliationStatus) ([]*fuel.MonthlyReconciliation, error) {
	var out []*fuel.MonthlyReconciliation
	for _, r := range f.reconciliations {
		if r.Status == status {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
