// Package testutil provee implementaciones en memoria de los puertos de
// persistencia para tests de casos de uso. No simulan rollback: los tests de
// atomicidad se apoyan en las validaciones previas a la transacción.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// ── Catálogo ──────────────────────────────────────────────────────────────────

// ProductRepo es un ProductRepository en memoria.
type ProductRepo struct {
	Items map[string]*entity.Product
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{Items: make(map[string]*entity.Product)}
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.Items[p.ID] = p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.Items[id], nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	for _, p := range r.Items {
		if p.CompanyID == companyID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) List(_ context.Context, companyID string, _, _ int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.Items {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.Items[p.ID] = p
	return nil
}

// ClientRepo es un ClientRepository en memoria.
type ClientRepo struct {
	Items map[string]*entity.Client
}

func NewClientRepo() *ClientRepo {
	return &ClientRepo{Items: make(map[string]*entity.Client)}
}

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.Items[c.ID] = c
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	return r.Items[id], nil
}

func (r *ClientRepo) List(_ context.Context, companyID string, _, _ int) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, c := range r.Items {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	r.Items[c.ID] = c
	return nil
}

// CompanyRepo es un CompanyRepository en memoria.
type CompanyRepo struct {
	Items map[string]*entity.Company
}

func NewCompanyRepo() *CompanyRepo {
	return &CompanyRepo{Items: make(map[string]*entity.Company)}
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.Items[id], nil
}

func (r *CompanyRepo) Update(_ context.Context, c *entity.Company) error {
	r.Items[c.ID] = c
	return nil
}

// ── Pedidos y entregas ────────────────────────────────────────────────────────

// OrderRepo es un OrderRepository en memoria.
type OrderRepo struct {
	Orders map[string]*entity.Order
	Lines  map[string]*entity.OrderLine // por ID de línea
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{
		Orders: make(map[string]*entity.Order),
		Lines:  make(map[string]*entity.OrderLine),
	}
}

func (r *OrderRepo) Create(_ context.Context, o *entity.Order, lines []*entity.OrderLine) error {
	r.Orders[o.ID] = o
	for _, l := range lines {
		r.Lines[l.ID] = l
	}
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	return r.Orders[id], nil
}

func (r *OrderRepo) GetLines(_ context.Context, orderID string) ([]*entity.OrderLine, error) {
	var out []*entity.OrderLine
	for _, l := range r.Lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *OrderRepo) GetLine(_ context.Context, lineID string) (*entity.OrderLine, error) {
	return r.Lines[lineID], nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, orderID, status string) error {
	if o, ok := r.Orders[orderID]; ok {
		o.Status = status
	}
	return nil
}

func (r *OrderRepo) ReleaseReservation(_ context.Context, orderLineID string, qty decimal.Decimal) error {
	l, ok := r.Lines[orderLineID]
	if !ok {
		return nil
	}
	l.ReservedQuantity = l.ReservedQuantity.Sub(qty)
	if l.ReservedQuantity.LessThan(decimal.Zero) {
		l.ReservedQuantity = decimal.Zero
	}
	return nil
}

func (r *OrderRepo) AddDeliveredQty(_ context.Context, orderLineID string, qty decimal.Decimal) error {
	if l, ok := r.Lines[orderLineID]; ok {
		l.DeliveredQty = l.DeliveredQty.Add(qty)
	}
	return nil
}

// DeliveryRepo es un DeliveryRepository en memoria.
type DeliveryRepo struct {
	Deliveries map[string]*entity.Delivery
	Lines      map[string][]*entity.DeliveryLine // por ID de entrega
}

func NewDeliveryRepo() *DeliveryRepo {
	return &DeliveryRepo{
		Deliveries: make(map[string]*entity.Delivery),
		Lines:      make(map[string][]*entity.DeliveryLine),
	}
}

func (r *DeliveryRepo) Create(_ context.Context, d *entity.Delivery, lines []*entity.DeliveryLine) error {
	r.Deliveries[d.ID] = d
	r.Lines[d.ID] = lines
	return nil
}

func (r *DeliveryRepo) GetByID(_ context.Context, id string) (*entity.Delivery, error) {
	return r.Deliveries[id], nil
}

func (r *DeliveryRepo) GetLines(_ context.Context, deliveryID string) ([]*entity.DeliveryLine, error) {
	return r.Lines[deliveryID], nil
}

func (r *DeliveryRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Delivery, error) {
	var out []*entity.Delivery
	for _, d := range r.Deliveries {
		if d.OrderID == orderID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *DeliveryRepo) UpdateStatus(_ context.Context, deliveryID, status string) error {
	if d, ok := r.Deliveries[deliveryID]; ok {
		d.Status = status
	}
	return nil
}

func (r *DeliveryRepo) SetNoticed(_ context.Context, deliveryID string, noticed bool) error {
	if d, ok := r.Deliveries[deliveryID]; ok {
		d.Noticed = noticed
	}
	return nil
}

// DeliveryNoteRepo es un DeliveryNoteRepository en memoria.
type DeliveryNoteRepo struct {
	Notes map[string]*entity.DeliveryNote
	Lines map[string][]*entity.DeliveryNoteLine // por ID de nota
}

func NewDeliveryNoteRepo() *DeliveryNoteRepo {
	return &DeliveryNoteRepo{
		Notes: make(map[string]*entity.DeliveryNote),
		Lines: make(map[string][]*entity.DeliveryNoteLine),
	}
}

func (r *DeliveryNoteRepo) Create(_ context.Context, n *entity.DeliveryNote, lines []*entity.DeliveryNoteLine) error {
	r.Notes[n.ID] = n
	r.Lines[n.ID] = lines
	return nil
}

func (r *DeliveryNoteRepo) GetByID(_ context.Context, id string) (*entity.DeliveryNote, error) {
	return r.Notes[id], nil
}

func (r *DeliveryNoteRepo) GetLines(_ context.Context, noteID string) ([]*entity.DeliveryNoteLine, error) {
	return r.Lines[noteID], nil
}

func (r *DeliveryNoteRepo) UpdateStatus(_ context.Context, noteID, status, cancelReason string) error {
	if n, ok := r.Notes[noteID]; ok {
		n.Status = status
		if cancelReason != "" {
			n.CancelReason = cancelReason
		}
	}
	return nil
}

func (r *DeliveryNoteRepo) MarkDelivered(_ context.Context, noteID string) error {
	if n, ok := r.Notes[noteID]; ok {
		n.Status = entity.NoteStatusDelivered
		now := time.Now()
		n.DeliveredAt = &now
	}
	return nil
}

func (r *DeliveryNoteRepo) UpdateLineCost(_ context.Context, line *entity.DeliveryNoteLine) error {
	for _, l := range r.Lines[line.NoteID] {
		if l.ID == line.ID {
			l.UnitCostFIFO = line.UnitCostFIFO
			l.LineCostFIFO = line.LineCostFIFO
			l.CostProvisional = line.CostProvisional
		}
	}
	return nil
}

func (r *DeliveryNoteRepo) MarkReservationReleased(_ context.Context, noteLineID string) error {
	for _, lines := range r.Lines {
		for _, l := range lines {
			if l.ID == noteLineID {
				l.ReservationReleased = true
			}
		}
	}
	return nil
}

func (r *DeliveryNoteRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.DeliveryNote, error) {
	var out []*entity.DeliveryNote
	for _, id := range ids {
		if n, ok := r.Notes[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// ── Inventario ────────────────────────────────────────────────────────────────

// StockMovementRepo es un StockMovementRepository en memoria. Los movimientos
// se conservan en orden de inserción, que hace las veces de created_at.
type StockMovementRepo struct {
	Movements  []*entity.StockMovement
	Breakdowns []*entity.CostBreakdownEntry
}

func NewStockMovementRepo() *StockMovementRepo {
	return &StockMovementRepo{}
}

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.Movements = append(r.Movements, m)
	return nil
}

func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	for _, m := range r.Movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *StockMovementRepo) LayersForUpdate(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.Movements {
		if m.ProductID == productID && m.RemainingQuantity.GreaterThan(decimal.Zero) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *StockMovementRepo) UpdateLayerRemaining(_ context.Context, layerID string, remaining decimal.Decimal) error {
	for _, m := range r.Movements {
		if m.ID == layerID {
			if remaining.LessThan(decimal.Zero) {
				remaining = decimal.Zero
			}
			m.RemainingQuantity = remaining
		}
	}
	return nil
}

func (r *StockMovementRepo) LastKnownUnitCost(_ context.Context, productID string) (decimal.Decimal, error) {
	for i := len(r.Movements) - 1; i >= 0; i-- {
		m := r.Movements[i]
		if m.ProductID == productID &&
			(m.Type == entity.MovementTypeGoodsIn || m.Type == entity.MovementTypeAdjustment) {
			return m.UnitCost, nil
		}
	}
	return decimal.Zero, nil
}

func (r *StockMovementRepo) Available(_ context.Context, productID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.Movements {
		if m.ProductID == productID {
			total = total.Add(m.RemainingQuantity)
		}
	}
	return total, nil
}

func (r *StockMovementRepo) CreateBreakdownEntry(_ context.Context, e *entity.CostBreakdownEntry) error {
	r.Breakdowns = append(r.Breakdowns, e)
	return nil
}

func (r *StockMovementRepo) ListBreakdownByNoteLine(_ context.Context, noteLineID string) ([]*entity.CostBreakdownEntry, error) {
	var out []*entity.CostBreakdownEntry
	for _, e := range r.Breakdowns {
		if e.NoteLineID == noteLineID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, _, _ int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.Movements {
		if m.ProductID != productID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// ── Facturación ───────────────────────────────────────────────────────────────

// InvoiceRepo es un InvoiceRepository en memoria.
type InvoiceRepo struct {
	Invoices map[string]*entity.Invoice
	Items    map[string][]*entity.InvoiceItem // por ID de factura
}

func NewInvoiceRepo() *InvoiceRepo {
	return &InvoiceRepo{
		Invoices: make(map[string]*entity.Invoice),
		Items:    make(map[string][]*entity.InvoiceItem),
	}
}

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice, items []*entity.InvoiceItem) error {
	r.Invoices[inv.ID] = inv
	r.Items[inv.ID] = items
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	return r.Invoices[id], nil
}

func (r *InvoiceRepo) GetItems(_ context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	return r.Items[invoiceID], nil
}

func (r *InvoiceRepo) GetForUpdate(_ context.Context, id string) (*entity.Invoice, error) {
	return r.Invoices[id], nil
}

func (r *InvoiceRepo) ListBySplitGroup(_ context.Context, splitGroupID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.Invoices {
		if inv.SplitGroupID == splitGroupID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number.Number < out[j].Number.Number })
	return out, nil
}

func (r *InvoiceRepo) ListOutstandingByClient(_ context.Context, clientID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.Invoices {
		if inv.ClientID == clientID && inv.Outstanding() {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].IssueDate.Before(out[j].IssueDate)
	})
	return out, nil
}

func (r *InvoiceRepo) ListByClient(_ context.Context, clientID string, from, to *time.Time) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.Invoices {
		if inv.ClientID != clientID {
			continue
		}
		if from != nil && inv.IssueDate.Before(*from) {
			continue
		}
		if to != nil && inv.IssueDate.After(*to) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.Before(out[j].IssueDate) })
	return out, nil
}

func (r *InvoiceRepo) UpdateStatus(_ context.Context, id, status, cancelReason string) error {
	if inv, ok := r.Invoices[id]; ok {
		inv.Status = status
		if cancelReason != "" {
			inv.CancelReason = cancelReason
		}
	}
	return nil
}

func (r *InvoiceRepo) UpdateEInvoiceStatus(_ context.Context, id, status string) error {
	if inv, ok := r.Invoices[id]; ok {
		inv.EInvoiceStatus = status
	}
	return nil
}

func (r *InvoiceRepo) ApplyPaymentAmounts(_ context.Context, id string, paid, remaining decimal.Decimal, status string) error {
	if inv, ok := r.Invoices[id]; ok {
		inv.PaidAmount = paid
		inv.RemainingAmount = remaining
		inv.Status = status
	}
	return nil
}

// ── Tesorería ─────────────────────────────────────────────────────────────────

// PaymentRepo es un PaymentRepository en memoria.
type PaymentRepo struct {
	Payments    map[string]*entity.Payment
	Allocations map[string]*entity.PaymentAllocation
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{
		Payments:    make(map[string]*entity.Payment),
		Allocations: make(map[string]*entity.PaymentAllocation),
	}
}

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.Payments[p.ID] = p
	return nil
}

func (r *PaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	return r.Payments[id], nil
}

func (r *PaymentRepo) GetForUpdate(_ context.Context, id string) (*entity.Payment, error) {
	return r.Payments[id], nil
}

func (r *PaymentRepo) Update(_ context.Context, p *entity.Payment) error {
	r.Payments[p.ID] = p
	return nil
}

func (r *PaymentRepo) CreateAllocation(_ context.Context, a *entity.PaymentAllocation) error {
	r.Allocations[a.ID] = a
	return nil
}

func (r *PaymentRepo) DeleteAllocation(_ context.Context, allocationID string) error {
	delete(r.Allocations, allocationID)
	return nil
}

func (r *PaymentRepo) GetAllocation(_ context.Context, allocationID string) (*entity.PaymentAllocation, error) {
	return r.Allocations[allocationID], nil
}

func (r *PaymentRepo) ListAllocationsByPayment(_ context.Context, paymentID string) ([]*entity.PaymentAllocation, error) {
	var out []*entity.PaymentAllocation
	for _, a := range r.Allocations {
		if a.PaymentID == paymentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *PaymentRepo) ListAllocationsByInvoice(_ context.Context, invoiceID string) ([]*entity.PaymentAllocation, error) {
	var out []*entity.PaymentAllocation
	for _, a := range r.Allocations {
		if a.InvoiceID == invoiceID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *PaymentRepo) ListByClient(_ context.Context, clientID string, from, to *time.Time) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.Payments {
		if p.ClientID != clientID {
			continue
		}
		if from != nil && p.Date.Before(*from) {
			continue
		}
		if to != nil && p.Date.After(*to) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ── Numeración ────────────────────────────────────────────────────────────────

// SequenceRepo es un SequenceRepository en memoria con contador por (serie, año).
// El mutex cumple el mismo papel que la fila bloqueada por el upsert en
// PostgreSQL: dos llamadas concurrentes jamás devuelven el mismo número.
type SequenceRepo struct {
	mu       sync.Mutex
	Counters map[string]int64
}

func NewSequenceRepo() *SequenceRepo {
	return &SequenceRepo{Counters: make(map[string]int64)}
}

func counterKey(series string, year int) string {
	return fmt.Sprintf("%s/%d", series, year)
}

func (r *SequenceRepo) NextNumber(_ context.Context, series string, year int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := counterKey(series, year)
	r.Counters[k]++
	return r.Counters[k], nil
}

// SeriesRepo es un SeriesRepository en memoria.
type SeriesRepo struct {
	Series []*entity.Series
}

func NewSeriesRepo(series ...*entity.Series) *SeriesRepo {
	return &SeriesRepo{Series: series}
}

func (r *SeriesRepo) GetByName(_ context.Context, companyID, name string) (*entity.Series, error) {
	for _, s := range r.Series {
		if s.CompanyID == companyID && s.Name == name {
			return s, nil
		}
	}
	return nil, nil
}

func (r *SeriesRepo) ListActive(_ context.Context, companyID, docType string) ([]*entity.Series, error) {
	var out []*entity.Series
	for _, s := range r.Series {
		if s.CompanyID == companyID && s.DocType == docType && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SeriesRepo) Create(_ context.Context, s *entity.Series) error {
	r.Series = append(r.Series, s)
	return nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// TxRunner pasa los repos en memoria directamente a la función; no hay
// transacción real que abortar.
type TxRunner struct {
	Mov        *StockMovementRepo
	Orders     *OrderRepo
	Deliveries *DeliveryRepo
	Notes      *DeliveryNoteRepo
	Seq        *SequenceRepo
	Invoices   *InvoiceRepo
	Payments   *PaymentRepo
}

func (t *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return fn(t.Mov, t.Orders)
}

func (t *TxRunner) RunFulfillment(ctx context.Context, fn func(
	noteRepo repository.DeliveryNoteRepository,
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
	movRepo repository.StockMovementRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return fn(t.Notes, t.Deliveries, t.Orders, t.Mov, t.Seq)
}

func (t *TxRunner) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	noteRepo repository.DeliveryNoteRepository,
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return fn(t.Invoices, t.Notes, t.Deliveries, t.Orders, t.Seq)
}

func (t *TxRunner) RunTreasury(ctx context.Context, fn func(
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return fn(t.Payments, t.Invoices)
}
