// Package memory implementa los puertos del punto de venta en memoria.
// Se usa en modo desarrollo (POS_STORE=memory) y en las pruebas.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/farmacia-pos/internal/application/pos"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ pos.TxRunner = (*Store)(nil)

var errReadOnly = errors.New("memory: escritura en transacción de solo lectura")

// Store guarda ventas, notas crédito, gastos, cajas y cierres.
// RunPOS trabaja sobre una copia del estado y la publica solo si fn no falla.
type Store struct {
	mu   sync.RWMutex
	data *state
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// RunPOS ejecuta fn de forma atómica.
func (s *Store) RunPOS(_ context.Context, fn func(repos pos.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.data.clone()
	if err := fn(staged.repositories(false)); err != nil {
		return err
	}
	s.data = staged
	return nil
}

// ReadPOS ejecuta fn sobre el estado actual sin permitir escrituras.
func (s *Store) ReadPOS(_ context.Context, fn func(repos pos.Repositories) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data.repositories(true))
}

// ── Estado ────────────────────────────────────────────────────────────────────

type state struct {
	sales         map[string]entity.Sale
	salesByKey    map[entity.SessionKey][]string
	notes         map[string]entity.CreditNote
	notesByKey    map[entity.SessionKey][]string
	expenses      map[string]entity.Expense
	expensesByKey map[entity.SessionKey][]string
	sessions      map[entity.SessionKey]entity.CashSession
	snapshots     map[entity.SessionKey]entity.ClosingSnapshot
	customers     map[string]pos.CustomerHandle // por documento
}

func newState() *state {
	return &state{
		sales:         make(map[string]entity.Sale),
		salesByKey:    make(map[entity.SessionKey][]string),
		notes:         make(map[string]entity.CreditNote),
		notesByKey:    make(map[entity.SessionKey][]string),
		expenses:      make(map[string]entity.Expense),
		expensesByKey: make(map[entity.SessionKey][]string),
		sessions:      make(map[entity.SessionKey]entity.CashSession),
		snapshots:     make(map[entity.SessionKey]entity.ClosingSnapshot),
		customers:     make(map[string]pos.CustomerHandle),
	}
}

// clone copia los índices; los valores se copian al escribir y al leer.
func (st *state) clone() *state {
	c := newState()
	for k, v := range st.sales {
		c.sales[k] = v
	}
	for k, v := range st.salesByKey {
		c.salesByKey[k] = append([]string(nil), v...)
	}
	for k, v := range st.notes {
		c.notes[k] = v
	}
	for k, v := range st.notesByKey {
		c.notesByKey[k] = append([]string(nil), v...)
	}
	for k, v := range st.expenses {
		c.expenses[k] = v
	}
	for k, v := range st.expensesByKey {
		c.expensesByKey[k] = append([]string(nil), v...)
	}
	for k, v := range st.sessions {
		c.sessions[k] = v
	}
	for k, v := range st.snapshots {
		c.snapshots[k] = v
	}
	for k, v := range st.customers {
		c.customers[k] = v
	}
	return c
}

func (st *state) repositories(readOnly bool) pos.Repositories {
	return pos.Repositories{
		Sales:       &saleRepo{st: st, readOnly: readOnly},
		CreditNotes: &creditNoteRepo{st: st, readOnly: readOnly},
		Expenses:    &expenseRepo{st: st, readOnly: readOnly},
		Sessions:    &sessionRepo{st: st, readOnly: readOnly},
		Customers:   &customerDirectory{st: st, readOnly: readOnly},
	}
}

// ── Ventas ────────────────────────────────────────────────────────────────────

var _ repository.SaleRepository = (*saleRepo)(nil)

type saleRepo struct {
	st       *state
	readOnly bool
}

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if r.readOnly {
		return errReadOnly
	}
	if _, ok := r.st.sales[sale.ID]; ok {
		return fmt.Errorf("memory: venta %s duplicada", sale.ID)
	}
	key := sale.SessionKey()
	r.st.sales[sale.ID] = copySale(sale)
	r.st.salesByKey[key] = append(r.st.salesByKey[key], sale.ID)
	return nil
}

func (r *saleRepo) UpdateStatus(_ context.Context, sale *entity.Sale) error {
	if r.readOnly {
		return errReadOnly
	}
	stored, ok := r.st.sales[sale.ID]
	if !ok {
		return fmt.Errorf("memory: venta %s no existe", sale.ID)
	}
	stored.Status = sale.Status
	stored.VoidedAt = copyTime(sale.VoidedAt)
	r.st.sales[sale.ID] = stored
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	s, ok := r.st.sales[id]
	if !ok {
		return nil, nil
	}
	out := copySale(&s)
	return &out, nil
}

func (r *saleRepo) ListBySession(_ context.Context, key entity.SessionKey) ([]*entity.Sale, error) {
	ids := r.st.salesByKey[key]
	out := make([]*entity.Sale, 0, len(ids))
	for _, id := range ids {
		s := r.st.sales[id]
		c := copySale(&s)
		out = append(out, &c)
	}
	return out, nil
}

// ── Notas crédito ─────────────────────────────────────────────────────────────

var _ repository.CreditNoteRepository = (*creditNoteRepo)(nil)

type creditNoteRepo struct {
	st       *state
	readOnly bool
}

func (r *creditNoteRepo) Create(_ context.Context, note *entity.CreditNote) error {
	if r.readOnly {
		return errReadOnly
	}
	c := *note
	c.Lines = append([]entity.LineItem(nil), note.Lines...)
	key := entity.SessionKey{TerminalID: note.TerminalID, Date: note.BusinessDate}
	r.st.notes[note.ID] = c
	r.st.notesByKey[key] = append(r.st.notesByKey[key], note.ID)
	return nil
}

func (r *creditNoteRepo) ListBySale(_ context.Context, saleID string) ([]*entity.CreditNote, error) {
	var out []*entity.CreditNote
	for _, ids := range r.st.notesByKey {
		for _, id := range ids {
			if n := r.st.notes[id]; n.SaleID == saleID {
				n.Lines = append([]entity.LineItem(nil), n.Lines...)
				out = append(out, &n)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *creditNoteRepo) ListBySession(_ context.Context, key entity.SessionKey) ([]*entity.CreditNote, error) {
	ids := r.st.notesByKey[key]
	out := make([]*entity.CreditNote, 0, len(ids))
	for _, id := range ids {
		n := r.st.notes[id]
		n.Lines = append([]entity.LineItem(nil), n.Lines...)
		out = append(out, &n)
	}
	return out, nil
}

// ── Gastos ────────────────────────────────────────────────────────────────────

var _ repository.ExpenseRepository = (*expenseRepo)(nil)

type expenseRepo struct {
	st       *state
	readOnly bool
}

func (r *expenseRepo) Create(_ context.Context, expense *entity.Expense) error {
	if r.readOnly {
		return errReadOnly
	}
	key := expense.SessionKey()
	r.st.expenses[expense.ID] = *expense
	r.st.expensesByKey[key] = append(r.st.expensesByKey[key], expense.ID)
	return nil
}

func (r *expenseRepo) Delete(_ context.Context, id string) error {
	if r.readOnly {
		return errReadOnly
	}
	e, ok := r.st.expenses[id]
	if !ok {
		return nil
	}
	key := e.SessionKey()
	ids := r.st.expensesByKey[key]
	kept := ids[:0]
	for _, other := range ids {
		if other != id {
			kept = append(kept, other)
		}
	}
	r.st.expensesByKey[key] = kept
	delete(r.st.expenses, id)
	return nil
}

func (r *expenseRepo) GetByID(_ context.Context, id string) (*entity.Expense, error) {
	e, ok := r.st.expenses[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *expenseRepo) ListBySession(_ context.Context, key entity.SessionKey) ([]*entity.Expense, error) {
	ids := r.st.expensesByKey[key]
	out := make([]*entity.Expense, 0, len(ids))
	for _, id := range ids {
		e := r.st.expenses[id]
		out = append(out, &e)
	}
	return out, nil
}

// ── Cajas y cierres ───────────────────────────────────────────────────────────

var _ repository.CashSessionRepository = (*sessionRepo)(nil)

type sessionRepo struct {
	st       *state
	readOnly bool
}

func (r *sessionRepo) Get(_ context.Context, key entity.SessionKey) (*entity.CashSession, error) {
	s, ok := r.st.sessions[key]
	if !ok {
		return nil, nil
	}
	s.ClosedAt = copyTime(s.ClosedAt)
	return &s, nil
}

func (r *sessionRepo) Save(_ context.Context, session *entity.CashSession) error {
	if r.readOnly {
		return errReadOnly
	}
	s := *session
	s.ClosedAt = copyTime(session.ClosedAt)
	r.st.sessions[session.Key()] = s
	return nil
}

func (r *sessionRepo) CreateSnapshot(_ context.Context, snapshot *entity.ClosingSnapshot) error {
	if r.readOnly {
		return errReadOnly
	}
	key := snapshot.Key()
	if _, ok := r.st.snapshots[key]; ok {
		return fmt.Errorf("memory: cierre %s duplicado", key)
	}
	r.st.snapshots[key] = copySnapshot(snapshot)
	return nil
}

func (r *sessionRepo) GetSnapshot(_ context.Context, key entity.SessionKey) (*entity.ClosingSnapshot, error) {
	s, ok := r.st.snapshots[key]
	if !ok {
		return nil, nil
	}
	c := copySnapshot(&s)
	return &c, nil
}

func (r *sessionRepo) ListSnapshots(_ context.Context, terminalID string, limit, offset int) ([]*entity.ClosingSnapshot, error) {
	var all []*entity.ClosingSnapshot
	for key, s := range r.st.snapshots {
		if key.TerminalID != terminalID {
			continue
		}
		c := copySnapshot(&s)
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date > all[j].Date })
	if offset >= len(all) {
		return []*entity.ClosingSnapshot{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
