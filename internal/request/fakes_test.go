package request_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/events"
	"github.com/frahmantamala/uniform-manager/internal/request"
	"github.com/frahmantamala/uniform-manager/internal/role"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/frahmantamala/uniform-manager/internal/stock"
	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for every store the request workflow
// touches. WithinTx snapshots it and restores the snapshot when fn fails.
type fakeStore struct {
	members  map[uuid.UUID]*staff.Staff
	roles    map[uuid.UUID]*role.Role
	items    map[uuid.UUID]*stock.UniformItem
	requests []*request.Request

	staffUpdateErr error
	insertErr      error
	staffUpdates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members: make(map[uuid.UUID]*staff.Staff),
		roles:   make(map[uuid.UUID]*role.Role),
		items:   make(map[uuid.UUID]*stock.UniformItem),
	}
}

func (f *fakeStore) addRole(name string, limit *int64, cooldownDays int64) *role.Role {
	r := &role.Role{ID: uuid.New(), Name: name, UniformLimit: limit, CooldownDays: cooldownDays}
	f.roles[r.ID] = r
	return r
}

func (f *fakeStore) addMember(name string, r *role.Role) *staff.Staff {
	s := &staff.Staff{ID: uuid.New(), Name: name, RoleID: r.ID, RoleName: r.Name, Store: "Jakarta Central"}
	f.members[s.ID] = s
	return s
}

func (f *fakeStore) addItem(name, size string, onHand int64) *stock.UniformItem {
	sz := size
	it := &stock.UniformItem{ID: uuid.New(), Name: name, Size: &sz, EAN: uuid.NewString(), StockOnHand: onHand}
	f.items[it.ID] = it
	return it
}

// record stores a past request directly, bypassing the workflow.
func (f *fakeStore) record(member *staff.Staff, at time.Time, items ...request.Item) {
	f.requests = append(f.requests, &request.Request{
		ID:             uuid.New(),
		TrackingNumber: request.NewTrackingNumber(),
		StaffID:        member.ID,
		Status:         request.StatusRequested,
		CreatedAt:      at,
		UpdatedAt:      at,
		Items:          items,
	})
}

// RequestRepository

func (f *fakeStore) Insert(_ context.Context, r *request.Request) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *r
	cp.ID = uuid.New()
	cp.Items = append([]request.Item(nil), r.Items...)
	f.requests = append(f.requests, &cp)
	r.ID = cp.ID
	return nil
}

func (f *fakeStore) SumRequestedQuantity(_ context.Context, staffID uuid.UUID, since time.Time) (int64, error) {
	var total int64
	for _, r := range f.requests {
		if r.StaffID == staffID && !r.CreatedAt.Before(since) {
			total += r.TotalQuantity()
		}
	}
	return total, nil
}

func (f *fakeStore) find(trackingNumber string) *request.Request {
	for _, r := range f.requests {
		if r.TrackingNumber == trackingNumber {
			return r
		}
	}
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, trackingNumber, status string) error {
	r := f.find(trackingNumber)
	if r == nil {
		return internal.ErrRequestNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeStore) GetStatus(_ context.Context, trackingNumber string) (string, error) {
	r := f.find(trackingNumber)
	if r == nil {
		return "", internal.ErrRequestNotFound
	}
	return r.Status, nil
}

// QueryAPI

func (f *fakeStore) toRecord(r *request.Request) *request.Record {
	member := f.members[r.StaffID]
	rec := &request.Record{
		ID:             r.ID,
		TrackingNumber: r.TrackingNumber,
		Status:         r.Status,
		Reason:         r.Reason,
		CreatedAt:      r.CreatedAt,
		StaffID:        member.ID,
		StaffName:      member.Name,
		RoleName:       member.RoleName,
		Store:          member.Store,
		IsCooldown:     member.IsCooldown,
	}
	for _, it := range r.Items {
		item := f.items[it.UniformItemID]
		rec.Items = append(rec.Items, request.RecordItem{
			UniformItemID: item.ID,
			Name:          item.Name,
			Size:          item.Size,
			Quantity:      it.Quantity,
			StockOnHand:   item.StockOnHand,
		})
	}
	return rec
}

func (f *fakeStore) GetByTrackingNumber(_ context.Context, trackingNumber string) (*request.Record, error) {
	r := f.find(trackingNumber)
	if r == nil {
		return nil, internal.ErrRequestNotFound
	}
	return f.toRecord(r), nil
}

func (f *fakeStore) List(_ context.Context, filter request.ListFilter) ([]*request.Record, error) {
	var matched []*request.Request
	for _, r := range f.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.StaffID != nil && r.StaffID != *filter.StaffID {
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	out := []*request.Record{}
	for i := filter.Offset; i < len(matched) && len(out) < filter.Limit; i++ {
		out = append(out, f.toRecord(matched[i]))
	}
	return out, nil
}

// StaffRepository, RoleRepository, StockRepository

type fakeStaff struct{ *fakeStore }

func (f fakeStaff) GetByID(_ context.Context, id uuid.UUID) (*staff.Staff, error) {
	s, ok := f.members[id]
	if !ok {
		return nil, internal.ErrStaffNotFound
	}
	cp := *s
	return &cp, nil
}

func (f fakeStaff) Update(_ context.Context, id uuid.UUID, u staff.Updates) error {
	if f.staffUpdateErr != nil {
		return f.staffUpdateErr
	}
	s, ok := f.members[id]
	if !ok {
		return internal.ErrStaffNotFound
	}
	s.Apply(u)
	f.staffUpdates++
	return nil
}

type fakeRoles struct{ *fakeStore }

func (f fakeRoles) GetByID(_ context.Context, id uuid.UUID) (*role.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, internal.ErrRoleNotFound
	}
	cp := *r
	return &cp, nil
}

type fakeStock struct{ *fakeStore }

func (f fakeStock) GetByID(_ context.Context, id uuid.UUID) (*stock.UniformItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, internal.ErrUniformItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (f fakeStock) Decrement(_ context.Context, id uuid.UUID, quantity int64) error {
	it, ok := f.items[id]
	if !ok {
		return internal.ErrUniformItemNotFound
	}
	if it.StockOnHand < quantity {
		return internal.ErrInsufficientStock
	}
	it.StockOnHand -= quantity
	return nil
}

// TxManager

func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	members := make(map[uuid.UUID]staff.Staff, len(f.members))
	for id, s := range f.members {
		members[id] = *s
	}
	onHand := make(map[uuid.UUID]int64, len(f.items))
	for id, it := range f.items {
		onHand[id] = it.StockOnHand
	}
	requests := append([]*request.Request(nil), f.requests...)

	if err := fn(ctx); err != nil {
		for id, s := range members {
			restored := s
			f.members[id] = &restored
		}
		for id, qty := range onHand {
			f.items[id].StockOnHand = qty
		}
		f.requests = requests
		return err
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
