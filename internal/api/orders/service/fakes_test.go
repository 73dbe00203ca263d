package ordersvc

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	orderstore "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/store"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
	"github.com/orimhanre/distrinaranjos-sub004/internal/utility"
)

// In-memory store fakes. Each fake keeps documents in maps and lets tests
// inject failures per operation through the errs map, keyed by operation name
// (optionally "op:argument").

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]ordermodels.ClientProfile
	raw      map[string]bson.M
	errs     map[string]error
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: map[string]ordermodels.ClientProfile{},
		raw:      map[string]bson.M{},
		errs:     map[string]error{},
	}
}

func (f *fakeProfileStore) fail(op string) error {
	return f.errs[op]
}

func (f *fakeProfileStore) Get(ctx context.Context, email string) (ordermodels.ClientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("get"); err != nil {
		return ordermodels.ClientProfile{}, err
	}
	p, ok := f.profiles[strings.ToLower(email)]
	if !ok {
		return ordermodels.ClientProfile{}, common.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileStore) GetRaw(ctx context.Context, email string) (bson.M, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("getRaw"); err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	if raw, ok := f.raw[email]; ok {
		return raw, nil
	}
	p, ok := f.profiles[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	m, err := utility.ToMap(p)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (f *fakeProfileStore) Replace(ctx context.Context, profile ordermodels.ClientProfile) (ordermodels.ClientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("replace"); err != nil {
		return ordermodels.ClientProfile{}, err
	}
	email := strings.ToLower(profile.Email)
	profile.Email = email
	f.profiles[email] = profile
	delete(f.raw, email)
	return profile, nil
}

func (f *fakeProfileStore) Patch(ctx context.Context, email string, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("patch"); err != nil {
		return err
	}
	email = strings.ToLower(email)
	p, ok := f.profiles[email]
	if !ok {
		return common.ErrNotFound
	}
	if v, ok := fields["orders"]; ok {
		switch orders := v.(type) {
		case []ordermodels.OrderSnapshot:
			p.Orders = orders
		case nil:
			p.Orders = nil
		}
	}
	f.profiles[email] = p
	return nil
}

func (f *fakeProfileStore) Delete(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("delete"); err != nil {
		return err
	}
	email = strings.ToLower(email)
	if _, ok := f.profiles[email]; !ok {
		return common.ErrNotFound
	}
	delete(f.profiles, email)
	delete(f.raw, email)
	return nil
}

func (f *fakeProfileStore) FindByField(ctx context.Context, field string, value interface{}) ([]ordermodels.ClientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("findByField:" + field); err != nil {
		return nil, err
	}
	var out []ordermodels.ClientProfile
	for _, p := range f.profiles {
		if field == "externalId" && p.ExternalID == value {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileStore) ListLegacy(ctx context.Context) ([]ordermodels.ClientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("listLegacy"); err != nil {
		return nil, err
	}
	var out []ordermodels.ClientProfile
	for email, p := range f.profiles {
		if p.IsLegacy() {
			out = append(out, p)
			continue
		}
		if raw, ok := f.raw[email]; ok {
			if orders, ok := raw["orders"].([]interface{}); ok && len(orders) > 0 {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type fakeOrderStore struct {
	mu      sync.Mutex
	records map[ordermodels.OrderID]ordermodels.OrderRecord
	errs    map[string]error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		records: map[ordermodels.OrderID]ordermodels.OrderRecord{},
		errs:    map[string]error{},
	}
}

func (f *fakeOrderStore) fail(op string) error {
	return f.errs[op]
}

func (f *fakeOrderStore) key(id ordermodels.OrderID) ordermodels.OrderID {
	id.ClientEmail = strings.ToLower(id.ClientEmail)
	return id
}

func (f *fakeOrderStore) Get(ctx context.Context, id ordermodels.OrderID) (ordermodels.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[f.key(id)]
	if !ok {
		return ordermodels.OrderRecord{}, common.ErrNotFound
	}
	return r, nil
}

func (f *fakeOrderStore) ListByClient(ctx context.Context, email string) ([]ordermodels.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("listByClient"); err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	var out []ordermodels.OrderRecord
	for id, r := range f.records {
		if id.ClientEmail == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) FindByTokenAlias(ctx context.Context, token string) ([]ordermodels.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("findByTokenAlias"); err != nil {
		return nil, err
	}
	var out []ordermodels.OrderRecord
	for _, r := range f.records {
		if r.OrderToken == token || (r.InvoiceNumber != "" && r.InvoiceNumber == token) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) Insert(ctx context.Context, record ordermodels.OrderRecord) (ordermodels.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("insert"); err != nil {
		return ordermodels.OrderRecord{}, err
	}
	record.ClientEmail = strings.ToLower(record.ClientEmail)
	key := f.key(record.OrderID())
	if _, exists := f.records[key]; exists {
		return ordermodels.OrderRecord{}, common.ErrDuplicate
	}
	f.records[key] = record
	return record, nil
}

func (f *fakeOrderStore) Upsert(ctx context.Context, record ordermodels.OrderRecord) (ordermodels.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("upsert"); err != nil {
		return ordermodels.OrderRecord{}, err
	}
	record.ClientEmail = strings.ToLower(record.ClientEmail)
	f.records[f.key(record.OrderID())] = record
	return record, nil
}

// Patch interprets the same update documents buildUpdate produces.
func (f *fakeOrderStore) Patch(ctx context.Context, id ordermodels.OrderID, fields bson.M) (ordermodels.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("patch"); err != nil {
		return ordermodels.OrderRecord{}, err
	}
	key := f.key(id)
	r, ok := f.records[key]
	if !ok {
		return ordermodels.OrderRecord{}, common.ErrNotFound
	}

	if set, ok := fields["$set"].(bson.M); ok {
		for k, v := range set {
			switch k {
			case "status":
				r.Status = v.(ordermodels.OrderStatus)
			case "paymentStatus":
				r.PaymentStatus = v.(ordermodels.PaymentStatus)
			case "paymentMethod":
				r.PaymentMethod = v.(string)
			case "tracking.number":
				r.Tracking.Number = v.(string)
			case "tracking.courier":
				r.Tracking.Courier = v.(string)
			case "documentUrl":
				r.DocumentURL = v.(string)
			case "lastUpdated":
				r.LastUpdated = v.(int64)
			case "adminMessages.$[].isRead":
				for i := range r.AdminMessages {
					r.AdminMessages[i].IsRead = v.(bool)
				}
			}
		}
	}
	if push, ok := fields["$push"].(bson.M); ok {
		if msg, ok := push["adminMessages"].(ordermodels.AdminMessage); ok {
			r.AdminMessages = append(r.AdminMessages, msg)
		}
	}

	f.records[key] = r
	return r, nil
}

func (f *fakeOrderStore) Delete(ctx context.Context, id ordermodels.OrderID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("delete"); err != nil {
		return err
	}
	key := f.key(id)
	if _, ok := f.records[key]; !ok {
		return common.ErrNotFound
	}
	delete(f.records, key)
	return nil
}

func (f *fakeOrderStore) FindByField(ctx context.Context, field string, value interface{}) ([]ordermodels.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("findByField:" + field); err != nil {
		return nil, err
	}
	var out []ordermodels.OrderRecord
	for _, r := range f.records {
		if field == "clientEmail" && r.ClientEmail == value {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) DeleteByField(ctx context.Context, field string, value interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("deleteByField:" + field); err != nil {
		return 0, err
	}
	var n int64
	for id, r := range f.records {
		if field == "clientEmail" && r.ClientEmail == value {
			delete(f.records, id)
			n++
		}
	}
	return n, nil
}

type fakeArchiveStore struct {
	mu      sync.Mutex
	entries map[string]ordermodels.ArchivedOrder
	errs    map[string]error
}

func newFakeArchiveStore() *fakeArchiveStore {
	return &fakeArchiveStore{
		entries: map[string]ordermodels.ArchivedOrder{},
		errs:    map[string]error{},
	}
}

func (f *fakeArchiveStore) Get(ctx context.Context, orderID string) (ordermodels.ArchivedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.entries[orderID]
	if !ok {
		return ordermodels.ArchivedOrder{}, common.ErrNotFound
	}
	return a, nil
}

func (f *fakeArchiveStore) Insert(ctx context.Context, archived ordermodels.ArchivedOrder) (ordermodels.ArchivedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["insert"]; err != nil {
		return ordermodels.ArchivedOrder{}, err
	}
	f.entries[archived.OrderID] = archived
	return archived, nil
}

func (f *fakeArchiveStore) Delete(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["delete"]; err != nil {
		return err
	}
	if _, ok := f.entries[orderID]; !ok {
		return common.ErrNotFound
	}
	delete(f.entries, orderID)
	return nil
}

func (f *fakeArchiveStore) ListExpired(ctx context.Context, now int64) ([]ordermodels.ArchivedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["listExpired"]; err != nil {
		return nil, err
	}
	var out []ordermodels.ArchivedOrder
	for _, a := range f.entries {
		if a.RetentionDeadline <= now {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeArchiveStore) FindByField(ctx context.Context, field string, value interface{}) ([]ordermodels.ArchivedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["findByField:"+field]; err != nil {
		return nil, err
	}
	var out []ordermodels.ArchivedOrder
	for _, a := range f.entries {
		if field == "order.clientEmail" && a.Order.ClientEmail == value {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens []ordermodels.DeviceToken
	errs   map[string]error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{errs: map[string]error{}}
}

func (f *fakeTokenStore) ListByEmail(ctx context.Context, email string) ([]ordermodels.DeviceToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["listByEmail"]; err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	var out []ordermodels.DeviceToken
	for _, t := range f.tokens {
		if t.Email == email {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTokenStore) Register(ctx context.Context, token ordermodels.DeviceToken) (ordermodels.DeviceToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["register"]; err != nil {
		return ordermodels.DeviceToken{}, err
	}
	token.Email = strings.ToLower(token.Email)
	f.tokens = append(f.tokens, token)
	return token, nil
}

func (f *fakeTokenStore) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["deleteTokens"]; err != nil {
		return 0, err
	}
	dead := map[string]bool{}
	for _, t := range tokens {
		dead[t] = true
	}
	var kept []ordermodels.DeviceToken
	var n int64
	for _, t := range f.tokens {
		if dead[t.Token] {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.tokens = kept
	return n, nil
}

func (f *fakeTokenStore) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["deleteByEmail"]; err != nil {
		return 0, err
	}
	email = strings.ToLower(email)
	var kept []ordermodels.DeviceToken
	var n int64
	for _, t := range f.tokens {
		if t.Email == email {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.tokens = kept
	return n, nil
}

type fakeStores struct {
	store    *orderstore.RecordStore
	profiles *fakeProfileStore
	orders   *fakeOrderStore
	archive  *fakeArchiveStore
	tokens   *fakeTokenStore
}

func newFakeStores() *fakeStores {
	profiles := newFakeProfileStore()
	orders := newFakeOrderStore()
	archive := newFakeArchiveStore()
	tokens := newFakeTokenStore()
	return &fakeStores{
		store: &orderstore.RecordStore{
			Env:      "test",
			Profiles: profiles,
			Orders:   orders,
			Archive:  archive,
			Tokens:   tokens,
		},
		profiles: profiles,
		orders:   orders,
		archive:  archive,
		tokens:   tokens,
	}
}
