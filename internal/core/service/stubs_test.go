package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/infrastructure/storage/memory"
)

const testStorageBase = "http://backend.test"

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

func signedToken(t *testing.T, sub any) string {
	t.Helper()
	claims := jwt.MapClaims{}
	if sub != nil {
		claims["sub"] = sub
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// ---------------------------------------------------------------------------
// Session store over shared memory storage
// ---------------------------------------------------------------------------

type sharedStorage struct {
	kv  *memory.Storage
	bus *memory.Bus
}

func newSharedStorage() *sharedStorage {
	return &sharedStorage{kv: memory.NewStorage(), bus: memory.NewBus()}
}

// store returns a new SessionStore instance over the shared storage, the
// way a second tab would see it.
func (s *sharedStorage) store() *SessionStore {
	return NewSessionStore(s.kv, s.bus, testStorageBase, zerolog.Nop())
}

func loggedIn(t *testing.T, store *SessionStore, userID string) *domain.Session {
	t.Helper()
	sess := domain.Session{Token: "tok-" + userID, UserID: userID, Name: "User " + userID, Role: domain.RoleUser}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatalf("save session: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return loaded
}

// tornKV applies only the keys listed in lands from a batch and then fails,
// the way a bulk write can stop halfway.
type tornKV struct {
	*memory.Storage
	lands map[string]bool
	err   error
}

func (k *tornKV) SetMany(ctx context.Context, values map[string]string) error {
	if k.err == nil {
		return k.Storage.SetMany(ctx, values)
	}
	part := make(map[string]string)
	for key, v := range values {
		if k.lands[key] {
			part[key] = v
		}
	}
	_ = k.Storage.SetMany(ctx, part)
	return k.err
}

// ---------------------------------------------------------------------------
// Backend stub
// ---------------------------------------------------------------------------

type stubBackend struct {
	mu sync.Mutex

	loginResult *ports.AuthResult
	loginErr    error

	refreshResults []*ports.AuthResult
	refreshErr     error
	refreshCalls   int

	registered  []ports.RegisterInput
	registerErr error

	// raw maps a path to a body; rawErr is returned for every GetRaw when set.
	raw      map[string]string
	rawErr   error
	rawCalls []string

	products map[string]*domain.Product
	cats     []domain.Category

	// expiredTokens are rejected with ErrSessionExpired by authenticated calls.
	expiredTokens map[string]bool

	statusUpdates []string
	deleted       []string
	actionErr     map[string]error

	created    []ports.ProductInput
	edited     map[string]ports.ProductInput
	productErr error

	orders       []ports.CreateOrderInput
	orderErr     error
	orderUpdates []string

	profileUpdates []map[string]string
	profileUser    *domain.User

	publicUsers map[string]*domain.User
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		raw:           make(map[string]string),
		products:      make(map[string]*domain.Product),
		expiredTokens: make(map[string]bool),
		actionErr:     make(map[string]error),
		edited:        make(map[string]ports.ProductInput),
		publicUsers:   make(map[string]*domain.User),
	}
}

var _ ports.Backend = (*stubBackend)(nil)

func (b *stubBackend) checkToken(token string) error {
	if b.expiredTokens[token] {
		return domain.ErrSessionExpired
	}
	return nil
}

func (b *stubBackend) Login(_ context.Context, _, _ string) (*ports.AuthResult, error) {
	return b.loginResult, b.loginErr
}

func (b *stubBackend) Refresh(_ context.Context, _ string) (*ports.AuthResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshCalls++
	if b.refreshErr != nil {
		return nil, b.refreshErr
	}
	if len(b.refreshResults) == 0 {
		return nil, domain.ErrSessionExpired
	}
	res := b.refreshResults[0]
	b.refreshResults = b.refreshResults[1:]
	return res, nil
}

func (b *stubBackend) Register(_ context.Context, in ports.RegisterInput) error {
	b.registered = append(b.registered, in)
	return b.registerErr
}

func (b *stubBackend) GetRaw(_ context.Context, path, token string) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rawCalls = append(b.rawCalls, path)
	if err := b.checkToken(token); err != nil {
		return nil, err
	}
	if b.rawErr != nil {
		return nil, b.rawErr
	}
	body, ok := b.raw[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return json.RawMessage(body), nil
}

func (b *stubBackend) GetPublicProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := b.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (b *stubBackend) ListCategories(context.Context) ([]domain.Category, error) {
	return b.cats, nil
}

func (b *stubBackend) CreateProduct(_ context.Context, token string, in ports.ProductInput) (*domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkToken(token); err != nil {
		return nil, err
	}
	if b.productErr != nil {
		return nil, b.productErr
	}
	b.created = append(b.created, in)
	return &domain.Product{ID: domain.ID(fmt.Sprint(100 + len(b.created))), Name: in.Name, Status: in.Status}, nil
}

func (b *stubBackend) UpdateProduct(_ context.Context, token, id string, in ports.ProductInput) (*domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkToken(token); err != nil {
		return nil, err
	}
	if b.productErr != nil {
		return nil, b.productErr
	}
	b.edited[id] = in
	return &domain.Product{ID: domain.ID(id), Name: in.Name, Status: in.Status}, nil
}

func (b *stubBackend) UpdateProductStatus(_ context.Context, token, id, status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkToken(token); err != nil {
		return err
	}
	if err := b.actionErr[id]; err != nil {
		return err
	}
	b.statusUpdates = append(b.statusUpdates, id+"="+status)
	return nil
}

func (b *stubBackend) DeleteProduct(_ context.Context, token, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkToken(token); err != nil {
		return err
	}
	if err := b.actionErr[id]; err != nil {
		return err
	}
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *stubBackend) CreateOrder(_ context.Context, token string, in ports.CreateOrderInput) (*domain.Order, error) {
	if err := b.checkToken(token); err != nil {
		return nil, err
	}
	b.orders = append(b.orders, in)
	if b.orderErr != nil {
		return nil, b.orderErr
	}
	return &domain.Order{ID: "1", OrderNumber: "ORD-1", Status: domain.OrderStatusPending}, nil
}

func (b *stubBackend) UpdateOrderStatus(_ context.Context, token, id, status string) error {
	if err := b.checkToken(token); err != nil {
		return err
	}
	b.orderUpdates = append(b.orderUpdates, id+"="+status)
	return nil
}

func (b *stubBackend) UpdateProfile(_ context.Context, token string, fields map[string]string) (*domain.User, error) {
	if err := b.checkToken(token); err != nil {
		return nil, err
	}
	b.profileUpdates = append(b.profileUpdates, fields)
	if b.profileUser == nil {
		return &domain.User{}, nil
	}
	u := *b.profileUser
	return &u, nil
}

func (b *stubBackend) GetPublicUser(_ context.Context, username string) (*domain.User, error) {
	u, ok := b.publicUsers[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// ---------------------------------------------------------------------------
// Task runner that runs inline
// ---------------------------------------------------------------------------

type inlineRunner struct{ batches int }

func (r *inlineRunner) Run(ctx context.Context, tasks []ports.Task) []error {
	r.batches++
	errs := make([]error, len(tasks))
	for i, t := range tasks {
		errs[i] = t.Run(ctx)
	}
	return errs
}
