package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
	"github.com/sirpyerre/transactions-api/internal/core/service"
)

// memUserRepo is an in-memory ports.UserRepository.
type memUserRepo struct {
	mu      sync.Mutex
	users   map[int64]*domain.User
	nextID  int64
	claimed bool
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.nextID++
	cp := *u
	cp.ID = r.nextID
	r.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) PromoteBootstrapAdmin(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimed {
		return false, nil
	}
	for otherID := range r.users {
		if otherID < id {
			return false, nil
		}
	}
	r.claimed = true
	r.users[id].Role = domain.RoleAdmin
	return true, nil
}

// memTxRepo is an in-memory ports.TransactionRepository.
type memTxRepo struct {
	mu     sync.Mutex
	txs    map[int64]*domain.Transaction
	nextID int64
}

func (r *memTxRepo) Create(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	cp := *tx
	cp.ID = r.nextID
	r.txs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memTxRepo) FindByID(_ context.Context, id int64) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *memTxRepo) List(_ context.Context, f ports.TransactionFilter) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transaction
	for _, tx := range r.txs {
		if f.OwnerID != nil && tx.OwnerID != *f.OwnerID {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memTxRepo) Update(_ context.Context, id int64, p domain.TransactionPatch) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Currency != nil {
		tx.Currency = *p.Currency
	}
	if p.Description != nil {
		tx.Description = p.Description
	}
	cp := *tx
	return &cp, nil
}

func (r *memTxRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txs[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(r.txs, id)
	return nil
}

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()
	tokens := service.NewJWTTokenService("router-test-secret", 30*time.Minute)
	users := &memUserRepo{users: map[int64]*domain.User{}}
	txs := &memTxRepo{txs: map[int64]*domain.Transaction{}}

	return NewRouter(Dependencies{
		AuthService:        service.NewAuthService(users, nil, service.NewBcryptHasher(bcrypt.MinCost), tokens, log),
		TransactionService: service.NewTransactionService(txs, log),
		Tokens:             tokens,
		Logger:             log,
	})
}

func do(t *testing.T, e *echo.Echo, method, target, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	return do(t, e, method, target, token, echo.MIMEApplicationJSON, body)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int, detail string) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
	if detail != "" {
		if got := decode(t, rec)["detail"]; got != detail {
			t.Fatalf("expected detail %q, got %v", detail, got)
		}
	}
}

func registerAndLogin(t *testing.T, e *echo.Echo, email string) (string, map[string]any) {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/register", "", `{"email":"`+email+`","password":"password123"}`)
	expect(t, rec, http.StatusCreated, "")
	user := decode(t, rec)

	form := url.Values{"username": {email}, "password": {"password123"}}
	rec = do(t, e, http.MethodPost, "/login", "", echo.MIMEApplicationForm, form.Encode())
	expect(t, rec, http.StatusOK, "")
	resp := decode(t, rec)
	if resp["token_type"] != "bearer" {
		t.Fatalf("unexpected token type: %v", resp["token_type"])
	}
	return resp["access_token"].(string), user
}

func TestRouter_Liveness(t *testing.T) {
	e := newTestRouter(t)
	rec := do(t, e, http.MethodGet, "/", "", "", "")
	expect(t, rec, http.StatusOK, "")
	if decode(t, rec)["status"] != "ok" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_RegistrationAndRoles(t *testing.T) {
	e := newTestRouter(t)

	_, first := registerAndLogin(t, e, "admin@example.com")
	if first["role"] != "admin" {
		t.Fatalf("expected first user to be admin, got %v", first["role"])
	}
	_, second := registerAndLogin(t, e, "user@example.com")
	if second["role"] != "user" {
		t.Fatalf("expected second user to be user, got %v", second["role"])
	}

	rec := doJSON(t, e, http.MethodPost, "/register", "", `{"email":"user@example.com","password":"password123"}`)
	expect(t, rec, http.StatusBadRequest, "Email already registered")

	rec = doJSON(t, e, http.MethodPost, "/register", "", `{"email":"nope","password":"password123"}`)
	expect(t, rec, http.StatusBadRequest, "")
}

func TestRouter_LoginFailure(t *testing.T) {
	e := newTestRouter(t)
	registerAndLogin(t, e, "alice@example.com")

	form := url.Values{"username": {"alice@example.com"}, "password": {"wrong-password"}}
	rec := do(t, e, http.MethodPost, "/login", "", echo.MIMEApplicationForm, form.Encode())
	expect(t, rec, http.StatusBadRequest, "Incorrect email or password")
}

func TestRouter_Unauthenticated(t *testing.T) {
	e := newTestRouter(t)

	rec := do(t, e, http.MethodGet, "/me", "", "", "")
	expect(t, rec, http.StatusUnauthorized, "")
	if rec.Header().Get(echo.HeaderWWWAuthenticate) != "Bearer" {
		t.Fatalf("expected WWW-Authenticate: Bearer header")
	}

	rec = do(t, e, http.MethodGet, "/transactions", "not-a-token", "", "")
	expect(t, rec, http.StatusUnauthorized, "Could not validate credentials")
}

func TestRouter_Me(t *testing.T) {
	e := newTestRouter(t)
	token, _ := registerAndLogin(t, e, "alice@example.com")

	rec := do(t, e, http.MethodGet, "/me", token, "", "")
	expect(t, rec, http.StatusOK, "")
	me := decode(t, rec)
	if me["email"] != "alice@example.com" || me["role"] != "admin" {
		t.Fatalf("unexpected profile: %+v", me)
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Fatalf("password hash leaked")
	}
}

func TestRouter_TransactionLifecycle(t *testing.T) {
	e := newTestRouter(t)
	adminToken, _ := registerAndLogin(t, e, "admin@example.com")
	aliceToken, _ := registerAndLogin(t, e, "alice@example.com")
	bobToken, _ := registerAndLogin(t, e, "bob@example.com")

	rec := doJSON(t, e, http.MethodPost, "/transactions", aliceToken,
		`{"amount":25.5,"currency":"USD","description":"<b>Lunch</b><script>x</script>"}`)
	expect(t, rec, http.StatusCreated, "")
	created := decode(t, rec)
	if created["description"] != "Lunchx" {
		t.Fatalf("expected sanitized description, got %v", created["description"])
	}
	path := "/transactions/" + jsonNumber(created["id"])

	rec = doJSON(t, e, http.MethodPost, "/transactions", aliceToken, `{"amount":-1,"currency":"usd"}`)
	expect(t, rec, http.StatusBadRequest, "")

	expect(t, do(t, e, http.MethodGet, path, aliceToken, "", ""), http.StatusOK, "")
	expect(t, do(t, e, http.MethodGet, path, bobToken, "", ""), http.StatusForbidden, "Not permitted")
	expect(t, do(t, e, http.MethodGet, path, adminToken, "", ""), http.StatusOK, "")
	expect(t, do(t, e, http.MethodGet, "/transactions/999", bobToken, "", ""), http.StatusNotFound, "Transaction not found")
	expect(t, do(t, e, http.MethodGet, "/transactions/abc", bobToken, "", ""), http.StatusBadRequest, "invalid transaction id")

	rec = doJSON(t, e, http.MethodPut, path, bobToken, `{"amount":1}`)
	expect(t, rec, http.StatusForbidden, "Not permitted")

	rec = doJSON(t, e, http.MethodPut, path, aliceToken, `{"amount":30}`)
	expect(t, rec, http.StatusOK, "")
	updated := decode(t, rec)
	if updated["amount"] != float64(30) || updated["currency"] != "USD" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	rec = do(t, e, http.MethodGet, "/transactions", bobToken, "", "")
	expect(t, rec, http.StatusOK, "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list for bob, got %s", rec.Body.String())
	}

	expect(t, do(t, e, http.MethodDelete, path, bobToken, "", ""), http.StatusForbidden, "Not permitted")
	expect(t, do(t, e, http.MethodDelete, path, adminToken, "", ""), http.StatusNoContent, "")
	expect(t, do(t, e, http.MethodGet, path, aliceToken, "", ""), http.StatusNotFound, "Transaction not found")
}

func TestRouter_UnknownRouteIsNotFound(t *testing.T) {
	e := newTestRouter(t)
	expect(t, do(t, e, http.MethodGet, "/nope", "", "", ""), http.StatusNotFound, "")
}

func TestRouter_Metrics(t *testing.T) {
	e := newTestRouter(t)
	do(t, e, http.MethodGet, "/", "", "", "")

	rec := do(t, e, http.MethodGet, "/metrics", "", "", "")
	expect(t, rec, http.StatusOK, "")
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected request metrics in output")
	}
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
