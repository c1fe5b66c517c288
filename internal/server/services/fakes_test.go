package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/dbx"
	"github.com/dmitrijs2005/otpauth/internal/logging"
	"github.com/dmitrijs2005/otpauth/internal/server/config"
	"github.com/dmitrijs2005/otpauth/internal/server/models"
	"github.com/dmitrijs2005/otpauth/internal/server/notifier"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/otps"
	"github.com/dmitrijs2005/otpauth/internal/server/repositories/users"
	"github.com/google/uuid"
)

func init() {
	dbx.RetryBaseDelay = time.Millisecond
}

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// --- fake repositories ---

type fakeUsersRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User

	getErr    error
	getErrs   []error
	createErr error
	// raceOnCreate simulates another request inserting the same email
	// between our lookup and our insert.
	raceOnCreate bool
	creates      int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.raceOnCreate {
		f.raceOnCreate = false
		f.byEmail[u.Email] = &models.User{ID: uuid.NewString(), Email: u.Email}
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.creates++
	cp := *u
	cp.ID = uuid.NewString()
	f.byEmail[u.Email] = &cp
	return &cp, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.getErrs) > 0 {
		err := f.getErrs[0]
		f.getErrs = f.getErrs[1:]
		return nil, err
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeOtpsRepo struct {
	mu      sync.Mutex
	records map[string]models.OtpRecord

	upsertErrs []error
	findErr    error
	consumeErr error
	upserts    int
}

func newFakeOtpsRepo() *fakeOtpsRepo {
	return &fakeOtpsRepo{records: map[string]models.OtpRecord{}}
}

func (f *fakeOtpsRepo) Upsert(ctx context.Context, rec *models.OtpRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if len(f.upsertErrs) > 0 {
		err := f.upsertErrs[0]
		f.upsertErrs = f.upsertErrs[1:]
		if err != nil {
			return err
		}
	}
	f.records[rec.Email] = *rec
	return nil
}

func (f *fakeOtpsRepo) Find(ctx context.Context, email string) (*models.OtpRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	rec, ok := f.records[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rec, nil
}

func (f *fakeOtpsRepo) Consume(ctx context.Context, rec *models.OtpRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return false, f.consumeErr
	}
	cur, ok := f.records[rec.Email]
	if !ok || cur.Code != rec.Code || !cur.CreatedAt.Equal(rec.CreatedAt) {
		return false, nil
	}
	delete(f.records, rec.Email)
	return true, nil
}

func (f *fakeOtpsRepo) get(email string) (models.OtpRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[email]
	return rec, ok
}

type fakeTokensRepo struct {
	mu     sync.Mutex
	tokens map[string]models.AuthToken

	createErr error
	findErr   error
	deleteErr error
}

func newFakeTokensRepo() *fakeTokensRepo {
	return &fakeTokensRepo{tokens: map[string]models.AuthToken{}}
}

func (f *fakeTokensRepo) Create(ctx context.Context, t *models.AuthToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[t.Token] = *t
	return nil
}

func (f *fakeTokensRepo) Find(ctx context.Context, token string) (*models.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (f *fakeTokensRepo) DeleteExpired(ctx context.Context, token string, cutoff time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	t, ok := f.tokens[token]
	if !ok || !t.CreatedAt.Before(cutoff) {
		return false, nil
	}
	delete(f.tokens, token)
	return true, nil
}

func (f *fakeTokensRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	o *fakeOtpsRepo
	t *fakeTokensRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), o: newFakeOtpsRepo(), t: newFakeTokensRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Otps(db dbx.DBTX) otps.Repository             { return m.o }
func (m *fakeRepoManager) AuthTokens(db dbx.DBTX) authtokens.Repository { return m.t }

// --- fake notifier ---

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []notifier.Message
	err   error
	block bool
}

func (n *fakeNotifier) Send(ctx context.Context, msg notifier.Message) error {
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *fakeNotifier) last() (notifier.Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return notifier.Message{}, false
	}
	return n.sent[len(n.sent)-1], true
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

// newAuthService builds the service with fakes and a shared fake clock.
func newAuthService(t *testing.T, db *sql.DB, rm *fakeRepoManager, n *fakeNotifier, clock *fakeClock) *AuthService {
	t.Helper()
	s := NewAuthService(db, rm, n, testConfig(), logging.NewNopLogger())
	s.otps.now = clock.Now
	s.tokens.now = clock.Now
	return s
}
