package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"tourbooking/internal/entity"
	"tourbooking/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entity.Account
	validate *validator.Validate
	saveErr  error
	saves    int

	// afterResetLookup runs once a reset lookup has matched, outside the lock.
	afterResetLookup func()
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[uuid.UUID]*entity.Account),
		validate: validator.New(),
	}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	if err := account.Validate(r.validate); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	stored := *account
	r.accounts[account.ID] = &stored
	return nil
}

func (r *fakeAccountRepo) FindByID(ctx context.Context, id uuid.UUID, opts ...repository.ReadOption) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok || !account.Active {
		return nil, nil
	}
	found := *account
	return &found, nil
}

func (r *fakeAccountRepo) FindByEmail(ctx context.Context, email string, opts ...repository.ReadOption) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email && account.Active {
			found := *account
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.Account, error) {
	found := r.findByResetToken(tokenHash, now)
	if found != nil && r.afterResetLookup != nil {
		r.afterResetLookup()
	}
	return found, nil
}

func (r *fakeAccountRepo) findByResetToken(tokenHash string, now time.Time) *entity.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Active && openResetWindow(account, tokenHash, now) {
			found := *account
			return &found
		}
	}
	return nil
}

func openResetWindow(account *entity.Account, tokenHash string, now time.Time) bool {
	if account.PasswordResetTokenHash == nil || account.PasswordResetExpiresAt == nil {
		return false
	}
	return *account.PasswordResetTokenHash == tokenHash && account.PasswordResetExpiresAt.After(now)
}

func (r *fakeAccountRepo) RedeemResetToken(ctx context.Context, account *entity.Account, tokenHash string, now time.Time) error {
	if err := account.Validate(r.validate); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.accounts[account.ID]
	if !ok || !existing.Active || !openResetWindow(existing, tokenHash, now) {
		return repository.ErrResetWindowClosed
	}
	existing.PasswordHash = account.PasswordHash
	existing.PasswordChangedAt = account.PasswordChangedAt
	existing.ClearResetToken()
	return nil
}

func (r *fakeAccountRepo) Save(ctx context.Context, account *entity.Account, opts repository.SaveOptions) error {
	if opts.Validate {
		if err := account.Validate(r.validate); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	for id, existing := range r.accounts {
		if id != account.ID && existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}
	stored := *account
	if stored.PasswordHash == "" {
		if existing, ok := r.accounts[account.ID]; ok {
			stored.PasswordHash = existing.PasswordHash
		}
	}
	r.accounts[account.ID] = &stored
	return nil
}

func (r *fakeAccountRepo) List(ctx context.Context, limit, offset int) ([]entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts := make([]entity.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		if account.Active {
			accounts = append(accounts, *account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Email < accounts[j].Email })
	if offset >= len(accounts) {
		return nil, nil
	}
	accounts = accounts[offset:]
	if limit > 0 && limit < len(accounts) {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

// stored returns the raw record, including inactive accounts.
func (r *fakeAccountRepo) stored(id uuid.UUID) *entity.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil
	}
	copied := *account
	return &copied
}

type fakeSecurityLogRepo struct {
	mu   sync.Mutex
	logs []entity.SecurityLog
}

func (r *fakeSecurityLogRepo) Log(ctx context.Context, log *entity.SecurityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeSecurityLogRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]entity.SecurityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var logs []entity.SecurityLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].AccountID != nil && *r.logs[i].AccountID == accountID {
			logs = append(logs, r.logs[i])
		}
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (r *fakeSecurityLogRepo) actions() []entity.SecurityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]entity.SecurityAction, 0, len(r.logs))
	for _, log := range r.logs {
		actions = append(actions, log.Action)
	}
	return actions
}

type sentMessage struct {
	Address string
	Subject string
	Body    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Send(ctx context.Context, address string, subject string, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{Address: address, Subject: subject, Body: body})
	return nil
}

func (n *fakeNotifier) last() (sentMessage, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentMessage{}, false
	}
	return n.sent[len(n.sent)-1], true
}

var errDeliveryFailed = errors.New("smtp unavailable")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
