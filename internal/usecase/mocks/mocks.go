package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank-io/corebank/internal/domain"
	"github.com/corebank-io/corebank/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	CreateTxFunc          func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByNumberFunc       func(ctx context.Context, number string) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalancesFunc    func(ctx context.Context, tx usecase.Transaction, account *domain.Account, expectedVersion int64) error
	UpdateStatusFunc      func(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
	ListByCustomerFunc    func(ctx context.Context, customerID string, limit, offset int) ([]*domain.Account, error)
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Put seeds the in-memory store directly.
func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, number)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Number == number {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, account *domain.Account, expectedVersion int64) error {
	if m.UpdateBalancesFunc != nil {
		return m.UpdateBalancesFunc(ctx, tx, account, expectedVersion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	stored.CurrentBalance = account.CurrentBalance
	stored.AvailableBalance = account.AvailableBalance
	stored.LastTransactionAt = account.LastTransactionAt
	stored.UpdatedAt = account.UpdatedAt
	stored.Version++
	return nil
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Status = status
		acc.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrAccountNotFound
}

func (m *MockAccountRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Account, error) {
	if m.ListByCustomerFunc != nil {
		return m.ListByCustomerFunc(ctx, customerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.CustomerID == customerID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset > 0 {
		return nil, nil
	}
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer

	CreateFunc            func(ctx context.Context, customer *domain.Customer) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Customer, error)
	GetSystemCustomerFunc func(ctx context.Context) (*domain.Customer, error)
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]*domain.Customer),
	}
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, customer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID] = customer
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.customers[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCustomerNotFound
}

func (m *MockCustomerRepository) GetSystemCustomer(ctx context.Context) (*domain.Customer, error) {
	if m.GetSystemCustomerFunc != nil {
		return m.GetSystemCustomerFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.customers {
		if c.System {
			return c, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

// MockTransferRepository is a mock implementation of TransferRepository.
type MockTransferRepository struct {
	mu        sync.RWMutex
	transfers map[string]*domain.Transfer

	CreateFunc             func(ctx context.Context, transfer *domain.Transfer) error
	CreateTxFunc           func(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.Transfer, error)
	UpdateStatusFunc       func(ctx context.Context, id string, status domain.TransferStatus, failureReason string, updatedAt time.Time) error
	UpdateStatusTxFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransferStatus, failureReason string, updatedAt time.Time) error
	ExistsCompensationFunc func(ctx context.Context, originalTransferID string) (bool, error)
	ListDueScheduledFunc   func(ctx context.Context, asOf time.Time, limit int) ([]*domain.Transfer, error)
	ListByAccountFunc      func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{
		transfers: make(map[string]*domain.Transfer),
	}
}

func (m *MockTransferRepository) Put(transfer *domain.Transfer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = transfer
}

func (m *MockTransferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *MockTransferRepository) CreateTx(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, transfer)
	}
	return m.Create(ctx, transfer)
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transfers[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransferNotFound
}

func (m *MockTransferRepository) UpdateStatus(ctx context.Context, id string, status domain.TransferStatus, failureReason string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, failureReason, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.transfers[id]; ok {
		t.Status = status
		t.FailureReason = failureReason
		t.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrTransferNotFound
}

func (m *MockTransferRepository) UpdateStatusTx(ctx context.Context, tx usecase.Transaction, id string, status domain.TransferStatus, failureReason string, updatedAt time.Time) error {
	if m.UpdateStatusTxFunc != nil {
		return m.UpdateStatusTxFunc(ctx, tx, id, status, failureReason, updatedAt)
	}
	return m.UpdateStatus(ctx, id, status, failureReason, updatedAt)
}

func (m *MockTransferRepository) ExistsCompensation(ctx context.Context, originalTransferID string) (bool, error) {
	if m.ExistsCompensationFunc != nil {
		return m.ExistsCompensationFunc(ctx, originalTransferID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transfers {
		if t.Type == domain.TransferTypeCompensation && t.ReferenceID == originalTransferID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockTransferRepository) ListDueScheduled(ctx context.Context, asOf time.Time, limit int) ([]*domain.Transfer, error) {
	if m.ListDueScheduledFunc != nil {
		return m.ListDueScheduledFunc(ctx, asOf, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []*domain.Transfer
	for _, t := range m.transfers {
		if t.Status == domain.TransferStatusScheduled && t.ScheduledAt != nil && !t.ScheduledAt.After(asOf) {
			due = append(due, t)
		}
	}
	return due, nil
}

func (m *MockTransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transfers []*domain.Transfer
	for _, t := range m.transfers {
		if t.SourceAccountID == accountID || t.DestinationAccountID == accountID {
			transfers = append(transfers, t)
		}
	}
	return transfers, nil
}

// MockJournalRepository is a mock implementation of JournalRepository.
type MockJournalRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry

	CreateEntryFunc            func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	GetEntryByIDFunc           func(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListEntriesByReferenceFunc func(ctx context.Context, reference string) ([]*domain.JournalEntry, error)
	SumByAccountAndTypeFunc    func(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{
		entries: make(map[string]*domain.JournalEntry),
	}
}

func (m *MockJournalRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateEntryFunc != nil {
		return m.CreateEntryFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockJournalRepository) GetEntryByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	if m.GetEntryByIDFunc != nil {
		return m.GetEntryByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockJournalRepository) ListEntriesByReference(ctx context.Context, reference string) ([]*domain.JournalEntry, error) {
	if m.ListEntriesByReferenceFunc != nil {
		return m.ListEntriesByReferenceFunc(ctx, reference)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.JournalEntry
	for _, e := range m.entries {
		if e.Reference == reference {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockJournalRepository) SumByAccountAndType(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumByAccountAndTypeFunc != nil {
		return m.SumByAccountAndTypeFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	debits := decimal.Zero
	credits := decimal.Zero
	for _, e := range m.entries {
		for _, line := range e.Lines {
			if line.AccountID != accountID {
				continue
			}
			if line.Type == domain.EntryTypeDebit {
				debits = debits.Add(line.Amount)
			} else {
				credits = credits.Add(line.Amount)
			}
		}
	}
	return debits, credits, nil
}

// Entries returns all stored journal entries.
func (m *MockJournalRepository) Entries() []*domain.JournalEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.JournalEntry
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	return entries
}

// MockTransactionLogRepository is a mock implementation of
// TransactionLogRepository.
type MockTransactionLogRepository struct {
	mu      sync.RWMutex
	entries []*domain.TransactionLogEntry
	byRef   map[string]*domain.TransactionLogEntry

	CreateFunc                func(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionLogEntry) error
	ExistsByReferenceFunc     func(ctx context.Context, referenceID string) (bool, error)
	GetByReferenceFunc        func(ctx context.Context, referenceID string) (*domain.TransactionLogEntry, error)
	ListByAccountFunc         func(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionLogEntry, error)
	ListByAccountAndRangeFunc func(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionLogEntry, error)
}

func NewMockTransactionLogRepository() *MockTransactionLogRepository {
	return &MockTransactionLogRepository{
		byRef: make(map[string]*domain.TransactionLogEntry),
	}
}

func (m *MockTransactionLogRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionLogEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byRef[entry.ReferenceID]; ok {
		return domain.ErrDuplicateOperation
	}
	m.entries = append(m.entries, entry)
	m.byRef[entry.ReferenceID] = entry
	return nil
}

func (m *MockTransactionLogRepository) ExistsByReference(ctx context.Context, referenceID string) (bool, error) {
	if m.ExistsByReferenceFunc != nil {
		return m.ExistsByReferenceFunc(ctx, referenceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byRef[referenceID]
	return ok, nil
}

func (m *MockTransactionLogRepository) GetByReference(ctx context.Context, referenceID string) (*domain.TransactionLogEntry, error) {
	if m.GetByReferenceFunc != nil {
		return m.GetByReferenceFunc(ctx, referenceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.byRef[referenceID]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockTransactionLogRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionLogEntry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.TransactionLogEntry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockTransactionLogRepository) ListByAccountAndRange(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionLogEntry, error) {
	if m.ListByAccountAndRangeFunc != nil {
		return m.ListByAccountAndRangeFunc(ctx, accountID, from, to, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.TransactionLogEntry
	for _, e := range m.entries {
		if e.AccountID == accountID && !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// AllEntries returns all stored log entries.
func (m *MockTransactionLogRepository) AllEntries() []*domain.TransactionLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.TransactionLogEntry(nil), m.entries...)
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
	ListFunc   func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...), nil
}

// AllLogs returns all stored audit logs.
func (m *MockAuditRepository) AllLogs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...)
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockRetrier is a pass-through Retrier.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator generates deterministic sequential IDs.
type MockIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{prefix: "id-"}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return m.prefix + itoa(m.next)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Has reports whether a key is present.
func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// MockIdempotencyStore is an in-memory IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.Mutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{data: make(map[string][]byte)}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response == nil {
		response = []byte("processing")
	}
	m.data[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
