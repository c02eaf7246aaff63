// Package store hands out one isolated catalog and ledger per profile.
package store

import (
	"sync"

	"go-credit-inventory/internal/repository"
	"go-credit-inventory/internal/service"
	"go-credit-inventory/pkg/database"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store is the catalog and ledger of a single profile
type Store struct {
	Username  string
	DB        *gorm.DB
	Catalog   service.CatalogService
	Ledger    service.LedgerService
	Dashboard service.DashboardService
	Export    service.ExportService
}

// Backend opens and removes the database behind a profile store
type Backend interface {
	Open(username string) (*gorm.DB, error)
	Close(db *gorm.DB) error
	Drop(username string) error
}

var _ Backend = (*database.Opener)(nil)

// Manager caches open stores by username. Stores never share state.
type Manager struct {
	backend  Backend
	profiles repository.ProfileRepository
	events   service.Publisher

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(backend Backend, profiles repository.ProfileRepository, events service.Publisher) *Manager {
	if events == nil {
		events = service.NopPublisher
	}
	return &Manager{
		backend:  backend,
		profiles: profiles,
		events:   events,
		stores:   make(map[string]*Store),
	}
}

// Open returns the store of a registered profile, creating its tables on first use
func (m *Manager) Open(username string) (*Store, error) {
	username = service.NormalizeUsername(username)

	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.stores[username]; ok {
		return st, nil
	}

	if _, err := m.profiles.FindByUsername(username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &service.NotFoundError{Entity: "profile", ID: username}
		}
		return nil, &service.StorageError{Op: "open store", Err: err}
	}

	db, err := m.backend.Open(username)
	if err != nil {
		return nil, &service.StorageError{Op: "open store", Err: err}
	}
	if err := repository.MigrateLedger(db); err != nil {
		_ = m.backend.Close(db)
		return nil, &service.StorageError{Op: "open store", Err: err}
	}

	st := newStore(username, db, m.events)
	m.stores[username] = st
	log.WithField("profile", username).Info("profile store opened")
	return st, nil
}

func newStore(username string, db *gorm.DB, events service.Publisher) *Store {
	productRepo := repository.NewProductRepo(db)
	creditRepo := repository.NewCreditRepo(db)

	ledger := service.NewLedgerService(creditRepo, productRepo, db, events, username)
	dashboard := service.NewDashboardService(productRepo, creditRepo)

	return &Store{
		Username:  username,
		DB:        db,
		Catalog:   service.NewCatalogService(productRepo, db, events, username),
		Ledger:    ledger,
		Dashboard: dashboard,
		Export:    service.NewExportService(productRepo, ledger, dashboard),
	}
}

// Close releases an open store. Closing a store that is not open is a no-op.
func (m *Manager) Close(username string) error {
	username = service.NormalizeUsername(username)

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked(username)
}

func (m *Manager) closeLocked(username string) error {
	st, ok := m.stores[username]
	if !ok {
		return nil
	}
	delete(m.stores, username)
	return errors.Wrapf(m.backend.Close(st.DB), "close store %s", username)
}

// Drop closes the store and deletes all of its data
func (m *Manager) Drop(username string) error {
	username = service.NormalizeUsername(username)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closeLocked(username); err != nil {
		return err
	}
	if err := m.backend.Drop(username); err != nil {
		return err
	}
	log.WithField("profile", username).Info("profile store dropped")
	return nil
}

// CloseAll closes every open store and returns the first error
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error
	for username := range m.stores {
		if err := m.closeLocked(username); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenCount reports how many stores are currently open
func (m *Manager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}
