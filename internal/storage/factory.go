package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oticalume/otica-crm/internal/config"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/models"
)

// Store is one user's isolated database handle. The mutex serializes the
// check-then-insert sequences (CPF uniqueness, purchase upsert, contact
// toggle) that the storage engine itself does not guard.
type Store struct {
	UserID string
	DB     *gorm.DB

	mu sync.Mutex
}

func (s *Store) Lock()   { s.mu.Lock() }
func (s *Store) Unlock() { s.mu.Unlock() }

// Factory hands out one Store per normalized user id, cached for the process
// lifetime. Operations against different users never share mutable state or
// files; cross-user queries are not supported.
type Factory struct {
	cfg    *config.Config
	mu     sync.Mutex
	stores map[string]*Store
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg, stores: make(map[string]*Store)}
}

func (f *Factory) Driver() string { return f.cfg.StorageDriver }

// ForUser returns the store for the given user, opening and migrating it on
// first use. An empty or unnormalizable id falls back to the default user.
func (f *Factory) ForUser(userID string) (*Store, error) {
	id := identity.Normalize(userID)
	if id == "" {
		id = identity.DefaultUserID
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if store, ok := f.stores[id]; ok {
		return store, nil
	}

	db, err := f.open(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open store for user %s: %w", id, err)
	}

	if err := db.AutoMigrate(
		&models.Client{},
		&models.Purchase{},
		&models.Contact{},
		&models.Event{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate store for user %s: %w", id, err)
	}

	store := &Store{UserID: id, DB: db}
	f.stores[id] = store
	slog.Info("store opened", "user", id, "driver", f.cfg.StorageDriver)
	return store, nil
}

func (f *Factory) open(id string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch f.cfg.StorageDriver {
	case "memory":
		// Named shared-cache database so every pooled connection sees the
		// same in-memory store. The base path stem keeps factories apart.
		name := filepath.Base(f.cfg.StoragePath)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		dsn := fmt.Sprintf("file:%s-%s?mode=memory&cache=shared", name, id)
		db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, err
		}
		return limitConns(db)

	case "postgres":
		dbname := "crm_" + strings.ReplaceAll(id, "-", "_")
		db, err := gorm.Open(postgres.Open(f.cfg.PostgresDSN(dbname)), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		return db, nil

	case "sqlite", "":
		path := DerivePath(f.cfg.StoragePath, id)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		db, err := gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			return nil, err
		}
		return limitConns(db)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", f.cfg.StorageDriver)
	}
}

func limitConns(db *gorm.DB) (*gorm.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite: one writer, no cross-connection surprises.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Ping verifies the default user's store is reachable.
func (f *Factory) Ping() error {
	store, err := f.ForUser(identity.DefaultUserID)
	if err != nil {
		return err
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DerivePath inserts the normalized user id into the base path's filename:
// data/crm.db + "ana" -> data/crm.ana.db.
func DerivePath(base, userID string) string {
	dir := filepath.Dir(base)
	name := filepath.Base(base)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext == "" {
		ext = ".db"
	}
	return filepath.Join(dir, stem+"."+userID+ext)
}
