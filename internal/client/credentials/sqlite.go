package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/cryptox"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
)

// sealingInfo binds the derived key to this use of the install secret.
const sealingInfo = "shopkeeper/credentials/v1"

// SQLiteStore persists the session in the metadata table of the local
// database, sealing every value with AES-GCM. Values survive restarts; the
// database file is per API origin, which gives per-origin scoping.
type SQLiteStore struct {
	db  *sql.DB
	key []byte

	// mu serialises writers so read-then-write sequences (SwapAccess) see a
	// consistent view; SQLite itself allows one writer at a time anyway.
	mu sync.Mutex
}

// NewSQLiteStore returns a store over db whose values are sealed with a key
// derived from secret (see filex.ReadOrCreateSecret).
func NewSQLiteStore(db *sql.DB, secret []byte) (*SQLiteStore, error) {
	key, err := cryptox.DeriveKey(secret, sealingInfo)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, key: key}, nil
}

func (s *SQLiteStore) Access(ctx context.Context) (string, error) {
	v, err := s.get(ctx, metadata.NewSQLiteRepository(s.db), common.AccessTokenKey)
	return string(v), err
}

func (s *SQLiteStore) Refresh(ctx context.Context) (string, error) {
	v, err := s.get(ctx, metadata.NewSQLiteRepository(s.db), common.RefreshTokenKey)
	return string(v), err
}

func (s *SQLiteStore) SetAccess(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putString(ctx, metadata.NewSQLiteRepository(s.db), common.AccessTokenKey, token)
}

func (s *SQLiteStore) SetRefresh(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putString(ctx, metadata.NewSQLiteRepository(s.db), common.RefreshTokenKey, token)
}

func (s *SQLiteStore) SwapAccess(ctx context.Context, refresh, access string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	swapped := false
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		current, err := s.get(ctx, repo, common.RefreshTokenKey)
		if err != nil {
			return err
		}
		if len(current) == 0 || string(current) != refresh {
			return nil
		}
		if err := s.putString(ctx, repo, common.AccessTokenKey, access); err != nil {
			return err
		}
		swapped = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}

func (s *SQLiteStore) SetSession(ctx context.Context, access, refresh string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := s.putString(ctx, repo, common.AccessTokenKey, access); err != nil {
			return err
		}
		if err := s.putString(ctx, repo, common.RefreshTokenKey, refresh); err != nil {
			return err
		}
		return s.putProfile(ctx, repo, user)
	})
}

func (s *SQLiteStore) Profile(ctx context.Context) (*models.User, error) {
	v, err := s.get(ctx, metadata.NewSQLiteRepository(s.db), common.UserProfileKey)
	if err != nil || v == nil {
		return nil, err
	}

	var u models.User
	if err := json.Unmarshal(v, &u); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}
	return &u, nil
}

func (s *SQLiteStore) SetProfile(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putProfile(ctx, metadata.NewSQLiteRepository(s.db), user)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx,
			common.AccessTokenKey, common.RefreshTokenKey, common.UserProfileKey)
	})
}

func (s *SQLiteStore) IsAuthenticated(ctx context.Context) (bool, error) {
	access, err := s.Access(ctx)
	if err != nil {
		return false, err
	}
	return access != "", nil
}

// get returns the opened value under key, or nil when absent.
func (s *SQLiteStore) get(ctx context.Context, repo metadata.Repository, key string) ([]byte, error) {
	sealed, err := repo.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}

	v, err := cryptox.Open(s.key, sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open metadata[%s]: %w", key, err)
	}
	return v, nil
}

// putString stores value under key; the empty string deletes the key so that
// "absent" has a single representation.
func (s *SQLiteStore) putString(ctx context.Context, repo metadata.Repository, key, value string) error {
	if value == "" {
		return repo.Delete(ctx, key)
	}
	return s.put(ctx, repo, key, []byte(value))
}

func (s *SQLiteStore) putProfile(ctx context.Context, repo metadata.Repository, user *models.User) error {
	if user == nil {
		return repo.Delete(ctx, common.UserProfileKey)
	}
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.put(ctx, repo, common.UserProfileKey, b)
}

func (s *SQLiteStore) put(ctx context.Context, repo metadata.Repository, key string, value []byte) error {
	sealed, err := cryptox.Seal(s.key, value, []byte(key))
	if err != nil {
		return fmt.Errorf("seal metadata[%s]: %w", key, err)
	}
	return repo.Set(ctx, key, sealed)
}
