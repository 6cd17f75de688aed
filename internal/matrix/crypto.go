// ABOUTME: End-to-end encryption for the Matrix transport
// ABOUTME: Sets up the mautrix crypto helper on a per-user SQLite store

package matrix

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/crypto/cryptohelper"
)

// encryption owns the crypto helper attached to a client.
type encryption struct {
	helper *cryptohelper.CryptoHelper
	logger *slog.Logger
}

// enableEncryption attaches E2EE to a logged-in client. A failed recovery
// key verification is logged; messages still get encrypted without
// cross-signing.
func enableEncryption(ctx context.Context, client *mautrix.Client, recoveryKey, dataDir string, logger *slog.Logger) (*encryption, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	userID := client.UserID.String()
	dbPath := cryptoStorePath(dataDir, userID)
	logger.Info("setting up encryption", "db", dbPath)

	stale, err := cryptoStoreIsStale(dbPath, client.DeviceID.String())
	if err != nil {
		logger.Debug("could not read stored device id", "error", err)
	} else if stale {
		logger.Warn("crypto store belongs to another device, recreating it")
		if err := removeSQLiteFiles(dbPath); err != nil {
			return nil, err
		}
	}

	helper, err := cryptohelper.NewCryptoHelper(client, storeKey(userID), dbPath)
	if err != nil {
		return nil, fmt.Errorf("creating crypto helper: %w", err)
	}
	if err := helper.Init(ctx); err != nil {
		return nil, fmt.Errorf("initializing crypto helper: %w", err)
	}
	client.Crypto = helper

	enc := &encryption{helper: helper, logger: logger}

	machine := helper.Machine()
	if machine == nil {
		logger.Warn("crypto machine missing, skipping recovery key verification")
		return enc, nil
	}
	if err := machine.VerifyWithRecoveryKey(ctx, recoveryKey); err != nil {
		logger.Warn("recovery key verification failed", "error", err)
	} else {
		logger.Info("device verified with recovery key")
	}

	return enc, nil
}

// Close releases the crypto store.
func (e *encryption) Close() error {
	if e == nil || e.helper == nil {
		return nil
	}
	return e.helper.Close()
}

// cryptoStorePath names the crypto database for a user inside dataDir.
func cryptoStorePath(dataDir, userID string) string {
	return filepath.Join(dataDir, fmt.Sprintf("matrix-crypto-%s.db", slugify(userID)))
}

// slugify makes a Matrix user ID safe for a file name.
// "@habitbot:matrix.org" becomes "habitbot_matrix.org".
func slugify(userID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ':':
			return '_'
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, strings.TrimPrefix(userID, "@"))
}

// storeKey derives the pickle key for a user's crypto store.
func storeKey(userID string) []byte {
	sum := sha256.Sum256([]byte("habit-streaks-crypto:" + userID))
	return sum[:]
}

// cryptoStoreIsStale reports whether an existing crypto store was written
// for a different device than deviceID. A missing or empty store is not stale.
func cryptoStoreIsStale(dbPath, deviceID string) (bool, error) {
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var stored string
	err = db.QueryRow("SELECT device_id FROM crypto_account LIMIT 1").Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored != deviceID, nil
}

func removeSQLiteFiles(dbPath string) error {
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing crypto database: %w", err)
	}
	_ = os.Remove(dbPath + "-wal")
	_ = os.Remove(dbPath + "-shm")
	return nil
}
