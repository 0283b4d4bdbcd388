// internal/storage/storage.go
//
// Durable local persistence for the cart snapshot and the session token.
// Single process, synchronous reads and writes; the last writer wins.

package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"github.com/example/swiftcart/internal/catalog"
)

// DecodeError reports a stored blob that could not be deserialized.
// Callers degrade to an empty default instead of failing startup.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("storage: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CartRecord is the persisted shape of one cart line.
type CartRecord struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// CartStore persists the full cart sequence as one JSON file.
type CartStore struct {
	path string
}

// NewCartStore writes the cart snapshot to the given file path.
func NewCartStore(path string) *CartStore {
	return &CartStore{path: path}
}

// Save replaces the stored snapshot with the given sequence.
func (s *CartStore) Save(records []CartRecord) error {
	if records == nil {
		records = []CartRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "storage: encode cart")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "storage: ensure state dir")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(err, "storage: write cart")
	}
	return nil
}

// Load reads the stored snapshot. A missing file is an empty cart; a
// malformed file returns a DecodeError the caller is expected to swallow.
func (s *CartStore) Load() ([]CartRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "storage: read cart")
	}
	var records []CartRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &DecodeError{Path: s.path, Err: err}
	}
	return records, nil
}

// TokenStore persists the opaque session token.
type TokenStore struct {
	path string
}

// NewTokenStore writes the token marker to the given file path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Put stores the token, replacing any previous one.
func (s *TokenStore) Put(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("storage: refusing to store empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "storage: ensure state dir")
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return errors.Wrap(err, "storage: write token")
	}
	return nil
}

// Get returns the stored token, or the empty string when none is stored.
func (s *TokenStore) Get() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", errors.Wrap(err, "storage: read token")
	}
	return strings.TrimSpace(string(data)), nil
}

// Delete removes the stored token. Deleting an absent token is a no-op.
func (s *TokenStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "storage: delete token")
	}
	return nil
}
