package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
)

// CredentialRepository stores optional API keys for the external feature
// providers (e.g. an Open-Meteo commercial key). Keys are fernet-encrypted at
// rest and handed to the provider adapters as plain configuration at boot, so
// the adapters themselves never touch ambient process state.
type CredentialRepository struct {
	db  *sql.DB
	key *fernet.Key
}

// NewCredentialRepository creates a CredentialRepository. The fernet key is a
// base64 key string; an empty key disables the store (Get returns not found).
func NewCredentialRepository(db *sql.DB, fernetKey string) (*CredentialRepository, error) {
	repo := &CredentialRepository{db: db}

	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode fernet key: %w", err)
		}
		repo.key = key
	}

	return repo, nil
}

// Set encrypts and stores the API key for a provider, replacing any previous one.
func (r *CredentialRepository) Set(provider, apiKey string) error {
	if r.key == nil {
		return fmt.Errorf("credential store is disabled: no fernet key configured")
	}

	token, err := fernet.EncryptAndSign([]byte(apiKey), r.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt provider credential: %w", err)
	}

	query := `
		INSERT INTO provider_credential (id, provider, api_key, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			api_key = excluded.api_key,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query, uuid.NewString(), provider, string(token),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store provider credential: %w", err)
	}

	return nil
}

// Get decrypts and returns the stored API key for a provider.
// Returns apperrors.ErrCredentialNotFound when none is stored or the store is disabled.
func (r *CredentialRepository) Get(provider string) (string, error) {
	if r.key == nil {
		return "", apperrors.ErrCredentialNotFound
	}

	query := `SELECT api_key FROM provider_credential WHERE provider = ?`

	var token string
	err := r.db.QueryRow(query, provider).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query provider_credential table: %w", err)
	}

	// Tokens do not expire; rotation happens by overwriting the row.
	plain := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{r.key})
	if plain == nil {
		return "", fmt.Errorf("failed to decrypt credential for provider %s", provider)
	}

	return string(plain), nil
}
