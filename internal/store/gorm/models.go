package gorm

import (
	"time"

	"whisperboard/internal/auth"
	"whisperboard/internal/secrets"
)

// UserModel is the GORM model for user identities.
type UserModel struct {
	ID           string    `gorm:"primaryKey;size:64"`
	Username     *string   `gorm:"size:255;uniqueIndex"` // nil for provider-only accounts
	PasswordHash string    `gorm:"size:128"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) toUser(links []auth.ProviderLink) *auth.UserIdentity {
	u := &auth.UserIdentity{
		ID:           m.ID,
		PasswordHash: m.PasswordHash,
		Links:        links,
	}
	if m.Username != nil {
		u.Username = *m.Username
	}
	return u
}

// ProviderLinkModel is the GORM model for federated identity links. The
// composite primary key is the system-wide uniqueness guarantee for a
// (provider, provider_user_id) pair.
type ProviderLinkModel struct {
	Provider       string    `gorm:"primaryKey;size:32"`
	ProviderUserID string    `gorm:"primaryKey;size:255"`
	UserID         string    `gorm:"size:64;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ProviderLinkModel) TableName() string {
	return "provider_links"
}

func (m *ProviderLinkModel) toLink() auth.ProviderLink {
	return auth.ProviderLink{Provider: m.Provider, ProviderUserID: m.ProviderUserID}
}

// SecretModel is the GORM model for board entries. Body is unique so a
// resubmitted secret dedupes at the schema level.
type SecretModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	OwnerID   string    `gorm:"size:64;index"`
	Body      string    `gorm:"size:2048;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SecretModel) TableName() string {
	return "secrets"
}

func (m *SecretModel) toSecret() *secrets.Secret {
	return &secrets.Secret{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
