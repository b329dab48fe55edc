package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"whisperboard/internal/auth"
	"whisperboard/internal/secrets"
)

// AutoMigrate runs database migrations for all whisperboard tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ProviderLinkModel{},
		&SecretModel{},
	)
}

// =============================================================================
// UserStore
// =============================================================================

// UserStore implements auth.UserStore using GORM.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*auth.UserIdentity, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	links, err := s.linksFor(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return model.toUser(links), nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*auth.UserIdentity, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).First(&model, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	links, err := s.linksFor(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return model.toUser(links), nil
}

func (s *UserStore) GetByProvider(ctx context.Context, provider, providerUserID string) (*auth.UserIdentity, error) {
	var link ProviderLinkModel
	err := s.db.WithContext(ctx).
		First(&link, "provider = ? AND provider_user_id = ?", provider, providerUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, link.UserID)
}

func (s *UserStore) CreateLocal(ctx context.Context, username, passwordHash string) (*auth.UserIdentity, error) {
	model := &UserModel{
		ID:           uuid.NewString(),
		Username:     &username,
		PasswordHash: passwordHash,
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, auth.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("creating local user: %w", err)
	}
	return model.toUser(nil), nil
}

// GetOrCreateByProvider is a find-or-create arbitrated by the provider_links
// composite primary key. When two calls race on the same pair, one insert
// loses with a duplicate-key error; the loser rolls back its user row and
// re-reads the winner's.
func (s *UserStore) GetOrCreateByProvider(ctx context.Context, provider, providerUserID string) (*auth.UserIdentity, bool, error) {
	if user, err := s.GetByProvider(ctx, provider, providerUserID); err == nil {
		return user, false, nil
	} else if !errors.Is(err, auth.ErrNotFound) {
		return nil, false, err
	}

	model := &UserModel{ID: uuid.NewString()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return tx.Create(&ProviderLinkModel{
			Provider:       provider,
			ProviderUserID: providerUserID,
			UserID:         model.ID,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race; the pair now resolves to the winner's user.
			user, err := s.GetByProvider(ctx, provider, providerUserID)
			return user, false, err
		}
		return nil, false, fmt.Errorf("creating provider user: %w", err)
	}

	return model.toUser([]auth.ProviderLink{{Provider: provider, ProviderUserID: providerUserID}}), true, nil
}

func (s *UserStore) linksFor(ctx context.Context, userID string) ([]auth.ProviderLink, error) {
	var models []ProviderLinkModel
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&models).Error; err != nil {
		return nil, err
	}
	links := make([]auth.ProviderLink, len(models))
	for i, m := range models {
		links[i] = m.toLink()
	}
	return links, nil
}

// =============================================================================
// SecretStore
// =============================================================================

// SecretStore implements secrets.Store using GORM.
type SecretStore struct {
	db *gorm.DB
}

func NewSecretStore(db *gorm.DB) *SecretStore {
	return &SecretStore{db: db}
}

func (s *SecretStore) List(ctx context.Context) ([]*secrets.Secret, error) {
	var models []SecretModel
	if err := s.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*secrets.Secret, len(models))
	for i, m := range models {
		out[i] = m.toSecret()
	}
	return out, nil
}

func (s *SecretStore) Add(ctx context.Context, ownerID, body string) (*secrets.Secret, error) {
	model := &SecretModel{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Body:    body,
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "body"}}, DoNothing: true}).
		Create(model)
	if res.Error != nil {
		return nil, fmt.Errorf("adding secret: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Already on the board; hand back the existing entry.
		var existing SecretModel
		if err := s.db.WithContext(ctx).First(&existing, "body = ?", body).Error; err != nil {
			return nil, err
		}
		return existing.toSecret(), nil
	}
	return model.toSecret(), nil
}

func (s *SecretStore) Delete(ctx context.Context, id, ownerID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&SecretModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return secrets.ErrNotFound
	}
	return nil
}
