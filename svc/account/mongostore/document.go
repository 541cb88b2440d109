package mongostore

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account"
)

type secretDocument struct {
	Base32     string `bson:"base32"`
	OTPAuthURL string `bson:"otpauth_url"`
}

type accountDocument struct {
	ID               string          `bson:"_id"`
	Username         string          `bson:"username"`
	Email            string          `bson:"email"`
	PasswordHash     string          `bson:"password_hash"`
	PasswordSalt     string          `bson:"password_salt"`
	TOTPSecret       *secretDocument `bson:"totp_secret,omitempty"`
	TwoFactorEnabled bool            `bson:"two_factor_enabled"`
	TOTPVerified     bool            `bson:"totp_verified"`
	Version          int64           `bson:"version"`
	CreatedAt        time.Time       `bson:"created_at"`
	UpdatedAt        time.Time       `bson:"updated_at"`
}

func (s *Store) toDocument(acc *account.Account) (accountDocument, error) {
	doc := accountDocument{
		ID:               acc.ID.String(),
		Username:         acc.Username,
		Email:            acc.Email,
		PasswordHash:     acc.PasswordHash,
		PasswordSalt:     acc.PasswordSalt,
		TwoFactorEnabled: acc.TwoFactorEnabled,
		TOTPVerified:     acc.TOTPVerified,
		Version:          acc.Version,
		CreatedAt:        acc.CreatedAt.UTC(),
		UpdatedAt:        acc.UpdatedAt.UTC(),
	}
	if acc.TOTPSecret != nil {
		sealed, err := s.sealSecret(*acc.TOTPSecret)
		if err != nil {
			return accountDocument{}, err
		}
		doc.TOTPSecret = sealed
	}
	return doc, nil
}

func (s *Store) fromDocument(doc accountDocument) (*account.Account, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, err
	}

	acc := &account.Account{
		ID:               id,
		Username:         doc.Username,
		Email:            doc.Email,
		PasswordHash:     doc.PasswordHash,
		PasswordSalt:     doc.PasswordSalt,
		TwoFactorEnabled: doc.TwoFactorEnabled,
		TOTPVerified:     doc.TOTPVerified,
		Version:          doc.Version,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	if doc.TOTPSecret != nil {
		secret, err := s.cipher.Open(totp.Secret{Base32: doc.TOTPSecret.Base32, OTPAuthURL: doc.TOTPSecret.OTPAuthURL})
		if err != nil {
			return nil, err
		}
		acc.TOTPSecret = &secret
	}
	return acc, nil
}

func (s *Store) sealSecret(secret totp.Secret) (*secretDocument, error) {
	sealed, err := s.cipher.Seal(secret)
	if err != nil {
		return nil, err
	}
	return &secretDocument{Base32: sealed.Base32, OTPAuthURL: sealed.OTPAuthURL}, nil
}

// updateDocument translates a patch into a $set/$inc update.
func (s *Store) updateDocument(patch account.Patch) (bson.D, error) {
	set := bson.D{}
	if patch.TOTPSecret != nil {
		sealed, err := s.sealSecret(*patch.TOTPSecret)
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "totp_secret", Value: sealed})
	}
	if patch.TwoFactorEnabled != nil {
		set = append(set, bson.E{Key: "two_factor_enabled", Value: *patch.TwoFactorEnabled})
	}
	if patch.TOTPVerified != nil {
		set = append(set, bson.E{Key: "totp_verified", Value: *patch.TOTPVerified})
	}
	if !patch.UpdatedAt.IsZero() {
		set = append(set, bson.E{Key: "updated_at", Value: patch.UpdatedAt.UTC()})
	}

	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "version", Value: int64(1)}}}}
	if len(set) > 0 {
		update = append(bson.D{{Key: "$set", Value: set}}, update...)
	}
	return update, nil
}
