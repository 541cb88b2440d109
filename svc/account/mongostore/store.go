// Package mongostore implements account.Store on MongoDB. Emails and
// usernames are kept unique by indexes and TOTP secrets can be encrypted at rest with a
// totp.Cipher.
package mongostore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/shubhamtiwari158/securify/pkg/mongo"
	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "accounts"

// Store is a MongoDB backed account.Store.
type Store struct {
	coll   *mongo.Collection
	cipher *totp.Cipher
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	collection string
	cipher     *totp.Cipher
}

// WithCollection overrides DefaultCollection.
func WithCollection(name string) Option {
	return func(o *storeOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

// WithCipher encrypts TOTP secrets before they are written.
func WithCipher(c *totp.Cipher) Option {
	return func(o *storeOptions) {
		o.cipher = c
	}
}

// New returns a Store on db.
func New(db *mongo.Database, opts ...Option) *Store {
	o := storeOptions{collection: DefaultCollection}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{coll: db.Collection(o.collection), cipher: o.cipher}
}

// Unique index names created by EnsureIndexes.
const (
	emailIndex    = "accounts_email_unique"
	usernameIndex = "accounts_username_unique"
)

// EnsureIndexes creates the unique email and username indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(emailIndex),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(usernameIndex),
		},
	})
	return err
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (s *Store) Create(ctx context.Context, acc *account.Account) error {
	doc, err := s.toDocument(acc)
	if err != nil {
		return err
	}
	if doc.Version == 0 {
		doc.Version = 1
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongox.IsDuplicateKeyError(err) {
			return duplicateError(err)
		}
		return err
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, patch account.Patch) (*account.Account, error) {
	update, err := s.updateDocument(patch)
	if err != nil {
		return nil, err
	}

	filter := bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "version", Value: patch.IfVersion},
	}

	var doc accountDocument
	err = s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if !mongox.IsNotFoundError(err) {
			return nil, err
		}
		// Distinguish a missing account from a stale version.
		n, cerr := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id.String()}})
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, account.ErrNotFound
		}
		return nil, account.ErrVersionConflict
	}
	return s.fromDocument(doc)
}

func (s *Store) findOne(ctx context.Context, filter bson.D) (*account.Account, error) {
	var doc accountDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if mongox.IsNotFoundError(err) {
			return nil, account.ErrNotFound
		}
		return nil, err
	}
	return s.fromDocument(doc)
}

func duplicateError(err error) error {
	switch mongox.DuplicateKeyIndex(err) {
	case emailIndex:
		return errors.Join(account.ErrDuplicateKey, account.ErrEmailTaken, err)
	case usernameIndex:
		return errors.Join(account.ErrDuplicateKey, account.ErrUsernameTaken, err)
	default:
		return errors.Join(account.ErrDuplicateKey, err)
	}
}
