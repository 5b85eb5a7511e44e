// Package mongo stores accounts in a MongoDB collection keyed by token.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/benithors/domaincli/internal/account"
)

const defaultCollection = "accounts"

type document struct {
	ID         string    `bson:"_id"`
	Username   string    `bson:"username,omitempty"`
	Domains    []string  `bson:"domains"`
	CustomerID string    `bson:"customer_id,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
}

type Store struct {
	col *mongo.Collection
}

var _ account.Store = (*Store)(nil)

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func NewStore(client *mongo.Client, dbName, collection string) *Store {
	if collection == "" {
		collection = defaultCollection
	}
	return &Store{col: client.Database(dbName).Collection(collection)}
}

func (s *Store) Get(ctx context.Context, id string) (account.Account, error) {
	var doc document
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, fmt.Errorf("find account: %w", err)
	}
	return account.Account{
		ID:         doc.ID,
		Username:   doc.Username,
		Domains:    doc.Domains,
		CustomerID: doc.CustomerID,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (s *Store) Insert(ctx context.Context, a account.Account) error {
	domains := a.Domains
	if domains == nil {
		domains = []string{}
	}
	_, err := s.col.InsertOne(ctx, document{
		ID:         a.ID,
		Username:   a.Username,
		Domains:    domains,
		CustomerID: a.CustomerID,
		CreatedAt:  a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Store) AddDomain(ctx context.Context, id, domain string) error {
	return s.update(ctx, id, bson.M{"$addToSet": bson.M{"domains": domain}})
}

func (s *Store) SetCustomer(ctx context.Context, id, customerID string) error {
	return s.update(ctx, id, bson.M{"$set": bson.M{"customer_id": customerID}})
}

func (s *Store) update(ctx context.Context, id string, update bson.M) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return account.ErrNotFound
	}
	return nil
}
