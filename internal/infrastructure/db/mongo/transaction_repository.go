package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
)

const collectionTransactions = "transactions"

// TransactionRepository implements ports.TransactionRepository using MongoDB.
type TransactionRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

var _ ports.TransactionRepository = (*TransactionRepository)(nil)

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{db: db, col: db.Collection(collectionTransactions)}
}

type mongoTransaction struct {
	ID          int64     `bson:"_id"`
	Amount      float64   `bson:"amount"`
	Currency    string    `bson:"currency"`
	Description *string   `bson:"description,omitempty"`
	OwnerID     int64     `bson:"owner_id"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (m mongoTransaction) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:          m.ID,
		Amount:      m.Amount,
		Currency:    m.Currency,
		Description: m.Description,
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

// newestFirst is the listing order contract.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextSequence(ctx, r.db, collectionTransactions)
	if err != nil {
		return nil, err
	}

	doc := mongoTransaction{
		ID:          id,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Description: tx.Description,
		OwnerID:     tx.OwnerID,
		CreatedAt:   tx.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoTransaction
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) List(ctx context.Context, filter ports.TransactionFilter) ([]*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.OwnerID != nil {
		query["owner_id"] = *filter.OwnerID
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTransaction
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	out := make([]*domain.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Update sets only the fields present in patch and returns the document as
// stored after the write.
func (r *TransactionRepository) Update(ctx context.Context, id int64, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	if patch.Amount != nil {
		set["amount"] = *patch.Amount
	}
	if patch.Currency != nil {
		set["currency"] = *patch.Currency
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}

	var doc mongoTransaction
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes backing owner-scoped and global listings.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: newestFirst},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
