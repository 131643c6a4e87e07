package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huertohogar/storefront-api/internal/core/domain"
)

type CartRepository struct {
	col *mongo.Collection
	ids sequence
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(collectionCartItems), ids: newSequence(db, collectionCartItems)}
}

type mongoCartItem struct {
	ID          int64  `bson:"_id"`
	Owner       string `bson:"owner"`
	ProductID   int64  `bson:"product_id"`
	ProductName string `bson:"product_name"`
	UnitPrice   int64  `bson:"unit_price"`
	Quantity    int    `bson:"quantity"`
}

func (m mongoCartItem) toDomain() *domain.CartItem {
	return &domain.CartItem{
		ID:          m.ID,
		Owner:       m.Owner,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		UnitPrice:   m.UnitPrice,
		Quantity:    m.Quantity,
	}
}

func (r *CartRepository) List(ctx context.Context, owner string) ([]*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"owner": owner}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	var docs []mongoCartItem
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	out := make([]*domain.CartItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *CartRepository) FindByProduct(ctx context.Context, owner string, productID int64) (*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoCartItem
	if err := r.col.FindOne(ctx, bson.M{"owner": owner, "product_id": productID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("find cart item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CartRepository) Create(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}
	doc := mongoCartItem{
		ID:          id,
		Owner:       item.Owner,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		UnitPrice:   item.UnitPrice,
		Quantity:    item.Quantity,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert cart item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, owner string, id int64, quantity int) (*domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoCartItem
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{"$set": bson.M{"quantity": quantity}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CartRepository) Delete(ctx context.Context, owner string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"owner": owner}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
