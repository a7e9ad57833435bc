package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/redmath/phonebook/internal/core/domain"
)

const collectionContacts = "contacts"

// ContactRepository implements ports.ContactRepository using MongoDB.
type ContactRepository struct {
	col *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{col: db.Collection(collectionContacts)}
}

type contactDoc struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Number string             `bson:"number"`
	Email  string             `bson:"email,omitempty"`
}

func (d contactDoc) toDomain() *domain.Contact {
	return &domain.Contact{ID: d.ID.Hex(), Name: d.Name, Number: d.Number, Email: d.Email}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := contactDoc{
		ID:     primitive.NewObjectID(),
		Name:   contact.Name,
		Number: contact.Number,
		Email:  contact.Email,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	oid, err := primitive.ObjectIDFromHex(contact.ID)
	if err != nil {
		return domain.ErrContactNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":   contact.Name,
		"number": contact.Number,
		"email":  contact.Email,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

func (r *ContactRepository) List(ctx context.Context) ([]*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	var docs []contactDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}

	out := make([]*domain.Contact, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrContactNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

func (r *ContactRepository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("delete contacts: %w", err)
	}
	return nil
}
