package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/deep020206/FUTURE-FS-01/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const contactCollection = "contacts"

// mongoContact maps to a document in the contacts collection.
type mongoContact struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Message   string        `bson:"message"`
	CreatedAt time.Time     `bson:"createdAt"`
}

// MongoContactRepository is the MongoDB implementation of ContactRepository.
type MongoContactRepository struct {
	coll *mongo.Collection
}

// NewMongoContactRepository creates a repository over db's contacts collection.
func NewMongoContactRepository(db *mongo.Database) *MongoContactRepository {
	return &MongoContactRepository{coll: db.Collection(contactCollection)}
}

var _ ContactRepository = (*MongoContactRepository)(nil)

// EnsureIndexes creates the createdAt index used by ListAll.
func (r *MongoContactRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo: create index: %w", err)
	}
	return nil
}

func (r *MongoContactRepository) Insert(ctx context.Context, msg *model.ContactMessage) error {
	doc := mongoContact{
		ID:        bson.NewObjectID(),
		Name:      msg.Name,
		Email:     msg.Email,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	msg.ID = doc.ID.Hex()
	return nil
}

func (r *MongoContactRepository) ListAll(ctx context.Context) ([]*model.ContactMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []mongoContact
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	messages := make([]*model.ContactMessage, 0, len(docs))
	for _, d := range docs {
		messages = append(messages, &model.ContactMessage{
			ID:        d.ID.Hex(),
			Name:      d.Name,
			Email:     d.Email,
			Message:   d.Message,
			CreatedAt: d.CreatedAt.UTC(),
		})
	}
	return messages, nil
}
