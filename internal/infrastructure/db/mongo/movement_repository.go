package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetshop/api/internal/core/domain"
	"github.com/sweetshop/api/internal/core/ports"
)

const collectionMovements = "stock_movements"

// MovementRepository implements ports.MovementRepository using MongoDB.
type MovementRepository struct {
	col *mongo.Collection
}

var _ ports.MovementRepository = (*MovementRepository)(nil)

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(db *mongo.Database) *MovementRepository {
	return &MovementRepository{col: db.Collection(collectionMovements)}
}

type mongoMovement struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	SweetID           primitive.ObjectID `bson:"sweet_id"`
	Kind              string             `bson:"kind"`
	Quantity          int                `bson:"quantity"`
	ResultingQuantity int                `bson:"resulting_quantity"`
	ActorID           string             `bson:"actor_id,omitempty"`
	At                time.Time          `bson:"at"`
}

// Insert persists a stock movement to the audit collection.
func (r *MovementRepository) Insert(ctx context.Context, m *domain.StockMovement) error {
	sweetID, err := objectID(m.SweetID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoMovement{
		ID:                primitive.NewObjectID(),
		SweetID:           sweetID,
		Kind:              string(m.Kind),
		Quantity:          m.Quantity,
		ResultingQuantity: m.ResultingQuantity,
		ActorID:           m.ActorID,
		At:                m.At.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	m.ID = doc.ID.Hex()
	return nil
}

// ListBySweet returns the movements recorded for a sweet, oldest first.
func (r *MovementRepository) ListBySweet(ctx context.Context, sweetID string) ([]domain.StockMovement, error) {
	oid, err := objectID(sweetID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"sweet_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find movements: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoMovement
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movements: %w", err)
	}

	out := make([]domain.StockMovement, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.StockMovement{
			ID:                d.ID.Hex(),
			SweetID:           d.SweetID.Hex(),
			Kind:              domain.MovementKind(d.Kind),
			Quantity:          d.Quantity,
			ResultingQuantity: d.ResultingQuantity,
			ActorID:           d.ActorID,
			At:                d.At.UTC(),
		})
	}
	return out, nil
}

// EnsureIndexes creates the lookup index used by ListBySweet.
func (r *MovementRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sweet_id", Value: 1}, {Key: "at", Value: 1}},
	})
	return err
}
