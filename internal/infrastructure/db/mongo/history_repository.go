package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oculab/microbio-portal/internal/core/domain"
)

const collectionHistory = "case_history"

// HistoryRepository stores the append-only audit trail. Entries are written
// once and never updated.
type HistoryRepository struct {
	col *mongo.Collection
}

func NewHistoryRepository(db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{col: db.Collection(collectionHistory)}
}

type mongoHistoryEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CaseID    string             `bson:"case_id"`
	ActorID   string             `bson:"actor_id,omitempty"`
	ActorName string             `bson:"actor_name"`
	Action    string             `bson:"action"`
	Note      string             `bson:"note,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *HistoryRepository) Insert(ctx context.Context, e *domain.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoHistoryEntry{
		CaseID:    e.CaseID,
		ActorID:   e.ActorID,
		ActorName: e.ActorName,
		Action:    e.Action,
		Note:      e.Note,
		CreatedAt: e.CreatedAt.UTC(),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return nil
}

func (r *HistoryRepository) ListByCase(ctx context.Context, caseID string, limit int) ([]*domain.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.col.Find(ctx, bson.M{"case_id": caseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoHistoryEntry
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	entries := make([]*domain.HistoryEntry, len(docs))
	for i, doc := range docs {
		entries[i] = &domain.HistoryEntry{
			ID:        doc.ID.Hex(),
			CaseID:    doc.CaseID,
			ActorID:   doc.ActorID,
			ActorName: doc.ActorName,
			Action:    doc.Action,
			Note:      doc.Note,
			CreatedAt: doc.CreatedAt,
		}
	}
	return entries, nil
}

// EnsureIndexes creates necessary indexes on the history collection.
func (r *HistoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "case_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
