package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peoplehub/accounts-api/internal/api/metrics"
	"github.com/peoplehub/accounts-api/internal/core/domain"
)

const (
	rolesCollection = "roles"

	roleNameIndex = "role_name_unique"
)

// MongoRoleRepository implements ports.RoleRepository using MongoDB.
type MongoRoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *MongoRoleRepository {
	return &MongoRoleRepository{coll: db.Collection(rolesCollection)}
}

type roleDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	Rank int                `bson:"rank"`
}

func (r *MongoRoleRepository) FindByNames(ctx context.Context, names []string) ([]domain.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	defer cur.Close(ctx)

	var roles []domain.Role
	for cur.Next(ctx) {
		var doc roleDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode role: %w", err)
		}
		roles = append(roles, toDomainRole(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	return roles, nil
}

// EnsureDefault upserts the default "user" role. The unique index on role
// name makes this safe under concurrent callers: exactly one insert wins and
// every caller reads back the same document.
func (r *MongoRoleRepository) EnsureDefault(ctx context.Context) (domain.Role, error) {
	filter := bson.M{"name": domain.DefaultRoleName}
	update := bson.M{"$setOnInsert": bson.M{
		"name": domain.DefaultRoleName,
		"rank": domain.DefaultRoleRank,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return domain.Role{}, fmt.Errorf("upsert default role: %w", err)
	}
	if res.UpsertedCount > 0 {
		metrics.DefaultRoleCreatedTotal.Inc()
	}

	var doc roleDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.Role{}, fmt.Errorf("read default role: %w", err)
	}
	return toDomainRole(doc), nil
}

func toDomainRole(doc roleDoc) domain.Role {
	return domain.Role{ID: doc.ID.Hex(), Name: doc.Name, Rank: doc.Rank}
}
