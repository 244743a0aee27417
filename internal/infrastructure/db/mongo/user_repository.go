package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/peoplehub/accounts-api/internal/core/domain"
)

const (
	usersCollection       = "users"
	assignmentsCollection = "user_roles"

	emailIndex    = "email_unique"
	usernameIndex = "username_unique"
)

// MongoUserRepository implements ports.UserRepository using MongoDB.
type MongoUserRepository struct {
	db *mongo.Database
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{db: db}
}

type userDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Email                 string             `bson:"email"`
	Username              string             `bson:"username"`
	FirstName             string             `bson:"first_name"`
	LastName              string             `bson:"last_name"`
	PasswordHash          string             `bson:"password_hash"`
	RegistrationToken     string             `bson:"registration_token"`
	RegistrationTimestamp time.Time          `bson:"registration_timestamp"`
	RefreshToken          string             `bson:"refresh_token,omitempty"`
	Image                 string             `bson:"image"`
	CoverPhoto            string             `bson:"cover_photo"`
	CreatedAt             time.Time          `bson:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at"`
}

type assignmentDoc struct {
	UserID     primitive.ObjectID `bson:"user_id"`
	RoleID     primitive.ObjectID `bson:"role_id"`
	AssignedAt time.Time          `bson:"assigned_at"`
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := userDoc{
		Email:                 user.Email,
		Username:              user.Username,
		FirstName:             user.FirstName,
		LastName:              user.LastName,
		PasswordHash:          user.PasswordHash,
		RegistrationToken:     user.RegistrationToken,
		RegistrationTimestamp: user.RegistrationTimestamp.UTC(),
		Image:                 user.ImageURL,
		CoverPhoto:            user.CoverPhotoURL,
		CreatedAt:             user.CreatedAt.UTC(),
		UpdatedAt:             user.UpdatedAt.UTC(),
	}

	res, err := r.users().InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateKeyToDomain(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

// duplicateKeyToDomain inspects which unique index rejected the insert. When
// the violated index cannot be identified, the email error wins — it is the
// higher-priority check in the registration contract.
func duplicateKeyToDomain(err error) error {
	if strings.Contains(err.Error(), usernameIndex) {
		return domain.ErrUsernameTaken
	}
	return domain.ErrEmailTaken
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := r.users().FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomainUser(doc), nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.users().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, toDomainUser(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepository) AssignRoles(ctx context.Context, userID string, roles []domain.Role) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	now := time.Now().UTC()
	docs := make([]any, 0, len(roles))
	for _, role := range roles {
		rid, err := primitive.ObjectIDFromHex(role.ID)
		if err != nil {
			return fmt.Errorf("assign roles: bad role id %q", role.ID)
		}
		docs = append(docs, assignmentDoc{UserID: uid, RoleID: rid, AssignedAt: now})
	}

	if _, err := r.assignments().InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert role assignments: %w", err)
	}
	return nil
}

// RoleNames reads the role names associated with a user back out of the
// store, preserving assignment order.
func (r *MongoUserRepository) RoleNames(ctx context.Context, userID string) ([]string, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	cur, err := r.assignments().Find(ctx, bson.M{"user_id": uid})
	if err != nil {
		return nil, fmt.Errorf("find role assignments: %w", err)
	}
	defer cur.Close(ctx)

	var roleIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var doc assignmentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode assignment: %w", err)
		}
		roleIDs = append(roleIDs, doc.RoleID)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("find role assignments: %w", err)
	}
	if len(roleIDs) == 0 {
		return nil, nil
	}

	roleCur, err := r.db.Collection(rolesCollection).Find(ctx, bson.M{"_id": bson.M{"$in": roleIDs}})
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	defer roleCur.Close(ctx)

	nameByID := make(map[primitive.ObjectID]string, len(roleIDs))
	for roleCur.Next(ctx) {
		var doc roleDoc
		if err := roleCur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode role: %w", err)
		}
		nameByID[doc.ID] = doc.Name
	}
	if err := roleCur.Err(); err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}

	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if name, ok := nameByID[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, userID, refreshToken string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	update := bson.M{"$set": bson.M{
		"refresh_token": refreshToken,
		"updated_at":    time.Now().UTC(),
	}}
	res, err := r.users().UpdateOne(ctx, bson.M{"_id": uid}, update)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes the user and its role assignments. Only the registration
// rollback path calls this.
func (r *MongoUserRepository) Delete(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	if _, err := r.assignments().DeleteMany(ctx, bson.M{"user_id": uid}); err != nil {
		return fmt.Errorf("delete role assignments: %w", err)
	}
	if _, err := r.users().DeleteOne(ctx, bson.M{"_id": uid}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) users() *mongo.Collection {
	return r.db.Collection(usersCollection)
}

func (r *MongoUserRepository) assignments() *mongo.Collection {
	return r.db.Collection(assignmentsCollection)
}

func toDomainUser(doc userDoc) *domain.User {
	return &domain.User{
		ID:                    doc.ID.Hex(),
		Email:                 doc.Email,
		Username:              doc.Username,
		FirstName:             doc.FirstName,
		LastName:              doc.LastName,
		PasswordHash:          doc.PasswordHash,
		RegistrationToken:     doc.RegistrationToken,
		RegistrationTimestamp: doc.RegistrationTimestamp,
		RefreshToken:          doc.RefreshToken,
		ImageURL:              doc.Image,
		CoverPhotoURL:         doc.CoverPhoto,
		CreatedAt:             doc.CreatedAt,
		UpdatedAt:             doc.UpdatedAt,
	}
}
