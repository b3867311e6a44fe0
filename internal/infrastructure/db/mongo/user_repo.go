package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/electroworld/auth-service/internal/domain"
)

const usersCollection = "users"

type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(usersCollection)}
}

// Connect opens a client and verifies it with a primary ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("empty mongo uri")
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the unique email index and the reset-code lookup index.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "passwordResetCode", Value: 1}, {Key: "passwordResetExpires", Value: 1}},
			Options: options.Index().
				SetName("reset_code").
				SetPartialFilterExpression(bson.D{{Key: "passwordResetCode", Value: bson.D{{Key: "$exists", Value: true}}}}),
		},
	})
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.D) (domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return doc.toDomain()
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *UserRepo) GetByResetCode(ctx context.Context, codeHash string, now time.Time) (domain.User, error) {
	if codeHash == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.findOne(ctx, bson.D{
		{Key: "passwordResetCode", Value: codeHash},
		{Key: "passwordResetExpires", Value: bson.D{{Key: "$gt", Value: now}}},
	})
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = domain.DefaultRole
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.CreatedAt = u.CreatedAt.UTC().Truncate(time.Millisecond)
	u.UpdatedAt = u.CreatedAt

	if _, err := r.coll.InsertOne(ctx, fromDomainUser(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return u, nil
}

// Save applies a pipeline update so the password stamp decision reads the
// stored document atomically.
func (r *UserRepo) Save(ctx context.Context, u domain.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return domain.ErrMissingField("id")
	}
	if !u.Role.Valid() {
		return domain.ErrInvalidRole(string(u.Role))
	}
	u.Email = normalizeEmail(u.Email)

	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: u.ID}},
		mongo.Pipeline{saveStage(u)},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyExists()
		}
		return domain.ErrDBUnavailable(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) Ping(ctx context.Context) error {
	if err := r.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
