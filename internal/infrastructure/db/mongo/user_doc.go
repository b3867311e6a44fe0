package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/electroworld/auth-service/internal/domain"
)

// userDoc keeps the field names of the storefront's users collection.
type userDoc struct {
	ID                    string     `bson:"_id"`
	Name                  string     `bson:"name"`
	Email                 string     `bson:"email"`
	Phone                 string     `bson:"phone,omitempty"`
	Wilaya                string     `bson:"wilaya"`
	Password              string     `bson:"password"`
	Role                  string     `bson:"role"`
	PasswordChangedAt     *time.Time `bson:"passwordChangedAt,omitempty"`
	PasswordResetCode     string     `bson:"passwordResetCode,omitempty"`
	PasswordResetExpires  *time.Time `bson:"passwordResetExpires,omitempty"`
	PasswordResetVerified bool       `bson:"passwordResetVerified,omitempty"`
	CreatedAt             time.Time  `bson:"createdAt"`
	UpdatedAt             time.Time  `bson:"updatedAt"`
}

func fromDomainUser(u domain.User) userDoc {
	return userDoc{
		ID:                    u.ID,
		Name:                  u.Name,
		Email:                 u.Email,
		Phone:                 u.Phone,
		Wilaya:                u.Wilaya,
		Password:              u.PasswordHash,
		Role:                  string(u.Role),
		PasswordChangedAt:     u.PasswordChangedAt,
		PasswordResetCode:     u.PasswordResetCode,
		PasswordResetExpires:  u.PasswordResetExpires,
		PasswordResetVerified: u.PasswordResetVerified,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func (d userDoc) toDomain() (domain.User, error) {
	role, err := domain.ParseRole(d.Role)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:                    d.ID,
		Name:                  d.Name,
		Email:                 d.Email,
		Phone:                 d.Phone,
		Wilaya:                d.Wilaya,
		PasswordHash:          d.Password,
		Role:                  role,
		PasswordChangedAt:     utcPtr(d.PasswordChangedAt),
		PasswordResetCode:     d.PasswordResetCode,
		PasswordResetExpires:  utcPtr(d.PasswordResetExpires),
		PasswordResetVerified: d.PasswordResetVerified,
		CreatedAt:             d.CreatedAt.UTC(),
		UpdatedAt:             d.UpdatedAt.UTC(),
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// literal wraps a value so the pipeline never reads it as a field path
// (bcrypt hashes start with '$').
func literal(v any) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

// orRemove yields $$REMOVE for absent values so $set drops the field.
func orRemove(present bool, v any) any {
	if !present {
		return "$$REMOVE"
	}
	return literal(v)
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// saveStage is the single $set stage used by Save. passwordChangedAt is set
// to $$NOW when the stored hash differs from u's and the caller left the
// timestamp as stored.
func saveStage(u domain.User) bson.D {
	changedAt := timeOrNil(u.PasswordChangedAt)

	hashChangedUnstamped := bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "$ne", Value: bson.A{"$password", literal(u.PasswordHash)}}},
		bson.D{{Key: "$eq", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$passwordChangedAt", nil}}},
			literal(changedAt),
		}}},
	}}}

	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: literal(u.Name)},
		{Key: "email", Value: literal(u.Email)},
		{Key: "phone", Value: orRemove(u.Phone != "", u.Phone)},
		{Key: "wilaya", Value: literal(u.Wilaya)},
		{Key: "role", Value: literal(string(u.Role))},
		{Key: "passwordChangedAt", Value: bson.D{{Key: "$cond", Value: bson.A{
			hashChangedUnstamped,
			"$$NOW",
			orRemove(u.PasswordChangedAt != nil, changedAt),
		}}}},
		{Key: "password", Value: literal(u.PasswordHash)},
		{Key: "passwordResetCode", Value: orRemove(u.PasswordResetCode != "", u.PasswordResetCode)},
		{Key: "passwordResetExpires", Value: orRemove(u.PasswordResetExpires != nil, timeOrNil(u.PasswordResetExpires))},
		{Key: "passwordResetVerified", Value: orRemove(u.PasswordResetVerified, true)},
		{Key: "updatedAt", Value: "$$NOW"},
	}}}
}
