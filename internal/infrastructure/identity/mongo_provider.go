// Package identity implements the identity provider port on top of MongoDB:
// a user collection enumerated through opaque, forward-only continuation
// tokens, HS256 bearer tokens, and bcrypt password hashes.
package identity

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/caredesk/user-directory/internal/core/domain"
	"github.com/caredesk/user-directory/internal/core/ports"
)

const (
	usersCollection = "identity_users"
	defaultTimeout  = 10 * time.Second
	defaultTokenTTL = 24 * time.Hour
)

// MongoProvider implements ports.IdentityProvider.
type MongoProvider struct {
	coll      *mongo.Collection
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewMongoProvider(db *mongo.Database, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *MongoProvider {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &MongoProvider{
		coll:      db.Collection(usersCollection),
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

type userDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	DisplayName   string             `bson:"display_name,omitempty"`
	PasswordHash  string             `bson:"password_hash"`
	Disabled      bool               `bson:"disabled"`
	EmailVerified bool               `bson:"email_verified"`
	Claims        map[string]any     `bson:"claims,omitempty"`
	CreatedAt     int64              `bson:"created_at"`
	LastSignIn    int64              `bson:"last_sign_in,omitempty"`
}

func (d userDoc) record() domain.UserRecord {
	role, _ := d.Claims["role"].(string)
	admin, _ := d.Claims["admin"].(bool)
	rec := domain.UserRecord{
		ID:            d.ID.Hex(),
		Email:         d.Email,
		DisplayName:   d.DisplayName,
		Disabled:      d.Disabled,
		EmailVerified: d.EmailVerified,
		Role:          role,
		IsAdmin:       admin,
		CreatedAt:     time.Unix(d.CreatedAt, 0).UTC(),
	}
	if d.LastSignIn > 0 {
		rec.LastSignIn = time.Unix(d.LastSignIn, 0).UTC()
	}
	return rec
}

// ListUsers returns one batch ordered by id. The continuation token encodes
// the last returned id; the enumeration can only move forward.
func (p *MongoProvider) ListUsers(ctx context.Context, pageSize int, pageToken string) (*ports.UserPage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if pageToken != "" {
		after, err := decodePageToken(pageToken)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		filter["_id"] = bson.M{"$gt": after}
	}

	// Fetch one extra row to learn whether a continuation token is needed.
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(pageSize + 1))

	cursor, err := p.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list users: decode: %w", err)
	}

	page := &ports.UserPage{}
	if len(docs) > pageSize {
		docs = docs[:pageSize]
		page.NextToken = encodePageToken(docs[pageSize-1].ID)
	}
	page.Users = make([]domain.UserRecord, len(docs))
	for i, d := range docs {
		page.Users[i] = d.record()
	}
	return page, nil
}

// GetUsers resolves ids individually: unknown or malformed ids land in the
// missing list instead of failing the batch.
func (p *MongoProvider) GetUsers(ctx context.Context, ids []string) ([]domain.UserRecord, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	var missing []string
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			missing = append(missing, id)
			continue
		}
		objectIDs = append(objectIDs, oid)
	}

	cursor, err := p.coll.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, nil, fmt.Errorf("get users: %w", err)
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, nil, fmt.Errorf("get users: decode: %w", err)
	}

	byID := make(map[string]domain.UserRecord, len(docs))
	for _, d := range docs {
		byID[d.ID.Hex()] = d.record()
	}

	var found []domain.UserRecord
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			found = append(found, rec)
		} else if _, malformed := primitive.ObjectIDFromHex(id); malformed == nil {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

// VerifyToken validates an HS256 bearer token and returns its claims.
func (p *MongoProvider) VerifyToken(_ context.Context, bearer string) (*domain.TokenClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(p.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)
	admin, _ := claims["admin"].(bool)
	return &domain.TokenClaims{UserID: sub, Email: email, Role: role, Admin: admin}, nil
}

// VerifyPassword checks the credentials for an enabled account. Misses and
// mismatches both report invalid credentials.
func (p *MongoProvider) VerifyPassword(ctx context.Context, email, password string) (*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := p.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if doc.Disabled {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if _, err := p.coll.UpdateByID(ctx, doc.ID, bson.M{"$set": bson.M{"last_sign_in": now.Unix()}}); err != nil {
		p.log.Warn().Err(err).Str("user_id", doc.ID.Hex()).Msg("failed to record sign-in time")
	}
	doc.LastSignIn = now.Unix()

	rec := doc.record()
	return &rec, nil
}

// CustomToken mints a signed bearer token carrying the account's claims.
func (p *MongoProvider) CustomToken(ctx context.Context, uid string) (string, error) {
	doc, err := p.findByID(ctx, uid)
	if err != nil {
		return "", err
	}

	role, _ := doc.Claims["role"].(string)
	admin, _ := doc.Claims["admin"].(bool)
	claims := jwt.MapClaims{
		"sub":   uid,
		"email": doc.Email,
		"role":  role,
		"admin": admin,
		"exp":   time.Now().Add(p.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.jwtSecret))
}

// SetCustomClaims replaces the account's custom claims.
func (p *MongoProvider) SetCustomClaims(ctx context.Context, id string, claims map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := p.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"claims": claims}})
	if err != nil {
		return fmt.Errorf("set claims: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (p *MongoProvider) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	doc := userDoc{
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: string(hash),
		Claims:       map[string]any{"role": in.Role, "admin": in.Admin},
		CreatedAt:    time.Now().UTC().Unix(),
	}
	res, err := p.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	rec := doc.record()
	return &rec, nil
}

func (p *MongoProvider) UpdateUser(ctx context.Context, id string, patch ports.UserPatch) (*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	set := bson.M{}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.DisplayName != nil {
		set["display_name"] = *patch.DisplayName
	}
	if patch.Disabled != nil {
		set["disabled"] = *patch.Disabled
	}
	if patch.EmailVerified != nil {
		set["email_verified"] = *patch.EmailVerified
	}
	if len(set) == 0 {
		doc, err := p.findByID(ctx, id)
		if err != nil {
			return nil, err
		}
		rec := doc.record()
		return &rec, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err = p.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	rec := doc.record()
	return &rec, nil
}

func (p *MongoProvider) DeleteUsers(ctx context.Context, ids []string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return nil
	}
	if _, err := p.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique email index used for duplicate detection.
func (p *MongoProvider) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := p.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (p *MongoProvider) findByID(ctx context.Context, id string) (*userDoc, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	var doc userDoc
	if err := p.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &doc, nil
}

func encodePageToken(id primitive.ObjectID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.Hex()))
}

func decodePageToken(token string) (primitive.ObjectID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("malformed page token: %w", err)
	}
	oid, err := primitive.ObjectIDFromHex(string(raw))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("malformed page token: %w", err)
	}
	return oid, nil
}
