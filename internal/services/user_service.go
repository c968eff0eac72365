package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ricoshapp/stylehub/internal/auth"
	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/db"
	"github.com/ricoshapp/stylehub/internal/models"
)

// IUserService defines the interface for account and profile operations.
type IUserService interface {
	Register(ctx context.Context, username, email, name, password string, role models.Role) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateEmployerProfile(ctx context.Context, userID, shopName string) (*models.EmployerProfile, error)
	GetEmployerProfileByUserID(ctx context.Context, userID string) (*models.EmployerProfile, error)
	GetEmployerProfileByID(ctx context.Context, profileID string) (*models.EmployerProfile, error)
	UpsertTalentProfile(ctx context.Context, userID string, roles []string, availability [7]bool, zipCode string, travelRadiusMiles float64) (*models.TalentProfile, error)
	GetTalentProfileByUserID(ctx context.Context, userID string) (*models.TalentProfile, error)
	EnsureIndexes(ctx context.Context) error
	DeleteUser(ctx context.Context, userID string) error
}

const (
	usersCollection            = "users"
	employerProfilesCollection = "employer_profiles"
	talentProfilesCollection   = "talent_profiles"
)

// userService implements IUserService.
type userService struct {
	db         *mongo.Database
	cfg        *config.Config
	passwordRe *regexp.Regexp
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database, cfg *config.Config) IUserService {
	re, err := regexp.Compile(cfg.PasswordRegexp)
	if err != nil {
		re = regexp.MustCompile("^.{8,}$")
	}
	return &userService{db: db, cfg: cfg, passwordRe: re}
}

// EnsureIndexes creates the unique indexes on users and profiles. Safe to call
// on every startup: Mongo treats identical index definitions as a no-op.
func (s *userService) EnsureIndexes(ctx context.Context) error {
	users := s.db.Collection(usersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	for _, coll := range []string{employerProfilesCollection, talentProfilesCollection} {
		_, err = s.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create %s index: %w", coll, err)
		}
	}
	return nil
}

// Register creates a new account with a bcrypt password hash. Email and
// username are normalized to lower case before storage.
func (s *userService) Register(ctx context.Context, username, email, name, password string, role models.Role) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))
	if email == "" || username == "" {
		return nil, fmt.Errorf("email and username are required")
	}
	if !models.ValidRole(string(role)) {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if !s.passwordRe.MatchString(password) {
		return nil, fmt.Errorf("password does not meet requirements")
	}

	collection := s.db.Collection(usersCollection)

	// Pre-check for friendlier errors; the unique indexes remain the authority.
	count, err := collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}
	count, err = collection.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		Base:         models.NewBase(),
		Username:     username,
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := collection.InsertOne(ctx, user); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns the account. It deliberately returns
// the same error for unknown email and wrong password.
func (s *userService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidLogin
	}
	return user, nil
}

// FindByID finds a non-deleted user by ID.
func (s *userService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID, "deleted": false}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user %s: %w", userID, err)
	}
	return &user, nil
}

// FindByEmail finds a non-deleted user by email (case-insensitive).
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email, "deleted": false}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	return &user, nil
}

// CreateEmployerProfile creates the employer profile for a user. One profile
// per user, enforced by the unique user_id index.
func (s *userService) CreateEmployerProfile(ctx context.Context, userID, shopName string) (*models.EmployerProfile, error) {
	if _, err := s.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	profile := &models.EmployerProfile{
		Base:      models.NewBase(),
		UserID:    userID,
		ShopName:  strings.TrimSpace(shopName),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.Collection(employerProfilesCollection).InsertOne(ctx, profile); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return s.GetEmployerProfileByUserID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to insert employer profile: %w", err)
	}
	return profile, nil
}

// GetEmployerProfileByUserID finds the employer profile owned by a user.
func (s *userService) GetEmployerProfileByUserID(ctx context.Context, userID string) (*models.EmployerProfile, error) {
	var profile models.EmployerProfile
	err := s.db.Collection(employerProfilesCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error finding employer profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

// GetEmployerProfileByID finds an employer profile by its own ID.
func (s *userService) GetEmployerProfileByID(ctx context.Context, profileID string) (*models.EmployerProfile, error) {
	var profile models.EmployerProfile
	err := s.db.Collection(employerProfilesCollection).FindOne(ctx, bson.M{"_id": profileID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error finding employer profile %s: %w", profileID, err)
	}
	return &profile, nil
}

// UpsertTalentProfile creates or replaces the talent profile for a user.
func (s *userService) UpsertTalentProfile(ctx context.Context, userID string, roles []string, availability [7]bool, zipCode string, travelRadiusMiles float64) (*models.TalentProfile, error) {
	if _, err := s.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	collection := s.db.Collection(talentProfilesCollection)
	update := bson.M{
		"$set": bson.M{
			"roles":               roles,
			"availability_days":   availability,
			"zip_code":            zipCode,
			"travel_radius_miles": travelRadiusMiles,
		},
		"$setOnInsert": bson.M{
			"_id":        models.NewBase().ID,
			"user_id":    userID,
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := collection.UpdateOne(ctx, bson.M{"user_id": userID}, update, opts); err != nil {
		return nil, fmt.Errorf("failed to upsert talent profile: %w", err)
	}
	return s.GetTalentProfileByUserID(ctx, userID)
}

// GetTalentProfileByUserID finds the talent profile owned by a user.
func (s *userService) GetTalentProfileByUserID(ctx context.Context, userID string) (*models.TalentProfile, error) {
	var profile models.TalentProfile
	err := s.db.Collection(talentProfilesCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error finding talent profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

// DeleteUser soft-deletes a user account. Listings and inquiries are kept for
// the other party's thread history.
func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": userID, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
