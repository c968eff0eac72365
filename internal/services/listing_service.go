package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/db"
	"github.com/ricoshapp/stylehub/internal/geo"
	"github.com/ricoshapp/stylehub/internal/models"
)

// ListingFilters are the attribute-based search criteria. Zero values mean
// "no constraint".
type ListingFilters struct {
	ServiceRole    string
	CompModel      string
	EmploymentType string
	Schedule       string
	ApprenticeOK   *bool
	Query          string // matched against title and business name
	Limit          int
}

// IListingService defines the interface for listing operations.
type IListingService interface {
	CreateListing(ctx context.Context, ownerID string, listing *models.Listing) (*models.Listing, error)
	FindListingByID(ctx context.Context, listingID string) (*models.Listing, error)
	SearchListings(ctx context.Context, filters ListingFilters, origin *geo.SearchOrigin) ([]models.Listing, error)
	FindListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error)
	ResolveOwner(ctx context.Context, listing *models.Listing) (string, error)
	UpdateListing(ctx context.Context, listingID, userID string, updates map[string]interface{}) (*models.Listing, error)
	AddPhotoToListing(ctx context.Context, listingID, userID string, photo models.ListingPhoto) error
	DeleteListing(ctx context.Context, listingID, userID string) error
}

const listingsCollection = "listings"

// listingService implements IListingService.
type listingService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewListingService creates a new ListingService.
func NewListingService(db *mongo.Database, cfg *config.Config) IListingService {
	return &listingService{db: db, cfg: cfg}
}

// CreateListing inserts a new listing owned directly by ownerID. The caller
// provides the descriptive fields; identity and timestamps are set here.
func (s *listingService) CreateListing(ctx context.Context, ownerID string, listing *models.Listing) (*models.Listing, error) {
	if listing.Title == "" {
		return nil, fmt.Errorf("listing title is required")
	}
	if listing.CompModel != "" {
		switch listing.CompModel {
		case models.CompBoothRent, models.CompCommission, models.CompHourly, models.CompHybrid:
		default:
			return nil, fmt.Errorf("unknown compensation model: %s", listing.CompModel)
		}
	}

	now := time.Now().UTC()
	listing.OwnerID = ownerID
	listing.EmployerProfileID = ""
	listing.CreatedAt = now
	listing.UpdatedAt = now
	listing.Deleted = false

	doc, err := db.InsertOne(ctx, s.db.Collection(listingsCollection), listing)
	if err != nil {
		return nil, fmt.Errorf("failed to insert listing for owner %s: %w", ownerID, err)
	}
	return doc.(*models.Listing), nil
}

// FindListingByID finds a non-deleted listing by its ID.
func (s *listingService) FindListingByID(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"_id": listingID, "deleted": false}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("error finding listing %s: %w", listingID, err)
	}
	return &listing, nil
}

// SearchListings returns listings matching the attribute filters. Without an
// origin the results are newest-first; with an origin they are narrowed to the
// radius and re-ordered nearest-first.
func (s *listingService) SearchListings(ctx context.Context, filters ListingFilters, origin *geo.SearchOrigin) ([]models.Listing, error) {
	filter := bson.M{"deleted": false}
	if filters.ServiceRole != "" {
		filter["service_role"] = filters.ServiceRole
	}
	if filters.CompModel != "" {
		filter["comp_model"] = filters.CompModel
	}
	if filters.EmploymentType != "" {
		filter["employment_type"] = filters.EmploymentType
	}
	if filters.Schedule != "" {
		filter["schedule"] = filters.Schedule
	}
	if filters.ApprenticeOK != nil {
		filter["apprentice_ok"] = *filters.ApprenticeOK
	}
	if filters.Query != "" {
		re := bson.M{"$regex": filters.Query, "$options": "i"}
		filter["$or"] = []bson.M{
			{"title": re},
			{"business_name": re},
			{"description": re},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filters.Limit > 0 && origin == nil {
		// A radius search must see all candidates before narrowing; the limit
		// is applied after the proximity pass instead.
		opts.SetLimit(int64(filters.Limit))
	}

	cursor, err := s.db.Collection(listingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error searching listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("error decoding listings: %w", err)
	}

	listings = geo.FilterByProximity(origin, listings)
	if filters.Limit > 0 && len(listings) > filters.Limit {
		listings = listings[:filters.Limit]
	}
	return listings, nil
}

// FindListingsByOwner returns all non-deleted listings resolvable to ownerID,
// covering both ownership shapes.
func (s *listingService) FindListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	profileIDs := []string{}
	pCursor, err := s.db.Collection(employerProfilesCollection).Find(ctx, bson.M{"user_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("error finding employer profiles for %s: %w", ownerID, err)
	}
	var profiles []models.EmployerProfile
	if err := pCursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("error decoding employer profiles: %w", err)
	}
	for _, p := range profiles {
		profileIDs = append(profileIDs, p.ID)
	}

	filter := bson.M{
		"deleted": false,
		"$or": []bson.M{
			{"owner_id": ownerID},
			{"employer_profile_id": bson.M{"$in": profileIDs}},
		},
	}
	cursor, err := s.db.Collection(listingsCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error finding listings for owner %s: %w", ownerID, err)
	}
	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("error decoding listings: %w", err)
	}
	return listings, nil
}

// ResolveOwner returns the user ID that owns a listing. Newer listings carry
// the owner directly; older ones only reference an employer profile, whose
// user is the owner. Listings with neither are unowned and cannot receive
// inquiries.
func (s *listingService) ResolveOwner(ctx context.Context, listing *models.Listing) (string, error) {
	if listing.OwnerID != "" {
		return listing.OwnerID, nil
	}
	if listing.EmployerProfileID == "" {
		return "", ErrNoListingOwner
	}
	var profile models.EmployerProfile
	err := s.db.Collection(employerProfilesCollection).FindOne(ctx, bson.M{"_id": listing.EmployerProfileID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNoListingOwner
		}
		return "", fmt.Errorf("error resolving listing owner via profile %s: %w", listing.EmployerProfileID, err)
	}
	if profile.UserID == "" {
		return "", ErrNoListingOwner
	}
	return profile.UserID, nil
}

// UpdateListing updates mutable fields of a listing after verifying ownership.
// `updates` uses BSON field names.
func (s *listingService) UpdateListing(ctx context.Context, listingID, userID string, updates map[string]interface{}) (*models.Listing, error) {
	listing, err := s.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	owner, err := s.ResolveOwner(ctx, listing)
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, ErrNotAuthorized
	}

	allowed := bson.M{}
	for key, value := range updates {
		switch key {
		case "business_name", "title", "service_role", "comp_model", "pay_min", "pay_max",
			"pay_unit", "pay_visible", "employment_type", "schedule", "experience_text",
			"shift_days", "apprentice_ok", "perks", "description", "location":
			allowed[key] = value
		default:
			return nil, fmt.Errorf("field '%s' cannot be updated via UpdateListing", key)
		}
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("no valid fields provided for update")
	}
	allowed["updated_at"] = time.Now().UTC()

	res := s.db.Collection(listingsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": listingID, "deleted": false},
		bson.M{"$set": allowed},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Listing
	if err := res.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("error updating listing %s: %w", listingID, err)
	}
	return &updated, nil
}

// AddPhotoToListing appends a photo reference to a listing owned by userID.
func (s *listingService) AddPhotoToListing(ctx context.Context, listingID, userID string, photo models.ListingPhoto) error {
	listing, err := s.FindListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	owner, err := s.ResolveOwner(ctx, listing)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrNotAuthorized
	}

	_, err = s.db.Collection(listingsCollection).UpdateOne(ctx,
		bson.M{"_id": listingID},
		bson.M{
			"$push": bson.M{"photos": photo},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("error adding photo to listing %s: %w", listingID, err)
	}
	return nil
}

// DeleteListing soft-deletes a listing after verifying ownership.
func (s *listingService) DeleteListing(ctx context.Context, listingID, userID string) error {
	listing, err := s.FindListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	owner, err := s.ResolveOwner(ctx, listing)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrNotAuthorized
	}

	_, err = s.db.Collection(listingsCollection).UpdateOne(ctx,
		bson.M{"_id": listingID},
		bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("error deleting listing %s: %w", listingID, err)
	}
	return nil
}
