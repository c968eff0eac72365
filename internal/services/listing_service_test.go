package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/geo"
	"github.com/ricoshapp/stylehub/internal/models"
	"github.com/ricoshapp/stylehub/internal/utils"
)

func setupTestDBListing(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "listings", "users", "employer_profiles", "talent_profiles")
}

func insertTestUser(t *testing.T, db *mongo.Database, role models.Role) *models.User {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		Base:      models.NewBase(),
		Username:  "user-" + utils.NewID(),
		Email:     utils.NewID() + "@example.com",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.Collection("users").InsertOne(context.Background(), user)
	require.NoError(t, err)
	return user
}

func insertEmployerProfile(t *testing.T, db *mongo.Database, userID string) *models.EmployerProfile {
	t.Helper()
	profile := &models.EmployerProfile{
		Base:      models.NewBase(),
		UserID:    userID,
		ShopName:  "Fade Factory",
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Collection("employer_profiles").InsertOne(context.Background(), profile)
	require.NoError(t, err)
	return profile
}

func TestListingService_CRUD(t *testing.T) {
	db := setupTestDBListing(t, "testdb_listing_service_crud")
	cfg := &config.Config{}
	svc := NewListingService(db, cfg)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleEmployer)

	listing, err := svc.CreateListing(ctx, owner.ID, &models.Listing{
		BusinessName: "Fade Factory",
		Title:        "Barber chair for rent",
		ServiceRole:  "barber",
		CompModel:    models.CompBoothRent,
	})
	assert.NoError(t, err)
	assert.NotNil(t, listing)
	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, owner.ID, listing.OwnerID)

	found, err := svc.FindListingByID(ctx, listing.ID)
	assert.NoError(t, err)
	assert.Equal(t, listing.ID, found.ID)

	notFound, err := svc.FindListingByID(ctx, utils.NewID())
	assert.ErrorIs(t, err, ErrListingNotFound)
	assert.Nil(t, notFound)

	updated, err := svc.UpdateListing(ctx, listing.ID, owner.ID, map[string]interface{}{
		"title":    "Barber chair, weekends only",
		"schedule": "part_time",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Barber chair, weekends only", updated.Title)
	assert.Equal(t, "part_time", updated.Schedule)

	_, err = svc.UpdateListing(ctx, listing.ID, owner.ID, map[string]interface{}{"owner_id": "someone-else"})
	assert.Error(t, err)

	stranger := insertTestUser(t, db, models.RoleTalent)
	_, err = svc.UpdateListing(ctx, listing.ID, stranger.ID, map[string]interface{}{"title": "hijacked"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = svc.DeleteListing(ctx, listing.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = svc.DeleteListing(ctx, listing.ID, owner.ID)
	assert.NoError(t, err)

	_, err = svc.FindListingByID(ctx, listing.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestListingService_ResolveOwner(t *testing.T) {
	db := setupTestDBListing(t, "testdb_listing_service_resolve_owner")
	cfg := &config.Config{}
	svc := NewListingService(db, cfg)
	ctx := context.Background()

	directOwner := insertTestUser(t, db, models.RoleEmployer)
	profileOwner := insertTestUser(t, db, models.RoleEmployer)
	profile := insertEmployerProfile(t, db, profileOwner.ID)

	t.Run("direct owner", func(t *testing.T) {
		listing := &models.Listing{Base: models.NewBase(), OwnerID: directOwner.ID, Title: "direct"}
		owner, err := svc.ResolveOwner(ctx, listing)
		assert.NoError(t, err)
		assert.Equal(t, directOwner.ID, owner)
	})

	t.Run("profile-mediated owner", func(t *testing.T) {
		listing := &models.Listing{Base: models.NewBase(), EmployerProfileID: profile.ID, Title: "via profile"}
		owner, err := svc.ResolveOwner(ctx, listing)
		assert.NoError(t, err)
		assert.Equal(t, profileOwner.ID, owner)
	})

	t.Run("direct owner wins over profile", func(t *testing.T) {
		listing := &models.Listing{Base: models.NewBase(), OwnerID: directOwner.ID, EmployerProfileID: profile.ID}
		owner, err := svc.ResolveOwner(ctx, listing)
		assert.NoError(t, err)
		assert.Equal(t, directOwner.ID, owner)
	})

	t.Run("neither reference", func(t *testing.T) {
		listing := &models.Listing{Base: models.NewBase(), Title: "orphaned"}
		_, err := svc.ResolveOwner(ctx, listing)
		assert.ErrorIs(t, err, ErrNoListingOwner)
	})

	t.Run("dangling profile reference", func(t *testing.T) {
		listing := &models.Listing{Base: models.NewBase(), EmployerProfileID: utils.NewID()}
		_, err := svc.ResolveOwner(ctx, listing)
		assert.ErrorIs(t, err, ErrNoListingOwner)
	})
}

func TestListingService_FindListingsByOwner_CoversBothShapes(t *testing.T) {
	db := setupTestDBListing(t, "testdb_listing_service_by_owner")
	cfg := &config.Config{}
	svc := NewListingService(db, cfg)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleEmployer)
	profile := insertEmployerProfile(t, db, owner.ID)

	direct, err := svc.CreateListing(ctx, owner.ID, &models.Listing{Title: "direct listing"})
	require.NoError(t, err)

	legacy := &models.Listing{
		Base:              models.NewBase(),
		EmployerProfileID: profile.ID,
		Title:             "legacy listing",
		CreatedAt:         time.Now().UTC().Add(-time.Hour),
	}
	_, err = db.Collection("listings").InsertOne(ctx, legacy)
	require.NoError(t, err)

	listings, err := svc.FindListingsByOwner(ctx, owner.ID)
	assert.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, direct.ID, listings[0].ID)
	assert.Equal(t, legacy.ID, listings[1].ID)
}

func TestListingService_SearchListings(t *testing.T) {
	db := setupTestDBListing(t, "testdb_listing_service_search")
	cfg := &config.Config{}
	svc := NewListingService(db, cfg)
	ctx := context.Background()

	owner := insertTestUser(t, db, models.RoleEmployer)

	coord := func(lat, lng float64) *models.Coordinate {
		return &models.Coordinate{Lat: lat, Lng: lng}
	}

	downtown, err := svc.CreateListing(ctx, owner.ID, &models.Listing{
		Title:       "Downtown barber chair",
		ServiceRole: "barber",
		Location:    models.ListingLocation{City: "San Diego", Coordinate: coord(32.715, -117.157)},
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond) // distinct created_at for ordering assertions

	oceanside, err := svc.CreateListing(ctx, owner.ID, &models.Listing{
		Title:       "Oceanside lash station",
		ServiceRole: "lash_tech",
		Location:    models.ListingLocation{City: "Oceanside", Coordinate: coord(33.1959, -117.3795)},
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	noCoord, err := svc.CreateListing(ctx, owner.ID, &models.Listing{
		Title:       "Mystery suite",
		ServiceRole: "esthetician",
	})
	require.NoError(t, err)

	t.Run("no origin keeps recency order", func(t *testing.T) {
		results, err := svc.SearchListings(ctx, ListingFilters{}, nil)
		assert.NoError(t, err)
		require.Len(t, results, 3)
		// Newest first.
		assert.Equal(t, noCoord.ID, results[0].ID)
		assert.Equal(t, oceanside.ID, results[1].ID)
		assert.Equal(t, downtown.ID, results[2].ID)
	})

	t.Run("attribute filter", func(t *testing.T) {
		results, err := svc.SearchListings(ctx, ListingFilters{ServiceRole: "barber"}, nil)
		assert.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, downtown.ID, results[0].ID)
	})

	t.Run("text query", func(t *testing.T) {
		results, err := svc.SearchListings(ctx, ListingFilters{Query: "lash"}, nil)
		assert.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, oceanside.ID, results[0].ID)
	})

	t.Run("radius narrows and reorders", func(t *testing.T) {
		origin := &geo.SearchOrigin{
			Coordinate:  models.Coordinate{Lat: 32.7157, Lng: -117.1611},
			RadiusMiles: 15,
		}
		results, err := svc.SearchListings(ctx, ListingFilters{}, origin)
		assert.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, downtown.ID, results[0].ID)
	})
}
