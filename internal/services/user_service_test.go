package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/models"
	"github.com/ricoshapp/stylehub/internal/utils"
)

func setupUserTest(t *testing.T, dbName string) (*mongo.Database, IUserService) {
	db := utils.SetupTestDB(t, dbName, "users", "employer_profiles", "talent_profiles")
	cfg := &config.Config{PasswordRegexp: "^.{8,}$"}
	svc := NewUserService(db, cfg)
	require.NoError(t, svc.EnsureIndexes(context.Background()))
	return db, svc
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	_, svc := setupUserTest(t, "testdb_user_register")
	ctx := context.Background()

	user, err := svc.Register(ctx, "JoFade", "Jo@Example.com", "Jo", "hunter2hunter2", models.RoleEmployer)
	require.NoError(t, err)
	assert.Equal(t, "jofade", user.Username)
	assert.Equal(t, "jo@example.com", user.Email)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	_, err = svc.Register(ctx, "other", "jo@example.com", "", "hunter2hunter2", models.RoleTalent)
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.Register(ctx, "jofade", "new@example.com", "", "hunter2hunter2", models.RoleTalent)
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.Register(ctx, "shortpw", "short@example.com", "", "short", models.RoleTalent)
	assert.Error(t, err)

	_, err = svc.Register(ctx, "badrole", "badrole@example.com", "", "hunter2hunter2", models.Role("manager"))
	assert.Error(t, err)

	logged, err := svc.Login(ctx, "jo@example.com", "hunter2hunter2")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = svc.Login(ctx, "jo@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

func TestUserService_Profiles(t *testing.T) {
	_, svc := setupUserTest(t, "testdb_user_profiles")
	ctx := context.Background()

	user, err := svc.Register(ctx, "shopowner", "shop@example.com", "", "hunter2hunter2", models.RoleEmployer)
	require.NoError(t, err)

	profile, err := svc.CreateEmployerProfile(ctx, user.ID, "The Fade Factory")
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)

	// Creating again returns the existing profile rather than failing.
	again, err := svc.CreateEmployerProfile(ctx, user.ID, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)

	byUser, err := svc.GetEmployerProfileByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, byUser.ID)

	byID, err := svc.GetEmployerProfileByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byID.UserID)

	_, err = svc.GetEmployerProfileByUserID(ctx, utils.NewID())
	assert.ErrorIs(t, err, ErrProfileNotFound)

	talent, err := svc.Register(ctx, "lashpro", "lash@example.com", "", "hunter2hunter2", models.RoleTalent)
	require.NoError(t, err)

	avail := [7]bool{false, true, true, true, true, true, false}
	tp, err := svc.UpsertTalentProfile(ctx, talent.ID, []string{"lash_tech"}, avail, "92101", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"lash_tech"}, tp.Roles)
	assert.Equal(t, avail, tp.AvailabilityDays)

	tp2, err := svc.UpsertTalentProfile(ctx, talent.ID, []string{"lash_tech", "esthetician"}, avail, "92103", 30)
	require.NoError(t, err)
	assert.Equal(t, tp.ID, tp2.ID)
	assert.Equal(t, "92103", tp2.ZipCode)
}

func TestUserService_DeleteUser(t *testing.T) {
	_, svc := setupUserTest(t, "testdb_user_delete")
	ctx := context.Background()

	user, err := svc.Register(ctx, "leaver", "leaver@example.com", "", "hunter2hunter2", models.RoleTalent)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))

	_, err = svc.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(ctx, "leaver@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	assert.ErrorIs(t, svc.DeleteUser(ctx, user.ID), ErrUserNotFound)
}
