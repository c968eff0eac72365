package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"github.com/ricoshapp/stylehub/internal/geo"
	"github.com/ricoshapp/stylehub/internal/models"
	"github.com/ricoshapp/stylehub/internal/services"
)

// --- Mocks ---

// MockUserService implements services.IUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, username, email, name, password string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, username, email, name, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) CreateEmployerProfile(ctx context.Context, userID, shopName string) (*models.EmployerProfile, error) {
	args := m.Called(ctx, userID, shopName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmployerProfile), args.Error(1)
}

func (m *MockUserService) GetEmployerProfileByUserID(ctx context.Context, userID string) (*models.EmployerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmployerProfile), args.Error(1)
}

func (m *MockUserService) GetEmployerProfileByID(ctx context.Context, profileID string) (*models.EmployerProfile, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmployerProfile), args.Error(1)
}

func (m *MockUserService) UpsertTalentProfile(ctx context.Context, userID string, roles []string, availability [7]bool, zipCode string, travelRadiusMiles float64) (*models.TalentProfile, error) {
	args := m.Called(ctx, userID, roles, availability, zipCode, travelRadiusMiles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TalentProfile), args.Error(1)
}

func (m *MockUserService) GetTalentProfileByUserID(ctx context.Context, userID string) (*models.TalentProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TalentProfile), args.Error(1)
}

func (m *MockUserService) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockListingService implements services.IListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateListing(ctx context.Context, ownerID string, listing *models.Listing) (*models.Listing, error) {
	args := m.Called(ctx, ownerID, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) FindListingByID(ctx context.Context, listingID string) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) SearchListings(ctx context.Context, filters services.ListingFilters, origin *geo.SearchOrigin) ([]models.Listing, error) {
	args := m.Called(ctx, filters, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) FindListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) ResolveOwner(ctx context.Context, listing *models.Listing) (string, error) {
	args := m.Called(ctx, listing)
	return args.String(0), args.Error(1)
}

func (m *MockListingService) UpdateListing(ctx context.Context, listingID, userID string, updates map[string]interface{}) (*models.Listing, error) {
	args := m.Called(ctx, listingID, userID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) AddPhotoToListing(ctx context.Context, listingID, userID string, photo models.ListingPhoto) error {
	args := m.Called(ctx, listingID, userID, photo)
	return args.Error(0)
}

func (m *MockListingService) DeleteListing(ctx context.Context, listingID, userID string) error {
	args := m.Called(ctx, listingID, userID)
	return args.Error(0)
}

// MockInquiryService implements services.IInquiryService
type MockInquiryService struct {
	mock.Mock
}

func (m *MockInquiryService) Submit(ctx context.Context, senderID, listingID string, fields models.ContactFields) (*models.Inquiry, bool, error) {
	args := m.Called(ctx, senderID, listingID, fields)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Inquiry), args.Bool(1), args.Error(2)
}

func (m *MockInquiryService) FindByID(ctx context.Context, inquiryID string) (*models.Inquiry, error) {
	args := m.Called(ctx, inquiryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) Delete(ctx context.Context, inquiryID, actorID string) error {
	args := m.Called(ctx, inquiryID, actorID)
	return args.Error(0)
}

func (m *MockInquiryService) ListSent(ctx context.Context, senderID string) ([]models.Inquiry, error) {
	args := m.Called(ctx, senderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) ListReceived(ctx context.Context, ownerID string) ([]models.Inquiry, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) HasSentInquiry(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInquiryService) FindUnnotified(ctx context.Context, limit int) ([]models.Inquiry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) MarkNotified(ctx context.Context, inquiryID string) error {
	args := m.Called(ctx, inquiryID)
	return args.Error(0)
}

func (m *MockInquiryService) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockInboxService implements services.IInboxService
type MockInboxService struct {
	mock.Mock
}

func (m *MockInboxService) SendMessage(ctx context.Context, senderID, recipientID, listingID, body string) (*models.Message, error) {
	args := m.Called(ctx, senderID, recipientID, listingID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockInboxService) Threads(ctx context.Context, userID string) ([]models.Thread, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Thread), args.Error(1)
}

func (m *MockInboxService) ThreadMessages(ctx context.Context, userID, threadKey string) ([]models.Message, error) {
	args := m.Called(ctx, userID, threadKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// MockViewService implements services.IViewService
type MockViewService struct {
	mock.Mock
}

func (m *MockViewService) ResolveView(ctx context.Context, userID string, override string) (services.View, error) {
	args := m.Called(ctx, userID, override)
	return args.Get(0).(services.View), args.Error(1)
}

func (m *MockViewService) SetPreference(ctx context.Context, userID string, view services.View) error {
	args := m.Called(ctx, userID, view)
	return args.Error(0)
}

func (m *MockViewService) GetPreference(ctx context.Context, userID string) (services.View, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(services.View), args.Error(1)
}

// MockGeocoder implements geocode.IGeocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Forward(ctx context.Context, query string) (*models.AddressRecord, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AddressRecord), args.Error(1)
}

func (m *MockGeocoder) Reverse(ctx context.Context, coord models.Coordinate) (*models.AddressRecord, error) {
	args := m.Called(ctx, coord)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AddressRecord), args.Error(1)
}

// MockS3Storage implements storage.IS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, userID, listingID, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, userID, listingID, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockS3Storage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockAsynqClient implements handlers.IAsynqClient
type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	mockArgs := []interface{}{ctx, task}
	for _, opt := range opts {
		mockArgs = append(mockArgs, opt)
	}
	args := m.Called(mockArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
