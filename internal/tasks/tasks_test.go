package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/models"
	"github.com/ricoshapp/stylehub/internal/tasks"
)

// --- Mocks ---

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	args := m.Called(ctx, to, subject, rawMessage)
	return args.Error(0)
}

type MockEmailTemplateService struct {
	mock.Mock
}

func (m *MockEmailTemplateService) GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error) {
	args := m.Called(ctx, templateID, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateService) SaveTemplate(ctx context.Context, template *models.EmailTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockEmailTemplateService) DeleteTemplate(ctx context.Context, templateID, locale string) error {
	args := m.Called(ctx, templateID, locale)
	return args.Error(0)
}

// --- Tests ---

func TestHandleEmailDeliveryTask_Success(t *testing.T) {
	mockEmailSender := new(MockEmailSender)
	mockTmplService := new(MockEmailTemplateService)
	cfg := &config.Config{SmtpFromAddress: "noreply@stylehub.example.com"}

	p := tasks.NewTaskProcessor(cfg, mockEmailSender, nil, nil, nil, mockTmplService, nil, nil)

	payloadBytes, _ := json.Marshal(tasks.EmailTaskPayload{
		To:         "owner@example.com",
		TemplateID: "new_inquiry",
		Data: map[string]interface{}{
			"sender_name":   "Dana",
			"listing_title": "Barber chair",
			"sender_phone":  "619-555-0100",
			"note":          "Available weekends",
		},
	})
	task := asynq.NewTask(tasks.TypeEmailDelivery, payloadBytes)

	mockTmplService.On("GetTemplate", mock.Anything, "new_inquiry", "en-US").Return(&models.EmailTemplate{
		TemplateID: "new_inquiry",
		Locale:     "en-US",
		Subject:    "New inquiry from {{.sender_name}}",
		Body:       "{{.sender_name}} ({{.sender_phone}}) asked about {{.listing_title}}: {{.note}}",
	}, nil)

	mockEmailSender.On("Send", mock.Anything, []string{"owner@example.com"}, "New inquiry from Dana",
		mock.MatchedBy(func(raw []byte) bool {
			// Placeholders resolved in the body.
			return strings.Contains(string(raw), "Dana (619-555-0100) asked about Barber chair")
		})).Return(nil)

	err := p.HandleEmailDeliveryTask(context.Background(), task)
	assert.NoError(t, err)
	mockTmplService.AssertExpectations(t)
	mockEmailSender.AssertExpectations(t)
}

func TestHandleEmailDeliveryTask_TemplateNotFound(t *testing.T) {
	mockEmailSender := new(MockEmailSender)
	mockTmplService := new(MockEmailTemplateService)
	cfg := &config.Config{}

	p := tasks.NewTaskProcessor(cfg, mockEmailSender, nil, nil, nil, mockTmplService, nil, nil)

	payloadBytes, _ := json.Marshal(tasks.EmailTaskPayload{
		To:         "owner@example.com",
		TemplateID: "nonexistent",
	})
	task := asynq.NewTask(tasks.TypeEmailDelivery, payloadBytes)

	mockTmplService.On("GetTemplate", mock.Anything, "nonexistent", "en-US").
		Return(nil, errors.New("template not found"))

	err := p.HandleEmailDeliveryTask(context.Background(), task)
	assert.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	mockEmailSender.AssertNotCalled(t, "Send")
}

func TestHandleEmailDeliveryTask_BadPayload(t *testing.T) {
	p := tasks.NewTaskProcessor(&config.Config{}, new(MockEmailSender), nil, nil, nil, new(MockEmailTemplateService), nil, nil)
	task := asynq.NewTask(tasks.TypeEmailDelivery, []byte("{not json"))

	err := p.HandleEmailDeliveryTask(context.Background(), task)
	assert.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleImageProcessTask_InvalidListingID(t *testing.T) {
	p := tasks.NewTaskProcessor(&config.Config{}, nil, nil, nil, nil, nil, nil, nil)

	payloadBytes, _ := json.Marshal(tasks.ImageTaskPayload{
		S3Key:     "photos/u/l/key.jpg",
		ListingID: "not-a-valid-id",
	})
	task := asynq.NewTask(tasks.TypeImageProcess, payloadBytes)

	err := p.HandleImageProcessTask(context.Background(), task)
	assert.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
