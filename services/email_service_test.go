package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/travel-buddies/travel-buddies-backend/config"
)

type mockEmailsService struct {
	mock.Mock
}

func (m *mockEmailsService) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.SendEmailResponse), args.Error(1)
}

func (m *mockEmailsService) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.SendEmailResponse), args.Error(1)
}

func (m *mockEmailsService) Update(params *resend.UpdateEmailRequest) (*resend.UpdateEmailResponse, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.UpdateEmailResponse), args.Error(1)
}

func (m *mockEmailsService) UpdateWithContext(ctx context.Context, params *resend.UpdateEmailRequest) (*resend.UpdateEmailResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.UpdateEmailResponse), args.Error(1)
}

func (m *mockEmailsService) Cancel(id string) (*resend.CancelScheduledEmailResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.CancelScheduledEmailResponse), args.Error(1)
}

func (m *mockEmailsService) CancelWithContext(ctx context.Context, id string) (*resend.CancelScheduledEmailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.CancelScheduledEmailResponse), args.Error(1)
}

func (m *mockEmailsService) Get(id string) (*resend.Email, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.Email), args.Error(1)
}

func (m *mockEmailsService) GetWithContext(ctx context.Context, id string) (*resend.Email, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.Email), args.Error(1)
}

type mockRegistry struct{}

func (m *mockRegistry) Register(c prometheus.Collector) error   { return nil }
func (m *mockRegistry) MustRegister(cs ...prometheus.Collector) {}
func (m *mockRegistry) Unregister(c prometheus.Collector) bool  { return true }

func testEmailConfig(apiKey string) *config.EmailConfig {
	return &config.EmailConfig{
		FromName:     "Travel Buddies",
		FromAddress:  "hello@example.com",
		ResendAPIKey: apiKey,
	}
}

func TestSendApplicationApproved(t *testing.T) {
	mockEmails := &mockEmailsService{}
	mockEmails.On("Send", mock.AnythingOfType("*resend.SendEmailRequest")).
		Return(&resend.SendEmailResponse{Id: "test-id"}, nil).Once()

	service := NewEmailServiceWithRegistry(testEmailConfig("test-api-key"), &mockRegistry{})
	service.client.Emails = mockEmails

	err := service.SendApplicationApproved(context.Background(), "alice@example.com", "alice", "Alps Hiking")
	assert.NoError(t, err)

	sent := mockEmails.Calls[0].Arguments.Get(0).(*resend.SendEmailRequest)
	assert.Equal(t, []string{"alice@example.com"}, sent.To)
	assert.Contains(t, sent.Subject, "Alps Hiking")
	assert.Contains(t, sent.Html, "alice")

	mockEmails.AssertExpectations(t)
}

func TestSendApplicationRejected_SendFailure(t *testing.T) {
	mockEmails := &mockEmailsService{}
	mockEmails.On("Send", mock.AnythingOfType("*resend.SendEmailRequest")).
		Return(nil, assert.AnError).Once()

	service := NewEmailServiceWithRegistry(testEmailConfig("test-api-key"), &mockRegistry{})
	service.client.Emails = mockEmails

	initialErrors := testGetCounterValue(service.metrics.errorCount)

	err := service.SendApplicationRejected(context.Background(), "alice@example.com", "alice", "Alps Hiking")
	assert.Error(t, err)
	assert.Equal(t, initialErrors+1, testGetCounterValue(service.metrics.errorCount))

	mockEmails.AssertExpectations(t)
}

func TestEmailService_SkipsWithoutAPIKey(t *testing.T) {
	service := NewEmailServiceWithRegistry(testEmailConfig(""), &mockRegistry{})

	err := service.SendApplicationApproved(context.Background(), "alice@example.com", "alice", "Alps Hiking")
	assert.NoError(t, err)
	assert.Equal(t, float64(0), testGetCounterValue(service.metrics.sentCount))
}

func testGetCounterValue(counter prometheus.Counter) float64 {
	var m dto.Metric
	_ = counter.Write(&m)
	return *m.Counter.Value
}
