package notification

import (
	"context"
	"errors"
	"testing"

	"rowmatch/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRecipients struct{ mock.Mock }

func (m *MockRecipients) FindByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendAccepted(ctx context.Context, to, name, activityID string) error {
	return m.Called(ctx, to, name, activityID).Error(0)
}

func (m *MockMailer) SendRejected(ctx context.Context, to, name, activityID string) error {
	return m.Called(ctx, to, name, activityID).Error(0)
}

func (m *MockMailer) SendActivityFull(ctx context.Context, to, name, activityID string) error {
	return m.Called(ctx, to, name, activityID).Error(0)
}

func TestService_Handle(t *testing.T) {
	efe := &user.User{ID: "Efe", FirstName: "Efe", LastName: "Unal", Email: "efe@example.com"}

	tests := []struct {
		name   string
		status Status
		method string
	}{
		{"accepted", StatusAccepted, "SendAccepted"},
		{"rejected", StatusRejected, "SendRejected"},
		{"activity full", StatusActivityFull, "SendActivityFull"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockRecipients)
			mailer := new(MockMailer)
			users.On("FindByID", mock.Anything, "Efe").Return(efe, nil)
			mailer.On(tt.method, mock.Anything, "efe@example.com", "Efe Unal", "act-1").Return(nil)

			err := NewService(users, mailer).Handle(context.Background(), Event{UserID: "Efe", Status: tt.status, ActivityID: "act-1"})

			assert.NoError(t, err)
			users.AssertExpectations(t)
			mailer.AssertExpectations(t)
		})
	}
}

func TestService_HandleErrors(t *testing.T) {
	t.Run("unknown status", func(t *testing.T) {
		users := new(MockRecipients)
		err := NewService(users, new(MockMailer)).Handle(context.Background(), Event{UserID: "Efe", Status: "WAITING"})
		assert.ErrorIs(t, err, ErrUnknownStatus)
		users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(MockRecipients)
		users.On("FindByID", mock.Anything, "Ghost").Return(nil, user.ErrUserNotFound)

		err := NewService(users, new(MockMailer)).Handle(context.Background(), Event{UserID: "Ghost", Status: StatusAccepted})
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("queue failure", func(t *testing.T) {
		users := new(MockRecipients)
		mailer := new(MockMailer)
		users.On("FindByID", mock.Anything, "Efe").Return(&user.User{ID: "Efe", Email: "efe@example.com"}, nil)
		mailer.On("SendRejected", mock.Anything, "efe@example.com", "Efe", "act-1").Return(errors.New("redis down"))

		err := NewService(users, mailer).Handle(context.Background(), Event{UserID: "Efe", Status: StatusRejected, ActivityID: "act-1"})
		assert.Error(t, err)
	})
}
