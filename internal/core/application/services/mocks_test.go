package services_test

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockIdentityDirectory struct{ mock.Mock }

func (m *MockIdentityDirectory) GetGroup(ctx context.Context, id kernel.UUID) (ports.Group, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.Group), args.Error(1)
}

func (m *MockIdentityDirectory) GetGroupMemberEmails(ctx context.Context, id kernel.UUID) ([]string, error) {
	args := m.Called(ctx, id)
	emails, _ := args.Get(0).([]string)
	return emails, args.Error(1)
}

func (m *MockIdentityDirectory) GetEmployee(ctx context.Context, id kernel.UUID) (ports.Employee, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.Employee), args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, event ports.OrderEvent) error {
	args := m.Called(ctx, subject, event)
	return args.Error(0)
}
