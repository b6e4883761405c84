package mocks

import (
	"context"

	"parcel-notifier/internal/models"
	"parcel-notifier/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockNotificationSender is a mock type for the NotificationSender type
type MockNotificationSender struct {
	mock.Mock
}

// Send provides a mock function with given fields: ctx, msg
func (_m *MockNotificationSender) Send(ctx context.Context, msg *models.NotificationMessage) (string, error) {
	ret := _m.Called(ctx, msg)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, *models.NotificationMessage) string); ok {
		r0 = rf(ctx, msg)
	} else {
		r0 = ret.String(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *models.NotificationMessage) error); ok {
		r1 = rf(ctx, msg)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockNotificationSender creates a new instance of MockNotificationSender. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockNotificationSender(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotificationSender {
	m := &MockNotificationSender{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ service.NotificationSender = (*MockNotificationSender)(nil)
