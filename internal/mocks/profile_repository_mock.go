package mocks

import (
	"context"

	"parcel-notifier/internal/models"
	"parcel-notifier/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockProfileRepository is a mock type for the ProfileRepository type
type MockProfileRepository struct {
	mock.Mock
}

// GetProfileByID provides a mock function with given fields: ctx, id
func (_m *MockProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Profile
	if rf, ok := ret.Get(0).(func(context.Context, string) *models.Profile); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Profile)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockProfileRepository creates a new instance of MockProfileRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockProfileRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProfileRepository {
	m := &MockProfileRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ repository.ProfileRepository = (*MockProfileRepository)(nil)

// FailingFactory всегда возвращает ошибку создания клиента хранилища.
type FailingFactory struct {
	Err error
}

func (f FailingFactory) NewProfileRepository() (repository.ProfileRepository, error) {
	return nil, f.Err
}
