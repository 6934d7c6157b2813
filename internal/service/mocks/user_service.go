package mocks

import (
	"context"
	"user-service/internal/service"
	"user-service/shared/models"

	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock type for the UserService type
type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

// NewMockUserService creates a new instance of MockUserService and registers
// a cleanup function to assert the mock's expectations.
func NewMockUserService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserService {
	m := &MockUserService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockUserService) Register(ctx context.Context, req models.CreateUserRequest) (string, error) {
	ret := _m.Called(ctx, req)
	return ret.String(0), ret.Error(1)
}

func (_m *MockUserService) Login(ctx context.Context, username, password string) (string, error) {
	ret := _m.Called(ctx, username, password)
	return ret.String(0), ret.Error(1)
}

func (_m *MockUserService) Logout(ctx context.Context, token string) error {
	ret := _m.Called(ctx, token)
	return ret.Error(0)
}

func (_m *MockUserService) VerifyToken(ctx context.Context, username string) (*models.User, error) {
	ret := _m.Called(ctx, username)
	var r0 *models.User
	if v := ret.Get(0); v != nil {
		r0 = v.(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserService) Profile(ctx context.Context, username string) (*models.User, error) {
	ret := _m.Called(ctx, username)
	var r0 *models.User
	if v := ret.Get(0); v != nil {
		r0 = v.(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserService) Update(ctx context.Context, user models.User) (*models.User, error) {
	ret := _m.Called(ctx, user)
	var r0 *models.User
	if v := ret.Get(0); v != nil {
		r0 = v.(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserService) Delete(ctx context.Context, cert models.Certificate) error {
	ret := _m.Called(ctx, cert)
	return ret.Error(0)
}

func (_m *MockUserService) VerifyCertificate(ctx context.Context, cert models.Certificate) error {
	ret := _m.Called(ctx, cert)
	return ret.Error(0)
}
