package mocks

import (
	"context"
	"io"

	"docstore/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, r io.Reader, originalName, contentType string, size int64, visibility model.Visibility, user *model.User) (*model.File, error) {
	args := m.Called(ctx, r, originalName, contentType, size, visibility, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) GetByID(ctx context.Context, id int64, user *model.User) (*model.File, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Download(ctx context.Context, id int64, user *model.User) (io.ReadCloser, *model.File, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.File), args.Error(2)
}

func (m *MockFileService) Delete(ctx context.Context, id int64, user *model.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockFileService) ListAccessible(ctx context.Context, user *model.User) ([]model.File, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}
