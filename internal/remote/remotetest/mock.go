package remotetest

import (
	"context"
	"io"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
	"github.com/stretchr/testify/mock"
)

// MockService is a testify mock of remote.Service.
type MockService struct {
	mock.Mock
}

func entry(args mock.Arguments) (*remote.Entry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Entry), args.Error(1)
}

func entries(args mock.Arguments) ([]remote.Entry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remote.Entry), args.Error(1)
}

// CurrentAccount mocks the CurrentAccount method.
func (m *MockService) CurrentAccount(ctx context.Context) (*remote.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Account), args.Error(1)
}

// SpaceUsage mocks the SpaceUsage method.
func (m *MockService) SpaceUsage(ctx context.Context) (*remote.SpaceUsage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.SpaceUsage), args.Error(1)
}

// ListFolder mocks the ListFolder method.
func (m *MockService) ListFolder(ctx context.Context, path string) ([]remote.Entry, error) {
	return entries(m.Called(ctx, path))
}

// Metadata mocks the Metadata method.
func (m *MockService) Metadata(ctx context.Context, path string) (*remote.Entry, error) {
	return entry(m.Called(ctx, path))
}

// Search mocks the Search method.
func (m *MockService) Search(ctx context.Context, path, query string) ([]remote.Entry, error) {
	return entries(m.Called(ctx, path, query))
}

// Copy mocks the Copy method.
func (m *MockService) Copy(ctx context.Context, from, to string) (*remote.Entry, error) {
	return entry(m.Called(ctx, from, to))
}

// Move mocks the Move method.
func (m *MockService) Move(ctx context.Context, from, to string) (*remote.Entry, error) {
	return entry(m.Called(ctx, from, to))
}

// Delete mocks the Delete method.
func (m *MockService) Delete(ctx context.Context, path string) (*remote.Entry, error) {
	return entry(m.Called(ctx, path))
}

// CreateFolder mocks the CreateFolder method.
func (m *MockService) CreateFolder(ctx context.Context, path string) (*remote.Entry, error) {
	return entry(m.Called(ctx, path))
}

// Upload mocks the Upload method.
func (m *MockService) Upload(ctx context.Context, path string, r io.Reader) (*remote.Entry, error) {
	return entry(m.Called(ctx, path, r))
}

// Download mocks the Download method.
func (m *MockService) Download(ctx context.Context, path string, w io.Writer) (*remote.Entry, error) {
	return entry(m.Called(ctx, path, w))
}

// Connector returns a remote.Connector yielding m.
func (m *MockService) Connector() remote.Connector {
	return func(ctx context.Context, appName, token string) (remote.Service, error) {
		return m, nil
	}
}
