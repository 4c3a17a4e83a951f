package httpclient

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/crosslane/relayer/protocol"
)

// MockHTTPClient is a mock implementation of Client.
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Get(ctx context.Context, requestURL string) (protocol.ByteSlice, Status, error) {
	args := m.Called(ctx, requestURL)
	//nolint
	return args.Get(0).(protocol.ByteSlice), args.Get(1).(Status), args.Error(2)
}

func (m *MockHTTPClient) Post(
	ctx context.Context, requestURL string, requestData protocol.ByteSlice,
) (protocol.ByteSlice, Status, error) {
	args := m.Called(ctx, requestURL, requestData)
	//nolint
	return args.Get(0).(protocol.ByteSlice), args.Get(1).(Status), args.Error(2)
}
