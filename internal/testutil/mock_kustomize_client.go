package testutil

import (
	"github.com/stretchr/testify/mock"
)

type MockKustomizeClient struct {
	mock.Mock
}

func (m *MockKustomizeClient) Build(kustomization []byte, files map[string][]byte) ([]byte, error) {
	args := m.Called(kustomization, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
