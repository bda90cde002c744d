package handler

import (
	"bytes"
	"errors"
	"testing"

	"ccpatch/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestShowValuesCommandHandler_Handle_Success(t *testing.T) {
	configRepository := new(testutil.MockConfigRepository)
	configRepository.On("LoadValues", "values.yaml").Return(map[string]interface{}{
		"kubeAPIOptions": []interface{}{"--foo=1", "--bar=2"},
		"apiServerLoadBalancer": map[string]interface{}{
			"provider": "ovn",
			"enabled":  true,
		},
		"empty": []interface{}{},
	}, nil)
	sut := ProvideShowValuesCommandHandler(configRepository)
	var out bytes.Buffer

	err := sut.Handle(&out, "values.yaml")

	assert.NoError(t, err)
	assert.Equal(t, "apiServerLoadBalancer:\n"+
		"  enabled: true\n"+
		"  provider: ovn\n"+
		"empty: []\n"+
		"kubeAPIOptions:\n"+
		"  - --foo=1\n"+
		"  - --bar=2\n", out.String())
	configRepository.AssertExpectations(t)
}

func TestShowValuesCommandHandler_Handle_Error(t *testing.T) {
	configRepository := new(testutil.MockConfigRepository)
	configRepository.On("LoadValues", "").Return(nil, errors.New("broken config"))
	sut := ProvideShowValuesCommandHandler(configRepository)
	var out bytes.Buffer

	err := sut.Handle(&out, "")

	assert.EqualError(t, err, "broken config")
	assert.Empty(t, out.String())
}
