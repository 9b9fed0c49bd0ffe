package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gho/internal/utils"
)

const testConfigurationFilePathConstant = "/home/operator/.config/gho/config.yaml"

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	updatedContext := accessor.WithConfigurationFilePath(context.Background(), testConfigurationFilePathConstant)
	storedPath, pathAvailable := accessor.ConfigurationFilePath(updatedContext)
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, testConfigurationFilePathConstant, storedPath)
}

func TestCommandContextAccessorMissingValue(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, pathAvailable := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, pathAvailable)
}

func TestCommandContextAccessorNilContext(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	updatedContext := accessor.WithConfigurationFilePath(nil, testConfigurationFilePathConstant)
	storedPath, pathAvailable := accessor.ConfigurationFilePath(updatedContext)
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, testConfigurationFilePathConstant, storedPath)

	_, missingAvailable := accessor.ConfigurationFilePath(nil)
	require.False(testInstance, missingAvailable)
}
