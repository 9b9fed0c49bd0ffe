package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/utils"
)

const (
	accountCommandNameConstant = "account"
	repoCommandNameConstant    = "repo"
	prCommandNameConstant      = "pr"
)

func TestNewApplicationRegistersCommands(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredNames[registeredCommand.Name()] = true
	}

	require.True(testInstance, registeredNames[accountCommandNameConstant])
	require.True(testInstance, registeredNames[repoCommandNameConstant])
	require.True(testInstance, registeredNames[prCommandNameConstant])
}

func TestInitializeConfigurationAppliesDefaults(testInstance *testing.T) {
	application := NewApplication()

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, string(utils.LogLevelInfo), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatStructured), application.configuration.Common.LogFormat)
	require.Equal(testInstance, accounts.CloneProtocolSSH, application.configuration.Accounts.DefaultProtocol)
	require.NotNil(testInstance, application.logger)
}

func TestInitializeConfigurationHonorsFlagOverrides(testInstance *testing.T) {
	application := NewApplication()

	parseError := application.rootCommand.PersistentFlags().Parse([]string{
		"--log-level", string(utils.LogLevelDebug),
		"--log-format", string(utils.LogFormatConsole),
	})
	require.NoError(testInstance, parseError)

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, string(utils.LogLevelDebug), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatConsole), application.configuration.Common.LogFormat)
	require.True(testInstance, application.humanReadableLoggingEnabled())
}
