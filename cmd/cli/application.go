package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	accountcmd "github.com/temirov/gho/cmd/cli/account"
	prcmd "github.com/temirov/gho/cmd/cli/pr"
	repocmd "github.com/temirov/gho/cmd/cli/repo"
	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/execshell"
	"github.com/temirov/gho/internal/gitrepo"
	"github.com/temirov/gho/internal/prs"
	"github.com/temirov/gho/internal/repoops"
	"github.com/temirov/gho/internal/secrets"
	"github.com/temirov/gho/internal/state"
	"github.com/temirov/gho/internal/storage"
	"github.com/temirov/gho/internal/ui"
	"github.com/temirov/gho/internal/utils"
)

const (
	applicationNameConstant             = "gho"
	applicationShortDescriptionConstant = "Personal operator tool for multiple GitHub identities"
	applicationLongDescriptionConstant  = "gho keeps several GitHub accounts configured side by side, stores their tokens in the platform secret store, and runs repository and pull request operations as the active identity."

	configFileFlagNameConstant           = "config"
	configFileFlagUsageConstant          = "Optional path to a configuration file (YAML or JSON)."
	configDirectoryFlagNameConstant      = "config-dir"
	configDirectoryFlagUsageConstant     = "Directory holding accounts and run state documents."
	logLevelFlagNameConstant             = "log-level"
	logLevelFlagUsageConstant            = "Override the configured log level."
	logFormatFlagNameConstant            = "log-format"
	logFormatFlagUsageConstant           = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant       = "common"
	commonLogLevelConfigKeyConstant      = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant     = commonConfigurationKeyConstant + ".log_format"
	accountsConfigurationKeyConstant     = "accounts"
	accountsDefaultProtocolKeyConstant   = accountsConfigurationKeyConstant + ".default_protocol"
	accountsDefaultCloneDirKeyConstant   = accountsConfigurationKeyConstant + ".default_clone_dir"
	environmentPrefixConstant            = "GHO"
	configurationNameConstant            = "config"
	configurationTypeConstant            = "yaml"
	configurationInitializedMessage      = "configuration initialized"
	configurationLogLevelFieldConstant   = "log_level"
	configurationLogFormatFieldConstant  = "log_format"
	configurationFileFieldConstant       = "config_file"
	configurationLoadErrorTemplate       = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant  = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant      = "unable to flush logger: %w"
	rootCommandInfoMessageConstant       = "gho CLI executed"
	rootCommandDebugMessageConstant      = "gho CLI diagnostics"
	logFieldCommandNameConstant          = "command_name"
	logFieldArgumentCountConstant        = "argument_count"
	logFieldArgumentsConstant            = "arguments"
	loggerNotInitializedMessageConstant  = "logger not initialized"
	workingDirectorySearchPathConstant   = "."
	configDirectoryResolutionTemplate    = "unable to resolve configuration directory: %w"
	shellExecutorCreationErrorTemplate   = "unable to create shell executor: %w"
	accountServiceCreationErrorTemplate  = "unable to create account service: %w"
	stateTrackerCreationErrorTemplate    = "unable to create run state tracker: %w"
	tokenVaultCreationErrorTemplateConst = "unable to create token vault: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration   `mapstructure:"common"`
	Accounts ApplicationAccountsConfiguration `mapstructure:"accounts"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationAccountsConfiguration holds fallbacks applied when account add flags are omitted.
type ApplicationAccountsConfiguration struct {
	DefaultProtocol       accounts.CloneProtocol `mapstructure:"default_protocol"`
	DefaultCloneDirectory string                 `mapstructure:"default_clone_dir"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	configDirectoryValue   string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	searchPaths := []string{workingDirectorySearchPathConstant}
	if defaultConfigDirectory, directoryError := storage.DefaultConfigDirectory(); directoryError == nil {
		searchPaths = append(searchPaths, defaultConfigDirectory)
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		searchPaths,
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.SetDecodeHooks(accounts.CloneProtocolDecodeHook())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.configDirectoryValue, configDirectoryFlagNameConstant, "", configDirectoryFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	accountBuilder := accountcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ServiceProvider: func() (accountcmd.Service, error) {
			return application.buildAccountService()
		},
		TokenResolverProvider: func() (accountcmd.TokenResolver, error) {
			return application.buildTokenResolver()
		},
		DefaultsProvider: func() accountcmd.Defaults {
			return accountcmd.Defaults{
				CloneProtocol:  application.configuration.Accounts.DefaultProtocol,
				CloneDirectory: application.configuration.Accounts.DefaultCloneDirectory,
			}
		},
	}
	accountCommand, accountBuildError := accountBuilder.Build()
	if accountBuildError == nil {
		cobraCommand.AddCommand(accountCommand)
	}

	repoBuilder := repocmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ServiceProvider: func() (repocmd.Service, error) {
			return application.buildRepositoryService()
		},
		AccountProvider: application.activeAccount,
	}
	repoCommand, repoBuildError := repoBuilder.Build()
	if repoBuildError == nil {
		cobraCommand.AddCommand(repoCommand)
	}

	prBuilder := prcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ServiceProvider: func() (prcmd.Service, error) {
			return application.buildPullRequestService()
		},
		AccountProvider: application.activeAccount,
	}
	prCommand, prBuildError := prBuilder.Build()
	if prBuildError == nil {
		cobraCommand.AddCommand(prCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:    string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:   string(utils.LogFormatStructured),
		accountsDefaultProtocolKeyConstant: string(accounts.CloneProtocolSSH),
		accountsDefaultCloneDirKeyConstant: "",
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplate, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessage,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)
	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) buildFileStore() (*storage.FileStore, error) {
	configDirectory := strings.TrimSpace(application.configDirectoryValue)
	if len(configDirectory) == 0 {
		defaultDirectory, directoryError := storage.DefaultConfigDirectory()
		if directoryError != nil {
			return nil, fmt.Errorf(configDirectoryResolutionTemplate, directoryError)
		}
		configDirectory = defaultDirectory
	}
	return storage.NewFileStore(configDirectory)
}

func (application *Application) buildAccountService() (accountcmd.Service, error) {
	fileStore, storeError := application.buildFileStore()
	if storeError != nil {
		return nil, storeError
	}
	tokenVault, vaultError := secrets.NewTokenVault(secrets.NewKeyringSecretStore())
	if vaultError != nil {
		return nil, fmt.Errorf(tokenVaultCreationErrorTemplateConst, vaultError)
	}
	accountService, serviceError := accounts.NewService(fileStore, tokenVault)
	if serviceError != nil {
		return nil, fmt.Errorf(accountServiceCreationErrorTemplate, serviceError)
	}
	return accountService, nil
}

func (application *Application) buildTokenResolver() (accountcmd.TokenResolver, error) {
	tokenVault, vaultError := secrets.NewTokenVault(secrets.NewKeyringSecretStore())
	if vaultError != nil {
		return nil, fmt.Errorf(tokenVaultCreationErrorTemplateConst, vaultError)
	}
	return secrets.NewDefaultTokenResolver(tokenVault), nil
}

func (application *Application) buildStateTracker() (*state.Tracker, error) {
	fileStore, storeError := application.buildFileStore()
	if storeError != nil {
		return nil, storeError
	}
	stateTracker, trackerError := state.NewTracker(fileStore, application.logger)
	if trackerError != nil {
		return nil, fmt.Errorf(stateTrackerCreationErrorTemplate, trackerError)
	}
	return stateTracker, nil
}

func (application *Application) buildShellExecutor() (*execshell.ShellExecutor, error) {
	commandRunner := execshell.NewOSCommandRunner()
	eventObservers := []execshell.CommandEventObserver{}
	if application.humanReadableLoggingEnabled() {
		eventObservers = append(eventObservers, ui.NewConsoleCommandEventLogger(application.logger))
	}
	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, commandRunner, eventObservers...)
	if executorError != nil {
		return nil, fmt.Errorf(shellExecutorCreationErrorTemplate, executorError)
	}
	return shellExecutor, nil
}

func (application *Application) buildRepositoryService() (repocmd.Service, error) {
	tokenResolver, resolverError := application.buildTokenResolver()
	if resolverError != nil {
		return nil, resolverError
	}
	shellExecutor, executorError := application.buildShellExecutor()
	if executorError != nil {
		return nil, executorError
	}
	stateTracker, trackerError := application.buildStateTracker()
	if trackerError != nil {
		return nil, trackerError
	}

	return repoops.NewService(repoops.Dependencies{
		TokenResolver:        tokenResolver,
		ClientFactory:        repoops.NewDefaultClientFactory(),
		Cloner:               repoops.NewShellGitCloner(shellExecutor),
		OrganizationRecorder: stateTracker,
		Logger:               application.logger,
	})
}

func (application *Application) buildPullRequestService() (prcmd.Service, error) {
	tokenResolver, resolverError := application.buildTokenResolver()
	if resolverError != nil {
		return nil, resolverError
	}
	shellExecutor, executorError := application.buildShellExecutor()
	if executorError != nil {
		return nil, executorError
	}
	stateTracker, trackerError := application.buildStateTracker()
	if trackerError != nil {
		return nil, trackerError
	}

	return prs.NewService(prs.Dependencies{
		TokenResolver:      tokenResolver,
		ClientFactory:      prs.NewDefaultClientFactory(),
		ContextDetector:    gitrepo.NewContextDetector(nil, shellExecutor),
		RepositoryRecorder: stateTracker,
		Logger:             application.logger,
	})
}

func (application *Application) activeAccount() (accounts.Account, error) {
	accountService, serviceError := application.buildAccountService()
	if serviceError != nil {
		return accounts.Account{}, serviceError
	}
	return accountService.ActiveAccount()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
