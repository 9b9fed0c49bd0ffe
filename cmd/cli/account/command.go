// Package account assembles the Cobra commands managing configured accounts.
package account

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/secrets"
	flagutils "github.com/temirov/gho/internal/utils/flags"
)

const (
	commandUseConstant              = "account"
	commandShortDescriptionConstant = "Manage configured GitHub accounts"
	commandLongDescriptionConstant  = "account registers GitHub identities, stores their tokens in the platform secret store, and selects the active identity."

	addCommandUseConstant              = "add <id>"
	addCommandAliasConstant            = "a"
	addCommandShortDescriptionConstant = "Register a new account and store its token"
	listCommandUseConstant             = "list"
	listCommandAliasConstant           = "ls"
	listCommandShortDescription        = "List configured accounts"
	useCommandUseConstant              = "use <id>"
	useCommandAliasConstant            = "u"
	useCommandShortDescriptionConstant = "Select the active account"
	showCommandUseConstant             = "show"
	showCommandShortDescription        = "Show the active account with a masked token"
	removeCommandUseConstant           = "remove <id>"
	removeCommandAliasConstant         = "rm"
	removeCommandShortDescription      = "Remove an account and its stored token"

	usernameFlagNameConstant       = "username"
	usernameFlagUsageConstant      = "GitHub username of the account (required)."
	tokenFlagNameConstant          = "token"
	tokenFlagUsageConstant         = "Personal access token stored for the account (required)."
	kindFlagNameConstant           = "kind"
	kindFlagDescriptionConstant    = "Kind of the account."
	organizationFlagNameConstant   = "org"
	organizationFlagUsageConstant  = "Default organization used by repository listings."
	protocolFlagNameConstant       = "protocol"
	protocolFlagDescription        = "Protocol used when cloning repositories."
	cloneDirectoryFlagNameConstant = "clone-dir"
	cloneDirectoryFlagUsage        = "Directory repositories are cloned into."

	serviceProviderMissingMessageConstant = "account service provider not configured"
	accountAddedTemplateConstant          = "Added account %s\n"
	accountActivatedTemplateConstant      = "Now using account %s\n"
	accountRemovedTemplateConstant        = "Removed account %s\n"
	noAccountsConfiguredMessageConstant   = "No accounts configured."
	activeAccountMarkerConstant           = "*"
	inactiveAccountMarkerConstant         = " "
	accountListHeaderConstant             = " \tID\tKIND\tUSERNAME\tORG\tPROTOCOL"
	accountListRowTemplateConstant        = "%s\t%s\t%s\t%s\t%s\t%s\n"
	showFieldTemplateConstant             = "%s:\t%s\n"
	showTokenFieldNameConstant            = "token"
	showMissingTokenPlaceholderConstant   = "(none)"
	showIdentifierFieldNameConstant       = "id"
	showKindFieldNameConstant             = "kind"
	showUsernameFieldNameConstant         = "username"
	showOrganizationFieldNameConstant     = "org"
	showProtocolFieldNameConstant         = "protocol"
	showCloneDirectoryFieldNameConstant   = "clone_dir"

	tabwriterMinimumWidthConstant = 0
	tabwriterTabWidthConstant     = 8
	tabwriterPaddingConstant      = 2
	tabwriterPaddingRuneConstant  = ' '
	tabwriterFlagsConstant        = 0

	accountAddedLogMessageConstant   = "account added"
	accountRemovedLogMessageConstant = "account removed"
	accountLogFieldNameConstant      = "account_id"
)

// ErrServiceProviderNotConfigured indicates the builder lacks an account service provider.
var ErrServiceProviderNotConfigured = errors.New(serviceProviderMissingMessageConstant)

// Service abstracts the account operations consumed by the commands.
type Service interface {
	AddAccount(account accounts.Account, token string) error
	ListAccounts() (accounts.Collection, error)
	UseAccount(accountID string) error
	ActiveAccount() (accounts.Account, error)
	RemoveAccount(accountID string) error
}

// TokenResolver produces the usable token for an account.
type TokenResolver interface {
	ResolveToken(account accounts.Account) (string, error)
}

// Defaults supplies configuration-level fallbacks applied when add flags are omitted.
type Defaults struct {
	CloneProtocol  accounts.CloneProtocol
	CloneDirectory string
}

// CommandBuilder assembles the account command tree from its collaborators.
type CommandBuilder struct {
	LoggerProvider        func() *zap.Logger
	ServiceProvider       func() (Service, error)
	TokenResolverProvider func() (TokenResolver, error)
	DefaultsProvider      func() Defaults
}

// Build constructs the account command with its subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	if builder.ServiceProvider == nil {
		return nil, ErrServiceProviderNotConfigured
	}

	accountCommand := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
	}

	accountCommand.AddCommand(builder.buildAddCommand())
	accountCommand.AddCommand(builder.buildListCommand())
	accountCommand.AddCommand(builder.buildUseCommand())
	accountCommand.AddCommand(builder.buildShowCommand())
	accountCommand.AddCommand(builder.buildRemoveCommand())

	return accountCommand, nil
}

func (builder *CommandBuilder) buildAddCommand() *cobra.Command {
	var usernameFlagValue string
	var tokenFlagValue string
	var kindFlagValue string
	var organizationFlagValue string
	var protocolFlagValue string
	var cloneDirectoryFlagValue string

	addCommand := &cobra.Command{
		Use:     addCommandUseConstant,
		Aliases: []string{addCommandAliasConstant},
		Short:   addCommandShortDescriptionConstant,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			accountService, serviceError := builder.ServiceProvider()
			if serviceError != nil {
				return serviceError
			}

			cloneProtocol, protocolError := accounts.ParseCloneProtocol(protocolFlagValue)
			if protocolError != nil {
				return protocolError
			}
			accountKind, kindError := accounts.ParseAccountKind(kindFlagValue)
			if kindError != nil {
				return kindError
			}

			defaults := builder.resolveDefaults()
			if !command.Flags().Changed(protocolFlagNameConstant) && len(defaults.CloneProtocol) > 0 {
				cloneProtocol = defaults.CloneProtocol
			}
			if len(cloneDirectoryFlagValue) == 0 {
				cloneDirectoryFlagValue = defaults.CloneDirectory
			}

			newAccount := accounts.Account{
				ID:                  arguments[0],
				Kind:                accountKind,
				Username:            usernameFlagValue,
				DefaultOrganization: organizationFlagValue,
				CloneProtocol:       cloneProtocol,
				CloneDirectory:      cloneDirectoryFlagValue,
			}
			if addError := accountService.AddAccount(newAccount, tokenFlagValue); addError != nil {
				return addError
			}

			builder.logger().Info(accountAddedLogMessageConstant, zap.String(accountLogFieldNameConstant, newAccount.ID))
			fmt.Fprintf(command.OutOrStdout(), accountAddedTemplateConstant, newAccount.ID)
			return nil
		},
	}

	addCommand.Flags().StringVar(&usernameFlagValue, usernameFlagNameConstant, "", usernameFlagUsageConstant)
	addCommand.Flags().StringVar(&tokenFlagValue, tokenFlagNameConstant, "", tokenFlagUsageConstant)
	addCommand.Flags().StringVar(&kindFlagValue, kindFlagNameConstant, "",
		flagutils.FormatChoiceUsage(string(accounts.AccountKindPersonal), accounts.AccountKindChoices(), kindFlagDescriptionConstant))
	addCommand.Flags().StringVar(&organizationFlagValue, organizationFlagNameConstant, "", organizationFlagUsageConstant)
	addCommand.Flags().StringVar(&protocolFlagValue, protocolFlagNameConstant, "",
		flagutils.FormatChoiceUsage(string(accounts.CloneProtocolSSH), accounts.CloneProtocolChoices(), protocolFlagDescription))
	addCommand.Flags().StringVar(&cloneDirectoryFlagValue, cloneDirectoryFlagNameConstant, "", cloneDirectoryFlagUsage)

	return addCommand
}

func (builder *CommandBuilder) buildListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     listCommandUseConstant,
		Aliases: []string{listCommandAliasConstant},
		Short:   listCommandShortDescription,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			accountService, serviceError := builder.ServiceProvider()
			if serviceError != nil {
				return serviceError
			}

			collection, listError := accountService.ListAccounts()
			if listError != nil {
				return listError
			}
			if len(collection.Accounts) == 0 {
				fmt.Fprintln(command.OutOrStdout(), noAccountsConfiguredMessageConstant)
				return nil
			}

			tableWriter := tabwriter.NewWriter(command.OutOrStdout(),
				tabwriterMinimumWidthConstant, tabwriterTabWidthConstant, tabwriterPaddingConstant, tabwriterPaddingRuneConstant, tabwriterFlagsConstant)
			fmt.Fprintln(tableWriter, accountListHeaderConstant)
			for _, configuredAccount := range collection.Accounts {
				activeMarker := inactiveAccountMarkerConstant
				if collection.IsActive(configuredAccount.ID) {
					activeMarker = activeAccountMarkerConstant
				}
				fmt.Fprintf(tableWriter, accountListRowTemplateConstant,
					activeMarker,
					configuredAccount.ID,
					string(configuredAccount.Kind),
					configuredAccount.Username,
					configuredAccount.DefaultOrganization,
					string(configuredAccount.CloneProtocol),
				)
			}
			return tableWriter.Flush()
		},
	}
}

func (builder *CommandBuilder) buildUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     useCommandUseConstant,
		Aliases: []string{useCommandAliasConstant},
		Short:   useCommandShortDescriptionConstant,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			accountService, serviceError := builder.ServiceProvider()
			if serviceError != nil {
				return serviceError
			}
			if useError := accountService.UseAccount(arguments[0]); useError != nil {
				return useError
			}
			fmt.Fprintf(command.OutOrStdout(), accountActivatedTemplateConstant, arguments[0])
			return nil
		},
	}
}

func (builder *CommandBuilder) buildShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   showCommandUseConstant,
		Short: showCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			accountService, serviceError := builder.ServiceProvider()
			if serviceError != nil {
				return serviceError
			}
			activeAccount, activeError := accountService.ActiveAccount()
			if activeError != nil {
				return activeError
			}

			maskedToken := showMissingTokenPlaceholderConstant
			if builder.TokenResolverProvider != nil {
				tokenResolver, resolverError := builder.TokenResolverProvider()
				if resolverError != nil {
					return resolverError
				}
				resolvedToken, resolutionError := tokenResolver.ResolveToken(activeAccount)
				switch {
				case resolutionError == nil:
					maskedToken = secrets.MaskToken(resolvedToken)
				case errors.Is(resolutionError, secrets.ErrNoTokenConfigured):
				default:
					return resolutionError
				}
			}

			tableWriter := tabwriter.NewWriter(command.OutOrStdout(),
				tabwriterMinimumWidthConstant, tabwriterTabWidthConstant, tabwriterPaddingConstant, tabwriterPaddingRuneConstant, tabwriterFlagsConstant)
			fmt.Fprintf(tableWriter, showFieldTemplateConstant, showIdentifierFieldNameConstant, activeAccount.ID)
			fmt.Fprintf(tableWriter, showFieldTemplateConstant, showKindFieldNameConstant, string(activeAccount.Kind))
			fmt.Fprintf(tableWriter, showFieldTemplateConstant, showUsernameFieldNameConstant, activeAccount.Username)
			fmt.Fprintf(tableWriter, showFieldTemplateConstant, showOrganizationFieldNameConstant, activeAccount.DefaultOrganization)
			fmt.Fprintf(tableWriter, showFieldTemplateConstant, showProtocolFieldNameConstant, string(activeAccount.CloneProtocol))
			fmt.Fprintf(tableWriter, showFieldTemplateConstant, showCloneDirectoryFieldNameConstant, activeAccount.CloneDirectory)
			fmt.Fprintf(tableWriter, showFieldTemplateConstant, showTokenFieldNameConstant, maskedToken)
			return tableWriter.Flush()
		},
	}
}

func (builder *CommandBuilder) buildRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     removeCommandUseConstant,
		Aliases: []string{removeCommandAliasConstant},
		Short:   removeCommandShortDescription,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			accountService, serviceError := builder.ServiceProvider()
			if serviceError != nil {
				return serviceError
			}
			if removeError := accountService.RemoveAccount(arguments[0]); removeError != nil {
				return removeError
			}
			builder.logger().Info(accountRemovedLogMessageConstant, zap.String(accountLogFieldNameConstant, arguments[0]))
			fmt.Fprintf(command.OutOrStdout(), accountRemovedTemplateConstant, arguments[0])
			return nil
		},
	}
}

func (builder *CommandBuilder) resolveDefaults() Defaults {
	if builder.DefaultsProvider == nil {
		return Defaults{}
	}
	return builder.DefaultsProvider()
}

func (builder *CommandBuilder) logger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
