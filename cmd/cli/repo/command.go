// Package repo assembles the Cobra commands listing and cloning repositories.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/githubapi"
	"github.com/temirov/gho/internal/repoops"
	"github.com/temirov/gho/internal/utils"
)

const (
	commandUseConstant              = "repo"
	commandShortDescriptionConstant = "List and clone repositories visible to the active account"
	commandLongDescriptionConstant  = "repo lists repositories of the active account or an organization and clones them individually or in bulk."

	listCommandUseConstant              = "list"
	listCommandAliasConstant            = "ls"
	listCommandShortDescriptionConstant = "List repositories of the account or an organization"
	cloneCommandUseConstant             = "clone [owner/repository] [directory]"
	cloneCommandShortDescription        = "Clone one repository or every repository of an organization"

	organizationFlagNameConstant  = "org"
	organizationFlagUsageConstant = "Organization to operate on instead of the account itself."
	jsonFlagNameConstant          = "json"
	jsonFlagUsageConstant         = "Emit the listing as JSON."
	limitFlagNameConstant         = "limit"
	limitFlagUsageConstant        = "Maximum number of repositories to print (0 prints all)."

	serviceProviderMissingMessageConstant = "repository service provider not configured"
	accountProviderMissingMessageConstant = "account provider not configured"
	cloneArgumentsMessageConstant         = "owner/repository argument or --org flag required"
	noRepositoriesMessageConstant         = "No repositories found."
	repositoryListHeaderConstant          = "NAME\tVISIBILITY\tFORK\tDEFAULT BRANCH"
	repositoryListRowTemplateConstant     = "%s\t%s\t%s\t%s\n"
	privateVisibilityLabelConstant        = "private"
	publicVisibilityLabelConstant         = "public"
	forkMarkerLabelConstant               = "fork"
	sourceMarkerLabelConstant             = ""
	clonedRepositoryTemplateConstant      = "Cloned %s into %s\n"
	cloneSucceededReportTemplateConstant  = "CLONE-DONE\t%s\t%s\n"
	cloneFailedReportTemplateConstant     = "CLONE-FAIL\t%s\t%v\n"
	cloneSummaryTemplateConstant          = "Cloned %d of %d repositories\n"

	jsonIndentPrefixConstant = ""
	jsonIndentConstant       = "  "

	tabwriterMinimumWidthConstant = 0
	tabwriterTabWidthConstant     = 8
	tabwriterPaddingConstant      = 2
	tabwriterPaddingRuneConstant  = ' '
	tabwriterFlagsConstant        = 0

	cloneArgumentCountMaximumConstant = 2
)

// Builder configuration errors.
var (
	ErrServiceProviderNotConfigured = errors.New(serviceProviderMissingMessageConstant)
	ErrAccountProviderNotConfigured = errors.New(accountProviderMissingMessageConstant)
	ErrCloneArgumentsMissing        = errors.New(cloneArgumentsMessageConstant)
)

// Service abstracts the repository operations consumed by the commands.
type Service interface {
	ListRepositories(executionContext context.Context, account accounts.Account, organizationOverride string) ([]githubapi.Repository, error)
	CloneRepository(executionContext context.Context, account accounts.Account, repositorySpec string, destinationOverride string) (string, error)
	CloneOrganization(executionContext context.Context, account accounts.Account, organizationOverride string, targetDirectory string) (repoops.CloneReport, error)
}

// CommandBuilder assembles the repo command tree from its collaborators.
type CommandBuilder struct {
	LoggerProvider  func() *zap.Logger
	ServiceProvider func() (Service, error)
	AccountProvider func() (accounts.Account, error)
}

// Build constructs the repo command with its subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	if builder.ServiceProvider == nil {
		return nil, ErrServiceProviderNotConfigured
	}
	if builder.AccountProvider == nil {
		return nil, ErrAccountProviderNotConfigured
	}

	repoCommand := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
	}

	repoCommand.AddCommand(builder.buildListCommand())
	repoCommand.AddCommand(builder.buildCloneCommand())

	return repoCommand, nil
}

func (builder *CommandBuilder) buildListCommand() *cobra.Command {
	var organizationFlagValue string
	var jsonFlagValue bool
	var limitFlagValue int

	listCommand := &cobra.Command{
		Use:     listCommandUseConstant,
		Aliases: []string{listCommandAliasConstant},
		Short:   listCommandShortDescriptionConstant,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			repositoryService, activeAccount, setupError := builder.resolveCollaborators()
			if setupError != nil {
				return setupError
			}

			repositories, listError := repositoryService.ListRepositories(command.Context(), activeAccount, organizationFlagValue)
			if listError != nil {
				return listError
			}
			if limitFlagValue > 0 && len(repositories) > limitFlagValue {
				repositories = repositories[:limitFlagValue]
			}

			if jsonFlagValue {
				encodedRepositories, encodeError := json.MarshalIndent(repositories, jsonIndentPrefixConstant, jsonIndentConstant)
				if encodeError != nil {
					return encodeError
				}
				fmt.Fprintln(command.OutOrStdout(), string(encodedRepositories))
				return nil
			}

			if len(repositories) == 0 {
				fmt.Fprintln(command.OutOrStdout(), noRepositoriesMessageConstant)
				return nil
			}

			tableWriter := tabwriter.NewWriter(command.OutOrStdout(),
				tabwriterMinimumWidthConstant, tabwriterTabWidthConstant, tabwriterPaddingConstant, tabwriterPaddingRuneConstant, tabwriterFlagsConstant)
			fmt.Fprintln(tableWriter, repositoryListHeaderConstant)
			for _, repository := range repositories {
				visibilityLabel := publicVisibilityLabelConstant
				if repository.Private {
					visibilityLabel = privateVisibilityLabelConstant
				}
				forkLabel := sourceMarkerLabelConstant
				if repository.Fork {
					forkLabel = forkMarkerLabelConstant
				}
				fmt.Fprintf(tableWriter, repositoryListRowTemplateConstant,
					repository.FullName, visibilityLabel, forkLabel, repository.DefaultBranch)
			}
			return tableWriter.Flush()
		},
	}

	listCommand.Flags().StringVar(&organizationFlagValue, organizationFlagNameConstant, "", organizationFlagUsageConstant)
	listCommand.Flags().BoolVar(&jsonFlagValue, jsonFlagNameConstant, false, jsonFlagUsageConstant)
	listCommand.Flags().IntVar(&limitFlagValue, limitFlagNameConstant, 0, limitFlagUsageConstant)

	return listCommand
}

func (builder *CommandBuilder) buildCloneCommand() *cobra.Command {
	var organizationFlagValue string

	cloneCommand := &cobra.Command{
		Use:   cloneCommandUseConstant,
		Short: cloneCommandShortDescription,
		Args:  cobra.MaximumNArgs(cloneArgumentCountMaximumConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			repositoryService, activeAccount, setupError := builder.resolveCollaborators()
			if setupError != nil {
				return setupError
			}

			if command.Flags().Changed(organizationFlagNameConstant) {
				targetDirectory := ""
				if len(arguments) > 0 {
					targetDirectory = arguments[0]
				}
				return builder.runOrganizationClone(command, repositoryService, activeAccount, organizationFlagValue, targetDirectory)
			}

			if len(arguments) == 0 {
				return ErrCloneArgumentsMissing
			}
			destinationOverride := ""
			if len(arguments) > 1 {
				destinationOverride = arguments[1]
			}

			destinationPath, cloneError := repositoryService.CloneRepository(command.Context(), activeAccount, arguments[0], destinationOverride)
			if cloneError != nil {
				return cloneError
			}
			fmt.Fprintf(command.OutOrStdout(), clonedRepositoryTemplateConstant, arguments[0], destinationPath)
			return nil
		},
	}

	cloneCommand.Flags().StringVar(&organizationFlagValue, organizationFlagNameConstant, "", organizationFlagUsageConstant)

	return cloneCommand
}

func (builder *CommandBuilder) runOrganizationClone(command *cobra.Command, repositoryService Service, activeAccount accounts.Account, organization string, targetDirectory string) error {
	report, cloneError := repositoryService.CloneOrganization(command.Context(), activeAccount, organization, targetDirectory)
	if cloneError != nil {
		return cloneError
	}

	tableWriter := tabwriter.NewWriter(command.OutOrStdout(),
		tabwriterMinimumWidthConstant, tabwriterTabWidthConstant, tabwriterPaddingConstant, tabwriterPaddingRuneConstant, tabwriterFlagsConstant)
	reportWriter := utils.NewFlushingWriter(tableWriter)
	for _, outcome := range report {
		if outcome.Failure == nil {
			fmt.Fprintf(reportWriter, cloneSucceededReportTemplateConstant, outcome.Repository, outcome.Destination)
			continue
		}
		fmt.Fprintf(reportWriter, cloneFailedReportTemplateConstant, outcome.Repository, outcome.Failure)
	}
	if flushError := tableWriter.Flush(); flushError != nil {
		return flushError
	}
	fmt.Fprintf(command.OutOrStdout(), cloneSummaryTemplateConstant, report.SuccessCount(), len(report))

	if report.FailureCount() > 0 {
		return repoops.PartialCloneError{FailureCount: report.FailureCount(), AttemptCount: len(report)}
	}
	return nil
}

func (builder *CommandBuilder) resolveCollaborators() (Service, accounts.Account, error) {
	repositoryService, serviceError := builder.ServiceProvider()
	if serviceError != nil {
		return nil, accounts.Account{}, serviceError
	}
	activeAccount, accountError := builder.AccountProvider()
	if accountError != nil {
		return nil, accounts.Account{}, accountError
	}
	return repositoryService, activeAccount, nil
}
