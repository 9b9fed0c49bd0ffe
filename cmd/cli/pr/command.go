// Package pr assembles the Cobra commands inspecting pull requests.
package pr

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
)

const (
	commandUseConstant              = "pr"
	commandShortDescriptionConstant = "Inspect pull requests of the current repository"
	commandLongDescriptionConstant  = "pr lists open pull requests of an explicit owner/repository argument or of the repository detected from the environment."

	listCommandUseConstant              = "list [owner/repository]"
	listCommandAliasConstant            = "ls"
	listCommandShortDescriptionConstant = "List open pull requests ordered by number"

	jsonFlagNameConstant  = "json"
	jsonFlagUsageConstant = "Emit the listing as JSON."

	serviceProviderMissingMessageConstant = "pull request service provider not configured"
	accountProviderMissingMessageConstant = "account provider not configured"
	noPullRequestsMessageConstant         = "No open pull requests."
	pullRequestListHeaderConstant         = "NUMBER\tTITLE\tAUTHOR\tBRANCH\tMERGEABLE"
	pullRequestListRowTemplateConstant    = "#%d\t%s\t%s\t%s\t%s\n"
	branchPairTemplateConstant            = "%s -> %s"

	jsonIndentPrefixConstant = ""
	jsonIndentConstant       = "  "

	tabwriterMinimumWidthConstant = 0
	tabwriterTabWidthConstant     = 8
	tabwriterPaddingConstant      = 2
	tabwriterPaddingRuneConstant  = ' '
	tabwriterFlagsConstant        = 0
)

// Builder configuration errors.
var (
	ErrServiceProviderNotConfigured = errors.New(serviceProviderMissingMessageConstant)
	ErrAccountProviderNotConfigured = errors.New(accountProviderMissingMessageConstant)
)

// Service abstracts the pull request operations consumed by the commands.
type Service interface {
	ListOpenPullRequests(executionContext context.Context, account accounts.Account, repositorySpec string) ([]githubapi.PullRequest, error)
}

// CommandBuilder assembles the pr command tree from its collaborators.
type CommandBuilder struct {
	LoggerProvider  func() *zap.Logger
	ServiceProvider func() (Service, error)
	AccountProvider func() (accounts.Account, error)
}

// Build constructs the pr command with its subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	if builder.ServiceProvider == nil {
		return nil, ErrServiceProviderNotConfigured
	}
	if builder.AccountProvider == nil {
		return nil, ErrAccountProviderNotConfigured
	}

	prCommand := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
	}

	prCommand.AddCommand(builder.buildListCommand())

	return prCommand, nil
}

func (builder *CommandBuilder) buildListCommand() *cobra.Command {
	var jsonFlagValue bool

	listCommand := &cobra.Command{
		Use:     listCommandUseConstant,
		Aliases: []string{listCommandAliasConstant},
		Short:   listCommandShortDescriptionConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			pullRequestService, serviceError := builder.ServiceProvider()
			if serviceError != nil {
				return serviceError
			}
			activeAccount, accountError := builder.AccountProvider()
			if accountError != nil {
				return accountError
			}

			repositorySpec := ""
			if len(arguments) > 0 {
				repositorySpec = arguments[0]
			}

			pullRequests, listError := pullRequestService.ListOpenPullRequests(command.Context(), activeAccount, repositorySpec)
			if listError != nil {
				return listError
			}

			if jsonFlagValue {
				encodedPullRequests, encodeError := json.MarshalIndent(pullRequests, jsonIndentPrefixConstant, jsonIndentConstant)
				if encodeError != nil {
					return encodeError
				}
				fmt.Fprintln(command.OutOrStdout(), string(encodedPullRequests))
				return nil
			}

			if len(pullRequests) == 0 {
				fmt.Fprintln(command.OutOrStdout(), noPullRequestsMessageConstant)
				return nil
			}

			tableWriter := tabwriter.NewWriter(command.OutOrStdout(),
				tabwriterMinimumWidthConstant, tabwriterTabWidthConstant, tabwriterPaddingConstant, tabwriterPaddingRuneConstant, tabwriterFlagsConstant)
			fmt.Fprintln(tableWriter, pullRequestListHeaderConstant)
			for _, pullRequest := range pullRequests {
				fmt.Fprintf(tableWriter, pullRequestListRowTemplateConstant,
					pullRequest.Number,
					pullRequest.Title,
					pullRequest.Author,
					fmt.Sprintf(branchPairTemplateConstant, pullRequest.HeadRef, pullRequest.BaseRef),
					string(pullRequest.MergeableState),
				)
			}
			return tableWriter.Flush()
		},
	}

	listCommand.Flags().BoolVar(&jsonFlagValue, jsonFlagNameConstant, false, jsonFlagUsageConstant)

	return listCommand
}
