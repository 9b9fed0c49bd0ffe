package repoops

import (
	"errors"
	"fmt"
)

const (
	organizationRequiredMessageConstant       = "organization required"
	destinationExistsMessageConstant          = "destination already exists"
	tokenResolverNotConfiguredMessageConstant = "token resolver not configured"
	clientFactoryNotConfiguredMessageConstant = "client factory not configured"
	clonerNotConfiguredMessageConstant        = "repository cloner not configured"
	cloneURLUnavailableMessageConstant        = "no clone URL available"
	cloneErrorTemplateConstant                = "cloning %s: %v"
	partialCloneErrorTemplateConstant         = "%d of %d clones failed"
)

// ErrOrganizationRequired indicates a bulk operation was requested without an
// organization flag or a default organization on the account.
var ErrOrganizationRequired = errors.New(organizationRequiredMessageConstant)

// ErrDestinationExists indicates the clone destination path is already occupied.
var ErrDestinationExists = errors.New(destinationExistsMessageConstant)

// ErrCloneURLUnavailable indicates a repository offered no clone URL at all.
var ErrCloneURLUnavailable = errors.New(cloneURLUnavailableMessageConstant)

// Configuration errors reported by NewService.
var (
	ErrTokenResolverNotConfigured = errors.New(tokenResolverNotConfiguredMessageConstant)
	ErrClientFactoryNotConfigured = errors.New(clientFactoryNotConfiguredMessageConstant)
	ErrClonerNotConfigured        = errors.New(clonerNotConfiguredMessageConstant)
)

// CloneError reports a failed clone of one repository.
type CloneError struct {
	RepositoryName string
	Cause          error
}

// Error describes the clone failure.
func (cloneError CloneError) Error() string {
	return fmt.Sprintf(cloneErrorTemplateConstant, cloneError.RepositoryName, cloneError.Cause)
}

// Unwrap exposes the underlying cause.
func (cloneError CloneError) Unwrap() error {
	return cloneError.Cause
}

// PartialCloneError summarizes a bulk clone where some repositories failed.
type PartialCloneError struct {
	FailureCount int
	AttemptCount int
}

// Error describes the partial failure.
func (partialError PartialCloneError) Error() string {
	return fmt.Sprintf(partialCloneErrorTemplateConstant, partialError.FailureCount, partialError.AttemptCount)
}
