package accounts_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gho/internal/accounts"
)

const (
	testProtocolDefaultCaseNameConstant   = "empty_defaults_to_ssh"
	testProtocolSSHCaseNameConstant       = "ssh"
	testProtocolHTTPSCaseNameConstant     = "https_uppercase"
	testProtocolUnknownCaseNameConstant   = "unknown_value"
	testKindDefaultCaseNameConstant       = "empty_defaults_to_personal"
	testKindWorkCaseNameConstant          = "work_padded"
	testKindUnknownCaseNameConstant       = "unknown_value"
	testUnknownProtocolValueConstant      = "ftp"
	testUnknownAccountKindValueConstant   = "corporate"
	testDecodeHookProtocolSourceConstant  = "HTTPS"
	testDecodeHookUntouchedValueConstant  = 42
	testCollectionFirstAccountIDConstant  = "first"
	testCollectionSecondAccountIDConstant = "second"
)

func TestParseCloneProtocol(testInstance *testing.T) {
	testCases := []struct {
		name             string
		input            string
		expectedProtocol accounts.CloneProtocol
		expectError      bool
	}{
		{name: testProtocolDefaultCaseNameConstant, input: "", expectedProtocol: accounts.CloneProtocolSSH},
		{name: testProtocolSSHCaseNameConstant, input: "ssh", expectedProtocol: accounts.CloneProtocolSSH},
		{name: testProtocolHTTPSCaseNameConstant, input: " HTTPS ", expectedProtocol: accounts.CloneProtocolHTTPS},
		{name: testProtocolUnknownCaseNameConstant, input: testUnknownProtocolValueConstant, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedProtocol, parseError := accounts.ParseCloneProtocol(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedProtocol, parsedProtocol)
		})
	}
}

func TestParseAccountKind(testInstance *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectedKind accounts.AccountKind
		expectError  bool
	}{
		{name: testKindDefaultCaseNameConstant, input: "", expectedKind: accounts.AccountKindPersonal},
		{name: testKindWorkCaseNameConstant, input: " Work ", expectedKind: accounts.AccountKindWork},
		{name: testKindUnknownCaseNameConstant, input: testUnknownAccountKindValueConstant, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedKind, parseError := accounts.ParseAccountKind(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedKind, parsedKind)
		})
	}
}

func TestCloneProtocolDecodeHook(testInstance *testing.T) {
	decodeHook := accounts.CloneProtocolDecodeHook()

	decodedValue, decodeError := decodeHook(reflect.TypeOf(""), reflect.TypeOf(accounts.CloneProtocol("")), testDecodeHookProtocolSourceConstant)
	require.NoError(testInstance, decodeError)
	require.Equal(testInstance, accounts.CloneProtocolHTTPS, decodedValue)

	untouchedValue, untouchedError := decodeHook(reflect.TypeOf(0), reflect.TypeOf(accounts.CloneProtocol("")), testDecodeHookUntouchedValueConstant)
	require.NoError(testInstance, untouchedError)
	require.Equal(testInstance, testDecodeHookUntouchedValueConstant, untouchedValue)
}

func TestCollectionLookups(testInstance *testing.T) {
	collection := accounts.Collection{
		Accounts: []accounts.Account{
			{ID: testCollectionFirstAccountIDConstant},
			{ID: testCollectionSecondAccountIDConstant},
		},
		ActiveAccountID: testCollectionSecondAccountIDConstant,
	}

	foundAccount, found := collection.FindAccount(testCollectionFirstAccountIDConstant)
	require.True(testInstance, found)
	require.Equal(testInstance, testCollectionFirstAccountIDConstant, foundAccount.ID)

	_, missingFound := collection.FindAccount(testUnknownAccountKindValueConstant)
	require.False(testInstance, missingFound)

	activeAccount, activeConfigured := collection.ActiveAccount()
	require.True(testInstance, activeConfigured)
	require.Equal(testInstance, testCollectionSecondAccountIDConstant, activeAccount.ID)

	require.True(testInstance, collection.IsActive(testCollectionSecondAccountIDConstant))
	require.False(testInstance, collection.IsActive(testCollectionFirstAccountIDConstant))

	emptyCollection := accounts.Collection{}
	_, emptyActiveConfigured := emptyCollection.ActiveAccount()
	require.False(testInstance, emptyActiveConfigured)
}
