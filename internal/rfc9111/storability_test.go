package rfc9111

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanStoreBasicPublicMaxAge(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "GET",
		Status:               200,
		ResponseCacheControl: Directives{"public": "", "max-age": "60"},
	})
	assert.True(t, ok)
}

func TestCanStoreRejectsNonGETHEAD(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "POST",
		Status:               200,
		ResponseCacheControl: Directives{"public": ""},
	})
	assert.False(t, ok)
}

func TestCanStoreRejectsOutOfRangeStatus(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "GET",
		Status:               600,
		ResponseCacheControl: Directives{"public": ""},
	})
	assert.False(t, ok)
}

func TestCanStoreRejectsVaryStar(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "GET",
		Status:               200,
		Vary:                 "*",
		ResponseCacheControl: Directives{"public": ""},
	})
	assert.False(t, ok)
}

func TestCanStoreRejectsNoStore(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "GET",
		Status:               200,
		ResponseCacheControl: Directives{"no-store": "", "public": ""},
	})
	assert.False(t, ok)
}

func TestCanStoreSharedRejectsPrivate(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Shared:               true,
		Method:               "GET",
		Status:               200,
		ResponseCacheControl: Directives{"private": ""},
	})
	assert.False(t, ok)
}

func TestCanStoreNonSharedAllowsPrivate(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Shared:               false,
		Method:               "GET",
		Status:               200,
		ResponseCacheControl: Directives{"private": ""},
	})
	assert.True(t, ok)
}

func TestCanStoreSharedAuthorizationWithoutException(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Shared:               true,
		Method:               "GET",
		Status:               200,
		HasAuthorization:     true,
		ResponseCacheControl: Directives{"max-age": "60"},
	})
	assert.False(t, ok)
}

func TestCanStoreSharedAuthorizationWithMustRevalidate(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Shared:               true,
		Method:               "GET",
		Status:               200,
		HasAuthorization:     true,
		ResponseCacheControl: Directives{"must-revalidate": ""},
	})
	assert.True(t, ok)
}

func TestCanStoreSharedAuthorizationWithPublic(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Shared:               true,
		Method:               "GET",
		Status:               200,
		HasAuthorization:     true,
		ResponseCacheControl: Directives{"public": ""},
	})
	assert.True(t, ok)
}

func TestCanStoreSharedAuthorizationWithSMaxAge(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Shared:               true,
		Method:               "GET",
		Status:               200,
		HasAuthorization:     true,
		ResponseCacheControl: Directives{"s-maxage": "60"},
	})
	assert.True(t, ok)
}

func TestCanStoreMustUnderstandRejectsUnrecognizedStatus(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "GET",
		Status:               299, // not in understoodStatusCodes
		ResponseCacheControl: Directives{"public": "", "must-understand": ""},
	})
	assert.False(t, ok)
}

func TestCanStoreForceMustUnderstandAppliesEvenWithoutDirective(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "GET",
		Status:               299,
		ForceMustUnderstand:  true,
		ResponseCacheControl: Directives{"public": ""},
	})
	assert.False(t, ok)
}

func TestCanStoreHeuristicallyCacheableStatusWithNoExplicitSignal(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "GET",
		Status:               404,
		ResponseCacheControl: Directives{},
	})
	assert.True(t, ok)
}

func TestCanStoreNoPositiveSignalRejected(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "GET",
		Status:               302, // not in heuristicallyCacheable
		ResponseCacheControl: Directives{},
	})
	assert.False(t, ok)
}

func TestCanStoreExpiresIsAPositiveSignal(t *testing.T) {
	ok := CanStore(StorabilityInputs{
		Method:               "GET",
		Status:               200,
		HasExpires:           true,
		ResponseCacheControl: Directives{},
	})
	assert.True(t, ok)
}

func TestCanStoreSharedAcceptsPlainMaxAgeAsSignal(t *testing.T) {
	// max-age alone is still a valid positive signal even when shared.
	ok := CanStore(StorabilityInputs{
		Shared:               true,
		Method:               "GET",
		Status:               200,
		ResponseCacheControl: Directives{"max-age": "30"},
	})
	assert.True(t, ok)
}
