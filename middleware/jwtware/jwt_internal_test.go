package jwtware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExtractorsSkipsMalformedLookups(t *testing.T) {
	extractors := GetExtractors("header:Authorization, cookie:jwt,bogus,query", "Bearer")
	require.Len(t, extractors, 2)
}

func TestGetDefaultConfigFillsDefaults(t *testing.T) {
	cfg := GetDefaultConfig(Config{TokenValidator: stubValidator{}})

	assert.Equal(t, "user", cfg.ContextKey)
	assert.Equal(t, "Bearer", cfg.AuthScheme)
	assert.Equal(t, defaultTokenLookup, cfg.TokenLookup)
	assert.NotNil(t, cfg.SuccessHandler)
	assert.NotNil(t, cfg.ErrorHandler)
}

func TestGetDefaultConfigRequiresValidator(t *testing.T) {
	assert.Panics(t, func() {
		GetDefaultConfig(Config{})
	})
}
