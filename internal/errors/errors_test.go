package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderCarriesMetadata(t *testing.T) {
	err := Newf("lookup failed for %q", "Rattus rattus").
		Category(CategoryNetwork).
		Component("gbif").
		Context("status_code", 503).
		Build()

	assert.Equal(t, `lookup failed for "Rattus rattus"`, err.Error())
	assert.Equal(t, CategoryNetwork, err.Category)
	assert.Equal(t, "gbif", err.Component)
	assert.Equal(t, 503, err.Context["status_code"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestDefaultCategoryIsGeneric(t *testing.T) {
	err := Newf("boom").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
}

func TestUnwrapAndIs(t *testing.T) {
	base := fmt.Errorf("underlying")
	wrapped := New(fmt.Errorf("outer: %w", base)).Category(CategoryDatabase).Build()

	require.ErrorIs(t, wrapped, base)

	var ee *EnhancedError
	require.True(t, As(wrapped, &ee))
	assert.Equal(t, CategoryDatabase, ee.Category)
	assert.True(t, IsCategory(wrapped, CategoryDatabase))
	assert.False(t, IsCategory(wrapped, CategoryNetwork))
}
