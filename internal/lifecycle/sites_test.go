package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planline/internal/domain"
)

func TestAdvanceSiteIsForwardOnly(t *testing.T) {
	site := domain.Site{ID: "s1", Ref: "LAA001", Stage: domain.SiteIdentify}

	site, err := AdvanceSite(site)
	require.NoError(t, err)
	assert.Equal(t, domain.SiteAssess, site.Stage)

	site, err = AdvanceSite(site)
	require.NoError(t, err)
	assert.Equal(t, domain.SiteAllocate, site.Stage)

	_, err = AdvanceSite(site)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, domain.SiteAllocate, site.Stage)
}

func TestNextSiteRef(t *testing.T) {
	assert.Equal(t, "LAA001", NextSiteRef(nil))
	assert.Equal(t, "LAA003", NextSiteRef(make([]domain.Site, 2)))
}
