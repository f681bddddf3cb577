package lifecycle

import (
	"fmt"

	"planline/internal/domain"
)

const DefaultSiteName = "New site"

// NextSiteRef numbers a new site after the ones already in the pipeline.
func NextSiteRef(sites []domain.Site) string {
	return fmt.Sprintf("LAA%03d", len(sites)+1)
}

// AdvanceSite moves a site one stage forward. Allocate is terminal.
func AdvanceSite(site domain.Site) (domain.Site, error) {
	next, ok := site.Stage.Next()
	if !ok {
		return site, newError(KindInvalidTransition,
			map[string]any{"from": string(site.Stage), "site": site.ID},
			"site %s is already at %s", site.Ref, site.Stage)
	}
	site.Stage = next
	return site, nil
}
