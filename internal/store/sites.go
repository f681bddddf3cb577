package store

import (
	"context"
	"strconv"
	"strings"

	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
)

// SitePatch edits a site's details. The stage only moves through AdvanceSite.
type SitePatch struct {
	Ref      *string
	Name     *string
	Notes    *string
	AreaHa   *float64
	Capacity *int
}

func (p SitePatch) validate() error {
	if p.AreaHa != nil && *p.AreaHa < 0 {
		return lifecycle.InvalidInput("area", strconv.FormatFloat(*p.AreaHa, 'f', -1, 64))
	}
	if p.Capacity != nil && *p.Capacity < 0 {
		return lifecycle.InvalidInput("capacity", strconv.Itoa(*p.Capacity))
	}
	return nil
}

func (p SitePatch) applyTo(site *domain.Site) {
	if p.Ref != nil {
		site.Ref = strings.TrimSpace(*p.Ref)
	}
	if p.Name != nil {
		site.Name = *p.Name
	}
	if p.Notes != nil {
		site.Notes = *p.Notes
	}
	if p.AreaHa != nil {
		site.AreaHa = *p.AreaHa
	}
	if p.Capacity != nil {
		c := *p.Capacity
		site.Capacity = &c
	}
}

func (s *Store) ListSites(ctx context.Context, stage domain.SiteStage) ([]domain.Site, error) {
	if stage != "" && !stage.Valid() {
		return nil, lifecycle.InvalidInput("site stage", string(stage))
	}
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Site{}
	for _, site := range st.Sites {
		if stage == "" || site.Stage == stage {
			out = append(out, site)
		}
	}
	return out, nil
}

// SiteStats counts the pipeline by stage and sums allocated capacity.
type SiteStats struct {
	Total             int                      `json:"total"`
	ByStage           map[domain.SiteStage]int `json:"by_stage"`
	AllocatedArea     float64                  `json:"allocated_area_ha"`
	AllocatedCapacity int                      `json:"allocated_capacity"`
}

func (s *Store) SiteStats(ctx context.Context) (SiteStats, error) {
	sites, err := s.ListSites(ctx, "")
	if err != nil {
		return SiteStats{}, err
	}
	stats := SiteStats{Total: len(sites), ByStage: map[domain.SiteStage]int{}}
	for _, stage := range domain.SiteStages {
		stats.ByStage[stage] = 0
	}
	for _, site := range sites {
		stats.ByStage[site.Stage]++
		if site.Stage == domain.SiteAllocate {
			stats.AllocatedArea += site.AreaHa
			if site.Capacity != nil {
				stats.AllocatedCapacity += *site.Capacity
			}
		}
	}
	return stats, nil
}

// AddSite appends a site at the identify stage with the next LAA reference.
func (s *Store) AddSite(ctx context.Context, name string) (domain.Site, error) {
	var site domain.Site
	_, err := s.apply(ctx, "site.add", func(st *domain.PlanState) (change, error) {
		if strings.TrimSpace(name) == "" {
			name = lifecycle.DefaultSiteName
		}
		site = domain.Site{
			ID:    s.id("site"),
			Ref:   lifecycle.NextSiteRef(st.Sites),
			Name:  name,
			Stage: domain.SiteIdentify,
		}
		st.Sites = append(st.Sites, site)
		return change{"site", site.ID, events.EventPayload{"ref": site.Ref}}, nil
	})
	return site, err
}

func (s *Store) UpdateSite(ctx context.Context, id string, p SitePatch) (domain.Site, error) {
	var site domain.Site
	_, err := s.apply(ctx, "site.update", func(st *domain.PlanState) (change, error) {
		if err := p.validate(); err != nil {
			return change{}, err
		}
		i := siteIndex(st.Sites, id)
		if i < 0 {
			return change{}, lifecycle.NotFound("site", id)
		}
		p.applyTo(&st.Sites[i])
		site = st.Sites[i]
		return change{kind: "site", id: id}, nil
	})
	return site, err
}

// AdvanceSite moves a site identify -> assess -> allocate.
func (s *Store) AdvanceSite(ctx context.Context, id string) (domain.Site, error) {
	var site domain.Site
	_, err := s.apply(ctx, "site.advance", func(st *domain.PlanState) (change, error) {
		i := siteIndex(st.Sites, id)
		if i < 0 {
			return change{}, lifecycle.NotFound("site", id)
		}
		from := st.Sites[i].Stage
		next, err := lifecycle.AdvanceSite(st.Sites[i])
		if err != nil {
			return change{}, err
		}
		st.Sites[i] = next
		site = next
		return change{"site", id, events.EventPayload{"from": string(from), "to": string(next.Stage)}}, nil
	})
	return site, err
}

func (s *Store) RemoveSite(ctx context.Context, id string) error {
	_, err := s.apply(ctx, "site.remove", func(st *domain.PlanState) (change, error) {
		i := siteIndex(st.Sites, id)
		if i < 0 {
			return change{}, lifecycle.NotFound("site", id)
		}
		st.Sites = append(st.Sites[:i], st.Sites[i+1:]...)
		return change{kind: "site", id: id}, nil
	})
	return err
}

func siteIndex(sites []domain.Site, id string) int {
	for i := range sites {
		if sites[i].ID == id {
			return i
		}
	}
	return -1
}

// SiteTaskPatch edits a task. Nil fields are left alone.
type SiteTaskPatch struct {
	Title  *string
	Owner  *string
	Status *domain.TaskStatus
}

func (s *Store) ListSiteTasks(ctx context.Context) ([]domain.SiteTask, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return st.SiteTasks, nil
}

func (s *Store) AddSiteTask(ctx context.Context, title, owner string) (domain.SiteTask, error) {
	var task domain.SiteTask
	_, err := s.apply(ctx, "site_task.add", func(st *domain.PlanState) (change, error) {
		if strings.TrimSpace(title) == "" {
			title = "New task"
		}
		if strings.TrimSpace(owner) == "" {
			owner = "Team"
		}
		task = domain.SiteTask{ID: s.id("task"), Title: title, Owner: owner, Status: domain.TaskNotStarted}
		st.SiteTasks = append(st.SiteTasks, task)
		return change{kind: "site_task", id: task.ID}, nil
	})
	return task, err
}

// UpdateSiteTask edits a task. Status may move in any direction.
func (s *Store) UpdateSiteTask(ctx context.Context, id string, p SiteTaskPatch) (domain.SiteTask, error) {
	var task domain.SiteTask
	_, err := s.apply(ctx, "site_task.update", func(st *domain.PlanState) (change, error) {
		if p.Status != nil && !p.Status.Valid() {
			return change{}, lifecycle.InvalidInput("task status", string(*p.Status))
		}
		for i := range st.SiteTasks {
			if st.SiteTasks[i].ID != id {
				continue
			}
			t := &st.SiteTasks[i]
			if p.Title != nil {
				t.Title = *p.Title
			}
			if p.Owner != nil {
				t.Owner = *p.Owner
			}
			if p.Status != nil {
				t.Status = *p.Status
			}
			task = *t
			return change{"site_task", id, events.EventPayload{"status": string(t.Status)}}, nil
		}
		return change{}, lifecycle.NotFound("site task", id)
	})
	return task, err
}

func (s *Store) RemoveSiteTask(ctx context.Context, id string) error {
	_, err := s.apply(ctx, "site_task.remove", func(st *domain.PlanState) (change, error) {
		for i := range st.SiteTasks {
			if st.SiteTasks[i].ID == id {
				st.SiteTasks = append(st.SiteTasks[:i], st.SiteTasks[i+1:]...)
				return change{kind: "site_task", id: id}, nil
			}
		}
		return change{}, lifecycle.NotFound("site task", id)
	})
	return err
}
