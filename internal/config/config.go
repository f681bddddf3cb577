package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"planline/internal/dates"
	"planline/internal/domain"
)

// Config models planline.yml.
type Config struct {
	Workspace struct {
		ActivePlan string `yaml:"active_plan"`
	} `yaml:"workspace"`
	Plans     []domain.Plan           `yaml:"plans"`
	Rules     Rules                   `yaml:"rules"`
	Readings  []domain.ReadingProfile `yaml:"readings"`
	Pressures []domain.Pressure       `yaml:"pressures"`
	Seed      Seed                    `yaml:"seed"`
}

// Rules are the numeric limits used by readiness and the home summary.
type Rules struct {
	NoticeLeadMonths   int `yaml:"g1_notice_lead_months"`
	NextDates          int `yaml:"next_dates"`
	ScrutinyPoints     int `yaml:"scrutiny_points"`
	ImpactsCap         int `yaml:"impacts_cap"`
	UpcomingMilestones int `yaml:"upcoming_milestones"`
}

// Seed is the initial content of a plan that has never been saved.
type Seed struct {
	Reading    string          `yaml:"reading"`
	Milestones []MilestoneSeed `yaml:"milestones"`
	Evidence   []EvidenceSeed  `yaml:"evidence"`
	Signals    []SignalSeed    `yaml:"signals"`
	Options    []OptionSeed    `yaml:"options"`
	Sites      []SiteSeed      `yaml:"sites"`
	SiteTasks  []SiteTaskSeed  `yaml:"site_tasks"`
}

// MilestoneSeed dates are relative to the day the plan is first opened.
type MilestoneSeed struct {
	Label        string               `yaml:"label"`
	Kind         domain.MilestoneKind `yaml:"kind"`
	OffsetMonths int                  `yaml:"offset_months"`
}

type EvidenceSeed struct {
	Title  string                `yaml:"title"`
	Status domain.EvidenceStatus `yaml:"status"`
	Tags   []string              `yaml:"tags"`
	UsedBy []string              `yaml:"used_by"`
}

type SignalSeed struct {
	Indicator string              `yaml:"indicator"`
	Baseline  string              `yaml:"baseline"`
	Current   string              `yaml:"current"`
	Target    string              `yaml:"target"`
	Trend     domain.Trend        `yaml:"trend"`
	Severity  domain.Severity     `yaml:"severity"`
	Status    domain.SignalStatus `yaml:"status"`
	Notes     string              `yaml:"notes"`
}

type OptionSeed struct {
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Pros        []string `yaml:"pros"`
	Cons        []string `yaml:"cons"`
}

type SiteSeed struct {
	Ref      string           `yaml:"ref"`
	Name     string           `yaml:"name"`
	Stage    domain.SiteStage `yaml:"stage"`
	AreaHa   float64          `yaml:"area_ha"`
	Capacity *int             `yaml:"capacity"`
	Notes    string           `yaml:"notes"`
}

type SiteTaskSeed struct {
	Title  string            `yaml:"title"`
	Owner  string            `yaml:"owner"`
	Status domain.TaskStatus `yaml:"status"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with pl config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if len(c.Plans) == 0 {
		return fmt.Errorf("config.plans must list at least one plan")
	}
	seen := map[string]bool{}
	for i, p := range c.Plans {
		if p.ID == "" {
			return fmt.Errorf("config.plans[%d].id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("config.plans has duplicate id %s", p.ID)
		}
		seen[p.ID] = true
	}
	if c.Workspace.ActivePlan != "" && !seen[c.Workspace.ActivePlan] {
		return fmt.Errorf("config.workspace.active_plan %s is not a configured plan", c.Workspace.ActivePlan)
	}
	if c.Rules.NoticeLeadMonths < 0 || c.Rules.NextDates < 0 || c.Rules.ScrutinyPoints < 0 ||
		c.Rules.ImpactsCap < 0 || c.Rules.UpcomingMilestones < 0 {
		return fmt.Errorf("config.rules values must not be negative")
	}
	readings := map[string]bool{}
	for i, r := range c.Readings {
		if r.ID == "" {
			return fmt.Errorf("config.readings[%d].id is required", i)
		}
		readings[r.ID] = true
	}
	if c.Seed.Reading != "" && !readings[c.Seed.Reading] {
		return fmt.Errorf("config.seed.reading references unknown reading %s", c.Seed.Reading)
	}
	for i, p := range c.Pressures {
		if !p.Severity.Valid() {
			return fmt.Errorf("config.pressures[%d] has invalid severity %q", i, p.Severity)
		}
	}
	for i, m := range c.Seed.Milestones {
		if !m.Kind.Valid() {
			return fmt.Errorf("config.seed.milestones[%d] has invalid kind %q", i, m.Kind)
		}
	}
	for i, e := range c.Seed.Evidence {
		if !e.Status.Valid() {
			return fmt.Errorf("config.seed.evidence[%d] has invalid status %q", i, e.Status)
		}
	}
	for i, s := range c.Seed.Signals {
		if !s.Trend.Valid() || !s.Severity.Valid() || !s.Status.Valid() {
			return fmt.Errorf("config.seed.signals[%d] has an invalid trend, severity or status", i)
		}
	}
	for i, s := range c.Seed.Sites {
		if !s.Stage.Valid() {
			return fmt.Errorf("config.seed.sites[%d] has invalid stage %q", i, s.Stage)
		}
	}
	for i, t := range c.Seed.SiteTasks {
		if !t.Status.Valid() {
			return fmt.Errorf("config.seed.site_tasks[%d] has invalid status %q", i, t.Status)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "planline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the embedded default config.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Plan returns the configured plan with id.
func (c *Config) Plan(id string) (domain.Plan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Plan{}, false
}

// DefaultPlanID is the configured active plan, or the first plan.
func (c *Config) DefaultPlanID() string {
	if c.Workspace.ActivePlan != "" {
		return c.Workspace.ActivePlan
	}
	if len(c.Plans) > 0 {
		return c.Plans[0].ID
	}
	return ""
}

// Reading returns the reading profile with id, falling back to the first one.
func (c *Config) Reading(id string) (domain.ReadingProfile, bool) {
	for _, r := range c.Readings {
		if r.ID == id {
			return r, true
		}
	}
	if len(c.Readings) > 0 {
		return c.Readings[0], false
	}
	return domain.ReadingProfile{}, false
}

// SeedState builds the initial state of a plan. newID is called once per
// record with a short kind prefix.
func (c *Config) SeedState(planID string, today dates.Date, newID func(prefix string) string) domain.PlanState {
	st := domain.NewPlanState(planID)
	st.ReadingID = c.Seed.Reading
	if st.ReadingID == "" && len(c.Readings) > 0 {
		st.ReadingID = c.Readings[0].ID
	}
	for _, m := range c.Seed.Milestones {
		st.Milestones = append(st.Milestones, domain.Milestone{
			ID:    newID("ms"),
			Label: m.Label,
			Date:  dates.AddMonths(today, m.OffsetMonths),
			Kind:  m.Kind,
		})
	}
	for _, e := range c.Seed.Evidence {
		st.Evidence = append(st.Evidence, domain.EvidenceItem{
			ID:     newID("ev"),
			Title:  e.Title,
			Status: e.Status,
			Tags:   append([]string{}, e.Tags...),
			UsedBy: append([]string{}, e.UsedBy...),
		})
	}
	for _, s := range c.Seed.Signals {
		st.Signals = append(st.Signals, domain.MonitoringSignal{
			ID:        newID("sig"),
			Indicator: s.Indicator,
			Baseline:  s.Baseline,
			Current:   s.Current,
			Target:    s.Target,
			Trend:     s.Trend,
			Severity:  s.Severity,
			Status:    s.Status,
			Notes:     s.Notes,
		})
	}
	for _, o := range c.Seed.Options {
		opt := domain.Option{
			ID:          newID("opt"),
			Label:       o.Label,
			Description: o.Description,
			Pros:        []domain.ProCon{},
			Cons:        []domain.ProCon{},
			Variants:    []domain.Variant{},
		}
		for _, p := range o.Pros {
			opt.Pros = append(opt.Pros, domain.ProCon{ID: newID("pc"), Text: p})
		}
		for _, p := range o.Cons {
			opt.Cons = append(opt.Cons, domain.ProCon{ID: newID("pc"), Text: p})
		}
		st.Options = append(st.Options, opt)
	}
	for _, s := range c.Seed.Sites {
		site := domain.Site{
			ID:     newID("site"),
			Ref:    s.Ref,
			Name:   s.Name,
			Stage:  s.Stage,
			AreaHa: s.AreaHa,
			Notes:  s.Notes,
		}
		if s.Capacity != nil {
			n := *s.Capacity
			site.Capacity = &n
		}
		st.Sites = append(st.Sites, site)
	}
	for _, t := range c.Seed.SiteTasks {
		st.SiteTasks = append(st.SiteTasks, domain.SiteTask{ID: newID("task"), Title: t.Title, Owner: t.Owner, Status: t.Status})
	}
	return st
}
