package store

import (
	"context"
	"strings"

	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
)

func (s *Store) ListEvidence(ctx context.Context) ([]domain.EvidenceItem, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return st.Evidence, nil
}

// SearchEvidence matches q case-insensitively against title, tags and used-by.
func (s *Store) SearchEvidence(ctx context.Context, q string) ([]domain.EvidenceItem, error) {
	items, err := s.ListEvidence(ctx)
	if err != nil {
		return nil, err
	}
	return filterEvidence(items, q), nil
}

func filterEvidence(items []domain.EvidenceItem, q string) []domain.EvidenceItem {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return items
	}
	out := []domain.EvidenceItem{}
	for _, e := range items {
		hay := strings.ToLower(e.Title + " " + strings.Join(e.Tags, " ") + " " + strings.Join(e.UsedBy, " "))
		if strings.Contains(hay, q) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) AddEvidence(ctx context.Context, title string, status domain.EvidenceStatus, tags, usedBy []string) (domain.EvidenceItem, error) {
	var item domain.EvidenceItem
	_, err := s.apply(ctx, "evidence.add", func(st *domain.PlanState) (change, error) {
		if status == "" {
			status = domain.EvidenceCommissioned
		}
		if !status.Valid() {
			return change{}, lifecycle.InvalidInput("evidence status", string(status))
		}
		if strings.TrimSpace(title) == "" {
			title = "New evidence item"
		}
		item = domain.EvidenceItem{
			ID:     s.id("ev"),
			Title:  title,
			Status: status,
			Tags:   append([]string{}, tags...),
			UsedBy: append([]string{}, usedBy...),
		}
		st.Evidence = append(st.Evidence, item)
		return change{"evidence", item.ID, events.EventPayload{"title": title, "status": string(status)}}, nil
	})
	return item, err
}

func (s *Store) SetEvidenceStatus(ctx context.Context, id string, status domain.EvidenceStatus) (domain.EvidenceItem, error) {
	var item domain.EvidenceItem
	_, err := s.apply(ctx, "evidence.status", func(st *domain.PlanState) (change, error) {
		if !status.Valid() {
			return change{}, lifecycle.InvalidInput("evidence status", string(status))
		}
		for i := range st.Evidence {
			if st.Evidence[i].ID == id {
				from := st.Evidence[i].Status
				st.Evidence[i].Status = status
				item = st.Evidence[i]
				return change{"evidence", id, events.EventPayload{"from": string(from), "to": string(status)}}, nil
			}
		}
		return change{}, lifecycle.NotFound("evidence", id)
	})
	return item, err
}
