package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/repo"
	"github.com/Vibhav-Deo/documentation-assistant/internal/vectorstore"
)

const (
	defaultPlan         = "free"
	defaultMonthlyQuota = 1000
)

type CollectionStatus struct {
	Exists bool  `json:"exists"`
	Count  int64 `json:"count"`
}

// OrgService owns the organization lifecycle: creation, repository
// registration, decision records and the destructive purge path.
type OrgService struct {
	orgs      *repo.OrganizationRepo
	repos     *repo.RepositoryRepo
	tickets   *repo.TicketRepo
	decisions *repo.DecisionRepo
	index     vectorstore.Index
}

func NewOrgService(orgs *repo.OrganizationRepo, repos *repo.RepositoryRepo, tickets *repo.TicketRepo, decisions *repo.DecisionRepo, index vectorstore.Index) *OrgService {
	return &OrgService{
		orgs:      orgs,
		repos:     repos,
		tickets:   tickets,
		decisions: decisions,
		index:     index,
	}
}

func (s *OrgService) GetOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
	return s.orgs.GetByID(ctx, orgID)
}

func (s *OrgService) CreateOrganization(ctx context.Context, org *model.Organization) error {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	if org.Plan == "" {
		org.Plan = defaultPlan
	}
	if org.MonthlyQuota == 0 {
		org.MonthlyQuota = defaultMonthlyQuota
	}
	org.UsedQuota = 0
	org.IsActive = true
	org.CreatedAt = time.Now()
	return s.orgs.Create(ctx, org)
}

// PurgeOrganization removes every trace of the org, vector collections
// included. There is no undo.
func (s *OrgService) PurgeOrganization(ctx context.Context, orgID string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("org_id", orgID))
	if err := s.index.DeleteOrganization(ctx, orgID); err != nil {
		return err
	}
	if err := s.orgs.Purge(ctx, orgID); err != nil {
		return err
	}
	logger.Info("organization purged")
	return nil
}

func (s *OrgService) RegisterRepository(ctx context.Context, orgID string, item *model.Repository) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.OrgID = orgID
	if item.Provider == "" {
		item.Provider = "github"
	}
	if item.Branch == "" {
		item.Branch = "main"
	}
	item.CreatedAt = time.Now()
	return s.repos.Create(ctx, item)
}

func (s *OrgService) ListRepositories(ctx context.Context, orgID string) ([]model.Repository, error) {
	return s.repos.ListByOrg(ctx, orgID)
}

// RecordDecision attaches a design decision to an existing ticket.
func (s *OrgService) RecordDecision(ctx context.Context, orgID string, d *model.Decision) error {
	if _, err := s.tickets.GetByKey(ctx, orgID, d.TicketKey); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.OrgID = orgID
	d.CreatedAt = time.Now()
	return s.decisions.Create(ctx, d)
}

func (s *OrgService) ListDecisions(ctx context.Context, orgID string) ([]model.Decision, error) {
	return s.decisions.ListByOrg(ctx, orgID)
}

// CollectionsStatus reports existence and per-org point count for every
// collection the org uses.
func (s *OrgService) CollectionsStatus(ctx context.Context, orgID string) (map[string]CollectionStatus, error) {
	names := append(vectorstore.SharedCollections(), vectorstore.DocCollection(orgID))
	exists, err := s.index.VerifyCollections(ctx, names)
	if err != nil {
		return nil, err
	}
	out := make(map[string]CollectionStatus, len(names))
	for _, name := range names {
		status := CollectionStatus{Exists: exists[name]}
		if status.Exists {
			count, err := s.index.Count(ctx, name, orgID)
			if err != nil {
				return nil, err
			}
			status.Count = count
		}
		out[name] = status
	}
	return out, nil
}
