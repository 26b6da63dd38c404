package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/ai"
	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/repo"
	"github.com/Vibhav-Deo/documentation-assistant/internal/textscan"
	"github.com/Vibhav-Deo/documentation-assistant/internal/vectorstore"
)

// maxPayloadChars caps each text field stored in a vector payload. Full texts
// stay in the relational tables; the payload only needs enough for display.
const maxPayloadChars = 500

type IndexerService struct {
	orgs     *repo.OrganizationRepo
	tickets  *repo.TicketRepo
	commits  *repo.CommitRepo
	pulls    *repo.PullRequestRepo
	files    *repo.CodeFileRepo
	index    vectorstore.Index
	embedder ai.IEmbedder
}

func NewIndexerService(
	orgs *repo.OrganizationRepo,
	tickets *repo.TicketRepo,
	commits *repo.CommitRepo,
	pulls *repo.PullRequestRepo,
	files *repo.CodeFileRepo,
	index vectorstore.Index,
	embedder ai.IEmbedder,
) *IndexerService {
	return &IndexerService{
		orgs:     orgs,
		tickets:  tickets,
		commits:  commits,
		pulls:    pulls,
		files:    files,
		index:    index,
		embedder: embedder,
	}
}

// IndexTickets stores tickets relationally and as vector points. A failed item
// is logged and skipped, the rest of the batch continues. Returns the number
// of tickets actually indexed.
func (s *IndexerService) IndexTickets(ctx context.Context, orgID string, tickets []model.Ticket) (int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("org_id", orgID))
	if len(tickets) == 0 {
		return 0, nil
	}
	if err := s.orgs.CheckAndIncrementQuota(ctx, orgID, len(tickets)); err != nil {
		return 0, err
	}
	if err := s.index.EnsureCollection(ctx, vectorstore.CollectionTickets); err != nil {
		return 0, err
	}
	indexed := 0
	for i := range tickets {
		t := &tickets[i]
		t.OrgID = orgID
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if err := s.indexOneTicket(ctx, orgID, t); err != nil {
			logger.Error("index ticket failed", zap.String("ticket_key", t.TicketKey), zap.Error(err))
			continue
		}
		indexed++
	}
	logger.Info("tickets indexed", zap.Int("requested", len(tickets)), zap.Int("indexed", indexed))
	return indexed, nil
}

func (s *IndexerService) indexOneTicket(ctx context.Context, orgID string, t *model.Ticket) error {
	if err := s.tickets.Upsert(ctx, t); err != nil {
		return err
	}
	text := ticketSearchText(t)
	embedding, err := s.embedder.Embed(ctx, text, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return err
	}
	point := vectorstore.Point{
		Embedding: embedding,
		Keywords:  textscan.ExtractKeywords(text),
		Payload: map[string]interface{}{
			"type":        "ticket",
			"ticket_key":  t.TicketKey,
			"summary":     truncate(t.Summary, maxPayloadChars),
			"description": truncate(t.Description, maxPayloadChars),
			"issue_type":  t.IssueType,
			"status":      t.Status,
			"assignee":    t.Assignee,
		},
	}
	return s.index.Upsert(ctx, vectorstore.CollectionTickets, orgID, []vectorstore.Point{point})
}

// IndexCommits stores commits for one repository. Ticket references absent on
// input are recovered from the commit message.
func (s *IndexerService) IndexCommits(ctx context.Context, orgID string, repositoryID string, commits []model.Commit) (int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("org_id", orgID), zap.String("repository_id", repositoryID))
	if len(commits) == 0 {
		return 0, nil
	}
	if err := s.orgs.CheckAndIncrementQuota(ctx, orgID, len(commits)); err != nil {
		return 0, err
	}
	if err := s.index.EnsureCollection(ctx, vectorstore.CollectionCommits); err != nil {
		return 0, err
	}
	indexed := 0
	for i := range commits {
		c := &commits[i]
		c.OrgID = orgID
		c.RepositoryID = repositoryID
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if len(c.TicketReferences) == 0 {
			c.TicketReferences = textscan.ExtractTicketKeys(c.Message)
		}
		if err := s.indexOneCommit(ctx, orgID, c); err != nil {
			logger.Error("index commit failed", zap.String("sha", c.ShortSHA()), zap.Error(err))
			continue
		}
		indexed++
	}
	logger.Info("commits indexed", zap.Int("requested", len(commits)), zap.Int("indexed", indexed))
	return indexed, nil
}

func (s *IndexerService) indexOneCommit(ctx context.Context, orgID string, c *model.Commit) error {
	if err := s.commits.Upsert(ctx, c); err != nil {
		return err
	}
	text := commitSearchText(c)
	embedding, err := s.embedder.Embed(ctx, text, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return err
	}
	point := vectorstore.Point{
		Embedding: embedding,
		Keywords:  textscan.ExtractKeywords(text),
		Payload: map[string]interface{}{
			"type":          "commit",
			"sha":           c.SHA,
			"short_sha":     c.ShortSHA(),
			"message":       truncate(c.Message, maxPayloadChars),
			"author_name":   c.AuthorName,
			"files_changed": len(c.FilesChanged),
			"ticket_keys":   c.TicketReferences,
		},
	}
	return s.index.Upsert(ctx, vectorstore.CollectionCommits, orgID, []vectorstore.Point{point})
}

func (s *IndexerService) IndexPullRequests(ctx context.Context, orgID string, repositoryID string, pulls []model.PullRequest) (int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("org_id", orgID), zap.String("repository_id", repositoryID))
	if len(pulls) == 0 {
		return 0, nil
	}
	if err := s.orgs.CheckAndIncrementQuota(ctx, orgID, len(pulls)); err != nil {
		return 0, err
	}
	if err := s.index.EnsureCollection(ctx, vectorstore.CollectionPullRequests); err != nil {
		return 0, err
	}
	indexed := 0
	for i := range pulls {
		p := &pulls[i]
		p.OrgID = orgID
		p.RepositoryID = repositoryID
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if len(p.TicketReferences) == 0 {
			p.TicketReferences = textscan.ExtractTicketKeys(p.Title + " " + p.Description)
		}
		if err := s.indexOnePullRequest(ctx, orgID, p); err != nil {
			logger.Error("index pull request failed", zap.Int("pr_number", p.PRNumber), zap.Error(err))
			continue
		}
		indexed++
	}
	logger.Info("pull requests indexed", zap.Int("requested", len(pulls)), zap.Int("indexed", indexed))
	return indexed, nil
}

func (s *IndexerService) indexOnePullRequest(ctx context.Context, orgID string, p *model.PullRequest) error {
	if err := s.pulls.Upsert(ctx, p); err != nil {
		return err
	}
	text := pullRequestSearchText(p)
	embedding, err := s.embedder.Embed(ctx, text, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return err
	}
	point := vectorstore.Point{
		Embedding: embedding,
		Keywords:  textscan.ExtractKeywords(text),
		Payload: map[string]interface{}{
			"type":        "pull_request",
			"pr_number":   p.PRNumber,
			"title":       truncate(p.Title, maxPayloadChars),
			"description": truncate(p.Description, maxPayloadChars),
			"author_name": p.AuthorName,
			"state":       p.State,
			"ticket_keys": p.TicketReferences,
		},
	}
	return s.index.Upsert(ctx, vectorstore.CollectionPullRequests, orgID, []vectorstore.Point{point})
}

func (s *IndexerService) IndexCodeFiles(ctx context.Context, orgID string, repositoryID string, files []model.CodeFile) (int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("org_id", orgID), zap.String("repository_id", repositoryID))
	if len(files) == 0 {
		return 0, nil
	}
	if err := s.orgs.CheckAndIncrementQuota(ctx, orgID, len(files)); err != nil {
		return 0, err
	}
	if err := s.index.EnsureCollection(ctx, vectorstore.CollectionCodeFiles); err != nil {
		return 0, err
	}
	indexed := 0
	for i := range files {
		f := &files[i]
		f.OrgID = orgID
		f.RepositoryID = repositoryID
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if err := s.indexOneCodeFile(ctx, orgID, f); err != nil {
			logger.Error("index code file failed", zap.String("file_path", f.FilePath), zap.Error(err))
			continue
		}
		indexed++
	}
	logger.Info("code files indexed", zap.Int("requested", len(files)), zap.Int("indexed", indexed))
	return indexed, nil
}

func (s *IndexerService) indexOneCodeFile(ctx context.Context, orgID string, f *model.CodeFile) error {
	if err := s.files.Upsert(ctx, f); err != nil {
		return err
	}
	text := codeFileSearchText(f)
	embedding, err := s.embedder.Embed(ctx, text, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return err
	}
	point := vectorstore.Point{
		Embedding: embedding,
		Keywords:  textscan.ExtractKeywords(text),
		Payload: map[string]interface{}{
			"type":      "code_file",
			"file_path": f.FilePath,
			"language":  f.Language,
			"functions": f.Functions,
			"classes":   f.Classes,
		},
	}
	return s.index.Upsert(ctx, vectorstore.CollectionCodeFiles, orgID, []vectorstore.Point{point})
}

func ticketSearchText(t *model.Ticket) string {
	var sb strings.Builder
	sb.WriteString(t.TicketKey)
	sb.WriteString(": ")
	sb.WriteString(t.Summary)
	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
	}
	if t.IssueType != "" {
		sb.WriteString("\nType: ")
		sb.WriteString(t.IssueType)
	}
	if len(t.Components) > 0 {
		sb.WriteString("\nComponents: ")
		sb.WriteString(strings.Join(t.Components, ", "))
	}
	if len(t.Labels) > 0 {
		sb.WriteString("\nLabels: ")
		sb.WriteString(strings.Join(t.Labels, ", "))
	}
	return sb.String()
}

func commitSearchText(c *model.Commit) string {
	var sb strings.Builder
	sb.WriteString(c.Message)
	if c.AuthorName != "" {
		sb.WriteString("\nAuthor: ")
		sb.WriteString(c.AuthorName)
	}
	if len(c.TicketReferences) > 0 {
		sb.WriteString("\nTickets: ")
		sb.WriteString(strings.Join(c.TicketReferences, ", "))
	}
	if len(c.FilesChanged) > 0 {
		sb.WriteString("\nFiles: ")
		sb.WriteString(strings.Join(c.FilesChanged, ", "))
	}
	return sb.String()
}

func pullRequestSearchText(p *model.PullRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PR #%d: %s", p.PRNumber, p.Title)
	if p.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(p.Description)
	}
	return sb.String()
}

func codeFileSearchText(f *model.CodeFile) string {
	var sb strings.Builder
	sb.WriteString(f.FilePath)
	if f.Language != "" {
		sb.WriteString("\nLanguage: ")
		sb.WriteString(f.Language)
	}
	if len(f.Functions) > 0 {
		sb.WriteString("\nFunctions: ")
		sb.WriteString(strings.Join(f.Functions, ", "))
	}
	if len(f.Classes) > 0 {
		sb.WriteString("\nClasses: ")
		sb.WriteString(strings.Join(f.Classes, ", "))
	}
	return sb.String()
}

// truncate cuts on rune boundaries so multibyte text never ends mid-sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
