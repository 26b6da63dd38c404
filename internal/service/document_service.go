package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/ai"
	"github.com/Vibhav-Deo/documentation-assistant/internal/fieldcrypt"
	"github.com/Vibhav-Deo/documentation-assistant/internal/model"
	"github.com/Vibhav-Deo/documentation-assistant/internal/repo"
	"github.com/Vibhav-Deo/documentation-assistant/internal/textscan"
	"github.com/Vibhav-Deo/documentation-assistant/internal/vectorstore"
)

const (
	docChunkSize    = 1000
	docChunkOverlap = 200
)

type WikiPage struct {
	PageID    string     `json:"page_id"`
	Title     string     `json:"title"`
	Space     string     `json:"space"`
	Markdown  string     `json:"markdown"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// DocumentService ingests wiki pages into the per-organization document
// collection. Page title and chunk text are encrypted with the org key before
// they are written; embeddings and keywords are computed from the plaintext
// first so search still works.
type DocumentService struct {
	orgs     *repo.OrganizationRepo
	index    vectorstore.Index
	embedder ai.IEmbedder
	crypt    *fieldcrypt.Gateway
}

func NewDocumentService(orgs *repo.OrganizationRepo, index vectorstore.Index, embedder ai.IEmbedder, crypt *fieldcrypt.Gateway) *DocumentService {
	return &DocumentService{
		orgs:     orgs,
		index:    index,
		embedder: embedder,
		crypt:    crypt,
	}
}

// IndexWikiPage splits the page into overlapping chunks and indexes each one.
// Returns the number of chunks stored.
func (s *DocumentService) IndexWikiPage(ctx context.Context, orgID string, page WikiPage) (int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("org_id", orgID), zap.String("page_id", page.PageID))
	plain := markdownToPlainText(page.Markdown)
	chunks := chunkText(plain, docChunkSize, docChunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := s.orgs.CheckAndIncrementQuota(ctx, orgID, len(chunks)); err != nil {
		return 0, err
	}
	collection := vectorstore.DocCollection(orgID)
	if err := s.index.EnsureCollection(ctx, collection); err != nil {
		return 0, err
	}
	indexed := 0
	for i, text := range chunks {
		chunk := &model.DocumentChunk{
			OrgID:      orgID,
			PageID:     page.PageID,
			PageTitle:  page.Title,
			ChunkIndex: i,
			Text:       text,
			Space:      page.Space,
			UpdatedAt:  page.UpdatedAt,
		}
		if err := s.indexOneChunk(ctx, collection, chunk); err != nil {
			logger.Error("index document chunk failed", zap.Int("chunk_index", i), zap.Error(err))
			continue
		}
		indexed++
	}
	logger.Info("wiki page indexed", zap.Int("chunks", len(chunks)), zap.Int("indexed", indexed))
	return indexed, nil
}

func (s *DocumentService) indexOneChunk(ctx context.Context, collection string, chunk *model.DocumentChunk) error {
	plain := chunk.PageTitle + "\n" + chunk.Text
	embedding, err := s.embedder.Embed(ctx, plain, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return err
	}
	encTitle, err := s.crypt.Encrypt(chunk.PageTitle, chunk.OrgID)
	if err != nil {
		return err
	}
	encText, err := s.crypt.Encrypt(chunk.Text, chunk.OrgID)
	if err != nil {
		return err
	}
	payload := map[string]interface{}{
		"type":        "document",
		"page_id":     chunk.PageID,
		"page_title":  encTitle,
		"chunk_index": chunk.ChunkIndex,
		"text":        encText,
		"space":       chunk.Space,
	}
	if chunk.UpdatedAt != nil {
		payload["updated_at"] = chunk.UpdatedAt.Format(time.RFC3339)
	}
	point := vectorstore.Point{
		Embedding: embedding,
		Keywords:  textscan.ExtractKeywords(plain),
		Payload:   payload,
	}
	return s.index.Upsert(ctx, collection, chunk.OrgID, []vectorstore.Point{point})
}

// markdownToPlainText flattens a markdown document to searchable text. Code
// fences keep their raw contents; inline markup is stripped.
func markdownToPlainText(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	var parts []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.FencedCodeBlock:
			var sb strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				sb.Write(line.Value(reader.Source()))
			}
			if code := strings.TrimSpace(sb.String()); code != "" {
				parts = append(parts, code)
			}
		default:
			if txt := extractNodeText(node, reader.Source()); txt != "" {
				parts = append(parts, txt)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func extractNodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

// chunkText splits text into rune windows of at most size with the given
// overlap between consecutive chunks.
func chunkText(s string, size, overlap int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	runes := []rune(s)
	if len(runes) <= size {
		return []string{s}
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
