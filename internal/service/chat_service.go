package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"dealdesk-llm/internal/domain"
	"dealdesk-llm/internal/llm"
	"dealdesk-llm/internal/repository"
)

// Cantidad de extractos que entran al prompt cuando hay ranking vectorial.
const chatRetrievalK = 6

// ChatService genera respuestas de chat con citas sobre los documentos de
// una empresa. Cuando hay embeddings disponibles rankea los extractos por
// cercania a la pregunta; si el embedding falla, cae en silencio a usar
// todos los documentos.
type ChatService struct {
	llmClient      llm.CompletionClient
	companyRepo    repository.CompanyRepository
	documentRepo   repository.DocumentRepository
	assessmentRepo repository.AssessmentRepository
	promptBuilder  AssessmentPromptBuilder
	logger         *zap.Logger
}

func NewChatService(
	llmClient llm.CompletionClient,
	companyRepo repository.CompanyRepository,
	documentRepo repository.DocumentRepository,
	assessmentRepo repository.AssessmentRepository,
	promptBuilder AssessmentPromptBuilder,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		llmClient:      llmClient,
		companyRepo:    companyRepo,
		documentRepo:   documentRepo,
		assessmentRepo: assessmentRepo,
		promptBuilder:  promptBuilder,
		logger:         logger,
	}
}

// GenerateAnswer responde la pregunta y devuelve el texto sin modificar mas
// la lista de citas extraidas de los marcadores [Source: ...].
func (s *ChatService) GenerateAnswer(ctx context.Context, tenantID, companyID, question string, history []domain.ChatTurn) (domain.ChatAnswer, error) {
	company, err := s.companyRepo.GetByID(ctx, tenantID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ChatAnswer{}, ErrCompanyNotFound
		}
		return domain.ChatAnswer{}, fmt.Errorf("get company: %w", err)
	}

	documents, err := s.documentRepo.ListByCompany(ctx, tenantID, companyID)
	if err != nil {
		return domain.ChatAnswer{}, fmt.Errorf("list documents: %w", err)
	}

	documents = s.rankDocuments(ctx, tenantID, companyID, question, documents)

	var latest *domain.Assessment
	if a, err := s.assessmentRepo.GetLatestCompleted(ctx, tenantID, companyID); err == nil {
		latest = &a
	}

	prompt := s.promptBuilder.BuildChatPrompt(company, documents, latest, history, question)

	completion, err := s.llmClient.Complete(ctx, llm.TaskChat, prompt)
	if err != nil {
		return domain.ChatAnswer{}, fmt.Errorf("llm complete: %w", err)
	}

	text, citations := ExtractCitations(completion.Text, documents)
	return domain.ChatAnswer{Text: text, Citations: citations}, nil
}

// rankDocuments intenta el ranking vectorial y devuelve los documentos
// originales ante cualquier problema: el retrieval es una mejora, nunca un
// bloqueo.
func (s *ChatService) rankDocuments(ctx context.Context, tenantID, companyID, question string, documents []domain.DocumentExcerpt) []domain.DocumentExcerpt {
	if len(documents) <= chatRetrievalK {
		return documents
	}

	embed, err := s.llmClient.CreateEmbedding(ctx, question)
	if err != nil {
		s.logger.Warn("question embedding failed", zap.Error(err), zap.String("company_id", companyID))
		return documents
	}

	ranked, err := s.documentRepo.SearchRelevant(ctx, tenantID, companyID, pgvector.NewVector(embed), chatRetrievalK)
	if err != nil || len(ranked) == 0 {
		if err != nil {
			s.logger.Warn("document retrieval failed", zap.Error(err), zap.String("company_id", companyID))
		}
		return documents
	}
	return ranked
}
