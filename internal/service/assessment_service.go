package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"dealdesk-llm/internal/domain"
	"dealdesk-llm/internal/llm"
	"dealdesk-llm/internal/repository"
)

var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrNoExtractedDocuments = errors.New("company has no extracted documents")
	ErrInvalidKind          = errors.New("invalid assessment kind")
)

// AssessmentService orquesta la generacion de assessments: valida
// precondiciones de forma sincrona, inserta la fila en processing y lanza
// la generacion como tarea fire-and-forget. El unico canal de comunicacion
// de la tarea con el resto del sistema es el status persistido.
type AssessmentService struct {
	llmClient      llm.CompletionClient
	assessmentRepo repository.AssessmentRepository
	companyRepo    repository.CompanyRepository
	documentRepo   repository.DocumentRepository
	usageRepo      repository.UsageRepository
	promptBuilder  AssessmentPromptBuilder
	parser         ResponseParser
	logger         *zap.Logger
}

func NewAssessmentService(
	llmClient llm.CompletionClient,
	assessmentRepo repository.AssessmentRepository,
	companyRepo repository.CompanyRepository,
	documentRepo repository.DocumentRepository,
	usageRepo repository.UsageRepository,
	promptBuilder AssessmentPromptBuilder,
	parser ResponseParser,
	logger *zap.Logger,
) *AssessmentService {
	return &AssessmentService{
		llmClient:      llmClient,
		assessmentRepo: assessmentRepo,
		companyRepo:    companyRepo,
		documentRepo:   documentRepo,
		usageRepo:      usageRepo,
		promptBuilder:  promptBuilder,
		parser:         parser,
		logger:         logger,
	}
}

// CreateAssessment valida, persiste la fila en processing y responde de
// inmediato; el trabajo caro corre despues de devolver. No se deduplican
// pedidos concurrentes para la misma empresa: dos requests producen dos
// assessments independientes.
func (s *AssessmentService) CreateAssessment(ctx context.Context, tenantID, companyID, kind string) (domain.Assessment, error) {
	if kind != domain.AssessmentKindScreening && kind != domain.AssessmentKindFull {
		return domain.Assessment{}, ErrInvalidKind
	}

	company, err := s.companyRepo.GetByID(ctx, tenantID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Assessment{}, ErrCompanyNotFound
		}
		return domain.Assessment{}, fmt.Errorf("get company: %w", err)
	}

	documents, err := s.documentRepo.ListByCompany(ctx, tenantID, companyID)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("list documents: %w", err)
	}
	if len(documents) == 0 {
		return domain.Assessment{}, ErrNoExtractedDocuments
	}

	assessment := domain.Assessment{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		CompanyID: companyID,
		Kind:      kind,
		Status:    domain.AssessmentStatusProcessing,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.assessmentRepo.Create(ctx, assessment); err != nil {
		return domain.Assessment{}, fmt.Errorf("create assessment: %w", err)
	}

	// Tarea desacoplada: nada de lo que pase adentro llega al caller
	// original; el fallo solo se observa leyendo el assessment despues.
	go s.generate(context.Background(), assessment, company, documents)

	return assessment, nil
}

// GetAssessment devuelve el estado actual, sea cual sea.
func (s *AssessmentService) GetAssessment(ctx context.Context, tenantID, id string) (domain.Assessment, error) {
	assessment, err := s.assessmentRepo.GetByID(ctx, tenantID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assessment{}, ErrAssessmentNotFound
	}
	return assessment, err
}

// DeleteAssessment borra un assessment del tenant. Una generacion en vuelo
// para esa fila termina en un update de 0 filas, que es un no-op.
func (s *AssessmentService) DeleteAssessment(ctx context.Context, tenantID, id string) error {
	return s.assessmentRepo.Delete(ctx, tenantID, id)
}

// assessmentPayload es la forma JSON que el prompt le exige al modelo.
type assessmentPayload struct {
	Summary         string                           `json:"summary"`
	Highlights      []string                         `json:"highlights"`
	RedFlags        []string                         `json:"red_flags"`
	QuickTake       string                           `json:"quick_take"`
	NextSteps       []string                         `json:"next_steps"`
	Sections        map[string]string                `json:"sections"`
	DimensionScores map[string]domain.DimensionScore `json:"dimension_scores"`
	Recommendation  *domain.Recommendation           `json:"recommendation"`
}

// generate corre la cadena prompt -> LLM -> parseo -> agregacion y escribe
// el resultado completo en un solo update. Cualquier error en la cadena
// deja la fila en failed; nunca queda un assessment colgado en processing.
func (s *AssessmentService) generate(ctx context.Context, assessment domain.Assessment, company domain.Company, documents []domain.DocumentExcerpt) {
	start := time.Now()

	task := llm.TaskScreeningAssessment
	if assessment.Kind == domain.AssessmentKindFull {
		task = llm.TaskFullAssessment
	}

	prompt := s.promptBuilder.BuildAssessmentPrompt(company, documents, assessment.Kind)

	completion, err := s.llmClient.Complete(ctx, task, prompt)
	if err != nil {
		s.fail(ctx, assessment, fmt.Errorf("llm complete: %w", err))
		return
	}

	var payload assessmentPayload
	if err := s.parser.DecodeStructured(completion.Text, &payload); err != nil {
		s.fail(ctx, assessment, fmt.Errorf("parse llm response: %w", err))
		return
	}

	overall := AggregateOverallScore(payload.DimensionScores)
	now := time.Now().UTC()

	assessment.Status = domain.AssessmentStatusCompleted
	assessment.Content = &domain.AssessmentContent{
		Summary:    payload.Summary,
		Highlights: payload.Highlights,
		RedFlags:   payload.RedFlags,
		QuickTake:  payload.QuickTake,
		NextSteps:  payload.NextSteps,
		Sections:   payload.Sections,
	}
	assessment.DimensionScores = payload.DimensionScores
	assessment.Recommendation = payload.Recommendation
	assessment.OverallScore = &overall
	assessment.ProcessingMS = time.Since(start).Milliseconds()
	assessment.InputTokens = completion.InputTokens
	assessment.OutputTokens = completion.OutputTokens
	assessment.CompletedAt = &now

	if err := s.assessmentRepo.MarkCompleted(ctx, assessment); err != nil {
		s.fail(ctx, assessment, fmt.Errorf("persist completed assessment: %w", err))
		return
	}

	s.recordUsage(ctx, assessment)

	s.logger.Info("assessment completed",
		zap.String("assessment_id", assessment.ID),
		zap.String("company_id", assessment.CompanyID),
		zap.String("kind", assessment.Kind),
		zap.Int("overall_score", overall),
		zap.Int64("processing_ms", assessment.ProcessingMS),
	)
}

// fail captura el mensaje textual del error en la fila. Si hasta eso falla,
// solo queda loguearlo.
func (s *AssessmentService) fail(ctx context.Context, assessment domain.Assessment, cause error) {
	s.logger.Warn("assessment generation failed",
		zap.Error(cause),
		zap.String("assessment_id", assessment.ID),
		zap.String("company_id", assessment.CompanyID),
	)
	if err := s.assessmentRepo.MarkFailed(ctx, assessment.TenantID, assessment.ID, cause.Error()); err != nil {
		s.logger.Error("mark assessment failed", zap.Error(err), zap.String("assessment_id", assessment.ID))
	}
}

// recordUsage es best-effort y no esta atado transaccionalmente al update
// de status: un crash entre ambos es una inconsistencia aceptada. El
// contador mensual es read-then-write sin lock; puede subcontar bajo
// concurrencia.
func (s *AssessmentService) recordUsage(ctx context.Context, assessment domain.Assessment) {
	record := domain.UsageRecord{
		ID:           uuid.NewString(),
		TenantID:     assessment.TenantID,
		AssessmentID: assessment.ID,
		Kind:         assessment.Kind,
		InputTokens:  assessment.InputTokens,
		OutputTokens: assessment.OutputTokens,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.usageRepo.CreateRecord(ctx, record); err != nil {
		s.logger.Warn("usage record failed", zap.Error(err), zap.String("assessment_id", assessment.ID))
	}

	yearMonth := time.Now().UTC().Format("2006-01")
	current, err := s.usageRepo.GetMonthlyTokens(ctx, assessment.TenantID, yearMonth)
	if err != nil {
		s.logger.Warn("monthly usage read failed", zap.Error(err), zap.String("tenant_id", assessment.TenantID))
		return
	}
	total := current + assessment.InputTokens + assessment.OutputTokens
	if err := s.usageRepo.SetMonthlyTokens(ctx, assessment.TenantID, yearMonth, total); err != nil {
		s.logger.Warn("monthly usage write failed", zap.Error(err), zap.String("tenant_id", assessment.TenantID))
	}
}
