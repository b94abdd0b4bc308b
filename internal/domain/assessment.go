package domain

import "time"

// Tipos de analisis soportados.
const (
	AssessmentKindScreening = "screening"
	AssessmentKindFull      = "full"
)

// Estados del ciclo de vida de un Assessment. La transicion a completed o
// failed es terminal y ocurre exactamente una vez.
const (
	AssessmentStatusPending    = "pending"
	AssessmentStatusProcessing = "processing"
	AssessmentStatusCompleted  = "completed"
	AssessmentStatusFailed     = "failed"
)

// Dimensiones fijas de scoring. El set es exhaustivo: una dimension ausente
// se trata como ausente, nunca como cero.
const (
	DimensionMarket      = "market"
	DimensionTeam        = "team"
	DimensionProduct     = "product"
	DimensionTraction    = "traction"
	DimensionFinancials  = "financials"
	DimensionCompetitive = "competitive"
)

// AssessmentDimensions lista las dimensiones en orden canonico.
var AssessmentDimensions = []string{
	DimensionMarket,
	DimensionTeam,
	DimensionProduct,
	DimensionTraction,
	DimensionFinancials,
	DimensionCompetitive,
}

// Labels de recomendacion.
const (
	RecommendationStrongConviction = "strong_conviction"
	RecommendationProceed          = "proceed"
	RecommendationConditional      = "conditional"
	RecommendationPass             = "pass"
)

// Assessment es una corrida de analisis para una empresa.
// Invariantes: OverallScore presente sii status=completed;
// ErrorDetail presente sii status=failed.
type Assessment struct {
	ID              string                    `json:"id"`
	TenantID        string                    `json:"tenant_id"`
	CompanyID       string                    `json:"company_id"`
	Kind            string                    `json:"kind"`
	Status          string                    `json:"status"`
	Content         *AssessmentContent        `json:"content,omitempty"`
	DimensionScores map[string]DimensionScore `json:"dimension_scores,omitempty"`
	OverallScore    *int                      `json:"overall_score,omitempty"`
	Recommendation  *Recommendation           `json:"recommendation,omitempty"`
	ProcessingMS    int64                     `json:"processing_ms,omitempty"`
	InputTokens     int                       `json:"input_tokens,omitempty"`
	OutputTokens    int                       `json:"output_tokens,omitempty"`
	ErrorDetail     string                    `json:"error_detail,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	CompletedAt     *time.Time                `json:"completed_at,omitempty"`
}

// AssessmentContent agrupa las secciones narrativas devueltas por el LLM.
// Las nueve secciones estructuradas solo vienen en el analisis full.
type AssessmentContent struct {
	Summary    string            `json:"summary"`
	Highlights []string          `json:"highlights,omitempty"`
	RedFlags   []string          `json:"red_flags,omitempty"`
	QuickTake  string            `json:"quick_take,omitempty"`
	NextSteps  []string          `json:"next_steps,omitempty"`
	Sections   map[string]string `json:"sections,omitempty"`
}

// DimensionScore es el puntaje 0-100 de una dimension con su razonamiento.
type DimensionScore struct {
	Score     int      `json:"score"`
	Reasoning string   `json:"reasoning,omitempty"`
	Strengths []string `json:"strengths,omitempty"`
	Concerns  []string `json:"concerns,omitempty"`
}

// Recommendation es el juicio derivado adjunto a un Assessment completado.
// Contingencies solo tiene sentido cuando Label=conditional.
type Recommendation struct {
	Label         string   `json:"label"`
	Confidence    int      `json:"confidence"`
	Reasons       []string `json:"reasons,omitempty"`
	Contingencies []string `json:"contingencies,omitempty"`
}

// UsageRecord registra tokens consumidos por una generacion.
type UsageRecord struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	AssessmentID string    `json:"assessment_id"`
	Kind         string    `json:"kind"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CreatedAt    time.Time `json:"created_at"`
}
