package service

import (
	"fmt"
	"strings"

	"dealdesk-llm/internal/domain"
)

// Token explicito para campos opcionales ausentes: el modelo tiene que ver
// la diferencia entre "no especificado" y un valor real, si no alucina.
const notSpecified = "Not specified"

// Secciones estructuradas que pide el analisis full, en orden.
var fullReportSections = []string{
	"overview",
	"market",
	"team",
	"product",
	"traction",
	"financials",
	"competitive",
	"risk",
	"investment_thesis",
	"conclusion",
}

// AssessmentPromptBuilder renderiza el perfil de la empresa y los extractos
// de documentos en un unico prompt de texto. Funcion pura: misma entrada,
// mismo prompt.
type AssessmentPromptBuilder struct{}

// BuildAssessmentPrompt arma el prompt para el tipo de analisis pedido.
func (b AssessmentPromptBuilder) BuildAssessmentPrompt(company domain.Company, documents []domain.DocumentExcerpt, kind string) string {
	var sb strings.Builder

	sb.WriteString("You are a senior venture capital analyst preparing an investment assessment.\n\n")

	b.writeCompanyProfile(&sb, company)
	b.writeDocuments(&sb, documents)

	if kind == domain.AssessmentKindFull {
		sb.WriteString("=== REQUIRED REPORT SECTIONS ===\n")
		sb.WriteString("Produce a \"sections\" object with these keys, each a thorough narrative section:\n")
		for _, section := range fullReportSections {
			sb.WriteString(fmt.Sprintf("- %s\n", section))
		}
		sb.WriteString("\n")
	}

	b.writeScoringContract(&sb)
	b.writeOutputContract(&sb, kind)

	return sb.String()
}

// BuildChatPrompt arma el prompt de una respuesta de chat con citas.
func (b AssessmentPromptBuilder) BuildChatPrompt(
	company domain.Company,
	documents []domain.DocumentExcerpt,
	latest *domain.Assessment,
	history []domain.ChatTurn,
	question string,
) string {
	var sb strings.Builder

	sb.WriteString("You are an investment analyst assistant answering questions about a company under evaluation.\n\n")

	b.writeCompanyProfile(&sb, company)
	b.writeDocuments(&sb, documents)

	if latest != nil && latest.Status == domain.AssessmentStatusCompleted {
		sb.WriteString("=== LATEST AI ASSESSMENT ===\n")
		if latest.OverallScore != nil {
			sb.WriteString(fmt.Sprintf("Overall score: %d/100\n", *latest.OverallScore))
		}
		if latest.Recommendation != nil {
			sb.WriteString(fmt.Sprintf("Recommendation: %s (confidence %d)\n", latest.Recommendation.Label, latest.Recommendation.Confidence))
		}
		if latest.Content != nil && strings.TrimSpace(latest.Content.Summary) != "" {
			sb.WriteString(latest.Content.Summary)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(history) > 0 {
		sb.WriteString("=== CONVERSATION SO FAR ===\n")
		for _, turn := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("=== QUESTION ===\n")
	sb.WriteString(fmt.Sprintf("%q\n\n", question))

	sb.WriteString("Answer using ONLY the material above. When a statement is supported by a document, ")
	sb.WriteString("append an inline marker in the form [Source: <file name>] right after the sentence it supports. ")
	sb.WriteString("If the material does not answer the question, say so plainly.\n")

	return sb.String()
}

func (AssessmentPromptBuilder) writeCompanyProfile(sb *strings.Builder, company domain.Company) {
	sb.WriteString("=== COMPANY PROFILE ===\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", company.Name))
	sb.WriteString(fmt.Sprintf("Stage: %s\n", orNotSpecified(company.Stage)))
	sb.WriteString(fmt.Sprintf("Sector: %s\n", orNotSpecified(company.Sector)))
	sb.WriteString(fmt.Sprintf("Raise amount: %s\n", orNotSpecified(company.RaiseAmount)))
	sb.WriteString(fmt.Sprintf("Valuation: %s\n", orNotSpecified(company.Valuation)))
	sb.WriteString(fmt.Sprintf("Website: %s\n", orNotSpecified(company.Website)))
	sb.WriteString(fmt.Sprintf("Description: %s\n\n", orNotSpecified(company.Description)))
}

func (AssessmentPromptBuilder) writeDocuments(sb *strings.Builder, documents []domain.DocumentExcerpt) {
	sb.WriteString("=== DEAL DOCUMENTS ===\n")
	if len(documents) == 0 {
		sb.WriteString("No documents provided.\n\n")
		return
	}
	for _, doc := range documents {
		classification := orNotSpecified(doc.Classification)
		sb.WriteString(fmt.Sprintf("--- Document: %s (type: %s) ---\n", doc.FileName, classification))
		sb.WriteString(doc.ExtractedText)
		sb.WriteString("\n\n")
	}
}

func (AssessmentPromptBuilder) writeScoringContract(sb *strings.Builder) {
	sb.WriteString("=== SCORING BANDS ===\n")
	sb.WriteString("Score each dimension from 0 to 100:\n")
	sb.WriteString("- 80-100: exceptional\n")
	sb.WriteString("- 60-79: strong\n")
	sb.WriteString("- 40-59: average\n")
	sb.WriteString("- 20-39: weak\n")
	sb.WriteString("- 0-19: poor\n\n")

	sb.WriteString("=== RECOMMENDATION SEMANTICS ===\n")
	sb.WriteString("- strong_conviction: clear outlier, pursue aggressively\n")
	sb.WriteString("- proceed: solid opportunity, continue diligence\n")
	sb.WriteString("- conditional: proceed only if the listed contingencies resolve\n")
	sb.WriteString("- pass: decline\n\n")
}

func (AssessmentPromptBuilder) writeOutputContract(sb *strings.Builder, kind string) {
	sb.WriteString("=== OUTPUT FORMAT (STRICT JSON) ===\n")
	sb.WriteString("Respond with ONLY a JSON object, no prose and no markdown, with fields:\n")
	sb.WriteString(`{
  "summary": "executive summary",
  "highlights": ["..."],
  "red_flags": ["..."],
  "quick_take": "one line verdict",
  "next_steps": ["..."],`)
	sb.WriteString("\n")
	if kind == domain.AssessmentKindFull {
		sb.WriteString(`  "sections": {"overview": "...", "market": "...", "team": "...", "product": "...", "traction": "...", "financials": "...", "competitive": "...", "risk": "...", "investment_thesis": "...", "conclusion": "..."},`)
		sb.WriteString("\n")
	}
	sb.WriteString(`  "dimension_scores": {
    "market": {"score": 0, "reasoning": "...", "strengths": ["..."], "concerns": ["..."]},
    "team": {"score": 0, "reasoning": "...", "strengths": ["..."], "concerns": ["..."]},
    "product": {"score": 0, "reasoning": "...", "strengths": ["..."], "concerns": ["..."]},
    "traction": {"score": 0, "reasoning": "...", "strengths": ["..."], "concerns": ["..."]},
    "financials": {"score": 0, "reasoning": "...", "strengths": ["..."], "concerns": ["..."]},
    "competitive": {"score": 0, "reasoning": "...", "strengths": ["..."], "concerns": ["..."]}
  },
  "recommendation": {"label": "proceed", "confidence": 0, "reasons": ["..."], "contingencies": ["..."]}
}
`)
}

func orNotSpecified(value string) string {
	if strings.TrimSpace(value) == "" {
		return notSpecified
	}
	return value
}
