package service

import (
	"strings"
	"testing"

	"dealdesk-llm/internal/domain"
)

func testCompany() domain.Company {
	return domain.Company{
		ID:          "company-1",
		Name:        "Acme Robotics",
		Stage:       "seed",
		Description: "Industrial robots",
	}
}

func TestBuildAssessmentPromptMissingFieldsNotSpecified(t *testing.T) {
	b := AssessmentPromptBuilder{}
	prompt := b.BuildAssessmentPrompt(testCompany(), docs("deck.pdf"), domain.AssessmentKindScreening)

	if !strings.Contains(prompt, "Name: Acme Robotics") {
		t.Fatalf("expected company name in prompt")
	}
	// Sector, raise, valuation y website vacios: nunca strings vacios.
	if strings.Contains(prompt, "Sector: \n") {
		t.Fatalf("expected empty sector to be replaced")
	}
	if got := strings.Count(prompt, notSpecified); got < 4 {
		t.Fatalf("expected at least 4 Not specified tokens, got %d", got)
	}
}

func TestBuildAssessmentPromptScreeningOmitsSections(t *testing.T) {
	b := AssessmentPromptBuilder{}
	prompt := b.BuildAssessmentPrompt(testCompany(), docs("deck.pdf"), domain.AssessmentKindScreening)

	if strings.Contains(prompt, "REQUIRED REPORT SECTIONS") {
		t.Fatalf("screening prompt must not ask for report sections")
	}
	if strings.Contains(prompt, `"sections"`) {
		t.Fatalf("screening output contract must not include sections")
	}
	if !strings.Contains(prompt, "STRICT JSON") {
		t.Fatalf("expected strict json contract")
	}
	if !strings.Contains(prompt, `"dimension_scores"`) {
		t.Fatalf("expected dimension scores in output contract")
	}
}

func TestBuildAssessmentPromptFullRequestsAllSections(t *testing.T) {
	b := AssessmentPromptBuilder{}
	prompt := b.BuildAssessmentPrompt(testCompany(), docs("deck.pdf"), domain.AssessmentKindFull)

	if !strings.Contains(prompt, "REQUIRED REPORT SECTIONS") {
		t.Fatalf("full prompt must ask for report sections")
	}
	for _, section := range fullReportSections {
		if !strings.Contains(prompt, section) {
			t.Fatalf("expected section %q in full prompt", section)
		}
	}
}

func TestBuildAssessmentPromptIncludesDocuments(t *testing.T) {
	b := AssessmentPromptBuilder{}
	documents := []domain.DocumentExcerpt{
		{FileName: "deck.pdf", Classification: "pitch_deck", ExtractedText: "ARR $2M"},
		{FileName: "notes.txt", ExtractedText: "call notes"},
	}
	prompt := b.BuildAssessmentPrompt(testCompany(), documents, domain.AssessmentKindScreening)

	if !strings.Contains(prompt, "Document: deck.pdf (type: pitch_deck)") {
		t.Fatalf("expected classified document header")
	}
	if !strings.Contains(prompt, "Document: notes.txt (type: Not specified)") {
		t.Fatalf("expected unclassified document header")
	}
	if !strings.Contains(prompt, "ARR $2M") {
		t.Fatalf("expected extracted text in prompt")
	}
}

func TestBuildChatPromptCitationInstructionAndContext(t *testing.T) {
	b := AssessmentPromptBuilder{}
	score := 72
	latest := &domain.Assessment{
		Status:       domain.AssessmentStatusCompleted,
		OverallScore: &score,
		Content:      &domain.AssessmentContent{Summary: "promising seed deal"},
	}
	history := []domain.ChatTurn{
		{Role: "user", Content: "what is the ARR?"},
		{Role: "assistant", Content: "$2M"},
	}

	prompt := b.BuildChatPrompt(testCompany(), docs("deck.pdf"), latest, history, "who leads the round?")

	if !strings.Contains(prompt, "[Source: <file name>]") {
		t.Fatalf("expected citation marker instruction")
	}
	if !strings.Contains(prompt, "Overall score: 72/100") {
		t.Fatalf("expected latest assessment score in prompt")
	}
	if !strings.Contains(prompt, "promising seed deal") {
		t.Fatalf("expected assessment summary in prompt")
	}
	if !strings.Contains(prompt, "user: what is the ARR?") {
		t.Fatalf("expected history in prompt")
	}
	if !strings.Contains(prompt, `"who leads the round?"`) {
		t.Fatalf("expected question in prompt")
	}
}

func TestBuildChatPromptSkipsIncompleteAssessment(t *testing.T) {
	b := AssessmentPromptBuilder{}
	latest := &domain.Assessment{Status: domain.AssessmentStatusProcessing}

	prompt := b.BuildChatPrompt(testCompany(), docs("deck.pdf"), latest, nil, "q")
	if strings.Contains(prompt, "LATEST AI ASSESSMENT") {
		t.Fatalf("processing assessment must not leak into the prompt")
	}
	if strings.Contains(prompt, "CONVERSATION SO FAR") {
		t.Fatalf("empty history must not render a history block")
	}
}
