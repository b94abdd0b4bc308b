package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"dealdesk-llm/internal/domain"
	"dealdesk-llm/internal/llm"
)

func newChatFixture(client *llm.MockClient, docRepo *mockDocumentRepo) *ChatService {
	return NewChatService(
		client,
		&mockCompanyRepo{company: domain.Company{ID: "company-1", Name: "Acme"}},
		docRepo,
		&mockAssessmentRepo{latestErr: pgx.ErrNoRows},
		AssessmentPromptBuilder{},
		zap.NewNop(),
	)
}

func TestGenerateAnswerWithCitations(t *testing.T) {
	client := &llm.MockClient{Response: "The round is led by Acme Capital [Source: deck.pdf]."}
	svc := newChatFixture(client, &mockDocumentRepo{docs: docs("deck.pdf")})

	answer, err := svc.GenerateAnswer(context.Background(), "tenant-1", "company-1", "who leads?", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if answer.Text != client.Response {
		t.Fatalf("expected answer text preserved")
	}
	if len(answer.Citations) != 1 || answer.Citations[0].SourceName != "deck.pdf" {
		t.Fatalf("unexpected citations: %+v", answer.Citations)
	}
	if client.LastTask != llm.TaskChat {
		t.Fatalf("expected chat task, got %s", client.LastTask)
	}
}

func TestGenerateAnswerCompanyNotFound(t *testing.T) {
	svc := NewChatService(&llm.MockClient{}, &mockCompanyRepo{err: pgx.ErrNoRows}, &mockDocumentRepo{}, &mockAssessmentRepo{}, AssessmentPromptBuilder{}, zap.NewNop())
	if _, err := svc.GenerateAnswer(context.Background(), "tenant-1", "missing", "q", nil); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestGenerateAnswerSkipsRetrievalForSmallCorpus(t *testing.T) {
	client := &llm.MockClient{Response: "ok", Embedding: []float32{0.1, 0.2}}
	docRepo := &mockDocumentRepo{docs: docs("a", "b", "c")}
	svc := newChatFixture(client, docRepo)

	if _, err := svc.GenerateAnswer(context.Background(), "tenant-1", "company-1", "q", nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if docRepo.searchedK != 0 {
		t.Fatalf("expected no vector search with few documents")
	}
}

func TestGenerateAnswerRanksLargeCorpus(t *testing.T) {
	client := &llm.MockClient{Response: "ok", Embedding: []float32{0.1, 0.2}}
	docRepo := &mockDocumentRepo{
		docs:       docs("a", "b", "c", "d", "e", "f", "g", "h"),
		searchDocs: docs("c", "f"),
	}
	svc := newChatFixture(client, docRepo)

	if _, err := svc.GenerateAnswer(context.Background(), "tenant-1", "company-1", "q", nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if docRepo.searchedK != chatRetrievalK {
		t.Fatalf("expected vector search with k=%d, got %d", chatRetrievalK, docRepo.searchedK)
	}
}

func TestGenerateAnswerFallsBackWhenEmbeddingFails(t *testing.T) {
	client := &llm.MockClient{Response: "ok", EmbeddingErr: errors.New("embedding down")}
	docRepo := &mockDocumentRepo{docs: docs("a", "b", "c", "d", "e", "f", "g", "h")}
	svc := newChatFixture(client, docRepo)

	// El fallo de retrieval no burbujea: la respuesta sale igual con todos
	// los documentos.
	answer, err := svc.GenerateAnswer(context.Background(), "tenant-1", "company-1", "q", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if answer.Text != "ok" {
		t.Fatalf("unexpected answer: %q", answer.Text)
	}
	if docRepo.searchedK != 0 {
		t.Fatalf("expected no vector search after embedding failure")
	}
}

func TestGenerateAnswerFallsBackWhenSearchFails(t *testing.T) {
	client := &llm.MockClient{Response: "ok", Embedding: []float32{0.1}}
	docRepo := &mockDocumentRepo{
		docs:      docs("a", "b", "c", "d", "e", "f", "g", "h"),
		searchErr: errors.New("pgvector down"),
	}
	svc := newChatFixture(client, docRepo)

	if _, err := svc.GenerateAnswer(context.Background(), "tenant-1", "company-1", "q", nil); err != nil {
		t.Fatalf("expected fallback instead of error, got %v", err)
	}
}
