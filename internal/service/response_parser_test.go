package service

import (
	"errors"
	"testing"
)

func TestParseStructuredDirectJSON(t *testing.T) {
	parser := ResponseParser{}
	got, err := parser.ParseStructured(`{"a":1}`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if m["a"] != float64(1) {
		t.Fatalf("expected a=1, got %v", m["a"])
	}
}

func TestParseStructuredFencedBlock(t *testing.T) {
	parser := ResponseParser{}
	got, err := parser.ParseStructured("```json\n{\"a\":1}\n```")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	m := got.(map[string]any)
	if m["a"] != float64(1) {
		t.Fatalf("expected a=1, got %v", m["a"])
	}
}

func TestParseStructuredFencedBlockWithoutTag(t *testing.T) {
	parser := ResponseParser{}
	got, err := parser.ParseStructured("Here you go:\n```\n{\"ok\":true}\n```\nthanks")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	m := got.(map[string]any)
	if m["ok"] != true {
		t.Fatalf("expected ok=true, got %v", m["ok"])
	}
}

func TestParseStructuredWrappedInProse(t *testing.T) {
	parser := ResponseParser{}
	got, err := parser.ParseStructured(`noise before {"a":1} noise after`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	m := got.(map[string]any)
	if m["a"] != float64(1) {
		t.Fatalf("expected a=1, got %v", m["a"])
	}
}

func TestParseStructuredNestedBracesInsideStrings(t *testing.T) {
	parser := ResponseParser{}
	got, err := parser.ParseStructured(`intro {"text":"a { b } c","n":{"x":2}} outro`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	m := got.(map[string]any)
	if m["text"] != "a { b } c" {
		t.Fatalf("unexpected text: %v", m["text"])
	}
}

func TestParseStructuredUnparsable(t *testing.T) {
	parser := ResponseParser{}
	_, err := parser.ParseStructured("not json at all")
	if !errors.Is(err, ErrUnparsableResponse) {
		t.Fatalf("expected ErrUnparsableResponse, got %v", err)
	}
}

func TestDecodeStructuredTyped(t *testing.T) {
	parser := ResponseParser{}
	var out struct {
		Summary string `json:"summary"`
		Scores  struct {
			Team struct {
				Score int `json:"score"`
			} `json:"team"`
		} `json:"dimension_scores"`
	}
	raw := "Sure! Here is the assessment:\n```json\n{\"summary\":\"solid\",\"dimension_scores\":{\"team\":{\"score\":88}}}\n```"
	if err := parser.DecodeStructured(raw, &out); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Summary != "solid" || out.Scores.Team.Score != 88 {
		t.Fatalf("unexpected decode: %+v", out)
	}
}

func TestExtractFirstJSONObjectUnbalanced(t *testing.T) {
	if got := extractFirstJSONObject(`{"a": 1`); got != "" {
		t.Fatalf("expected empty on unbalanced input, got %q", got)
	}
	if got := extractFirstJSONObject("sin json"); got != "" {
		t.Fatalf("expected empty without braces, got %q", got)
	}
}
