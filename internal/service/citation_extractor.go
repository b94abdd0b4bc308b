package service

import (
	"regexp"
	"strings"

	"dealdesk-llm/internal/domain"
)

var sourceMarkerRe = regexp.MustCompile(`(?i)\[source:\s*([^\]]+)\]`)

// ExtractCitations escanea el texto generado buscando marcadores
// [Source: <nombre>] y los resuelve contra los documentos candidatos.
// Devuelve el texto sin modificar mas la lista ordenada y deduplicada de
// citas. Los marcadores que no resuelven a ningun documento se descartan
// en silencio (quedan en el texto mostrado, pero no generan cita).
func ExtractCitations(text string, documents []domain.DocumentExcerpt) (string, []domain.Citation) {
	matches := sourceMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var citations []domain.Citation
	seen := make(map[string]bool)

	for _, m := range matches {
		markerStart := m[0]
		name := strings.TrimSpace(text[m[2]:m[3]])
		if name == "" {
			continue
		}

		doc, ok := resolveSourceName(name, documents)
		if !ok {
			continue
		}
		key := strings.ToLower(doc.FileName)
		if seen[key] {
			continue
		}
		seen[key] = true

		citations = append(citations, domain.Citation{
			SourceName: doc.FileName,
			Excerpt:    excerptBefore(text, markerStart),
		})
	}

	return text, citations
}

// resolveSourceName matchea por contencion case-insensitive en ambas
// direcciones: el nombre del candidato contiene al marcador o viceversa.
// Gana el primer candidato que matchea.
func resolveSourceName(name string, documents []domain.DocumentExcerpt) (domain.DocumentExcerpt, bool) {
	lowerName := strings.ToLower(name)
	for _, doc := range documents {
		lowerFile := strings.ToLower(doc.FileName)
		if strings.Contains(lowerFile, lowerName) || strings.Contains(lowerName, lowerFile) {
			return doc, true
		}
	}
	return domain.DocumentExcerpt{}, false
}

// excerptBefore corta la oracion inmediatamente anterior al marcador: desde
// el ultimo terminador de oracion (. ! ?) hasta el inicio del marcador, o
// desde el comienzo del texto si no hay ninguno.
func excerptBefore(text string, markerStart int) string {
	prefix := text[:markerStart]
	cut := strings.LastIndexAny(prefix, ".!?")
	if cut >= 0 {
		prefix = prefix[cut+1:]
	}
	return strings.TrimSpace(prefix)
}
