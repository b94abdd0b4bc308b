package service

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrUnparsableResponse indica que ninguna estrategia logro extraer JSON
// valido de la respuesta del modelo.
var ErrUnparsableResponse = errors.New("unparsable llm response")

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ResponseParser extrae un valor JSON de la salida libre del LLM.
// Cadena de estrategias, gana la primera que parsea:
//  1. el texto completo como JSON
//  2. el interior de un bloque ```json ... ```
//  3. el primer span {...} balanceado
//
// Sin validacion semantica: eso es responsabilidad del caller.
type ResponseParser struct{}

// ParseStructured devuelve el arbol generico (map/array/escalar) extraido.
func (p ResponseParser) ParseStructured(raw string) (any, error) {
	var out any
	if err := p.DecodeStructured(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeStructured aplica la misma cadena pero decodifica directo en out,
// para que los callers puedan tipar el contenido sin re-serializar.
func (ResponseParser) DecodeStructured(raw string, out any) error {
	for _, candidate := range jsonCandidates(raw) {
		if json.Unmarshal([]byte(candidate), out) == nil {
			return nil
		}
	}
	return ErrUnparsableResponse
}

// jsonCandidates arma los textos candidatos en orden de la cadena. El orden
// importa: la estrategia 1 es la barata y correcta para salida bien portada;
// 2 y 3 rescatan modelos que envuelven el JSON en prosa o markdown.
func jsonCandidates(raw string) []string {
	candidates := make([]string, 0, 3)

	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF"))
	if trimmed != "" {
		candidates = append(candidates, trimmed)
	}

	if m := fencedBlockRe.FindStringSubmatch(raw); len(m) == 2 && strings.TrimSpace(m[1]) != "" {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}

	if obj := extractFirstJSONObject(raw); obj != "" {
		candidates = append(candidates, obj)
	}

	return candidates
}
