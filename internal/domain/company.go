package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Company es el perfil de la empresa bajo analisis. Todos los campos del
// perfil son opcionales salvo el nombre; la ausencia se representa vacia y
// el prompt builder la vuelve explicita ("Not specified").
type Company struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Stage       string    `json:"stage,omitempty"`
	Sector      string    `json:"sector,omitempty"`
	RaiseAmount string    `json:"raise_amount,omitempty"`
	Valuation   string    `json:"valuation,omitempty"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentExcerpt es el texto ya extraido de un documento subido.
// Este core nunca toca bytes crudos; el pipeline de extraccion es externo.
type DocumentExcerpt struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	FileName       string          `json:"file_name"`
	Classification string          `json:"classification,omitempty"`
	ExtractedText  string          `json:"extracted_text"`
	Embedding      pgvector.Vector `json:"-"`
	HasEmbedding   bool            `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Citation vincula una respuesta generada con el documento fuente.
type Citation struct {
	SourceName string `json:"source_name"`
	Excerpt    string `json:"excerpt"`
}
