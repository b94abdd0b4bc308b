package domain

import "time"

// Estados de una ronda de votacion. closed y cancelled son terminales para
// la participacion; revealed_at puede setearse con la ronda todavia open.
const (
	RoundStatusOpen      = "open"
	RoundStatusClosed    = "closed"
	RoundStatusCancelled = "cancelled"
)

// Valores ordinales de voto.
const (
	VoteStrongYes = "strong_yes"
	VoteYes       = "yes"
	VoteNeutral   = "neutral"
	VoteNo        = "no"
	VoteStrongNo  = "strong_no"
)

// VoteScores mapea cada valor ordinal a su puntaje para el promedio.
var VoteScores = map[string]int{
	VoteStrongYes: 2,
	VoteYes:       1,
	VoteNeutral:   0,
	VoteNo:        -1,
	VoteStrongNo:  -2,
}

// Labels de consenso.
const (
	ConsensusPositive = "positive"
	ConsensusNegative = "negative"
	ConsensusNeutral  = "neutral"
	ConsensusMixed    = "mixed"
)

// Participant es un miembro fijo de la ronda. La lista es inmutable desde
// la creacion.
type Participant struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// VotingRound es una votacion ciega adjunta a un Assessment.
// Invariante: una vez seteado RevealedAt nunca se limpia; status=closed
// implica votos visibles aunque RevealedAt sea nil.
type VotingRound struct {
	ID            string        `json:"id"`
	TenantID      string        `json:"tenant_id"`
	AssessmentID  string        `json:"assessment_id"`
	Status        string        `json:"status"`
	Deadline      time.Time     `json:"deadline"`
	QuorumPercent int           `json:"quorum_percent"`
	RevealedAt    *time.Time    `json:"revealed_at,omitempty"`
	Participants  []Participant `json:"participants"`
	CreatedBy     string        `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Revealed indica si los votos de la ronda son visibles para todos.
func (r *VotingRound) Revealed() bool {
	return r.RevealedAt != nil || r.Status == RoundStatusClosed
}

// HasParticipant verifica pertenencia a la lista fija de participantes.
func (r *VotingRound) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Vote es la papeleta de un participante. Unica por (round, voter): una
// segunda emision sobreescribe la primera.
type Vote struct {
	RoundID   string    `json:"round_id"`
	VoterID   string    `json:"voter_id"`
	Value     string    `json:"value"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoundSummary es la agregacion de una ronda. Distribution, AverageScore y
// Consensus solo se calculan cuando la ronda fue revelada o cerrada.
type RoundSummary struct {
	RoundID        string         `json:"round_id"`
	Revealed       bool           `json:"revealed"`
	VotesSubmitted int            `json:"votes_submitted"`
	QuorumMet      bool           `json:"quorum_met"`
	Distribution   map[string]int `json:"distribution,omitempty"`
	AverageScore   float64        `json:"average_score"`
	Consensus      string         `json:"consensus,omitempty"`
}
