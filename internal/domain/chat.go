package domain

// ChatTurn es un turno previo de la conversacion (role: "user" o "assistant").
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatAnswer es la respuesta generada con su evidencia.
type ChatAnswer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}
