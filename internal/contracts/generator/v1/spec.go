package v1

// GenerateRequest v1: contrato mínimo para el generador de scripts.
// - prompt: descripción en lenguaje natural de la animación
// - context: contexto opcional (p.ej. pedido de mejora en una regeneración)
type GenerateRequest struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
}

// GenerateResponse carries the generated script plus display metadata.
type GenerateResponse struct {
	Script      string `json:"script"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}
