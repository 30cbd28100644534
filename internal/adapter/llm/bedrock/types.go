package bedrock

// RetrieveAndGenerateRequest is the Agent Runtime request envelope.
type RetrieveAndGenerateRequest struct {
	Input         InputText     `json:"input"`
	Configuration Configuration `json:"retrieveAndGenerateConfiguration"`
}

// InputText wraps the user prompt.
type InputText struct {
	Text string `json:"text"`
}

// Configuration selects knowledge-base-augmented generation.
type Configuration struct {
	Type          string                     `json:"type"` // "KNOWLEDGE_BASE"
	KnowledgeBase KnowledgeBaseConfiguration `json:"knowledgeBaseConfiguration"`
}

// KnowledgeBaseConfiguration names the knowledge base and generating model.
type KnowledgeBaseConfiguration struct {
	KnowledgeBaseID string `json:"knowledgeBaseId"`
	ModelARN        string `json:"modelArn"`
}

// RetrieveAndGenerateResponse is the response envelope. Unlike the direct
// backend, the generated text is nested one level deeper under output.
type RetrieveAndGenerateResponse struct {
	Output    OutputText `json:"output"`
	SessionID string     `json:"sessionId"`
}

// OutputText wraps the generated text.
type OutputText struct {
	Text string `json:"text"`
}

// ErrorResponse is the Agent Runtime error envelope.
type ErrorResponse struct {
	Message string `json:"message"`
}
