package rag

// AskRequest is a question over the ingested corpus.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// DocumentID optionally restricts retrieval to one document.
	DocumentID string `json:"doc_id,omitempty"`
	// K optionally overrides how many chunks are retrieved.
	K int `json:"k,omitempty"`
	// IncludeSources asks for citations alongside the answer.
	IncludeSources bool `json:"include_sources,omitempty"`
}

// Source cites one retrieved chunk that informed the answer.
type Source struct {
	// Source is the filename of the document the chunk came from.
	Source string `json:"source"`
	// Page is the 1-based page the chunk starts on.
	Page int `json:"page"`
	// Snippet is the leading text of the chunk.
	Snippet string `json:"snippet"`
}

// AskResponse is the generated answer with optional citations.
type AskResponse struct {
	Answer string `json:"answer"`
	// Model identifies which candidate model produced the answer.
	Model string `json:"model,omitempty"`
	// Sources lists citations in retrieval rank order, when requested.
	Sources []Source `json:"sources,omitempty"`
}

// SummarizeResponse is a whole-document summary.
type SummarizeResponse struct {
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
	Summary  string `json:"summary"`
	Model    string `json:"model,omitempty"`
}
