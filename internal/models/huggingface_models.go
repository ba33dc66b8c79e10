package models

// SummaryRequest is the body the HuggingFace inference API expects for a
// summarization model.
type SummaryRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters SummaryParameters `json:"parameters"`
	Options    InferenceOptions  `json:"options"`
}

type SummaryParameters struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

// InferenceOptions asks the hosted API to block until a cold model is loaded
// instead of answering 503 straight away.
type InferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type SummaryResponse struct {
	SummaryText string `json:"summary_text"`
}

type SummaryBatchResponse []SummaryResponse

// InferenceError is the error body returned by the inference API.
type InferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}
