package models

type UploadResponse struct {
	Key          string `json:"key"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
}

type EvaluateRequest struct {
	ResumeKey string `json:"resume_key" validate:"required"`
	JobTitle  string `json:"job_title"`
	JobKey    string `json:"job_key"`
}

type EvaluateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CandidateListResponse struct {
	Candidates []CandidateRecord `json:"candidates"`
	Count      int               `json:"count"`
}

type UploadResult struct {
	Message   string            `json:"message"`
	Documents []UploadResponse  `json:"documents"`
	Candidate *EvaluateResponse `json:"candidate,omitempty"`
}
