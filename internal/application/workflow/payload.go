package workflow

// TransitionPayload carries the optional inputs a transition may require.
// Each field is read only by the edge that owns it.
type TransitionPayload struct {
	// ExpertID accompanies propose/accept/decline on the assignment sub-cycle
	ExpertID string `json:"expert_id,omitempty"`

	// RequestedDocuments accompanies the expert's complementary-document request
	RequestedDocuments []DocumentRequest `json:"requested_documents,omitempty"`
	Message            string            `json:"message,omitempty"`

	// Audit completion inputs
	MontantFinal  *float64 `json:"montant_final,omitempty"`
	AuditSummary  string   `json:"audit_summary,omitempty"`
	AuditFindings []string `json:"audit_findings,omitempty"`

	// Implementation validation inputs
	SubmissionStatus string   `json:"submission_status,omitempty"`
	GrantedAmount    *float64 `json:"granted_amount,omitempty"`

	// Payment inputs
	PaymentMode     string   `json:"payment_mode,omitempty"`
	RequestedAmount *float64 `json:"requested_amount,omitempty"`
}

// DocumentRequest is one slot of an expert's document request.
type DocumentRequest struct {
	Description string `json:"description"`
	Required    bool   `json:"required"`
}
