package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata is the namespaced extension bag carried by a dossier. Each field is
// written only by the lifecycle phase that owns it and is never interpreted by
// earlier phases.
type Metadata struct {
	ExpertRequest           *ExpertRequestMeta  `json:"expert_request,omitempty"`
	RequiredDocumentsExpert []RequestedDocument `json:"required_documents_expert,omitempty"`
	Audit                   *AuditMeta          `json:"audit_results,omitempty"`
	Implementation          *ImplementationMeta `json:"implementation,omitempty"`
	Payment                 *PaymentMeta        `json:"payment,omitempty"`
}

// RequestedDocument is one slot of an expert's complementary-document request.
type RequestedDocument struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Required    bool       `json:"required"`
	Uploaded    bool       `json:"uploaded"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty"`
	DocumentID  *string    `json:"document_id,omitempty"`
}

// ExpertRequestMeta records who asked for complementary documents and when.
type ExpertRequestMeta struct {
	RequestedBy    string    `json:"requested_by"`
	RequestedAt    time.Time `json:"requested_at"`
	Message        string    `json:"message,omitempty"`
	DocumentsCount int       `json:"documents_count"`
}

// AuditMeta holds the expert's audit outcome.
type AuditMeta struct {
	Summary     string    `json:"summary"`
	Findings    []string  `json:"findings,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// ImplementationMeta tracks the administrative submission.
type ImplementationMeta struct {
	SubmissionStatus string     `json:"submission_status"`
	GrantedAmount    *float64   `json:"granted_amount,omitempty"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
}

// PaymentMeta records how the refund is paid out.
type PaymentMeta struct {
	Mode            string    `json:"mode"`
	RequestedAmount float64   `json:"requested_amount"`
	RequestedAt     time.Time `json:"requested_at"`
}

// Value serializes the metadata bag to JSON for storage.
func (m Metadata) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}

// Scan deserializes the metadata bag from its stored JSON form.
func (m *Metadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case string:
		if v == "" {
			*m = Metadata{}
			return nil
		}
		return json.Unmarshal([]byte(v), m)
	case []byte:
		if len(v) == 0 {
			*m = Metadata{}
			return nil
		}
		return json.Unmarshal(v, m)
	default:
		return fmt.Errorf("scan metadata: unsupported type %T", src)
	}
}
