package workflow

// Status represents the canonical lifecycle state of a dossier
type Status string

const (
	StatusPendingUpload            Status = "pending_upload"
	StatusPendingAdminValidation   Status = "pending_admin_validation"
	StatusAdminValidated           Status = "admin_validated"
	StatusAdminRejected            Status = "admin_rejected"
	StatusExpertPendingValidation  Status = "expert_pending_validation"
	StatusExpertValidated          Status = "expert_validated"
	StatusComplementaryDocsPending Status = "complementary_documents_upload_pending"
	StatusComplementaryDocsSent    Status = "complementary_documents_sent"
	StatusAuditInProgress          Status = "audit_in_progress"
	StatusAuditCompleted           Status = "audit_completed"
	StatusValidated                Status = "validated"
	StatusImplementationInProgress Status = "implementation_in_progress"
	StatusImplementationValidated  Status = "implementation_validated"
	StatusPaymentRequested         Status = "payment_requested"
	StatusPaymentInProgress        Status = "payment_in_progress"
	StatusRefundCompleted          Status = "refund_completed"
)

var validStatuses = map[Status]bool{
	StatusPendingUpload:            true,
	StatusPendingAdminValidation:   true,
	StatusAdminValidated:           true,
	StatusAdminRejected:            true,
	StatusExpertPendingValidation:  true,
	StatusExpertValidated:          true,
	StatusComplementaryDocsPending: true,
	StatusComplementaryDocsSent:    true,
	StatusAuditInProgress:          true,
	StatusAuditCompleted:           true,
	StatusValidated:                true,
	StatusImplementationInProgress: true,
	StatusImplementationValidated:  true,
	StatusPaymentRequested:         true,
	StatusPaymentInProgress:        true,
	StatusRefundCompleted:          true,
}

var terminalStatuses = map[Status]bool{
	StatusAdminRejected:   true,
	StatusRefundCompleted: true,
}

// auditReached lists every status ordered at or after audit_completed.
// montant_final may only be non-null from these statuses onward.
var auditReached = map[Status]bool{
	StatusAuditCompleted:           true,
	StatusValidated:                true,
	StatusImplementationInProgress: true,
	StatusImplementationValidated:  true,
	StatusPaymentRequested:         true,
	StatusPaymentInProgress:        true,
	StatusRefundCompleted:          true,
}

// IsTerminal returns true if the status is terminal (no further transitions allowed)
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a known dossier status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// AuditReached returns true if the status is audit_completed or later
func (s Status) AuditReached() bool {
	return auditReached[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// All returns every valid status. Order is fixed so callers can iterate deterministically.
func All() []Status {
	return []Status{
		StatusPendingUpload,
		StatusPendingAdminValidation,
		StatusAdminValidated,
		StatusAdminRejected,
		StatusExpertPendingValidation,
		StatusExpertValidated,
		StatusComplementaryDocsPending,
		StatusComplementaryDocsSent,
		StatusAuditInProgress,
		StatusAuditCompleted,
		StatusValidated,
		StatusImplementationInProgress,
		StatusImplementationValidated,
		StatusPaymentRequested,
		StatusPaymentInProgress,
		StatusRefundCompleted,
	}
}
