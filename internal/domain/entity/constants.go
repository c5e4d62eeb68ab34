package entity

// Document categories for the pre-eligibility phase
const (
	DocCategoryPayrollStatements    = "payroll_statements"
	DocCategoryEmploymentContracts  = "employment_contracts"
	DocCategoryExpenseReceipts      = "expense_receipts"
	DocCategoryDSNDeclarations      = "dsn_declarations"
	DocCategoryCollectiveAgreements = "collective_agreements"
	DocCategoryAuditAttachment      = "audit_attachment"
	DocCategoryExpertRequested      = "expert_requested"
)

// Notification status constants
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

// Notification type constants, keyed by the transition that produces them
const (
	NotifDossierSubmitted         = "dossier_submitted"
	NotifEligibilityValidated     = "eligibility_validated"
	NotifEligibilityRejected      = "eligibility_rejected"
	NotifExpertProposed           = "expert_proposed"
	NotifExpertAssigned           = "expert_assigned"
	NotifExpertDeclined           = "expert_declined"
	NotifDocumentsRequested       = "documents_requested"
	NotifDocumentsSubmitted       = "documents_submitted"
	NotifAuditStarted             = "audit_started"
	NotifAuditCompleted           = "audit_completed"
	NotifAuditValidated           = "audit_validated"
	NotifImplementationSubmitted  = "implementation_submitted"
	NotifImplementationValidated  = "implementation_validated"
	NotifPaymentRequested         = "payment_requested"
	NotifPaymentRecorded          = "payment_recorded"
	NotifRefundCompleted          = "refund_completed"
)

// Implementation submission outcome constants
const (
	SubmissionPending  = "pending"
	SubmissionAccepted = "accepted"
	SubmissionAdjusted = "adjusted"
)

// Payment mode constants
const (
	PaymentModeBankTransfer = "bank_transfer"
	PaymentModeTaxCredit    = "tax_credit"
)
