package event

// Type identifies the type of domain event
type Type string

const (
	TypeDossierCreated     Type = "dossier.created"
	TypeStatusChanged      Type = "dossier.status_changed"
	TypeDocumentsRequested Type = "dossier.documents_requested"
	TypeReportGenerated    Type = "dossier.report_generated"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeDossierCreated,
		TypeStatusChanged,
		TypeDocumentsRequested,
		TypeReportGenerated:
		return true
	default:
		return false
	}
}
