package entity

import "time"

// DocumentRef is a reference to a document held by the external storage
// collaborator. The engine never sees document bytes, only the identifier,
// the category tag consumed by the requirement tracker, and an access URL.
type DocumentRef struct {
	ID         string     `json:"id"`
	DossierID  string     `json:"dossier_id"`
	Category   string     `json:"category"`
	Filename   string     `json:"filename"`
	URL        string     `json:"url,omitempty"`
	Uploaded   bool       `json:"uploaded"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
