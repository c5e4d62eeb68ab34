package workflow

import "fmt"

// Step is one entry of the coarse ten-step catalog shown to every actor.
type Step struct {
	Number int    `json:"number"`
	Label  string `json:"label"`
}

// The display catalog. Step numbers are 1-based and fixed; several fine
// statuses share a step, with progress interpolated inside it.
var stepCatalog = []Step{
	{1, "Simulation"},
	{2, "Charte Signature"},
	{3, "Expert Preselection"},
	{4, "Eligibility Process"},
	{5, "Dossier Completion"},
	{6, "Expert Matching"},
	{7, "Expert Report"},
	{8, "Administration Submission"},
	{9, "Reimbursement"},
	{10, "Dossier Closure"},
}

// Steps returns the full display catalog.
func Steps() []Step {
	return append([]Step(nil), stepCatalog...)
}

// Projection is the display-facing descriptor derived from a status.
type Projection struct {
	Step      int      `json:"current_step"`
	StepLabel string   `json:"step_label"`
	Progress  int      `json:"progress"`
	Notices   []Notice `json:"notices,omitempty"`
}

// Notice is a status-keyed message surfaced to the UI.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// stepPoint pins a fine status to a catalog step and a progress percentage.
type stepPoint struct {
	step     int
	progress int
}

// The projection table. Simulation (1) completes before a dossier exists;
// steps 4-6 complete implicitly when the expert phase ends, so they are never
// the current step. admin_rejected freezes where eligibility review stopped.
var projectionTable = map[Status]stepPoint{
	StatusPendingUpload:            {2, 10},
	StatusPendingAdminValidation:   {2, 20},
	StatusAdminRejected:            {2, 20},
	StatusAdminValidated:           {3, 30},
	StatusExpertPendingValidation:  {3, 35},
	StatusExpertValidated:          {3, 40},
	StatusComplementaryDocsPending: {3, 42},
	StatusComplementaryDocsSent:    {3, 45},
	StatusAuditInProgress:          {7, 60},
	StatusAuditCompleted:           {7, 70},
	StatusValidated:                {7, 75},
	StatusImplementationInProgress: {8, 80},
	StatusImplementationValidated:  {8, 85},
	StatusPaymentRequested:         {9, 90},
	StatusPaymentInProgress:        {9, 95},
	StatusRefundCompleted:          {10, 100},
}

var statusNotices = map[Status][]Notice{
	StatusPendingUpload: {
		{Level: "warning", Message: "Pre-eligibility documents are required to submit the dossier"},
	},
	StatusPendingAdminValidation: {
		{Level: "info", Message: "Dossier under eligibility review"},
	},
	StatusAdminRejected: {
		{Level: "error", Message: "Dossier rejected during eligibility review"},
	},
	StatusExpertPendingValidation: {
		{Level: "info", Message: "Awaiting expert decision on the assignment"},
	},
	StatusExpertValidated: {
		{Level: "success", Message: "Expert assigned"},
	},
	StatusComplementaryDocsPending: {
		{Level: "warning", Message: "The expert requested complementary documents"},
	},
	StatusAuditInProgress: {
		{Level: "info", Message: "Audit in progress"},
	},
	StatusAuditCompleted: {
		{Level: "info", Message: "Audit result awaiting client validation"},
	},
	StatusPaymentRequested: {
		{Level: "info", Message: "Payment requested"},
	},
	StatusRefundCompleted: {
		{Level: "success", Message: "Refund received, dossier closed"},
	},
}

// Project derives the display descriptor for a status. It is a pure function
// of the status: two calls with the same input yield identical output, which
// is what keeps the cached current_step/progress columns trustworthy.
func Project(status Status) (Projection, error) {
	point, ok := projectionTable[status]
	if !ok {
		return Projection{}, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	p := Projection{
		Step:      point.step,
		StepLabel: stepCatalog[point.step-1].Label,
		Progress:  point.progress,
	}
	if notices, ok := statusNotices[status]; ok {
		p.Notices = append([]Notice(nil), notices...)
	}
	return p, nil
}

// Action is a role-scoped affordance: a transition the actor may request now.
type Action struct {
	Name   string `json:"name"`
	Target Status `json:"target_status"`
}

type edgeKey struct {
	from   Status
	target Status
}

// Verb names per edge. The UI never invents actions: an action exists exactly
// when the machine has an edge for the role, and its name comes from here.
var actionNames = map[edgeKey]string{
	{StatusPendingUpload, StatusPendingAdminValidation}:              "submit_dossier",
	{StatusPendingAdminValidation, StatusAdminValidated}:             "validate_eligibility",
	{StatusPendingAdminValidation, StatusAdminRejected}:              "reject_dossier",
	{StatusAdminValidated, StatusExpertPendingValidation}:            "propose_expert",
	{StatusExpertPendingValidation, StatusExpertValidated}:           "accept_assignment",
	{StatusExpertPendingValidation, StatusAdminValidated}:            "decline_assignment",
	{StatusExpertValidated, StatusComplementaryDocsPending}:          "request_documents",
	{StatusComplementaryDocsPending, StatusComplementaryDocsSent}:    "send_documents",
	{StatusExpertValidated, StatusAuditInProgress}:                   "start_audit",
	{StatusComplementaryDocsSent, StatusAuditInProgress}:             "start_audit",
	{StatusAuditInProgress, StatusAuditCompleted}:                    "complete_audit",
	{StatusAuditCompleted, StatusValidated}:                          "validate_audit",
	{StatusValidated, StatusImplementationInProgress}:                "start_implementation",
	{StatusImplementationInProgress, StatusImplementationValidated}:  "validate_implementation",
	{StatusImplementationValidated, StatusPaymentRequested}:          "request_payment",
	{StatusPaymentRequested, StatusPaymentInProgress}:                "record_payment",
	{StatusPaymentInProgress, StatusRefundCompleted}:                 "confirm_refund",
}

// Actions lists the transitions the role may request from the machine's
// current status, derived mechanically from the transition table.
func Actions(m Machine, role Role) []Action {
	var actions []Action
	for _, target := range m.PermittedTargets(role) {
		actions = append(actions, Action{Name: ActionName(m.Status(), target), Target: target})
	}
	return actions
}

// ActionName resolves the verb for an edge. Unknown edges fall back to the
// target status name so history rows never end up empty.
func ActionName(from, target Status) string {
	if name, ok := actionNames[edgeKey{from: from, target: target}]; ok {
		return name
	}
	return string(target)
}
