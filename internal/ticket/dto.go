package ticket

import (
	"github.com/fmastery/admin-console/internal/core/common/validation"
	"github.com/fmastery/admin-console/internal/core/datamodel"
)

// StatusForm backs the update-status dialog.
type StatusForm struct {
	TicketID datamodel.ID `json:"ticketId"`
	UserID   datamodel.ID `json:"userId"`
	Status   string       `json:"status"`
}

// NewStatusForm preselects the ticket's current status, or the first offered option when the
// current one (pending, for a new ticket) cannot be chosen.
func NewStatusForm(t Ticket) StatusForm {
	status := StatusOptions[0].Value
	for _, o := range StatusOptions {
		if o.Value == t.Status {
			status = t.Status
			break
		}
	}
	return StatusForm{TicketID: t.ID, UserID: t.UserID, Status: status}
}

func (f StatusForm) Validate() error {
	allowed := make([]string, len(StatusOptions))
	for i, o := range StatusOptions {
		allowed[i] = o.Value
	}
	v := validation.NewValidator()
	v.Field("ticketId", string(f.TicketID)).Named("Ticket").Required()
	v.Field("status", f.Status).Named("Status").Required().OneOf(allowed...)
	return v.Err()
}

// statusRequest carries the user id as a string, which the backend requires.
type statusRequest struct {
	TicketID datamodel.ID `json:"ticketId"`
	UserID   string       `json:"userId"`
	Status   string       `json:"status"`
}
