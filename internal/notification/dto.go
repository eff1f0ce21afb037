package notification

import (
	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/core/common/validation"
	"github.com/fmastery/admin-console/internal/core/datamodel"
)

type Form struct {
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Audience Audience       `json:"audience"`
	Selected []datamodel.ID `json:"selected,omitempty"`
}

func NewForm() Form {
	return Form{Audience: AudienceAll}
}

// Toggle adds id to the selection, or removes it when already selected.
func (f *Form) Toggle(id datamodel.ID) {
	for i, s := range f.Selected {
		if s == id {
			f.Selected = append(f.Selected[:i:i], f.Selected[i+1:]...)
			return
		}
	}
	f.Selected = append(f.Selected, id)
}

func (f Form) Validate() error {
	v := validation.NewValidator()
	v.Field("title", f.Title).Named("Title").Required()
	v.Field("message", f.Message).Named("Message").Required().MaxLengthCode(MaxMessageLength, internal.ErrCodeMessageTooLong)
	v.Field("audience", string(f.Audience)).Named("Audience").Required().OneOf(Audiences...)
	if err := v.Err(); err != nil {
		return err
	}
	if f.Audience == AudienceSelect && len(f.Selected) == 0 {
		return internal.ErrNoRecipients
	}
	return nil
}

type sendRequest struct {
	Title   string         `json:"title"`
	Message string         `json:"message"`
	IDs     []datamodel.ID `json:"ids"`
}
