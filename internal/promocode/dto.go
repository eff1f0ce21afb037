package promocode

import (
	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/core/common/validation"
	"github.com/fmastery/admin-console/internal/core/datamodel"
)

type GenerateForm struct {
	PromoType string `json:"promoType"`
}

func (f GenerateForm) Validate() error {
	v := validation.NewValidator()
	v.Field("promoType", f.PromoType).Named("Promo type").Required().OneOf(Types...)
	return v.Err()
}

// AssignForm backs the assign dialog. PromoType only narrows the codes offered.
type AssignForm struct {
	UserID    datamodel.ID `json:"userId"`
	UserName  string       `json:"userName,omitempty"`
	PromoType string       `json:"promoType,omitempty"`
	PromoCode string       `json:"promoCode"`
}

// NewAssignForm starts on monthly codes with nothing selected.
func NewAssignForm(userID datamodel.ID, userName string) AssignForm {
	return AssignForm{UserID: userID, UserName: userName, PromoType: TypeMonthly}
}

// SelectType switches the offered codes and drops the current selection.
func (f *AssignForm) SelectType(promoType string) {
	f.PromoType = promoType
	f.PromoCode = ""
}

func (f AssignForm) Validate() error {
	if f.PromoCode == "" {
		return internal.ErrSelectPromo
	}
	v := validation.NewValidator()
	v.Field("userId", string(f.UserID)).Named("User").Required()
	v.Field("promoType", f.PromoType).Named("Promo type").OneOf(Types...)
	return v.Err()
}

type generateRequest struct {
	PromoType string `json:"promoType"`
}

type assignRequest struct {
	UserID    datamodel.ID `json:"userId"`
	PromoCode string       `json:"promoCode"`
}
