package permissions

// Capability identifica una acción delegable sobre la cuenta del vendedor.
// @Enum view_profile, edit_profile, view_products, manage_products, respond_to_inquiries, view_financials, withdraw_money, manage_shipments, view_analytics, edit_bio, edit_store_name
type Capability string

const (
	CapViewProfile        Capability = "view_profile"
	CapEditProfile        Capability = "edit_profile"
	CapViewProducts       Capability = "view_products"
	CapManageProducts     Capability = "manage_products"
	CapRespondToInquiries Capability = "respond_to_inquiries"
	CapViewFinancials     Capability = "view_financials"
	CapWithdrawMoney      Capability = "withdraw_money"
	CapManageShipments    Capability = "manage_shipments"
	CapViewAnalytics      Capability = "view_analytics"
	CapEditBio            Capability = "edit_bio"
	CapEditStoreName      Capability = "edit_store_name"
)

// Set es el registro cerrado de flags booleanos de un grant.
// Todo flag arranca en false; ningún flag implica otro
// (manage_products NO implica view_products: se setean por separado).
type Set struct {
	ViewProfile        bool `json:"view_profile"`
	EditProfile        bool `json:"edit_profile"`
	ViewProducts       bool `json:"view_products"`
	ManageProducts     bool `json:"manage_products"`
	RespondToInquiries bool `json:"respond_to_inquiries"`
	ViewFinancials     bool `json:"view_financials"`
	WithdrawMoney      bool `json:"withdraw_money"`
	ManageShipments    bool `json:"manage_shipments"`
	ViewAnalytics      bool `json:"view_analytics"`
	EditBio            bool `json:"edit_bio"`
	EditStoreName      bool `json:"edit_store_name"`
}

// Has hace el lookup plano de una capability. Sin jerarquías ni herencia.
func (s Set) Has(c Capability) bool {
	switch c {
	case CapViewProfile:
		return s.ViewProfile
	case CapEditProfile:
		return s.EditProfile
	case CapViewProducts:
		return s.ViewProducts
	case CapManageProducts:
		return s.ManageProducts
	case CapRespondToInquiries:
		return s.RespondToInquiries
	case CapViewFinancials:
		return s.ViewFinancials
	case CapWithdrawMoney:
		return s.WithdrawMoney
	case CapManageShipments:
		return s.ManageShipments
	case CapViewAnalytics:
		return s.ViewAnalytics
	case CapEditBio:
		return s.EditBio
	case CapEditStoreName:
		return s.EditStoreName
	default:
		return false
	}
}

// IsValid valida que la capability pertenezca al vocabulario cerrado.
func (c Capability) IsValid() bool {
	switch c {
	case CapViewProfile, CapEditProfile,
		CapViewProducts, CapManageProducts,
		CapRespondToInquiries,
		CapViewFinancials, CapWithdrawMoney,
		CapManageShipments, CapViewAnalytics,
		CapEditBio, CapEditStoreName:
		return true
	default:
		return false
	}
}
