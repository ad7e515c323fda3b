package activity

import "caregiver-access/internal/domain/permissions"

// Action es el tag de la acción del cuidador que queda en el log.
type Action string

const (
	ActionAddedProduct       Action = "added_product"
	ActionEditedProduct      Action = "edited_product"
	ActionRespondedToInquiry Action = "responded_to_inquiry"
	ActionWithdrewFunds      Action = "withdrew_funds"
	ActionUpdatedProfile     Action = "updated_profile"
	ActionUpdatedBio         Action = "updated_bio"
	ActionUpdatedStoreName   Action = "updated_store_name"
	ActionMarkedShipment     Action = "marked_shipment"
)

// requiredCapability es data fija: qué capability habilita cada acción.
// Una acción sin entrada acá no es registrable vía pipeline.
var requiredCapability = map[Action]permissions.Capability{
	ActionAddedProduct:       permissions.CapManageProducts,
	ActionEditedProduct:      permissions.CapManageProducts,
	ActionRespondedToInquiry: permissions.CapRespondToInquiries,
	ActionWithdrewFunds:      permissions.CapWithdrawMoney,
	ActionUpdatedProfile:     permissions.CapEditProfile,
	ActionUpdatedBio:         permissions.CapEditBio,
	ActionUpdatedStoreName:   permissions.CapEditStoreName,
	ActionMarkedShipment:     permissions.CapManageShipments,
}

// RequiredCapability devuelve la capability que exige una acción.
func RequiredCapability(a Action) (permissions.Capability, bool) {
	c, ok := requiredCapability[a]
	return c, ok
}
