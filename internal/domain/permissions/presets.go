package permissions

import (
	"errors"
	"strings"
)

// Level es el nivel de permisos con nombre que elige el dueño de la cuenta.
// @Enum full, financial_only, product_management, view_only, custom
type Level string

const (
	LevelFull              Level = "full"
	LevelFinancialOnly     Level = "financial_only"
	LevelProductManagement Level = "product_management"
	LevelViewOnly          Level = "view_only"
	LevelCustom            Level = "custom"
)

var (
	// ErrUnknownPreset: nivel no reconocido. Fallamos cerrado: NUNCA
	// degradamos a "full" ante un string desconocido.
	ErrUnknownPreset = errors.New("unknown permission preset")

	// ErrCustomHasNoPreset: "custom" no tiene mapping canónico; el caller
	// debe traer el Set explícito.
	ErrCustomHasNoPreset = errors.New("custom level has no canonical preset")
)

// presets es data fija, no cálculo. Cada flag se lista explícito
// aunque sea false-por-default, para que el diff con el nivel quede legible.
var presets = map[Level]Set{
	LevelFull: {
		ViewProfile:        true,
		EditProfile:        true,
		ViewProducts:       true,
		ManageProducts:     true,
		RespondToInquiries: true,
		ViewFinancials:     true,
		WithdrawMoney:      true,
		ManageShipments:    true,
		ViewAnalytics:      true,
		EditBio:            true,
		EditStoreName:      true,
	},
	LevelFinancialOnly: {
		ViewFinancials: true,
		WithdrawMoney:  true,
	},
	LevelProductManagement: {
		ViewProducts:       true,
		ManageProducts:     true,
		RespondToInquiries: true,
		ManageShipments:    true,
	},
	LevelViewOnly: {
		ViewProfile:    true,
		ViewProducts:   true,
		ViewFinancials: true,
		ViewAnalytics:  true,
	},
}

// ParseLevel normaliza y valida el nivel recibido en el borde HTTP.
func ParseLevel(raw string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(raw)))
	switch l {
	case LevelFull, LevelFinancialOnly, LevelProductManagement, LevelViewOnly, LevelCustom:
		return l, nil
	default:
		return "", ErrUnknownPreset
	}
}

// Resolve devuelve el Set canónico de un nivel con nombre.
// Para "custom" no hay resolución: el grant guarda el Set que trajo el caller.
func Resolve(level Level) (Set, error) {
	if level == LevelCustom {
		return Set{}, ErrCustomHasNoPreset
	}
	s, ok := presets[level]
	if !ok {
		return Set{}, ErrUnknownPreset
	}
	return s, nil
}
