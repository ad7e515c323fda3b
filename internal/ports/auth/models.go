package auth

// Claims representa la información extraída del token de sesión.
// Una sesión de cuidador viene etiquetada con el GrantID que la habilita
// (el IdP la emite al autenticar credenciales de cuidador); una sesión
// de dueño trae GrantID vacío.
type Claims struct {
	UserID  string
	Email   string
	GrantID string
}

// IsCaregiver indica si la sesión es de un cuidador delegado.
func (c Claims) IsCaregiver() bool {
	return c.GrantID != ""
}
