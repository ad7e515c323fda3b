package identity

import "context"

// Provisioner emite credenciales de login para un cuidador recién invitado.
// La emisión es responsabilidad del IdP; este core solo dispara el alta.
type Provisioner interface {
	IssueCredentials(ctx context.Context, grantID, caregiverEmail, caregiverName string) error
}
