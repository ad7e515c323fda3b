package grants

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"caregiver-access/internal/domain/permissions"
	"caregiver-access/internal/middleware"
	"caregiver-access/internal/ports/accounts"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, directory accounts.Directory) {
	// Owner actions
	r.Route("/caregivers", func(cr chi.Router) {
		cr.Post("/", createGrantHandler(svc, directory))

		cr.Route("/{grantID}", func(gr chi.Router) {
			gr.Get("/", getGrantHandler(svc))
			gr.Put("/permissions", updatePermissionsHandler(svc))
			gr.Delete("/", revokeGrantHandler(svc))

			// Primer login del cuidador (lo llama el IdP; en dev, directo)
			gr.Post("/activate", activateGrantHandler(svc))

			// Pre-chequeo del pipeline de acciones
			gr.Get("/check", checkAccessHandler(svc))
		})
	})

	// Dueño: listar sus grants
	r.Get("/accounts/{ownerAccountID}/caregivers", listByOwnerHandler(svc))
}

type createGrantRequest struct {
	OwnerAccountID      string           `json:"owner_account_id"`
	CaregiverEmail      string           `json:"caregiver_email"`
	CaregiverName       string           `json:"caregiver_name"`
	RelationshipType    string           `json:"relationship_type"`
	RelationshipDetails string           `json:"relationship_details"`
	PermissionLevel     string           `json:"permission_level"`
	Permissions         *permissions.Set `json:"permissions,omitempty"` // solo para custom
}

type updatePermissionsRequest struct {
	Permissions permissions.Set `json:"permissions"`
}

type grantResponse struct {
	ID                  string            `json:"id"`
	OwnerAccountID      string            `json:"owner_account_id"`
	CaregiverEmail      string            `json:"caregiver_email"`
	CaregiverName       string            `json:"caregiver_name"`
	RelationshipType    RelationshipType  `json:"relationship_type"`
	RelationshipDetails string            `json:"relationship_details,omitempty"`
	PermissionLevel     permissions.Level `json:"permission_level"`
	Permissions         permissions.Set   `json:"permissions"`
	Status              Status            `json:"status"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	LastLoginAt         *time.Time        `json:"last_login_at,omitempty"`
	TotalActions        int64             `json:"total_actions"`
	LastActionAt        *time.Time        `json:"last_action_at,omitempty"`
	RevokedAt           *time.Time        `json:"revoked_at,omitempty"`
}

type decisionResponse struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

func createGrantHandler(svc *Service, directory accounts.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createGrantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ownerID := strings.TrimSpace(req.OwnerAccountID)
		if ownerID == "" {
			http.Error(w, "owner_account_id required", http.StatusBadRequest)
			return
		}
		// Solo el dueño de la cuenta crea grants sobre ella.
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// Validar que la cuenta exista (si hay directory configurado)
		if directory != nil {
			exists, err := directory.Exists(r.Context(), ownerID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if !exists {
				http.Error(w, "owner account not found", http.StatusNotFound)
				return
			}
		}

		level, err := permissions.ParseLevel(req.PermissionLevel)
		if err != nil {
			http.Error(w, "unknown permission_level", http.StatusBadRequest)
			return
		}

		g, err := svc.Create(r.Context(), CreateInput{
			OwnerAccountID:      ownerID,
			CaregiverEmail:      req.CaregiverEmail,
			CaregiverName:       req.CaregiverName,
			RelationshipType:    RelationshipType(strings.TrimSpace(req.RelationshipType)),
			RelationshipDetails: req.RelationshipDetails,
			PermissionLevel:     level,
			CustomPermissions:   req.Permissions,
		})
		if err != nil {
			writeGrantError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toGrantResponse(g))
	}
}

func getGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")
		g, err := svc.GetByID(r.Context(), grantID)
		if err != nil {
			writeGrantError(w, err)
			return
		}

		// Dueño, o el cuidador de ESTE grant (sesión etiquetada con su id)
		if g.OwnerAccountID != claims.UserID && claims.GrantID != g.ID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

func updatePermissionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")
		g, err := svc.GetByID(r.Context(), grantID)
		if err != nil {
			writeGrantError(w, err)
			return
		}
		if g.OwnerAccountID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// El Set es un objeto cerrado: campos desconocidos se rechazan en el borde.
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updatePermissionsRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdatePermissions(r.Context(), grantID, req.Permissions)
		if err != nil {
			writeGrantError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(updated))
	}
}

func revokeGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")
		g, err := svc.GetByID(r.Context(), grantID)
		if err != nil {
			writeGrantError(w, err)
			return
		}
		if g.OwnerAccountID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		revoked, err := svc.Revoke(r.Context(), grantID)
		if err != nil {
			writeGrantError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(revoked))
	}
}

func activateGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !claims.IsCaregiver() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")
		if claims.GrantID != grantID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		g, err := svc.Activate(r.Context(), grantID)
		if err != nil {
			writeGrantError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

func checkAccessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")

		// Dueño del grant o el propio cuidador
		if claims.GrantID != grantID {
			g, err := svc.GetByID(r.Context(), grantID)
			if err != nil {
				writeGrantError(w, err)
				return
			}
			if g.OwnerAccountID != claims.UserID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		capability := permissions.Capability(strings.TrimSpace(r.URL.Query().Get("capability")))
		if !capability.IsValid() {
			http.Error(w, "unknown capability", http.StatusBadRequest)
			return
		}

		d, err := svc.Evaluate(r.Context(), grantID, capability)
		if err != nil {
			writeGrantError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, decisionResponse{Allowed: d.Allowed, Reason: d.Reason})
	}
}

func listByOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ownerID := chi.URLParam(r, "ownerAccountID")
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByOwner(r.Context(), ownerID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// status=active,pending (CSV opcional; default: todo lo vivo)
		allowed := parseStatusFilter(r.URL.Query().Get("status"))
		if len(allowed) == 0 {
			allowed = map[Status]struct{}{
				StatusPending: {},
				StatusActive:  {},
			}
		}

		out := make([]grantResponse, 0, len(items))
		for _, g := range items {
			if _, ok := allowed[g.Status]; !ok {
				continue
			}
			out = append(out, toGrantResponse(g))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeGrantError mapea los errores del dominio a status HTTP.
// Ningún error se traga: lo que no reconocemos es 500 explícito.
func writeGrantError(w http.ResponseWriter, err error) {
	var dup *DuplicateGrantError
	if errors.As(err, &dup) {
		writeJSONError(w, http.StatusConflict, map[string]string{
			"error":             "duplicate live grant",
			"existing_grant_id": dup.ExistingID,
		})
		return
	}

	switch {
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toGrantResponse(g Grant) grantResponse {
	return grantResponse{
		ID:                  g.ID,
		OwnerAccountID:      g.OwnerAccountID,
		CaregiverEmail:      g.CaregiverEmail,
		CaregiverName:       g.CaregiverName,
		RelationshipType:    g.RelationshipType,
		RelationshipDetails: g.RelationshipDetails,
		PermissionLevel:     g.PermissionLevel,
		Permissions:         g.Permissions,
		Status:              g.Status,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
		LastLoginAt:         g.LastLoginAt,
		TotalActions:        g.TotalActions,
		LastActionAt:        g.LastActionAt,
		RevokedAt:           g.RevokedAt,
	}
}

func parseStatusFilter(raw string) map[Status]struct{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := map[Status]struct{}{}
	for _, p := range parts {
		s := Status(strings.TrimSpace(p))
		if s == "" {
			continue
		}
		out[s] = struct{}{}
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
// Si más adelante se repite en más módulos, recién conviene extraerlo a un helper común.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v)
}
