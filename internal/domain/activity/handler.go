package activity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"caregiver-access/internal/domain/grants"
	"caregiver-access/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registra rutas planas (sin subrouter montado): el resto de
// /caregivers/{grantID}/* vive en el módulo de grants y montar acá un
// subrouter propio lo taparía.
func RegisterRoutes(r chi.Router, svc *Service, grantsSvc *grants.Service) {
	// Pipeline de acciones del cuidador: evalúa, ejecuta, registra
	r.Post("/caregivers/{grantID}/actions", performActionHandler(svc, grantsSvc))

	// Dueño (o el propio cuidador): auditar el log
	r.Get("/caregivers/{grantID}/activity", listActivityHandler(svc, grantsSvc))
}

// performActionRequest es el cuerpo de una acción iniciada por el cuidador.
type performActionRequest struct {
	Action        Action `json:"action" enums:"added_product,edited_product,responded_to_inquiry,withdrew_funds,updated_profile,updated_bio,updated_store_name,marked_shipment"`
	ActionDetails string `json:"action_details"`
	ResourceType  string `json:"resource_type"`
	ResourceName  string `json:"resource_name"`
}

// recordResponse representa una entrada del log de actividad devuelta por la API.
type recordResponse struct {
	ID            string    `json:"id"`
	GrantID       string    `json:"grant_id"`
	CaregiverName string    `json:"caregiver_name"`
	Action        Action    `json:"action"`
	ActionDetails string    `json:"action_details,omitempty"`
	ResourceType  string    `json:"resource_type,omitempty"`
	ResourceName  string    `json:"resource_name,omitempty"`
	Seq           int64     `json:"seq"`
	CreatedAt     time.Time `json:"created_at"`
}

type pageResponse struct {
	Items      []recordResponse `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type denyResponse struct {
	Error  string            `json:"error"`
	Reason grants.DenyReason `json:"reason"`
}

// performActionHandler godoc
// @Summary Ejecutar acción de cuidador
// @Description Ejecuta una acción delegada contra la cuenta del vendedor. El evaluador consulta el grant de la sesión ANTES de ejecutar: si el grant no está activo o le falta la capability, responde 403 con la razón y no registra nada. Si la acción pasa, queda en el log de actividad (inmutable) y actualiza los contadores del grant. Autenticación: `X-Debug-Grant-ID` (dev) o `Authorization: Bearer <token>` (prod, sesión etiquetada con el grant).
// @Tags activity
// @Accept json
// @Produce json
// @Param X-Debug-Grant-ID header string false "Solo en modo dev, grant de la sesión de cuidador"
// @Param Authorization header string false "Bearer token en producción"
// @Param grantID path string true "ID del grant"
// @Param payload body performActionRequest true "Acción y detalle"
// @Success 201 {object} recordResponse
// @Failure 400 {string} string "invalid json / acción desconocida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {object} denyResponse "deny con razón (grant_inactive / capability_not_granted)"
// @Failure 500 {string} string "internal error"
// @Router /caregivers/{grantID}/actions [post]
func performActionHandler(svc *Service, grantsSvc *grants.Service) http.HandlerFunc {
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

		var req performActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		capability, known := RequiredCapability(req.Action)
		if !known {
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}

		// Evaluación sincrónica ANTES de ejecutar la mutación.
		decision, err := grantsSvc.Evaluate(r.Context(), grantID, capability)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !decision.Allowed {
			// Deny es un resultado de negocio, no un error de sistema:
			// va con razón para que el caller no lo reintente a ciegas.
			writeJSON(w, http.StatusForbidden, denyResponse{
				Error:  "forbidden",
				Reason: decision.Reason,
			})
			return
		}

		// Acá iría la ejecución real contra la cuenta (productos, retiros, etc.);
		// este servicio solo custodia el grant y el log.

		g, err := grantsSvc.GetByID(r.Context(), grantID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		rec, err := svc.Record(r.Context(), RecordInput{
			GrantID:       grantID,
			CaregiverName: g.CaregiverName,
			Action:        req.Action,
			ActionDetails: req.ActionDetails,
			ResourceType:  req.ResourceType,
			ResourceName:  req.ResourceName,
		})
		if err != nil {
			if errors.Is(err, ErrValidation) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Contadores derivados del grant (el log es la fuente de verdad)
		_ = grantsSvc.NoteAction(r.Context(), grantID, rec.CreatedAt)

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

// listActivityHandler godoc
// @Summary Listar actividad de un grant
// @Description Lista el log de actividad del grant, del más nuevo al más viejo, con paginación por cursor reiniciable. Puede verlo el dueño de la cuenta o el cuidador del grant. El log sobrevive a la revocación.
// @Tags activity
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, sesión de dueño"
// @Param X-Debug-Grant-ID header string false "Solo en modo dev, sesión de cuidador"
// @Param grantID path string true "ID del grant"
// @Param cursor query string false "Cursor devuelto por la página anterior"
// @Param limit query int false "Máximo de entradas (1-200). Por defecto 50"
// @Success 200 {object} pageResponse
// @Failure 400 {string} string "cursor o limit inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "grant not found"
// @Router /caregivers/{grantID}/activity [get]
func listActivityHandler(svc *Service, grantsSvc *grants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")
		g, err := grantsSvc.GetByID(r.Context(), grantID)
		if err != nil {
			http.Error(w, "grant not found", http.StatusNotFound)
			return
		}
		if g.OwnerAccountID != claims.UserID && claims.GrantID != g.ID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		limit := 0
		if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		page, err := svc.ListForGrant(r.Context(), grantID, r.URL.Query().Get("cursor"), limit)
		if err != nil {
			if errors.Is(err, ErrValidation) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := pageResponse{
			Items:      make([]recordResponse, 0, len(page.Items)),
			NextCursor: page.NextCursor,
		}
		for _, rec := range page.Items {
			out.Items = append(out.Items, toRecordResponse(rec))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toRecordResponse(rec Record) recordResponse {
	return recordResponse{
		ID:            rec.ID,
		GrantID:       rec.GrantID,
		CaregiverName: rec.CaregiverName,
		Action:        rec.Action,
		ActionDetails: rec.ActionDetails,
		ResourceType:  rec.ResourceType,
		ResourceName:  rec.ResourceName,
		Seq:           rec.Seq,
		CreatedAt:     rec.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
// Si más adelante se repite en más módulos, recién conviene extraerlo a un helper común.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
