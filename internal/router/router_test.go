package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// doJSON hace un request contra el server de prueba y decodifica la
// respuesta en out (si out != nil). Devuelve el status code.
func doJSON(t *testing.T, srv *httptest.Server, method, path string, headers map[string]string, body any, out any) int {
	t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func ownerSession(userID string) map[string]string {
	return map[string]string{"X-Debug-User-ID": userID}
}

func caregiverSession(grantID string) map[string]string {
	return map[string]string{"X-Debug-Grant-ID": grantID}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(Options{}))
	t.Cleanup(srv.Close)
	return srv
}

func createGrantReq(level string) map[string]any {
	return map[string]any{
		"owner_account_id":  "owner-1",
		"caregiver_email":   "ana@example.com",
		"caregiver_name":    "Ana Torres",
		"relationship_type": "parent",
		"permission_level":  level,
	}
}

func TestHTTP_EndToEnd_CaregiverLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// 1. El dueño invita a un cuidador con acceso full → grant en pending.
	var grant map[string]any
	status := doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("full"), &grant)
	if status != http.StatusCreated {
		t.Fatalf("create grant: expected 201, got %d", status)
	}
	grantID, _ := grant["id"].(string)
	if grantID == "" {
		t.Fatalf("create grant: missing id in response")
	}
	if grant["status"] != "pending" {
		t.Fatalf("expected pending, got %v", grant["status"])
	}
	perms, _ := grant["permissions"].(map[string]any)
	if perms["manage_products"] != true || perms["withdraw_money"] != true {
		t.Fatalf("full preset must grant everything, got %v", perms)
	}

	// 2. Acción ANTES de activar: deny con razón, sin registro.
	action := map[string]any{"action": "edited_product", "resource_name": "Collar tejido"}
	var deny map[string]any
	status = doJSON(t, srv, http.MethodPost, "/caregivers/"+grantID+"/actions", caregiverSession(grantID), action, &deny)
	if status != http.StatusForbidden {
		t.Fatalf("action on pending grant: expected 403, got %d", status)
	}
	if deny["reason"] != "grant_inactive" {
		t.Fatalf("expected grant_inactive, got %v", deny["reason"])
	}

	// 3. Primer login del cuidador → active.
	var activated map[string]any
	status = doJSON(t, srv, http.MethodPost, "/caregivers/"+grantID+"/activate", caregiverSession(grantID), nil, &activated)
	if status != http.StatusOK {
		t.Fatalf("activate: expected 200, got %d", status)
	}
	if activated["status"] != "active" || activated["last_login_at"] == nil {
		t.Fatalf("expected active with last_login_at, got %v", activated)
	}

	// 4. Ahora la acción pasa y queda en el log.
	var rec map[string]any
	status = doJSON(t, srv, http.MethodPost, "/caregivers/"+grantID+"/actions", caregiverSession(grantID), action, &rec)
	if status != http.StatusCreated {
		t.Fatalf("action: expected 201, got %d", status)
	}
	if rec["action"] != "edited_product" || rec["seq"] != float64(1) {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["caregiver_name"] != "Ana Torres" {
		t.Fatalf("record must snapshot the caregiver name, got %v", rec["caregiver_name"])
	}

	// 5. El dueño audita el log.
	var page map[string]any
	status = doJSON(t, srv, http.MethodGet, "/caregivers/"+grantID+"/activity", ownerSession("owner-1"), nil, &page)
	if status != http.StatusOK {
		t.Fatalf("activity: expected 200, got %d", status)
	}
	items, _ := page["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(items))
	}

	// 6. check: el dueño consulta el evaluador sin efectos secundarios.
	var decision map[string]any
	status = doJSON(t, srv, http.MethodGet, "/caregivers/"+grantID+"/check?capability=manage_products", ownerSession("owner-1"), nil, &decision)
	if status != http.StatusOK || decision["allowed"] != true {
		t.Fatalf("check manage_products: expected allowed, got %d %v", status, decision)
	}

	// 7. La revocación es inmediata: toda acción posterior deniega.
	var revoked map[string]any
	status = doJSON(t, srv, http.MethodDelete, "/caregivers/"+grantID, ownerSession("owner-1"), nil, &revoked)
	if status != http.StatusOK || revoked["status"] != "revoked" {
		t.Fatalf("revoke: expected 200 revoked, got %d %v", status, revoked)
	}

	deny = map[string]any{}
	status = doJSON(t, srv, http.MethodPost, "/caregivers/"+grantID+"/actions", caregiverSession(grantID), action, &deny)
	if status != http.StatusForbidden || deny["reason"] != "grant_inactive" {
		t.Fatalf("action after revoke: expected 403 grant_inactive, got %d %v", status, deny)
	}

	decision = map[string]any{}
	status = doJSON(t, srv, http.MethodGet, "/caregivers/"+grantID+"/check?capability=view_profile", ownerSession("owner-1"), nil, &decision)
	if status != http.StatusOK || decision["allowed"] != false || decision["reason"] != "grant_inactive" {
		t.Fatalf("check after revoke: expected deny grant_inactive, got %d %v", status, decision)
	}

	// 8. Revocar de nuevo es un no-op exitoso.
	status = doJSON(t, srv, http.MethodDelete, "/caregivers/"+grantID, ownerSession("owner-1"), nil, nil)
	if status != http.StatusOK {
		t.Fatalf("second revoke: expected 200, got %d", status)
	}

	// 9. El log sobrevive a la revocación.
	page = map[string]any{}
	status = doJSON(t, srv, http.MethodGet, "/caregivers/"+grantID+"/activity", ownerSession("owner-1"), nil, &page)
	if status != http.StatusOK {
		t.Fatalf("activity after revoke: expected 200, got %d", status)
	}
	items, _ = page["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("log must survive revocation, got %d entries", len(items))
	}
}

func TestHTTP_ViewOnlyGrantCannotMutate(t *testing.T) {
	srv := newTestServer(t)

	var grant map[string]any
	status := doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("view_only"), &grant)
	if status != http.StatusCreated {
		t.Fatalf("create grant: expected 201, got %d", status)
	}
	grantID := grant["id"].(string)

	doJSON(t, srv, http.MethodPost, "/caregivers/"+grantID+"/activate", caregiverSession(grantID), nil, nil)

	// La capability existe pero el grant no la tiene: deny con razón específica.
	action := map[string]any{"action": "edited_product"}
	var deny map[string]any
	status = doJSON(t, srv, http.MethodPost, "/caregivers/"+grantID+"/actions", caregiverSession(grantID), action, &deny)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
	if deny["reason"] != "capability_not_granted" {
		t.Fatalf("expected capability_not_granted, got %v", deny["reason"])
	}

	// Nada quedó en el log: deny no registra.
	var page map[string]any
	doJSON(t, srv, http.MethodGet, "/caregivers/"+grantID+"/activity", ownerSession("owner-1"), nil, &page)
	if items, _ := page["items"].([]any); len(items) != 0 {
		t.Fatalf("denied action must not be logged, got %d entries", len(items))
	}
}

func TestHTTP_DuplicateLivePairConflicts(t *testing.T) {
	srv := newTestServer(t)

	var first map[string]any
	status := doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("full"), &first)
	if status != http.StatusCreated {
		t.Fatalf("create grant #1: expected 201, got %d", status)
	}

	var conflict map[string]any
	status = doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("view_only"), &conflict)
	if status != http.StatusConflict {
		t.Fatalf("duplicate pair: expected 409, got %d", status)
	}
	if conflict["existing_grant_id"] != first["id"] {
		t.Fatalf("409 must carry the existing grant id, got %v", conflict)
	}

	// Revocado el primero, el par se puede re-invitar.
	doJSON(t, srv, http.MethodDelete, "/caregivers/"+first["id"].(string), ownerSession("owner-1"), nil, nil)
	status = doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("view_only"), nil)
	if status != http.StatusCreated {
		t.Fatalf("re-invite after revoke: expected 201, got %d", status)
	}
}

func TestHTTP_UpdatePermissionsForcesCustom(t *testing.T) {
	srv := newTestServer(t)

	var grant map[string]any
	doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("financial_only"), &grant)
	grantID := grant["id"].(string)

	update := map[string]any{
		"permissions": map[string]any{
			"view_financials": true,
			"view_products":   true,
		},
	}
	var updated map[string]any
	status := doJSON(t, srv, http.MethodPut, "/caregivers/"+grantID+"/permissions", ownerSession("owner-1"), update, &updated)
	if status != http.StatusOK {
		t.Fatalf("update permissions: expected 200, got %d", status)
	}
	if updated["permission_level"] != "custom" {
		t.Fatalf("expected level custom, got %v", updated["permission_level"])
	}
	perms := updated["permissions"].(map[string]any)
	if perms["withdraw_money"] != false || perms["view_products"] != true {
		t.Fatalf("set must be replaced verbatim, got %v", perms)
	}

	// Campos desconocidos en el Set se rechazan en el borde.
	bad := map[string]any{"permissions": map[string]any{"sudo": true}}
	status = doJSON(t, srv, http.MethodPut, "/caregivers/"+grantID+"/permissions", ownerSession("owner-1"), bad, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("unknown flag: expected 400, got %d", status)
	}
}

func TestHTTP_AuthBoundaries(t *testing.T) {
	srv := newTestServer(t)

	// Sin sesión → 401.
	status := doJSON(t, srv, http.MethodPost, "/caregivers", nil, createGrantReq("full"), nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("no session: expected 401, got %d", status)
	}

	// Otro usuario no puede crear grants sobre owner-1.
	status = doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("intruder"), createGrantReq("full"), nil)
	if status != http.StatusForbidden {
		t.Fatalf("wrong owner: expected 403, got %d", status)
	}

	// permission_level desconocido falla cerrado en el borde.
	status = doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("superadmin"), nil)
	if status != http.StatusBadRequest {
		t.Fatalf("unknown level: expected 400, got %d", status)
	}

	var grant map[string]any
	doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("full"), &grant)
	grantID := grant["id"].(string)

	// Un cuidador con OTRO grant no puede activar este.
	status = doJSON(t, srv, http.MethodPost, "/caregivers/"+grantID+"/activate", caregiverSession("other-grant"), nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("foreign caregiver activate: expected 403, got %d", status)
	}

	// Ni revocar: revocar es del dueño.
	status = doJSON(t, srv, http.MethodDelete, "/caregivers/"+grantID, ownerSession("intruder"), nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("intruder revoke: expected 403, got %d", status)
	}

	// Ni leer la actividad de un grant ajeno.
	status = doJSON(t, srv, http.MethodGet, "/caregivers/"+grantID+"/activity", ownerSession("intruder"), nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("intruder activity: expected 403, got %d", status)
	}
}

func TestHTTP_ListByOwnerDefaultsToLiveGrants(t *testing.T) {
	srv := newTestServer(t)

	var g1, g2 map[string]any
	doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("full"), &g1)

	second := createGrantReq("view_only")
	second["caregiver_email"] = "luis@example.com"
	doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), second, &g2)

	doJSON(t, srv, http.MethodDelete, "/caregivers/"+g1["id"].(string), ownerSession("owner-1"), nil, nil)

	// Default: solo lo vivo (pending + active).
	var live []map[string]any
	status := doJSON(t, srv, http.MethodGet, "/accounts/owner-1/caregivers", ownerSession("owner-1"), nil, &live)
	if status != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", status)
	}
	if len(live) != 1 || live[0]["id"] != g2["id"] {
		t.Fatalf("expected only the live grant, got %v", live)
	}

	// Con filtro explícito aparecen los revocados.
	var revoked []map[string]any
	doJSON(t, srv, http.MethodGet, "/accounts/owner-1/caregivers?status=revoked", ownerSession("owner-1"), nil, &revoked)
	if len(revoked) != 1 || revoked[0]["id"] != g1["id"] {
		t.Fatalf("expected the revoked grant, got %v", revoked)
	}

	// Otro dueño no lista cuentas ajenas.
	status = doJSON(t, srv, http.MethodGet, "/accounts/owner-1/caregivers", ownerSession("intruder"), nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("intruder list: expected 403, got %d", status)
	}
}

func TestHTTP_ActivityPaginationByCursor(t *testing.T) {
	srv := newTestServer(t)

	var grant map[string]any
	doJSON(t, srv, http.MethodPost, "/caregivers", ownerSession("owner-1"), createGrantReq("full"), &grant)
	grantID := grant["id"].(string)
	doJSON(t, srv, http.MethodPost, "/caregivers/"+grantID+"/activate", caregiverSession(grantID), nil, nil)

	for i := 0; i < 3; i++ {
		status := doJSON(t, srv, http.MethodPost, "/caregivers/"+grantID+"/actions", caregiverSession(grantID),
			map[string]any{"action": "added_product"}, nil)
		if status != http.StatusCreated {
			t.Fatalf("action #%d: expected 201, got %d", i+1, status)
		}
	}

	var p1 map[string]any
	doJSON(t, srv, http.MethodGet, "/caregivers/"+grantID+"/activity?limit=2", ownerSession("owner-1"), nil, &p1)
	items := p1["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("page 1: expected 2 items, got %d", len(items))
	}
	// Más nuevo primero
	if items[0].(map[string]any)["seq"] != float64(3) {
		t.Fatalf("expected newest first, got %v", items[0])
	}
	cursor, _ := p1["next_cursor"].(string)
	if cursor == "" {
		t.Fatalf("page 1 must carry a cursor")
	}

	var p2 map[string]any
	doJSON(t, srv, http.MethodGet, "/caregivers/"+grantID+"/activity?limit=2&cursor="+cursor, ownerSession("owner-1"), nil, &p2)
	items = p2["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["seq"] != float64(1) {
		t.Fatalf("page 2: expected the remaining entry, got %v", items)
	}

	// El contador derivado del grant refleja el log.
	var g map[string]any
	doJSON(t, srv, http.MethodGet, "/caregivers/"+grantID, ownerSession("owner-1"), nil, &g)
	if g["total_actions"] != float64(3) {
		t.Fatalf("expected total_actions=3, got %v", g["total_actions"])
	}
}

func TestHTTP_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.StatusCode)
	}
}
