package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDoc_ListsRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var doc struct {
		BasePath    string                    `json:"basePath"`
		Paths       map[string]map[string]any `json:"paths"`
		Definitions map[string]any            `json:"definitions"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid json: %v", err)
	}
	if doc.BasePath != "/api" {
		t.Fatalf("basePath=%q", doc.BasePath)
	}

	want := map[string]string{
		"/likes":                    "post",
		"/cooldown":                 "get",
		"/send-likes":               "post",
		"/player":                   "get",
		"/global-history":           "get",
		"/global-stats":             "get",
		"/players/{id}/history":     "get",
		"/access/redeem":            "post",
		"/access/me":                "get",
		"/admin/login":              "post",
		"/admin/codes":              "post",
		"/admin/codes/{id}":         "delete",
		"/admin/clients":            "get",
		"/admin/clients/{id}/stats": "get",
		"/admin/stats":              "get",
	}
	for path, method := range want {
		if _, ok := doc.Paths[path][method]; !ok {
			t.Fatalf("missing %s %s", method, path)
		}
	}
	for _, def := range []string{"services.LikeResult", "handlers.CooldownErrorResponse", "domain.HistoryEntry"} {
		if _, ok := doc.Definitions[def]; !ok {
			t.Fatalf("missing definition %s", def)
		}
	}
}

func TestSwaggerDoc_ReadDocMatchesInfo(t *testing.T) {
	if SwaggerInfo.ReadDoc() == "" {
		t.Fatalf("empty doc")
	}
}
