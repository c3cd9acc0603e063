package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/panelkit/flyout/adapters/memory"
	"github.com/panelkit/flyout/app"
	"github.com/panelkit/flyout/core/convention"
	"github.com/panelkit/flyout/core/registry"
	"github.com/panelkit/flyout/core/schema"
	"github.com/panelkit/flyout/web"
)

type fixture struct {
	handler http.Handler
	svc     *app.Service
	records *memory.RecordStore
	dir     *memory.Directory
}

func setup(t *testing.T) fixture {
	t.Helper()

	records := memory.NewRecordStore()
	dir := memory.NewDirectory()
	svc := app.New(app.Deps{Records: records, Dir: dir, Logger: zerolog.Nop()})

	p := schema.Panel{
		Name:  "edit-product",
		Title: "Edit Product",
		Fields: schema.FieldList{
			{Key: "name", Type: schema.TypeText, Label: "Name"},
			{Key: "related", Type: schema.TypePost, Target: "product", Multiple: true},
		},
	}
	if err := svc.Register(p, registry.Callbacks{}); err != nil {
		t.Fatal(err)
	}

	return fixture{
		handler: web.NewHandler(svc, zerolog.Nop()).Routes(),
		svc:     svc,
		records: records,
		dir:     dir,
	}
}

type response struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Message string         `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return resp
}

func TestHandleOpen(t *testing.T) {
	f := setup(t)

	err := f.records.Save(context.Background(), "edit-product", "42", map[string]any{"name": "Blue Shirt"})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/flyout/edit-product?id=42", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decode(t, rec)
	if !resp.Success {
		t.Fatalf("success = false: %s", resp.Message)
	}
	if resp.Data["title"] != "Edit Product" {
		t.Errorf("title = %v", resp.Data["title"])
	}
	html, _ := resp.Data["html"].(string)
	if !strings.Contains(html, `value="Blue Shirt"`) {
		t.Error("rendered value missing from response")
	}
}

func TestHandleOpen_UnknownPanel(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/flyout/missing", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	if resp := decode(t, rec); resp.Success {
		t.Error("expected failure envelope")
	}
}

func TestHandleOpen_MissingRecord(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/flyout/edit-product?id=99", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

// A render failure is a server fault, not a missing resource.
func TestHandleOpen_RenderFailureIsInternal(t *testing.T) {
	f := setup(t)

	f.svc.RegisterType("exploding",
		func(context.Context, convention.Field, any) (string, error) {
			return "", errors.New("render blew up")
		}, nil)

	p := schema.Panel{
		Name:   "broken",
		Title:  "Broken",
		Fields: schema.FieldList{{Key: "boom", Type: "exploding"}},
	}
	if err := f.svc.Register(p, registry.Callbacks{}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/flyout/broken", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if resp := decode(t, rec); resp.Success {
		t.Error("expected failure envelope")
	}
}

func TestHandleSubmit(t *testing.T) {
	f := setup(t)

	form := url.Values{
		"_id":  {"42"},
		"name": {"  Bob  "},
	}
	req := httptest.NewRequest(http.MethodPost, "/flyout/edit-product/submit",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if !resp.Success {
		t.Fatalf("success = false: %s", resp.Message)
	}
	if resp.Data["name"] != "Bob" {
		t.Errorf("name = %v", resp.Data["name"])
	}

	saved, err := f.records.Get(context.Background(), "edit-product", "42")
	if err != nil {
		t.Fatalf("record not saved: %v", err)
	}
	if _, ok := saved["_id"]; ok {
		t.Error("_id must be stripped before the pipeline")
	}
}

func TestHandleSubmit_UnknownPanel(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/flyout/missing/submit",
		strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if err := f.records.Save(ctx, "edit-product", "42", map[string]any{"name": "x"}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/flyout/edit-product/delete",
		strings.NewReader("_id=42"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if _, err := f.records.Get(ctx, "edit-product", "42"); err == nil {
		t.Error("record still present after delete")
	}
}

func TestHandleDelete_RequiresID(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/flyout/edit-product/delete", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	f := setup(t)
	f.dir.Add("post", "product", "3", "Blue Shirt")
	f.dir.Add("post", "product", "7", "Red Hat")

	req := httptest.NewRequest(http.MethodGet, "/flyout/edit-product/search?field=related&term=shirt", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp.Data["3"] != "Blue Shirt" || len(resp.Data) != 1 {
		t.Errorf("data = %v", resp.Data)
	}
}

func TestHandleSearch_IDsHydration(t *testing.T) {
	f := setup(t)
	f.dir.Add("post", "product", "3", "Blue Shirt")
	f.dir.Add("post", "product", "7", "Red Hat")

	req := httptest.NewRequest(http.MethodGet,
		"/flyout/edit-product/search?field=related&ids=3,%207,", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	resp := decode(t, rec)
	if !resp.Success {
		t.Fatalf("search failed: %s", resp.Message)
	}
	if len(resp.Data) != 2 {
		t.Errorf("data = %v", resp.Data)
	}
}

func TestHandleSearch_NonSearchableField(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/flyout/edit-product/search?field=name&term=x", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAssets_ServesClientScript(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/assets/flyout.js", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Flyout") {
		t.Error("client script body unexpected")
	}
}
