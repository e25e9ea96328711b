package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Akhila-Thada/AspireBeauty-Backend/internal/catalog"
	"github.com/Akhila-Thada/AspireBeauty-Backend/internal/database"
	"github.com/Akhila-Thada/AspireBeauty-Backend/internal/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type variantEnvelope struct {
	Message string `json:"message"`
	Variant struct {
		VariantID int64   `json:"variantId"`
		ProductID int64   `json:"productId"`
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
		Stock     int64   `json:"stock"`
		Pending   int64   `json:"pending"`
		Confirmed int64   `json:"confirmed"`
	} `json:"variant"`
}

func TestVariantDirectoryFlow(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	databasePath := filepath.Join(testContext.TempDir(), "integration.db")
	db, err := database.OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open database: %v", err)
	}

	dispatcher := server.NewRealtimeDispatcher()
	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Database:    db,
		Broadcaster: dispatcher,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build catalog service: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		CatalogService: catalogService,
		Realtime:       dispatcher,
		Logger:         zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	testServer := httptest.NewServer(handler)
	defer testServer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, unsubscribe := dispatcher.Subscribe(ctx)
	defer unsubscribe()

	if err := db.Create(&catalog.Product{ID: 7, Name: "Lipstick"}).Error; err != nil {
		testContext.Fatalf("failed to seed product: %v", err)
	}

	// Create.
	form := url.Values{}
	form.Set("productId", "7")
	form.Set("name", "Red/Large")
	createResp, err := http.Post(testServer.URL+"/variants",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		testContext.Fatalf("create request failed: %v", err)
	}
	var created variantEnvelope
	if err := json.NewDecoder(createResp.Body).Decode(&created); err != nil {
		testContext.Fatalf("failed to decode create response: %v", err)
	}
	_ = createResp.Body.Close()
	if createResp.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected create status %d", createResp.StatusCode)
	}
	if created.Variant.VariantID == 0 || created.Variant.Price != 0 || created.Variant.Stock != 0 ||
		created.Variant.Pending != 0 || created.Variant.Confirmed != 0 {
		testContext.Fatalf("unexpected created variant: %+v", created.Variant)
	}
	expectEvent(testContext, events, catalog.EventVariantCreated)

	// Update a single field.
	patchForm := url.Values{}
	patchForm.Set("stock", "42")
	patchRequest, err := http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/variants/%d", testServer.URL, created.Variant.VariantID),
		strings.NewReader(patchForm.Encode()))
	if err != nil {
		testContext.Fatalf("failed to build patch request: %v", err)
	}
	patchRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	patchResp, err := http.DefaultClient.Do(patchRequest)
	if err != nil {
		testContext.Fatalf("patch request failed: %v", err)
	}
	var updated variantEnvelope
	if err := json.NewDecoder(patchResp.Body).Decode(&updated); err != nil {
		testContext.Fatalf("failed to decode patch response: %v", err)
	}
	_ = patchResp.Body.Close()
	if patchResp.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected patch status %d", patchResp.StatusCode)
	}
	if updated.Variant.Name != "Red/Large" || updated.Variant.Stock != 42 {
		testContext.Fatalf("unexpected updated variant: %+v", updated.Variant)
	}
	expectEvent(testContext, events, catalog.EventVariantUpdated)

	// List shows the joined view.
	listResp, err := http.Get(testServer.URL + "/variants")
	if err != nil {
		testContext.Fatalf("list request failed: %v", err)
	}
	var views []struct {
		VariantID   int64  `json:"variantId"`
		ProductName string `json:"productName"`
		Stock       int64  `json:"stock"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&views); err != nil {
		testContext.Fatalf("failed to decode list response: %v", err)
	}
	_ = listResp.Body.Close()
	if len(views) != 1 || views[0].ProductName != "Lipstick" || views[0].Stock != 42 {
		testContext.Fatalf("unexpected listing: %+v", views)
	}

	// Delete.
	deleteRequest, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/variants/%d", testServer.URL, created.Variant.VariantID), http.NoBody)
	if err != nil {
		testContext.Fatalf("failed to build delete request: %v", err)
	}
	deleteResp, err := http.DefaultClient.Do(deleteRequest)
	if err != nil {
		testContext.Fatalf("delete request failed: %v", err)
	}
	_ = deleteResp.Body.Close()
	if deleteResp.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected delete status %d", deleteResp.StatusCode)
	}
	deletedEvent := expectEvent(testContext, events, catalog.EventVariantDeleted)
	identity, ok := deletedEvent.Payload.(catalog.DeletedVariant)
	if !ok {
		testContext.Fatalf("unexpected delete payload type %T", deletedEvent.Payload)
	}
	if identity.VariantID != created.Variant.VariantID || identity.ProductID != 7 {
		testContext.Fatalf("unexpected delete identity: %+v", identity)
	}

	// The listing no longer contains the variant.
	finalResp, err := http.Get(testServer.URL + "/variants")
	if err != nil {
		testContext.Fatalf("final list request failed: %v", err)
	}
	var finalViews []json.RawMessage
	if err := json.NewDecoder(finalResp.Body).Decode(&finalViews); err != nil {
		testContext.Fatalf("failed to decode final list response: %v", err)
	}
	_ = finalResp.Body.Close()
	if len(finalViews) != 0 {
		testContext.Fatalf("expected empty listing after delete, got %d entries", len(finalViews))
	}
}

func expectEvent(testContext *testing.T, events <-chan server.RealtimeEvent, name string) server.RealtimeEvent {
	testContext.Helper()
	select {
	case event := <-events:
		if event.Name != name {
			testContext.Fatalf("expected event %s, got %s", name, event.Name)
		}
		return event
	case <-time.After(2 * time.Second):
		testContext.Fatalf("timed out waiting for %s event", name)
		return server.RealtimeEvent{}
	}
}
