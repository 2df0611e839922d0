package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/atlasbi/internal/atlas"
	"github.com/smallbiznis/atlasbi/internal/config"
	"github.com/smallbiznis/atlasbi/internal/observability/metrics"
	warehousedomain "github.com/smallbiznis/atlasbi/internal/warehouse/domain"
	warehouserepo "github.com/smallbiznis/atlasbi/internal/warehouse/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeAtlas struct {
	mu          sync.Mutex
	listBody    string
	listStatus  int
	details     map[string]string
	detailCalls map[string]int
}

func newFakeAtlas() *fakeAtlas {
	return &fakeAtlas{
		listStatus:  http.StatusOK,
		details:     map[string]string{},
		detailCalls: map[string]int{},
	}
}

func (f *fakeAtlas) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/orgs/org-1/invoices" {
			if f.listStatus != http.StatusOK {
				w.WriteHeader(f.listStatus)
				_, _ = w.Write([]byte(`{"error":"listing failed"}`))
				return
			}
			_, _ = w.Write([]byte(f.listBody))
			return
		}

		var invoiceID string
		_, err := fmt.Sscanf(r.URL.Path, "/orgs/org-1/invoices/%s", &invoiceID)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.detailCalls[invoiceID]++
		body, ok := f.details[invoiceID]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"detail failed"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	})
}

func (f *fakeAtlas) calls(invoiceID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[invoiceID]
}

func setupService(t *testing.T, baseURL string) (*gorm.DB, *Service, *prometheus.Registry) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&warehousedomain.Invoice{},
		&warehousedomain.InvoiceLineItem{},
	))

	registry := prometheus.NewRegistry()
	cfg := config.Config{AtlasBaseURL: baseURL, HTTPTimeout: 5 * time.Second}
	svc := NewService(ServiceParam{
		Log:     zap.NewNop(),
		Client:  atlas.NewClient(cfg, zap.NewNop()),
		Repo:    warehouserepo.NewRepository(conn),
		Metrics: metrics.NewSyncMetrics(registry),
	}).(*Service)

	return conn, svc, registry
}

func strptr(s string) *string { return &s }

func seedInvoice(t *testing.T, conn *gorm.DB, id, status string) {
	t.Helper()
	require.NoError(t, conn.Create(&warehousedomain.Invoice{
		ID:         id,
		OrgID:      strptr("org-1"),
		StatusName: strptr(status),
	}).Error)
}

func org() config.Organization {
	return config.Organization{PublicKey: "pk", PrivateKey: "sk", OrgID: "org-1"}
}

func TestSyncOrgExcludesFinalizedInvoices(t *testing.T) {
	fake := newFakeAtlas()
	fake.listBody = `{"results":[
		{"id":"inv-final","statusName":"PAID"},
		{"id":"inv-pending","statusName":"PENDING"},
		{"id":"inv-new","statusName":"PAID"}
	],"totalCount":3}`
	fake.details["inv-pending"] = `{"id":"inv-pending","orgId":"org-1","statusName":"PENDING","amountBilledCents":500}`
	fake.details["inv-new"] = `{"id":"inv-new","orgId":"org-1","statusName":"PAID","amountBilledCents":1200}`

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	conn, svc, registry := setupService(t, srv.URL)
	seedInvoice(t, conn, "inv-final", "PAID")
	seedInvoice(t, conn, "inv-pending", "PENDING")

	res, err := svc.SyncOrg(context.Background(), org())
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsWritten)
	assert.Equal(t, 1, res.SkippedFinalized)

	// The finalized invoice was never re-fetched, the pending one was.
	assert.Zero(t, fake.calls("inv-final"))
	assert.Equal(t, 1, fake.calls("inv-pending"))

	// A second run sees inv-new finalized too: only PENDING stays in play,
	// nothing duplicates.
	res, err = svc.SyncOrg(context.Background(), org())
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowsWritten)
	assert.Equal(t, 2, res.SkippedFinalized)
	assert.Equal(t, 2, fake.calls("inv-pending"))
	assert.Equal(t, 1, fake.calls("inv-new"))

	var count int64
	require.NoError(t, conn.Model(&warehousedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	// The run counters add up across both runs.
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(`
# HELP atlasbi_invoices_skipped_total Invoices excluded by the finalized-id frontier.
# TYPE atlasbi_invoices_skipped_total counter
atlasbi_invoices_skipped_total 3
# HELP atlasbi_rows_written_total Rows written to the warehouse per pipeline.
# TYPE atlasbi_rows_written_total counter
atlasbi_rows_written_total{pipeline="invoices"} 3
`), "atlasbi_rows_written_total", "atlasbi_invoices_skipped_total"))

	var pending warehousedomain.Invoice
	require.NoError(t, conn.First(&pending, "id = ?", "inv-pending").Error)
	require.NotNil(t, pending.AmountBilledCents)
	assert.Equal(t, int64(500), *pending.AmountBilledCents)
	require.NotNil(t, pending.StatusName)
	assert.Equal(t, "PENDING", *pending.StatusName)
}

func TestSyncOrgSkipsInvoiceOnDetailFailure(t *testing.T) {
	fake := newFakeAtlas()
	fake.listBody = `{"results":[
		{"id":"inv-broken","statusName":"PAID"},
		{"id":"inv-good","statusName":"PAID"}
	],"totalCount":2}`
	// inv-broken has no detail registered, so the fake answers 500.
	fake.details["inv-good"] = `{"id":"inv-good","orgId":"org-1","statusName":"PAID"}`

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	conn, svc, registry := setupService(t, srv.URL)

	res, err := svc.SyncOrg(context.Background(), org())
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowsWritten)
	assert.Equal(t, 1, res.SkippedErrors)

	var count int64
	require.NoError(t, conn.Model(&warehousedomain.Invoice{}).
		Where("id = ?", "inv-broken").Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(`
# HELP atlasbi_sync_errors_total Provider call failures, by pipeline and scope.
# TYPE atlasbi_sync_errors_total counter
atlasbi_sync_errors_total{pipeline="invoices",scope="detail"} 1
`), "atlasbi_sync_errors_total"))
}

func TestSyncOrgListingFailureAbortsOrg(t *testing.T) {
	fake := newFakeAtlas()
	fake.listStatus = http.StatusUnauthorized

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	conn, svc, _ := setupService(t, srv.URL)

	_, err := svc.SyncOrg(context.Background(), org())
	require.Error(t, err)

	var statusErr *atlas.StatusError
	assert.True(t, errors.As(err, &statusErr))

	var count int64
	require.NoError(t, conn.Model(&warehousedomain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSyncOrgSerializesRefundsAndDropsExtras(t *testing.T) {
	fake := newFakeAtlas()
	fake.listBody = `{"results":[{"id":"inv-1","statusName":"PAID"}],"totalCount":1}`
	fake.details["inv-1"] = `{
		"id": "inv-1",
		"orgId": "org-1",
		"statusName": "PAID",
		"created": "2024-01-01T00:00:00Z",
		"refunds": [{"amountCents": 250, "reason": "credit"}],
		"lineItems": [{"sku": "CLUSTER"}],
		"payments": [],
		"linkedInvoices": [],
		"links": [],
		"brandNewField": "surprise"
	}`

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	conn, svc, _ := setupService(t, srv.URL)

	res, err := svc.SyncOrg(context.Background(), org())
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowsWritten)
	assert.Greater(t, res.Diagnostics, 0)

	var got warehousedomain.Invoice
	require.NoError(t, conn.First(&got, "id = ?", "inv-1").Error)
	assert.Contains(t, string(got.Refunds), `"amountCents":250`)
	require.NotNil(t, got.Created)
	assert.Equal(t, "2024-01-01 00:00:00", *got.Created)
}
