package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/talentbridge/sales-crm-platform/internal/config"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

func TestSetupMetricsExposesLeadCounters(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveLeadMutation("create", "ok")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "crm_leads_mutations_total") {
		t.Fatalf("expected lead mutation counter to be exported")
	}
}

func TestBuildRepositoriesMemoryMode(t *testing.T) {
	cfg := &appconfig.Config{}
	repos := buildRepositories(context.Background(), cfg, logging.New("error"))

	if repos.leads == nil || repos.users == nil || repos.templates == nil ||
		repos.rateCards == nil || repos.proposals == nil || repos.schedule == nil ||
		repos.audit == nil {
		t.Fatalf("expected all in-memory repositories to be constructed")
	}
}
