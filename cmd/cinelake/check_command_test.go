package main

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestCheckReportsMissingSources(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing sources to fail the check")
	}
	requireContains(t, out, "Raw directory")
	requireContains(t, out, "[FAIL]")
	requireContains(t, err.Error(), "3 check(s) failed")

	seedInputs(t, env.cfg)
	out, _, err = runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Source rt_movies")
}

func TestCheckSendsTestNotification(t *testing.T) {
	env := setupCLITestEnv(t)
	seedInputs(t, env.cfg)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	env.cfg.Notifications.NtfyTopic = srv.URL
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"check", "--notify"}, env.configPath)
	if err != nil {
		t.Fatalf("check --notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if hits.Load() != 1 {
		t.Fatalf("notifications = %d, want 1", hits.Load())
	}
}
