package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/handlers"
	"feedback-backend/internal/models"
	"feedback-backend/internal/ratelimit"
	"feedback-backend/internal/repository/memstore"
	"feedback-backend/internal/workflow"
)

func TestSeedCommandPopulatesAPI(t *testing.T) {
	store := memstore.New()
	wf := workflow.NewService(workflow.Stores{
		Users:    store.Users(),
		Teams:    store.Teams(),
		Feedback: store.Feedback(),
		Requests: store.Requests(),
		Comments: store.Comments(),
		Acks:     store.Acks(),
		Tags:     store.Tags(),
		Tx:       store,
	}, nil)
	authSvc := auth.NewService(store.Users(), store.Sessions(), auth.NewTokenIssuer("seed-test", time.Hour), ratelimit.Noop{})
	srv := httptest.NewServer(handlers.NewRouter(handlers.Deps{Auth: authSvc, Workflow: wf}))
	defer func() {
		wf.Wait()
		srv.Close()
	}()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--api", srv.URL, "--managers", "2", "--employees", "2", "--seed", "42"})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out.String(), "seeded 2 managers, 4 employees") {
		t.Fatalf("output = %q", out.String())
	}

	ctx := context.Background()
	managers, _ := store.Users().List(ctx, models.RoleManager)
	employees, _ := store.Users().List(ctx, models.RoleEmployee)
	if len(managers) != 2 || len(employees) != 4 {
		t.Fatalf("users: %d managers, %d employees", len(managers), len(employees))
	}
	teams, _ := store.Teams().ListAll(ctx)
	if len(teams) != 4 {
		t.Fatalf("team memberships = %d, want 4", len(teams))
	}
	feedback, _ := store.Feedback().List(ctx, models.FeedbackFilter{})
	if len(feedback) < 4 {
		t.Fatalf("feedback entries = %d, want at least one per employee", len(feedback))
	}
}

func TestSeedCommandRejectsBadCounts(t *testing.T) {
	rootCmd.SetArgs([]string{"--api", "http://127.0.0.1:0", "--managers", "0"})
	if err := rootCmd.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("expected an error for zero managers")
	}
}
