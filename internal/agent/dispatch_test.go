package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bbdragon2023/aiSDR/internal/mail"
	"github.com/bbdragon2023/aiSDR/internal/search"
	"github.com/bbdragon2023/aiSDR/internal/skills"
)

type stubSearch struct {
	res *search.Results
	err error

	gotQuery string
	gotMax   int
}

func (s *stubSearch) Search(_ context.Context, query string, maxResults int) (*search.Results, error) {
	s.gotQuery = query
	s.gotMax = maxResults
	return s.res, s.err
}

type stubSender struct {
	ok      bool
	message string
	got     mail.Message
}

func (s *stubSender) Send(_ context.Context, msg mail.Message) (bool, string) {
	s.got = msg
	return s.ok, s.message
}

func testRegistry(t *testing.T, names ...string) *skills.Registry {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		skillDir := filepath.Join(dir, name)
		if err := os.MkdirAll(skillDir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		manifest := fmt.Sprintf("---\nname: %s\ndescription: test skill %s\n---\n\n# %s\n\nStep one.\n", name, name, name)
		if err := os.WriteFile(filepath.Join(skillDir, skills.ManifestName), []byte(manifest), 0o644); err != nil {
			t.Fatalf("write manifest: %v", err)
		}
	}
	return skills.NewRegistry(dir)
}

func TestExecuteUnknownTool(t *testing.T) {
	d := NewDispatcher(testRegistry(t), nil, nil, 5)

	got := d.Execute(context.Background(), "delete_database", nil)
	if got != "Unknown tool: delete_database" {
		t.Fatalf("unexpected outcome: %q", got)
	}
}

func TestWebSearchNotConfigured(t *testing.T) {
	d := NewDispatcher(testRegistry(t), nil, nil, 5)

	got := d.Execute(context.Background(), "web_search", map[string]any{"query": "acme corp"})
	if !strings.HasPrefix(got, "Error") {
		t.Fatalf("expected Error prefix, got %q", got)
	}
	if !strings.Contains(got, "not configured") {
		t.Fatalf("expected configuration hint, got %q", got)
	}
}

func TestWebSearchDigest(t *testing.T) {
	provider := &stubSearch{res: &search.Results{
		Answer: "Acme makes anvils.",
		Results: []search.Result{
			{Title: "Acme", URL: "https://acme.example", Content: strings.Repeat("a", 600)},
			{Title: "Acme Careers", URL: "https://acme.example/jobs", Content: "hiring"},
		},
	}}
	d := NewDispatcher(testRegistry(t), provider, nil, 5)

	got := d.Execute(context.Background(), "web_search", map[string]any{
		"query":       "acme corp",
		"max_results": float64(3),
	})

	if provider.gotQuery != "acme corp" {
		t.Fatalf("query = %q", provider.gotQuery)
	}
	if provider.gotMax != 3 {
		t.Fatalf("max results = %d, want 3", provider.gotMax)
	}
	if !strings.Contains(got, "Summary: Acme makes anvils.") {
		t.Fatalf("missing summary: %q", got)
	}
	if !strings.Contains(got, "1. Acme\n   URL: https://acme.example") {
		t.Fatalf("missing first result: %q", got)
	}
	if strings.Contains(got, strings.Repeat("a", 501)) {
		t.Fatalf("content not truncated")
	}
	if !strings.Contains(got, strings.Repeat("a", 500)) {
		t.Fatalf("truncated content missing")
	}
}

func TestWebSearchProviderError(t *testing.T) {
	provider := &stubSearch{err: fmt.Errorf("upstream 500")}
	d := NewDispatcher(testRegistry(t), provider, nil, 5)

	got := d.Execute(context.Background(), "web_search", map[string]any{"query": "x"})
	if !strings.HasPrefix(got, "Error: search failed") {
		t.Fatalf("unexpected outcome: %q", got)
	}
}

func TestWebSearchNoResults(t *testing.T) {
	provider := &stubSearch{res: &search.Results{}}
	d := NewDispatcher(testRegistry(t), provider, nil, 5)

	got := d.Execute(context.Background(), "web_search", map[string]any{"query": "x"})
	if !strings.Contains(got, "(no results)") {
		t.Fatalf("expected empty marker, got %q", got)
	}
}

func TestSendEmailNotConfigured(t *testing.T) {
	d := NewDispatcher(testRegistry(t), nil, nil, 5)

	got := d.Execute(context.Background(), "send_email", map[string]any{"to_email": "a@b.com"})
	if !strings.HasPrefix(got, "Error") || !strings.Contains(got, "SMTP") {
		t.Fatalf("unexpected outcome: %q", got)
	}
}

func TestSendEmailReturnsSenderMessage(t *testing.T) {
	sender := &stubSender{ok: true, message: "Email sent successfully to a@b.com"}
	d := NewDispatcher(testRegistry(t), nil, sender, 5)

	got := d.Execute(context.Background(), "send_email", map[string]any{
		"to_email": "a@b.com",
		"to_name":  "Ada",
		"subject":  "Hello",
		"body":     "Quick question about anvils.",
	})
	if got != "Email sent successfully to a@b.com" {
		t.Fatalf("outcome = %q", got)
	}
	if sender.got.ToEmail != "a@b.com" || sender.got.ToName != "Ada" || sender.got.Subject != "Hello" {
		t.Fatalf("message not forwarded: %+v", sender.got)
	}
}

func TestReadSkillHit(t *testing.T) {
	d := NewDispatcher(testRegistry(t, "onboarding"), nil, nil, 5)

	got := d.Execute(context.Background(), "read_skill", map[string]any{"skill_name": "onboarding"})
	if !strings.HasPrefix(got, "# onboarding\n\n") {
		t.Fatalf("unexpected outcome: %q", got)
	}
	if !strings.Contains(got, "Step one.") {
		t.Fatalf("instructions missing: %q", got)
	}
}

func TestReadSkillMissListsAvailable(t *testing.T) {
	d := NewDispatcher(testRegistry(t, "followup", "onboarding"), nil, nil, 5)

	got := d.Execute(context.Background(), "read_skill", map[string]any{"skill_name": "nonexistent"})
	if !strings.Contains(got, `skill "nonexistent" not found`) {
		t.Fatalf("unexpected outcome: %q", got)
	}
	if !strings.Contains(got, "followup, onboarding") {
		t.Fatalf("available skills not listed: %q", got)
	}
}
