//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type cfg struct {
	APIBase     string // http://localhost:8080
	MailhogBase string // http://localhost:8025
	WaitEmail   time.Duration
}

func loadCfg() cfg {
	return cfg{
		APIBase:     getenv("E2E_API_BASE", "http://localhost:8080"),
		MailhogBase: getenv("E2E_MAILHOG_BASE", "http://localhost:8025"),
		WaitEmail:   mustParseDur(getenv("E2E_WAIT_EMAIL", "45s")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustParseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

func doJSON(t *testing.T, method, url string, in any, want int) []byte {
	t.Helper()
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	require.Equalf(t, want, resp.StatusCode, "%s %s: %s", method, url, string(b))
	return b
}

type mhResp struct {
	Total int
	Items []struct {
		Content struct {
			Headers map[string][]string `json:"Headers"`
			Body    string              `json:"Body"`
		} `json:"Content"`
	}
}

func mailhogFind(t *testing.T, base, needle string, timeout time.Duration) (string, bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(strings.TrimRight(base, "/") + "/api/v2/messages")
		if err == nil {
			b, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			var out mhResp
			if json.Unmarshal(b, &out) == nil {
				for _, it := range out.Items {
					subj := ""
					if v, ok := it.Content.Headers["Subject"]; ok && len(v) > 0 {
						subj = v[0]
					}
					if strings.Contains(subj, needle) || strings.Contains(it.Content.Body, needle) {
						return it.Content.Body, true
					}
				}
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return "", false
}

// Whole pipeline through public surfaces only: set preferences and create a
// deadline over HTTP, then watch the reminder arrive in the mail catcher.
func TestReminderPipeline(t *testing.T) {
	c := loadCfg()
	userID := time.Now().UnixNano() % 1_000_000_000

	prefURL := fmt.Sprintf("%s/v1/users/%d/preferences", c.APIBase, userID)
	doJSON(t, http.MethodPut, prefURL, map[string]any{
		"email": fmt.Sprintf("e2e-%d@example.com", userID),
		"quiet_hours": map[string]any{
			"enabled": false,
		},
	}, http.StatusOK)

	title := fmt.Sprintf("e2e deadline %d", userID)
	now := time.Now().UTC()
	created := doJSON(t, http.MethodPost, c.APIBase+"/v1/deadlines", map[string]any{
		"user_id":   userID,
		"title":     title,
		"kind":      "application",
		"due_at":    now.Add(48 * time.Hour).Format(time.RFC3339),
		"remind_at": now.Format(time.RFC3339),
		"timezone":  "Europe/Berlin",
	}, http.StatusCreated)

	var d struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(created, &d))
	require.NotZero(t, d.ID)

	body, ok := mailhogFind(t, c.MailhogBase, title, c.WaitEmail)
	require.Truef(t, ok, "reminder for %q never arrived", title)
	require.Contains(t, body, title)
}
