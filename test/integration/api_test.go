//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type deadlineResp struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Title    string `json:"title"`
	DueAt    string `json:"due_at"`
	DueLocal string `json:"due_at_local"`
	Active   bool   `json:"active"`
}

func TestAPI_DeadlineLifecycle(t *testing.T) {
	cfg := LoadCfg()
	WaitTCP(t, "api", trimScheme(cfg.APIBaseURL), 30*time.Second)

	userID := RandID()
	dueAt := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)

	body, _ := json.Marshal(map[string]any{
		"user_id":  userID,
		"title":    "scholarship essay",
		"kind":     "scholarship",
		"due_at":   dueAt.Format(time.RFC3339),
		"timezone": "Asia/Tokyo",
	})
	b := HTTPDoJSON(t, http.MethodPost, cfg.APIBaseURL+cfg.DeadlinesPath, body, http.StatusCreated)

	var created deadlineResp
	if err := json.Unmarshal(b, &created); err != nil {
		t.Fatalf("[api] create decode: %v", err)
	}
	if created.ID == 0 || created.UserID != userID || !created.Active {
		t.Fatalf("[api] bad create response: %+v", created)
	}
	if created.DueLocal == "" {
		t.Fatalf("[api] missing local rendering: %+v", created)
	}

	one := fmt.Sprintf("%s%s/%d", cfg.APIBaseURL, cfg.DeadlinesPath, created.ID)
	b = HTTPDoJSON(t, http.MethodGet, one+"/countdown", nil, http.StatusOK)

	var cd struct {
		Countdown struct {
			Days    int    `json:"days"`
			Expired bool   `json:"is_expired"`
			Display string `json:"display_text"`
		} `json:"countdown"`
	}
	if err := json.Unmarshal(b, &cd); err != nil {
		t.Fatalf("[api] countdown decode: %v", err)
	}
	if cd.Countdown.Expired || cd.Countdown.Days < 3 || cd.Countdown.Display == "" {
		t.Fatalf("[api] bad countdown: %+v", cd.Countdown)
	}

	HTTPDoJSON(t, http.MethodDelete, one, nil, http.StatusNoContent)
	HTTPDoJSON(t, http.MethodGet, one, nil, http.StatusNotFound)
}

func TestAPI_PreferencesRoundtrip(t *testing.T) {
	cfg := LoadCfg()
	WaitTCP(t, "api", trimScheme(cfg.APIBaseURL), 30*time.Second)

	userID := RandID()
	url := cfg.APIBaseURL + fmt.Sprintf(cfg.PrefsPathTmpl, userID)

	body, _ := json.Marshal(map[string]any{
		"email": fmt.Sprintf("it-%d@example.com", userID),
		"quiet_hours": map[string]any{
			"enabled":  true,
			"start":    "22:00",
			"end":      "07:00",
			"timezone": "Europe/Berlin",
		},
	})
	HTTPDoJSON(t, http.MethodPut, url, body, http.StatusOK)

	b := HTTPDoJSON(t, http.MethodGet, url, nil, http.StatusOK)
	var got struct {
		Email string `json:"email"`
		Quiet struct {
			Enabled bool   `json:"enabled"`
			Start   string `json:"start"`
		} `json:"quiet_hours"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("[api] prefs decode: %v", err)
	}
	if !got.Quiet.Enabled || got.Quiet.Start != "22:00" {
		t.Fatalf("[api] prefs mismatch: %+v", got)
	}

	// malformed quiet window is rejected with a field error
	bad, _ := json.Marshal(map[string]any{
		"email": "x@example.com",
		"quiet_hours": map[string]any{
			"enabled": true,
			"start":   "25:99",
			"end":     "07:00",
		},
	})
	HTTPDoJSON(t, http.MethodPut, url, bad, http.StatusBadRequest)
}

func trimScheme(base string) string {
	for _, p := range []string{"http://", "https://"} {
		if len(base) > len(p) && base[:len(p)] == p {
			return base[len(p):]
		}
	}
	return base
}
