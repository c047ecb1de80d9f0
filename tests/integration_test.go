package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// Black-box suite exercising a running instance end-to-end:
//
//   Client → HTTP API → Auth → Pipeline → Store → Listing
//
// Start the service first (PORT=8787 is the default), then run with
// `go test ./tests/...`. The suite skips itself when no server is reachable
// so it stays out of the way of plain `go test ./...`.
//
// Optional environment overrides:
//
//   BASE_URL        default http://localhost:8787
//   WEBHOOK_SECRET  sent as a bearer token when set

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8787"
}

func webhookSecret() string {
	return os.Getenv("WEBHOOK_SECRET")
}

// unique generates a unique string so tests never collide with previous runs.
func unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// requireServer skips the suite when the service is not running.
func requireServer(t *testing.T) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL() + "/health")
	if err != nil {
		t.Skipf("service not running at %s: %v", baseURL(), err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("service not healthy at %s: %d", baseURL(), resp.StatusCode)
	}
}

// postEvent delivers a dispatch event with an optional idempotency key.
func postEvent(t *testing.T, idemKey string, payload map[string]any) (int, []byte) {
	t.Helper()

	b, _ := json.Marshal(payload)

	req, _ := http.NewRequest(http.MethodPost, baseURL()+"/v1/dispatch/events", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if s := webhookSecret(); s != "" {
		req.Header.Set("Authorization", "Bearer "+s)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("POST /v1/dispatch/events failed: %v", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

// listCount returns the listing endpoint's count.
func listCount(t *testing.T) int {
	t.Helper()

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Get(baseURL() + "/v1/dispatch/events")
	if err != nil {
		t.Fatalf("GET /v1/dispatch/events failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		OK    bool `json:"ok"`
		Count int  `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid listing JSON: %v", err)
	}
	return body.Count
}

func validPayload() map[string]any {
	return map[string]any{
		"incident_id": unique("inc"),
		"call_sid":    unique("CA"),
		"event_type":  "location_update",
	}
}

func TestHealth_ReturnsOK(t *testing.T) {
	requireServer(t)
}

func TestEvents_AcceptedAndListed(t *testing.T) {
	requireServer(t)

	before := listCount(t)
	status, body := postEvent(t, unique("k"), validPayload())
	if status != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", status, body)
	}
	if after := listCount(t); after != before+1 {
		t.Fatalf("count %d -> %d, want +1", before, after)
	}
}

func TestIdempotency_DuplicateDoesNotIncreaseCount(t *testing.T) {
	requireServer(t)

	key := unique("k")
	payload := validPayload()

	postEvent(t, key, payload)
	before := listCount(t)

	status, body := postEvent(t, key, payload)
	if status != http.StatusOK {
		t.Fatalf("replay expected 200 got %d", status)
	}
	var ack struct {
		OK        bool `json:"ok"`
		Duplicate bool `json:"duplicate"`
	}
	if err := json.Unmarshal(body, &ack); err != nil || !ack.OK || !ack.Duplicate {
		t.Fatalf("replay ack = %s", body)
	}

	if after := listCount(t); after != before {
		t.Fatalf("duplicate increased count: %d -> %d", before, after)
	}
}

func TestEvents_BadLocationJSONRejected(t *testing.T) {
	requireServer(t)

	payload := validPayload()
	payload["location_json"] = "{not json"

	status, _ := postEvent(t, unique("k"), payload)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", status)
	}
}
