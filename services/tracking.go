package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"crossprice/models"
)

// TrackingService forwards click events to an external analytics endpoint.
// Forwarding is fire-and-forget: a dead endpoint never affects the caller.
type TrackingService struct {
	endpoint string
	client   *http.Client
}

func NewTrackingService(endpoint string) *TrackingService {
	return &TrackingService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether an endpoint is configured.
func (ts *TrackingService) Enabled() bool {
	return ts.endpoint != ""
}

// Forward posts the event to the external endpoint in the background.
func (ts *TrackingService) Forward(event models.ClickEvent) {
	if !ts.Enabled() {
		return
	}
	go ts.send(event)
}

func (ts *TrackingService) send(event models.ClickEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Tracking: failed to marshal event: %v", err)
		return
	}

	resp, err := ts.client.Post(ts.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("Tracking: forward failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Tracking: endpoint returned status %d", resp.StatusCode)
		return
	}

	// Best effort: the endpoint may answer with a status document.
	var ack map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil {
		if status, ok := ack["status"]; ok {
			log.Printf("Tracking: event forwarded, status=%v", status)
			return
		}
	}
	log.Printf("Tracking: event forwarded for store %s", event.Store)
}
