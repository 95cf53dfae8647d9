package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// fetchEndpoints retrieves the full record set from the endpoint service.
// The clientrequestid parameter is provider-side telemetry only and does not
// affect the payload. Any transport, status or decode failure is fatal to
// the run; there is no retry or cache.
func fetchEndpoints(feedURL, clientRequestID string) ([]EndpointRecord, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}
	q := u.Query()
	q.Set("clientrequestid", clientRequestID)
	u.RawQuery = q.Encode()

	client := http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(u.String())
	if err != nil {
		return nil, fmt.Errorf("fetch endpoint feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint service returned status %d", resp.StatusCode)
	}

	var records []EndpointRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode endpoint feed: %w", err)
	}
	return records, nil
}
