package tequilapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const proposalsBody = `{"proposals":[
  {"providerId":"0xabc","serviceType":"wireguard","compatibility":2,
   "serviceDefinition":{"locationOriginate":{"country":"DE","nodeType":"residential"}},
   "paymentMethod":{"type":"BYTES_TRANSFERRED_WITH_TIME","price":{"amount":50000,"currency":"MYST"},"rate":{"perSeconds":60,"perBytes":1073741824}},
   "accessPolicies":[{"id":"mysterium","source":"https://trust.mysterium.network/api/v1/access-policies/mysterium"}]},
  {"providerId":"0xdef","serviceType":"wireguard",
   "serviceDefinition":{"locationOriginate":{"country":"US","nodeType":"hosting"}},
   "accessPolicies":[]}
]}`

func TestFindProposals(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/proposals" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("service_type")
		w.Write([]byte(proposalsBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	proposals, err := c.FindProposals(context.Background(), "wireguard")
	if err != nil {
		t.Fatalf("FindProposals: %v", err)
	}
	if gotQuery != "wireguard" {
		t.Errorf("service_type = %q, want wireguard", gotQuery)
	}
	if len(proposals) != 2 {
		t.Fatalf("got %d proposals, want 2", len(proposals))
	}

	p := proposals[0]
	if p.ProviderID != "0xabc" || p.Compatibility != 2 || p.Country != "DE" || p.NodeType != "residential" {
		t.Errorf("unexpected proposal: %+v", p)
	}
	if p.PaymentMethod.Price.Amount != 50000 || p.PaymentMethod.Rate.PerSeconds != 60 {
		t.Errorf("unexpected payment method: %+v", p.PaymentMethod)
	}
	if len(p.AccessPolicies) != 1 || p.AccessPolicies[0].ID != "mysterium" {
		t.Errorf("unexpected access policies: %+v", p.AccessPolicies)
	}
	if proposals[1].AccessPolicies != nil {
		t.Errorf("empty policy list should map to nil, got %+v", proposals[1].AccessPolicies)
	}
}

func TestProposalsQuality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quality":[{"providerId":"0xabc","serviceType":"wireguard","quality":2.1,"latency":31.5,"bandwidth":12.2,"monitoringFailed":true}]}`))
	}))
	defer srv.Close()

	quality, err := NewClient(srv.URL, 0).ProposalsQuality(context.Background())
	if err != nil {
		t.Fatalf("ProposalsQuality: %v", err)
	}
	if len(quality) != 1 {
		t.Fatalf("got %d records, want 1", len(quality))
	}
	q := quality[0]
	if q.ProviderID != "0xabc" || q.Quality != 2.1 || !q.MonitoringFailed {
		t.Errorf("unexpected quality: %+v", q)
	}
}

func TestConnectionStatusAndHealthcheck(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/connection", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"NotConnected"}`))
	})
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uptime":"1h","process":42,"version":"1.2.3"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL+"/", 0)
	status, err := c.ConnectionStatus(context.Background())
	if err != nil {
		t.Fatalf("ConnectionStatus: %v", err)
	}
	if status.Status != "NotConnected" {
		t.Errorf("status = %q", status.Status)
	}

	health, err := c.Healthcheck(context.Background())
	if err != nil {
		t.Fatalf("Healthcheck: %v", err)
	}
	if health.Process != 42 || health.Version != "1.2.3" {
		t.Errorf("unexpected healthcheck: %+v", health)
	}
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"json message", `{"message":"node is not ready"}`, http.StatusServiceUnavailable, "node is not ready"},
		{"plain body", "boom\n", http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, 0).FindProposals(context.Background(), "wireguard")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.message {
				t.Errorf("got %+v", apiErr)
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).ProposalsQuality(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
