package ctlog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetEntries_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logs/argon/ct/v1/get-entries" {
			t.Errorf("path = %q, want /logs/argon/ct/v1/get-entries", r.URL.Path)
		}
		w.Write([]byte(`{"entries":[
			{"leaf_input":{"leaf_certificate":"QUJD"}},
			{"leaf_input":{"leaf_certificate":"REVG"}}
		]}`))
	}))
	defer srv.Close()

	client := NewClient()
	entries, err := client.GetEntries(context.Background(), srv.URL+"/logs/argon/ct/v1/get-entries", 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].LeafInput.LeafCertificate != "QUJD" {
		t.Errorf("entry 0 payload = %q, want %q", entries[0].LeafInput.LeafCertificate, "QUJD")
	}
}

func TestGetEntries_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start"); got != "2000" {
			t.Errorf("start = %q, want %q", got, "2000")
		}
		if got := r.URL.Query().Get("end"); got != "2999" {
			t.Errorf("end = %q, want %q", got, "2999")
		}
		w.Write([]byte(`{"entries":[]}`))
	}))
	defer srv.Close()

	client := NewClient()
	_, err := client.GetEntries(context.Background(), srv.URL+"/ct/v1/get-entries", 2000, 2999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetEntries_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entries":[]}`))
	}))
	defer srv.Close()

	client := NewClient()
	entries, err := client.GetEntries(context.Background(), srv.URL+"/ct/v1/get-entries", 0, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestGetEntries_MissingEntriesField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error_message":"rate limited"}`))
	}))
	defer srv.Close()

	client := NewClient()
	entries, err := client.GetEntries(context.Background(), srv.URL+"/ct/v1/get-entries", 0, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0 for response without entries field", len(entries))
	}
}

func TestGetEntries_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient()
	_, err := client.GetEntries(context.Background(), srv.URL+"/ct/v1/get-entries", 0, 10)
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("error = %q, want mention of status 502", err.Error())
	}
}

func TestGetEntries_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient()
	_, err := client.GetEntries(context.Background(), srv.URL+"/ct/v1/get-entries", 0, 10)
	if err == nil {
		t.Fatal("expected error for bad JSON")
	}
}

func TestGetEntries_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entries":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	client := NewClient()
	_, err := client.GetEntries(ctx, srv.URL+"/ct/v1/get-entries", 0, 10)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestGetSTH_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ct/v1/get-sth" {
			t.Errorf("path = %q, want /ct/v1/get-sth", r.URL.Path)
		}
		w.Write([]byte(`{"tree_size":123456,"timestamp":1700000000000}`))
	}))
	defer srv.Close()

	client := NewClient()
	sth, err := client.GetSTH(context.Background(), srv.URL+"/ct/v1/get-entries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sth.TreeSize != 123456 {
		t.Errorf("TreeSize = %d, want 123456", sth.TreeSize)
	}
}

func TestGetSTH_UnderivableSource(t *testing.T) {
	client := NewClient()
	_, err := client.GetSTH(context.Background(), "https://example.com/feed")
	if err == nil {
		t.Fatal("expected error for source without a get-entries suffix")
	}
}

func TestGetSTH_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient()
	_, err := client.GetSTH(context.Background(), srv.URL+"/ct/v1/get-entries")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
