package mockboost

import (
	"encoding/json"
	"net/http"
	"testing"
)

func getEnvelope(t *testing.T, url string) Envelope {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestStartStatusStop(t *testing.T) {
	srv := New()
	defer srv.Close()

	env := getEnvelope(t, srv.URL+"/start?url=https://example.com/video/1")
	if !env.Success {
		t.Fatalf("start failed: %s", env.Error)
	}
	if env.SessionID == "" {
		t.Fatal("expected session ID")
	}

	// Counters advance on each poll
	first := getEnvelope(t, srv.URL+"/status/"+env.SessionID)
	second := getEnvelope(t, srv.URL+"/status/"+env.SessionID)
	if !first.Success || !second.Success {
		t.Fatal("expected successful status responses")
	}
	if second.Stats.TotalViews <= first.Stats.TotalViews {
		t.Errorf("expected views to advance: %d then %d", first.Stats.TotalViews, second.Stats.TotalViews)
	}

	stop := getEnvelope(t, srv.URL+"/stop/"+env.SessionID)
	if !stop.Success {
		t.Fatalf("stop failed: %s", stop.Error)
	}

	if sess := srv.GetSession(env.SessionID); sess == nil || sess.Active {
		t.Error("expected session to be inactive after stop")
	}

	// Counters freeze after stop
	frozen := getEnvelope(t, srv.URL+"/status/"+env.SessionID)
	if frozen.Stats.TotalViews != second.Stats.TotalViews {
		t.Errorf("expected frozen counters after stop, got %d", frozen.Stats.TotalViews)
	}
}

func TestStartWithoutURL(t *testing.T) {
	srv := New()
	defer srv.Close()

	env := getEnvelope(t, srv.URL+"/start")
	if env.Success {
		t.Fatal("expected failure for missing url")
	}
}

func TestStatusUnknownSession(t *testing.T) {
	srv := New()
	defer srv.Close()

	env := getEnvelope(t, srv.URL+"/status/nope")
	if env.Success {
		t.Fatal("expected failure for unknown session")
	}
}

func TestFailureInjection(t *testing.T) {
	srv := New()
	defer srv.Close()

	srv.SetFailures(FailureInjection{RefuseStarts: true})
	env := getEnvelope(t, srv.URL+"/start?url=https://example.com/video/2")
	if env.Success {
		t.Fatal("expected refused start")
	}

	srv.SetFailures(FailureInjection{StartErrorStatus: http.StatusBadGateway})
	resp, err := http.Get(srv.URL + "/start?url=https://example.com/video/3")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}

	srv.Reset()
	env = getEnvelope(t, srv.URL+"/start?url=https://example.com/video/4")
	if !env.Success {
		t.Fatalf("expected start to succeed after reset: %s", env.Error)
	}

	srv.SetFailures(FailureInjection{FailNextStatus: 1})
	bad := getEnvelope(t, srv.URL+"/status/"+env.SessionID)
	if bad.Success {
		t.Fatal("expected injected status failure")
	}
	good := getEnvelope(t, srv.URL+"/status/"+env.SessionID)
	if !good.Success {
		t.Fatalf("expected recovery after injected failure: %s", good.Error)
	}
}
