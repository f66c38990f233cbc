package fingerprint

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTransport_Profiles(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ProtoMajor != 1 {
			t.Errorf("expected HTTP/1.x, got %s", r.Proto)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	for _, p := range []Profile{ProfileChrome, ProfileFirefox, ProfileSafari, ProfileGo, ProfileRandom} {
		t.Run(string(p), func(t *testing.T) {
			rt, err := Transport(p, Options{InsecureSkipVerify: true})
			if err != nil {
				t.Fatalf("unexpected error creating transport: %v", err)
			}

			client := &http.Client{Transport: rt}
			resp, err := client.Get(ts.URL)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.StatusCode)
			}
		})
	}
}

func TestTransport_UnknownProfile(t *testing.T) {
	if _, err := Transport(Profile("netscape"), Options{}); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestParseProfile(t *testing.T) {
	cases := map[string]Profile{
		"":         ProfileGo,
		"Chrome":   ProfileChrome,
		" firefox": ProfileFirefox,
		"safari":   ProfileSafari,
		"random":   ProfileRandom,
	}
	for in, want := range cases {
		got, err := ParseProfile(in)
		if err != nil {
			t.Errorf("ParseProfile(%q): unexpected error %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseProfile(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseProfile("lynx"); err == nil {
		t.Error("expected error for unknown profile")
	}
}
