package bypass

import (
	"net/http"
	"testing"
)

func resp(status int, header map[string]string, body string) Response {
	h := http.Header{}
	for k, v := range header {
		h.Set(k, v)
	}
	return Response{StatusCode: status, Header: h, Body: []byte(body)}
}

func TestIdentify(t *testing.T) {
	cases := []struct {
		name   string
		res    Response
		vendor string
	}{
		{"plain ok page", resp(200, map[string]string{"Server": "nginx"}, "<p>hello</p>"), ""},
		{"cloudflare header", resp(403, map[string]string{"Server": "cloudflare"}, "denied"), "Cloudflare"},
		{"cloudflare turnstile body", resp(503, nil, "<div class=cf-turnstile>"), "Cloudflare"},
		{"cloudflare header on 200 is content", resp(200, map[string]string{"Server": "cloudflare"}, "<p>story</p>"), ""},
		{"akamai header", resp(403, map[string]string{"Server": "AkamaiGHost"}, ""), "Akamai"},
		{"akamai block page", resp(403, nil, "Access Denied ... Reference #18.2f"), "Akamai"},
		{"datadome header", resp(403, map[string]string{"X-DataDome": "1"}, ""), "DataDome"},
		{"datadome captcha", resp(403, nil, "<script src='https://geo.captcha-delivery.com/c.js'>"), "DataDome"},
		{"perimeterx header", resp(403, map[string]string{"X-Px-Captcha": "required"}, ""), "PerimeterX"},
		{"perimeterx body", resp(403, nil, "window._pxBlock = true;"), "PerimeterX"},
		{"generic forbidden", resp(403, nil, "nope"), ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vendor, ok := Identify(tc.res, DefaultDetectors())
			if ok != (tc.vendor != "") || vendor != tc.vendor {
				t.Errorf("expected %q (ok=%v), got %q (ok=%v)", tc.vendor, tc.vendor != "", vendor, ok)
			}
		})
	}
}
