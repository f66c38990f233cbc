// Package bypass recognises bot-protection challenge pages so a failed
// article fetch can be reported as "blocked by <vendor>" instead of a bare status.
package bypass

import (
	"bytes"
	"net/http"
	"strings"
)

// Response is the slice of an HTTP response the detectors look at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Detector returns the vendor name when res looks like its challenge page.
type Detector func(res Response) (vendor string, ok bool)

// DefaultDetectors covers the vendors most often seen in front of news
// and blog sites.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
	}
}

// Identify runs detectors in order and returns the first vendor that matches.
func Identify(res Response, detectors []Detector) (string, bool) {
	for _, d := range detectors {
		if vendor, ok := d(res); ok {
			return vendor, true
		}
	}
	return "", false
}

func server(res Response) string {
	return strings.ToLower(res.Header.Get("Server"))
}

func bodyHasAny(body []byte, needles ...string) bool {
	for _, n := range needles {
		if bytes.Contains(body, []byte(n)) {
			return true
		}
	}
	return false
}

func detectCloudflare(res Response) (string, bool) {
	if res.StatusCode != http.StatusForbidden && res.StatusCode != http.StatusServiceUnavailable {
		return "", false
	}
	if strings.Contains(server(res), "cloudflare") ||
		bodyHasAny(res.Body, "cf-browser-verification", "cloudflare-nginx", "cf-turnstile", "Attention Required! | Cloudflare") {
		return "Cloudflare", true
	}
	return "", false
}

func detectAkamai(res Response) (string, bool) {
	if res.StatusCode != http.StatusForbidden {
		return "", false
	}
	if strings.Contains(server(res), "akamai") {
		return "Akamai", true
	}
	// generic "Access Denied ... Reference #" block page
	if bodyHasAny(res.Body, "Reference #") && bodyHasAny(res.Body, "Access Denied") {
		return "Akamai", true
	}
	return "", false
}

func detectDataDome(res Response) (string, bool) {
	if res.StatusCode != http.StatusForbidden {
		return "", false
	}
	if strings.Contains(server(res), "datadome") ||
		res.Header.Get("X-DataDome") != "" || res.Header.Get("X-DataDome-Response") != "" ||
		bodyHasAny(res.Body, "geo.captcha-delivery.com", "datadome") {
		return "DataDome", true
	}
	return "", false
}

func detectPerimeterX(res Response) (string, bool) {
	if res.StatusCode != http.StatusForbidden {
		return "", false
	}
	if res.Header.Get("X-Px-Captcha") != "" ||
		bodyHasAny(res.Body, "client.perimeterx.net", "px-captcha", "_pxBlock") {
		return "PerimeterX", true
	}
	return "", false
}
