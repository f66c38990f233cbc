package fingerprint

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// Profile names the TLS ClientHello an article fetch presents.
type Profile string

const (
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileSafari  Profile = "safari"
	ProfileGo      Profile = "go"     // crypto/tls, no mimicry
	ProfileRandom  Profile = "random" // randomized hello without ALPN
)

// ParseProfile maps a config value onto a Profile. Empty selects ProfileGo.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return ProfileGo, nil
	case ProfileChrome, ProfileFirefox, ProfileSafari, ProfileGo, ProfileRandom:
		return p, nil
	default:
		return "", fmt.Errorf("fingerprint: unknown profile %q", s)
	}
}

// Options tunes the transport.
type Options struct {
	// Proxy selects a proxy per request. Nil uses the environment.
	Proxy func(*http.Request) (*url.URL, error)
	// InsecureSkipVerify disables certificate checks. Tests only.
	InsecureSkipVerify bool
}

// Transport returns a round tripper presenting the given profile's
// ClientHello. Mimicked hellos are pinned to http/1.1 in ALPN because
// http.Transport cannot speak h2 over a custom TLS dialer.
func Transport(p Profile, opts Options) (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != nil {
		transport.Proxy = opts.Proxy
	}

	if p == ProfileGo {
		if opts.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // test servers
		}
		return transport, nil
	}

	hello, err := helloSpec(p)
	if err != nil {
		return nil, err
	}

	dial := transport.DialContext
	transport.ForceAttemptHTTP2 = false
	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		rawConn, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		conn, err := hello(rawConn, &utls.Config{
			ServerName:         host,
			InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // test servers
		})
		if err != nil {
			_ = rawConn.Close()
			return nil, err
		}

		if err := conn.HandshakeContext(ctx); err != nil {
			_ = rawConn.Close()
			return nil, fmt.Errorf("fingerprint: %s handshake: %w", p, err)
		}
		return conn, nil
	}

	return transport, nil
}

type helloFunc func(net.Conn, *utls.Config) (*utls.UConn, error)

func helloSpec(p Profile) (helloFunc, error) {
	var id utls.ClientHelloID
	switch p {
	case ProfileChrome:
		id = utls.HelloChrome_Auto
	case ProfileFirefox:
		id = utls.HelloFirefox_Auto
	case ProfileSafari:
		id = utls.HelloIOS_Auto
	case ProfileRandom:
		return func(conn net.Conn, cfg *utls.Config) (*utls.UConn, error) {
			return utls.UClient(conn, cfg, utls.HelloRandomizedNoALPN), nil
		}, nil
	default:
		return nil, fmt.Errorf("fingerprint: unknown profile %q", p)
	}

	return func(conn net.Conn, cfg *utls.Config) (*utls.UConn, error) {
		spec, err := utls.UTLSIdToSpec(id)
		if err != nil {
			return nil, fmt.Errorf("fingerprint: %s spec: %w", p, err)
		}
		for _, ext := range spec.Extensions {
			if alpn, ok := ext.(*utls.ALPNExtension); ok {
				alpn.AlpnProtocols = []string{"http/1.1"}
			}
		}

		uconn := utls.UClient(conn, cfg, utls.HelloCustom)
		if err := uconn.ApplyPreset(&spec); err != nil {
			return nil, fmt.Errorf("fingerprint: %s preset: %w", p, err)
		}
		return uconn, nil
	}, nil
}
