package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeerAddress(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.7 ", ""})
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		xff        []string
		want       string
	}{
		{name: "direct peer ignores forwarded header", remoteAddr: "203.0.113.9:4444", xff: []string{"1.1.1.1"}, want: "203.0.113.9"},
		{name: "trusted proxy forwards client", remoteAddr: "10.1.2.3:5555", xff: []string{"198.51.100.7"}, want: "198.51.100.7"},
		{name: "rightmost untrusted hop wins", remoteAddr: "10.1.2.3:5555", xff: []string{"1.1.1.1, 198.51.100.7, 10.0.0.9"}, want: "198.51.100.7"},
		{name: "repeated headers are joined", remoteAddr: "192.168.1.7:80", xff: []string{"1.1.1.1", "198.51.100.8"}, want: "198.51.100.8"},
		{name: "trusted proxy without header", remoteAddr: "10.1.2.3:5555", want: "10.1.2.3"},
		{name: "garbage hop stops the walk", remoteAddr: "10.1.2.3:5555", xff: []string{"1.1.1.1, not-an-ip"}, want: "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := PeerAddress(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClientIPWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:9000"
	require.Equal(t, "198.51.100.1", ClientIP(req))
}

func TestParseTrustedProxiesRejectsGarbage(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"10.0.0.0/33"})
	require.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	require.Error(t, err)
}
