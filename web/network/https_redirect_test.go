package network

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedirectListener(t *testing.T) *RedirectListener {
	t.Helper()
	raw, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	l := NewRedirectListener(raw)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRedirectListenerRedirectsPlainHTTP(t *testing.T) {
	l := newRedirectListener(t)
	read := make(chan error, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			read <- err
			return
		}
		defer conn.Close()
		_, err = conn.Read(make([]byte, 16))
		read <- err
	}()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "GET /movies?page=2 HTTP/1.1\r\nHost: example.com:8443\r\n\r\n")
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://example.com:8443/movies?page=2", resp.Header.Get("Location"))
	assert.ErrorIs(t, <-read, io.EOF)
}

func TestRedirectListenerPassesTLSThrough(t *testing.T) {
	l := newRedirectListener(t)
	accepted := make(chan []byte, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			close(accepted)
			return
		}
		defer conn.Close()
		buf := make([]byte, 3)
		_, _ = io.ReadFull(conn, buf)
		accepted <- buf
	}()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte{tlsHandshake, 0x03, 0x01})
	require.NoError(t, err)

	assert.Equal(t, []byte{tlsHandshake, 0x03, 0x01}, <-accepted)
}
