// Package network holds listener helpers for the HTTP server.
package network

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// tlsHandshake is the record type byte that opens every TLS connection.
const tlsHandshake = 0x16

// RedirectListener accepts TLS and plain HTTP on the same port. It must sit
// below the TLS listener: plain HTTP requests are answered with a redirect to
// https and closed, everything else reaches the TLS layer untouched.
type RedirectListener struct {
	net.Listener
}

func NewRedirectListener(l net.Listener) *RedirectListener {
	return &RedirectListener{Listener: l}
}

func (l *RedirectListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &sniffConn{Conn: conn, r: bufio.NewReader(conn)}, nil
}

// sniffConn inspects the first byte on the first Read, which runs on the
// serving goroutine rather than in Accept.
type sniffConn struct {
	net.Conn
	r *bufio.Reader

	once     sync.Once
	rejected bool
}

func (c *sniffConn) Read(b []byte) (int, error) {
	c.once.Do(c.sniff)
	if c.rejected {
		return 0, io.EOF
	}
	return c.r.Read(b)
}

func (c *sniffConn) sniff() {
	first, err := c.r.Peek(1)
	if err != nil || first[0] == tlsHandshake {
		return
	}
	c.rejected = true
	c.redirect()
}

func (c *sniffConn) redirect() {
	defer c.Conn.Close()
	_ = c.Conn.SetDeadline(time.Now().Add(10 * time.Second))

	req, err := http.ReadRequest(c.r)
	if err != nil {
		return
	}
	resp := http.Response{
		StatusCode: http.StatusTemporaryRedirect,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
	}
	resp.Header.Set("Location", fmt.Sprintf("https://%s%s", req.Host, req.RequestURI))
	resp.Header.Set("Connection", "close")
	_ = resp.Write(c.Conn)
}
