package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenUDP(t *testing.T) (*net.UDPConn, string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, conn.LocalAddr().String()
}

func readLine(t *testing.T, conn *net.UDPConn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestClient_Count(t *testing.T) {
	server, addr := listenUDP(t)

	client, err := NewClient(Config{Enabled: true, Address: addr, Prefix: "console."})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	client.Count("auth.login", 1, map[string]string{"result": "ok"})
	assert.Equal(t, "console.auth.login:1|c|#result:ok", readLine(t, server))
}

func TestClient_Timing(t *testing.T) {
	server, addr := listenUDP(t)

	client, err := NewClient(Config{Enabled: true, Address: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	client.Timing("backend.verify", 250*time.Millisecond, nil)
	assert.Equal(t, "backend.verify:250|ms", readLine(t, server))
}

func TestClient_TagsSorted(t *testing.T) {
	assert.Equal(t, "|#a:1,b:2", formatTags(map[string]string{"b": "2", "a": "1"}))
	assert.Equal(t, "", formatTags(nil))
	assert.Equal(t, "", formatTags(map[string]string{" ": "x"}))
}

func TestClient_DisabledIsSilent(t *testing.T) {
	client, err := NewClient(Config{Enabled: false, Address: "localhost:0"})
	require.NoError(t, err)

	// Must not panic or dial anything.
	client.Count("noop", 1, nil)
	client.Timing("noop", time.Second, nil)
	require.NoError(t, client.Close())
}

func TestClient_NilReceiverSafe(t *testing.T) {
	var client *Client
	client.Count("noop", 1, nil)
	client.Timing("noop", time.Second, nil)
	require.NoError(t, client.Close())
}
