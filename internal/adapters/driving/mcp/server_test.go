package mcp

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil compliance service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingComplianceService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Compliance: &mockComplianceService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil compliance service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingComplianceService)
	})

	t.Run("compliance only is valid", func(t *testing.T) {
		ports := &Ports{
			Compliance: &mockComplianceService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Compliance: &mockComplianceService{},
			Advisor:    &mockAdvisorService{},
			Corpus:     &mockCorpusService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}

func TestServer_ServeHTTP(t *testing.T) {
	server, err := NewServer(&Ports{Compliance: &mockComplianceService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	bound := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, "127.0.0.1:0", func(a net.Addr) { bound <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-bound:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not bind")
	}

	// A plain GET without a session is rejected by the transport, but it
	// proves the handler is mounted.
	resp, err := http.Get("http://" + addr.String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServer_ServeListenError(t *testing.T) {
	server, err := NewServer(&Ports{Compliance: &mockComplianceService{}})
	require.NoError(t, err)

	err = server.Serve(context.Background(), "256.0.0.1:80", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen on")
}
