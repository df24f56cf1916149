package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndpointProtocol(t *testing.T) {
	proto, endpoint, err := OtlpEndpoint{Grpc: "http://localhost:4317", Http: "http://localhost:4318"}.protocol()
	require.NoError(t, err)
	require.Equal(t, protocolGrpc, proto)
	require.Equal(t, "http://localhost:4317", endpoint)

	proto, endpoint, err = OtlpEndpoint{Http: "http://localhost:4318"}.protocol()
	require.NoError(t, err)
	require.Equal(t, protocolHttp, proto)
	require.Equal(t, "http://localhost:4318", endpoint)

	_, _, err = OtlpEndpoint{}.protocol()
	require.ErrorIs(t, err, errNoEndpoint)
}

func TestSetupRequiresEndpoints(t *testing.T) {
	_, err := Setup(context.Background(), "test:telemetry", Config{})
	require.ErrorIs(t, err, errNoEndpoint)
}

func TestDisabledShutdown(t *testing.T) {
	tel := Telemetry{}
	require.False(t, tel.Enabled())
	require.NoError(t, tel.Shutdown(context.Background()))
}
