package server_test

import (
	"context"
	"testing"

	"github.com/inbucket/mimetpl/pkg/config"
	"github.com/inbucket/mimetpl/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProdRejectsBadFilter(t *testing.T) {
	conf, err := config.Process()
	require.NoError(t, err)
	conf.Interpreter.Filter = "sometimes"

	svcs, err := server.Prod(context.Background(), make(chan bool), conf)
	assert.Error(t, err)
	assert.Nil(t, svcs)
}

func TestProdStartsWebServer(t *testing.T) {
	conf, err := config.Process()
	require.NoError(t, err)
	conf.Web.Addr = "127.0.0.1:0"
	conf.Interpreter.Headers = "Subject"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svcs, err := server.Prod(ctx, make(chan bool), conf)
	require.NoError(t, err)
	require.NotNil(t, svcs.WebServer)
	assert.Equal(t, []string{"Subject"}, svcs.Interpreter.Config().Headers.Names())
}
