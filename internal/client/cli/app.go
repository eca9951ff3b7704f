// Package cli implements the interactive terminal client: account signup,
// login, and session status against the proofpay HTTP API.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/proofpay/internal/client/api"
	"github.com/dmitrijs2005/proofpay/internal/client/config"
)

type App struct {
	config *config.Config
	client *api.Client
	email  string
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		client: api.New(c.ServerEndpointAddr, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}
