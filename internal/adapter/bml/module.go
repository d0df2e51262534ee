package bml

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/wdmlabs/bmlconnect/internal/config"
	"github.com/wdmlabs/bmlconnect/internal/pkg/signature"
)

// Module exposes the BML Connect client implementation to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Signer signature.Signer
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(BaseURL(p.Config.TestMode), p.Config.AppID, p.Config.APIKey, p.Signer, p.Logger)
}
