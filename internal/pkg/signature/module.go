package signature

import (
	"go.uber.org/fx"

	"github.com/wdmlabs/bmlconnect/internal/config"
)

// Module provides the signature codec via fx.
var Module = fx.Provide(newSigner)

type signerParams struct {
	fx.In

	Config *config.Config
}

func newSigner(p signerParams) Signer {
	return NewSHA1Signer(p.Config.APIKey)
}
