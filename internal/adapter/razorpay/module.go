package razorpay

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/mellowshop/orderdesk/internal/config"
)

// Module exposes gateway client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.RazorpayBaseURL, p.Config.RazorpayKeyID, p.Config.RazorpayKeySecret, p.Logger)
}
