// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"metals_backend/internal/feature/prices/usecase"
	infrahttp "metals_backend/internal/platform/http"
	"metals_backend/internal/platform/terminal"
)

// NewPriceProvider creates the configured terminal provider. TERMINAL_MODE=fake
// selects the offline stand-in, everything else the real gateway client.
func NewPriceProvider() usecase.PriceProvider {
	cfg := terminal.LoadConfig()
	if cfg.Mode == "fake" {
		return terminal.NewFake()
	}
	httpClient := infrahttp.NewHTTPClient(cfg.HistoricalTimeout + 5*time.Second)
	return terminal.New(cfg, httpClient)
}
