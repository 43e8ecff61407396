package di

import (
	"os"
	"strings"
)

// Default symbol sets. The zinc symbol has historically drifted between
// LMZSDS03 and LMZNDS03 across deployments, so the whole set is overridable
// via environment rather than hard-coded.
var (
	defaultBaseMetals = []string{
		"LMCADS03", // LME Copper 3M
		"LMAHDS03", // LME Aluminum 3M
		"LMZSDS03", // LME Zinc 3M
		"LMPBDS03", // LME Lead 3M
		"LMSNDS03", // LME Tin 3M
		"LMNIDS03", // LME Nickel 3M
	}
	defaultPreciousMetals = []string{
		"XAU=", // Gold Spot
		"XAG=", // Silver Spot
		"XPT=", // Platinum Spot
		"XPD=", // Palladium Spot
	}
)

// LoadSymbolSets returns the base and precious metal symbol sets,
// overridable via METALS_DEFAULT_SYMBOLS and METALS_PRECIOUS_SYMBOLS
// (comma-separated).
func LoadSymbolSets() (base, precious []string) {
	return fromEnv("METALS_DEFAULT_SYMBOLS", defaultBaseMetals),
		fromEnv("METALS_PRECIOUS_SYMBOLS", defaultPreciousMetals)
}

func fromEnv(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return fallback
	}
	return symbols
}
