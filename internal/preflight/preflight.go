package preflight

import (
	"context"
	"os"
	"strings"

	"facehugger/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
			if status.Version != "" {
				result.Detail += " (" + status.Version + ")"
			}
		}
		results = append(results, result)
	}

	results = append(results, CheckCacheDirectory("Hub cache", cfg.HubCacheDir()))
	results = append(results, CheckCacheDirectory("State directory", cfg.Paths.StateDir))

	if cfg.Hub.Token != "" {
		results = append(results, CheckHubToken(ctx, hubEndpoint(), cfg.Hub.Token))
	}
	return results
}

func hubEndpoint() string {
	if endpoint := strings.TrimSpace(os.Getenv("HF_ENDPOINT")); endpoint != "" {
		return endpoint
	}
	return defaultHubEndpoint
}
