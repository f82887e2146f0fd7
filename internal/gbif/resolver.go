package gbif

import (
	"context"
	"strings"
)

// notApplicableTokens are inputs that mean "no species name given".
var notApplicableTokens = map[string]struct{}{
	"na":      {},
	"n/a":     {},
	"none":    {},
	"unknown": {},
	"":        {},
}

// Resolver canonicalizes free-text organism names against the GBIF backbone.
// Resolution failure is non-fatal: the resolver degrades to the trimmed
// input name so an import never blocks on the lookup service.
type Resolver struct {
	client        *Client
	minConfidence int
}

// NewResolver creates a Resolver on top of the given client. minConfidence
// is the backbone match confidence threshold (0-100).
func NewResolver(client *Client, minConfidence int) *Resolver {
	return &Resolver{
		client:        client,
		minConfidence: minConfidence,
	}
}

// Resolve canonicalizes name into an accepted scientific name. It returns
// the empty string for missing or not-applicable input. When the backbone
// lookup fails, returns a low-confidence match, or yields no canonical
// name, the trimmed input name is returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if _, na := notApplicableTokens[strings.ToLower(name)]; na {
		return ""
	}

	resp, err := r.client.Match(ctx, name)
	if err != nil {
		logger.Warn("GBIF lookup error", "name", name, "error", err)
		return name
	}

	if resp.Diagnostics.Confidence >= r.minConfidence && resp.Usage != nil {
		if resp.Usage.Status == "SYNONYM" && resp.AcceptedUsage != nil && resp.AcceptedUsage.Key != 0 {
			// Follow the synonym to the accepted usage; a failed secondary
			// lookup falls through to the primary canonical name.
			if accepted, err := r.client.Usage(ctx, resp.AcceptedUsage.Key); err == nil {
				if accepted.Usage != nil && accepted.Usage.CanonicalName != "" {
					return accepted.Usage.CanonicalName
				}
			} else {
				logger.Debug("GBIF accepted usage lookup failed", "name", name, "error", err)
			}
		}

		if resp.Usage.CanonicalName != "" {
			return resp.Usage.CanonicalName
		}
	}

	logger.Info("Unable to find GBIF match", "name", name, "confidence", resp.Diagnostics.Confidence)
	return name
}
