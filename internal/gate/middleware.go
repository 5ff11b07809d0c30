package gate

import (
	"context"

	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/messaging"
)

// pageReadable lists the message types injected page contexts may send.
var pageReadable = map[messaging.Type]bool{
	messaging.GetCredentials: true,
	messaging.GetSavedCodes:  true,
}

// PolicyFor returns the policy applied to a message type. Types not listed
// as page-readable are reserved for the extension's own UI.
func PolicyFor(t messaging.Type) Policy {
	return Policy{AllowPage: pageReadable[t]}
}

// Middleware authorizes every request before its handler runs. Denied
// requests get a null result and no error, so a denial looks the same
// whether or not credentials are stored.
func (g *Gate) Middleware(logger *logger.Logger) messaging.Middleware {
	return func(next messaging.Handler) messaging.Handler {
		return func(ctx context.Context, req messaging.Request) (any, error) {
			if g.Authorize(req.Sender, PolicyFor(req.Type)) == Deny {
				logger.Warn("gate: request denied",
					"request_id", req.ID,
					"type", req.Type,
					"surface", req.Sender.Surface,
					"attributed", req.Sender.Attributed(),
					"url", req.Sender.URL)
				return nil, nil
			}
			return next(ctx, req)
		}
	}
}
