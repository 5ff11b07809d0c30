// Package gate decides which senders may reach vault handlers.
package gate

import (
	"net/url"
	"strings"

	"github.com/dtroode/loginvault/internal/model"
)

// TrustedPageOrigin is the only page origin allowed to read credentials.
const TrustedPageOrigin = "https://attendance.kintai-cloud.jp/"

// Decision is the outcome of an authorization check.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

// Policy states which surfaces a message type accepts.
type Policy struct {
	// AllowPage lets injected page contexts on the trusted origin through.
	AllowPage bool
}

// Gate authorizes senders against the extension identity and the trusted
// page origin.
type Gate struct {
	extensionID string
	trusted     *url.URL
}

// New creates a Gate for the given extension identity.
func New(extensionID string) *Gate {
	trusted, err := url.Parse(TrustedPageOrigin)
	if err != nil {
		panic("gate: invalid trusted origin: " + err.Error())
	}

	return &Gate{
		extensionID: extensionID,
		trusted:     trusted,
	}
}

// Authorize returns Allow only for senders attributed to this extension that
// are either its own UI or a page on the trusted origin permitted by policy.
func (g *Gate) Authorize(sender model.Sender, policy Policy) Decision {
	if g.extensionID == "" || sender.ExtensionID != g.extensionID {
		return Deny
	}

	switch sender.Surface {
	case model.SurfaceUI:
		return Allow
	case model.SurfacePage:
		if policy.AllowPage && g.IsTrustedPage(sender.URL) {
			return Allow
		}
		return Deny
	default:
		return Deny
	}
}

// IsTrustedPage reports whether rawURL lies under TrustedPageOrigin. Scheme
// and host must match exactly, so look-alike hosts sharing the prefix string
// are rejected.
func (g *Gate) IsTrustedPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.User != nil || u.Opaque != "" {
		return false
	}
	if !strings.EqualFold(u.Scheme, g.trusted.Scheme) || !strings.EqualFold(u.Host, g.trusted.Host) {
		return false
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return strings.HasPrefix(path, g.trusted.EscapedPath())
}
