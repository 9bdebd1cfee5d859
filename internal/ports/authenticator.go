package ports

import (
	"context"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
)

// Authenticator signs a page into the platform through the credential's
// identity provider.
type Authenticator interface {
	Login(ctx context.Context, page Page, credential domain.Credential) error
}
