package exts

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/sec"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
)

// Deps are the collaborators the handlers work with. Any of the interfaces may be nil.
type Deps struct {
	Identity services.IdentityResolver
	Catalog  services.ProductCatalog
	Files    services.FileStorage
	Tokens   *sec.TokenIssuer
}
