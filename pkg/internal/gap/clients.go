package gap

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/sec"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services/catalog"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services/identity"
	"git.solsynth.dev/hypernet/forum/pkg/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Clients carries the collaborators built once at startup and handed to the http layer.
type Clients struct {
	Identity *identity.Client
	Catalog  *catalog.Client
	Storage  *storage.Client
	Tokens   *sec.TokenIssuer
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if value := viper.GetDuration(key); value > 0 {
		return value
	}
	return fallback
}

func NewClients() (*Clients, error) {
	tokens, err := sec.NewTokenIssuer(
		viper.GetString("security.jwt_secret"),
		durationOr("security.access_ttl", 15*time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to build token issuer: %v", err)
	}

	clients := &Clients{Tokens: tokens}

	if endpoint := viper.GetString("identity.endpoint"); len(endpoint) > 0 {
		clients.Identity = identity.NewClient(
			endpoint,
			durationOr("identity.timeout", 10*time.Second),
			durationOr("identity.cache_ttl", time.Minute),
		)
	} else {
		log.Warn().Msg("Identity endpoint was not configured, comments will reject every writer.")
	}

	if endpoint := viper.GetString("catalog.endpoint"); len(endpoint) > 0 {
		clients.Catalog = catalog.NewClient(
			endpoint,
			viper.GetString("catalog.store_code"),
			viper.GetString("catalog.product_base"),
			durationOr("catalog.timeout", 10*time.Second),
		)
	} else {
		log.Warn().Msg("Catalog endpoint was not configured, related products are stored as submitted.")
	}

	clients.Storage, err = storage.New(
		viper.GetString("storage.endpoint"),
		viper.GetString("storage.region"),
		viper.GetString("storage.access_key"),
		viper.GetString("storage.secret_key"),
		viper.GetString("storage.bucket"),
		viper.GetString("storage.public_url"),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to build storage client: %v", err)
	} else if clients.Storage == nil {
		log.Warn().Msg("Storage was not configured, uploads are disabled.")
	}

	return clients, nil
}

// The accessors below keep a missing client a nil interface instead of a typed nil.

func (v *Clients) IdentityResolver() services.IdentityResolver {
	if v == nil || v.Identity == nil {
		return nil
	}
	return v.Identity
}

func (v *Clients) ProductCatalog() services.ProductCatalog {
	if v == nil || v.Catalog == nil {
		return nil
	}
	return v.Catalog
}

func (v *Clients) FileStorage() services.FileStorage {
	if v == nil || v.Storage == nil {
		return nil
	}
	return v.Storage
}
