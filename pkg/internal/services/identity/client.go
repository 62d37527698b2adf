package identity

import (
	"context"
	"fmt"
	"time"

	localCache "git.solsynth.dev/hypernet/forum/pkg/internal/cache"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/sec"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services/graphql"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
)

const customerQuery = `query {
  customer {
    email
    firstname
    lastname
    middlename
    mobile_number
    picture
    ranking
  }
}`

// Client resolves commenter profiles from the external identity provider.
type Client struct {
	gql      *graphql.Client
	cacheTTL time.Duration
}

func NewClient(endpoint string, timeout, cacheTTL time.Duration) *Client {
	return &Client{
		gql:      graphql.NewClient(endpoint, timeout, nil),
		cacheTTL: cacheTTL,
	}
}

func (v *Client) cacheKey(token string) string {
	return fmt.Sprintf("identity#%s", sec.HashToken(token))
}

func (v *Client) Resolve(ctx context.Context, token string) (models.ExternalIdentity, error) {
	var marshal *marshaler.Marshaler
	if localCache.S != nil && v.cacheTTL > 0 {
		marshal = marshaler.New(cache.New[any](localCache.S))
		if cached, err := marshal.Get(ctx, v.cacheKey(token), new(models.ExternalIdentity)); err == nil {
			if profile, ok := cached.(*models.ExternalIdentity); ok {
				return *profile, nil
			}
		}
	}

	var data struct {
		Customer *models.ExternalIdentity `json:"customer"`
	}
	err := v.gql.Do(ctx, graphql.Request{Query: customerQuery}, &data, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return models.ExternalIdentity{}, fmt.Errorf("unable to resolve identity: %v", err)
	}
	if data.Customer == nil {
		return models.ExternalIdentity{}, fmt.Errorf("identity provider returned no customer")
	}

	if marshal != nil {
		if err := marshal.Set(
			ctx,
			v.cacheKey(token),
			*data.Customer,
			store.WithExpiration(v.cacheTTL),
			store.WithTags([]string{"identity"}),
		); err != nil {
			log.Debug().Err(err).Msg("Unable to cache identity profile...")
		}
	}

	return *data.Customer, nil
}
