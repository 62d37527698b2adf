package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services/graphql"
	"github.com/samber/lo"
)

const productQuery = `query ($urlKey: String!) {
  products(filter: { url_key: { eq: $urlKey } }, pageSize: 1) {
    items {
      name
      url_key
      image { url }
      price_range {
        minimum_price {
          final_price { currency value }
        }
      }
      daily_sale { sale_price }
    }
  }
}`

type Product struct {
	Name   string `json:"name"`
	URLKey string `json:"url_key"`
	Image  struct {
		URL string `json:"url"`
	} `json:"image"`
	PriceRange struct {
		MinimumPrice struct {
			FinalPrice struct {
				Currency string  `json:"currency"`
				Value    float64 `json:"value"`
			} `json:"final_price"`
		} `json:"minimum_price"`
	} `json:"price_range"`
	DailySale *struct {
		SalePrice *float64 `json:"sale_price"`
	} `json:"daily_sale"`
}

func (v Product) ToRelatedProduct(productBase string) models.RelatedProduct {
	out := models.RelatedProduct{
		Name:     v.Name,
		URLKey:   v.URLKey,
		ImageURL: v.Image.URL,
		Price:    v.PriceRange.MinimumPrice.FinalPrice.Value,
		Currency: v.PriceRange.MinimumPrice.FinalPrice.Currency,
	}
	if v.DailySale != nil {
		out.SalePrice = v.DailySale.SalePrice
	}
	if len(productBase) > 0 {
		out.ProductURL = lo.ToPtr(fmt.Sprintf("%s/%s.html", strings.TrimRight(productBase, "/"), v.URLKey))
	}
	return out
}

// Client looks up product snapshots in the external catalog.
type Client struct {
	gql         *graphql.Client
	productBase string
}

func NewClient(endpoint, storeCode, productBase string, timeout time.Duration) *Client {
	var headers map[string]string
	if len(storeCode) > 0 {
		headers = map[string]string{"Store": storeCode}
	}
	return &Client{
		gql:         graphql.NewClient(endpoint, timeout, headers),
		productBase: productBase,
	}
}

func (v *Client) Snapshot(ctx context.Context, urlKey string) (models.RelatedProduct, error) {
	var data struct {
		Products struct {
			Items []Product `json:"items"`
		} `json:"products"`
	}
	err := v.gql.Do(ctx, graphql.Request{
		Query:     productQuery,
		Variables: map[string]any{"urlKey": urlKey},
	}, &data)
	if err != nil {
		return models.RelatedProduct{}, fmt.Errorf("unable to look up product %q: %v", urlKey, err)
	}
	if len(data.Products.Items) == 0 {
		return models.RelatedProduct{}, fmt.Errorf("product %q not found in catalog", urlKey)
	}

	return data.Products.Items[0].ToRelatedProduct(v.productBase), nil
}
