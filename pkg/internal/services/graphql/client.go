package graphql

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type ResponseError struct {
	Message string `json:"message"`
}

type Response struct {
	Data   jsoniter.RawMessage `json:"data"`
	Errors []ResponseError     `json:"errors"`
}

type Client struct {
	endpoint string
	http     *http.Client
	headers  map[string]string
}

func NewClient(endpoint string, timeout time.Duration, headers map[string]string) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		headers:  headers,
	}
}

// Do posts the query and decodes the data field into out.
func (v *Client) Do(ctx context.Context, req Request, out any, headers ...map[string]string) error {
	body, err := jsoniter.Marshal(req)
	if err != nil {
		return fmt.Errorf("unable to encode graphql request: %v", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	for key, value := range v.headers {
		request.Header.Set(key, value)
	}
	for _, extra := range headers {
		for key, value := range extra {
			request.Header.Set(key, value)
		}
	}

	log.Debug().Str("endpoint", v.endpoint).Msg("Sending graphql request...")
	resp, err := v.http.Do(request)
	if err != nil {
		return fmt.Errorf("graphql request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("unable to read graphql response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql endpoint responded %d", resp.StatusCode)
	}

	var decoded Response
	if err := jsoniter.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("unable to decode graphql response: %v", err)
	}
	if len(decoded.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", strings.Join(lo.Map(decoded.Errors, func(item ResponseError, _ int) string {
			return item.Message
		}), "; "))
	}
	if len(decoded.Data) == 0 || string(decoded.Data) == "null" {
		return fmt.Errorf("graphql response carries no data")
	}

	return jsoniter.Unmarshal(decoded.Data, out)
}
