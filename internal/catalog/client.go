package catalog

import (
	"context"
	"fmt"
	"time"

	"kamatrack/internal/models"

	"github.com/go-resty/resty/v2"
)

// Client fetches the remote resource-item catalog. Every call re-fetches the
// full list; no retry, no traversal of the paging links the API advertises.
type Client struct {
	baseURL string
	client  *resty.Client
}

type listResponse struct {
	Links struct {
		Next string `json:"next"`
	} `json:"_links"`
	Items []models.CatalogItem `json:"items"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)

	return &Client{
		baseURL: baseURL,
		client:  client,
	}
}

// FetchResources returns the full resource-item catalog.
func (c *Client) FetchResources(ctx context.Context) ([]models.CatalogItem, error) {
	var list listResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&list).
		Get(c.baseURL + "/items/resources/all")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resource catalog: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("resource catalog returned status %d", resp.StatusCode())
	}

	return list.Items, nil
}
