package wikimedia

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/ersonp/feather/internal/domain/ports"
)

// articleNamespace is the MediaWiki namespace of encyclopedia articles.
const articleNamespace = "0"

type categoryResponse struct {
	Query struct {
		CategoryMembers []struct {
			Title string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
}

// Candidates lists article titles in the configured category.
func (c *Client) Candidates(ctx context.Context, limit int) ([]string, error) {
	if c.category == "" {
		return nil, errors.New("no catalog category configured")
	}
	if limit <= 0 {
		limit = 20
	}
	title := c.category
	if !strings.HasPrefix(title, "Category:") {
		title = "Category:" + title
	}

	params := url.Values{
		"action":      {"query"},
		"list":        {"categorymembers"},
		"cmtitle":     {title},
		"cmnamespace": {articleNamespace},
		"cmtype":      {"page"},
		"cmlimit":     {strconv.Itoa(limit)},
	}

	var resp categoryResponse
	if err := c.get(ctx, c.wikiURL, params, &resp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Query.CategoryMembers))
	for _, m := range resp.Query.CategoryMembers {
		names = append(names, m.Title)
	}
	return names, nil
}

var _ ports.Catalog = (*Client)(nil)
