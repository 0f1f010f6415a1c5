package wikimedia

import (
	"context"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/ersonp/feather/internal/domain/ports"
)

// fileNamespace is the MediaWiki namespace of uploaded files.
const fileNamespace = "6"

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// Search returns direct upload URLs of Commons photographs matching query,
// in relevance order. The configured qualifier (e.g. "bird") is appended.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	q := strings.TrimSpace(query)
	if c.qualifier != "" && !strings.Contains(strings.ToLower(q), strings.ToLower(c.qualifier)) {
		q += " " + c.qualifier
	}

	params := url.Values{
		"action":      {"query"},
		"list":        {"search"},
		"srsearch":    {q},
		"srnamespace": {fileNamespace},
		"srlimit":     {strconv.Itoa(limit)},
	}

	var resp searchResponse
	if err := c.get(ctx, c.commonsURL, params, &resp); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(resp.Query.Search))
	for _, hit := range resp.Query.Search {
		switch strings.ToLower(path.Ext(hit.Title)) {
		case ".jpg", ".jpeg", ".png":
			urls = append(urls, c.FileURL(hit.Title))
		}
	}
	return urls, nil
}

var _ ports.MediaSearch = (*Client)(nil)
