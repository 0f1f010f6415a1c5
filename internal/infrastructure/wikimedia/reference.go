package wikimedia

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/ports"
)

// ThumbnailSize is the width requested for page thumbnails.
const ThumbnailSize = 1024

type queryPagesResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Invalid   bool   `json:"invalid"`
			Extract   string `json:"extract"`
			Original  *image `json:"original"`
			Thumbnail *image `json:"thumbnail"`
			PageProps struct {
				Disambiguation *string `json:"disambiguation"`
			} `json:"pageprops"`
		} `json:"pages"`
	} `json:"query"`
}

type image struct {
	Source string `json:"source"`
}

// Lookup returns the intro extract and lead image of the page titled name,
// following redirects. A missing page yields nil.
func (c *Client) Lookup(ctx context.Context, name string) (*ports.ReferencePage, error) {
	params := url.Values{
		"action":      {"query"},
		"titles":      {name},
		"redirects":   {"1"},
		"prop":        {"extracts|pageimages|pageprops"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"piprop":      {"original|thumbnail"},
		"pithumbsize": {strconv.Itoa(ThumbnailSize)},
		"pilicense":   {"any"},
		"ppprop":      {"disambiguation"},
	}

	var resp queryPagesResponse
	if err := c.get(ctx, c.wikiURL, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Query.Pages) == 0 {
		return nil, nil
	}

	p := resp.Query.Pages[0]
	if p.Missing || p.Invalid {
		c.logger.Debug("no reference page", zap.String("name", name))
		return nil, nil
	}

	page := &ports.ReferencePage{
		Title:          p.Title,
		Extract:        p.Extract,
		Disambiguation: p.PageProps.Disambiguation != nil,
	}
	if p.Original != nil {
		page.ImageURL = p.Original.Source
	}
	if p.Thumbnail != nil {
		page.ThumbnailURL = p.Thumbnail.Source
	}
	return page, nil
}

var _ ports.ReferenceSource = (*Client)(nil)
