package terabox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/mo"
	"go.uber.org/zap"

	"teraview/internal/httputil"
	"teraview/internal/media"
)

// DefaultEndpoint is the third-party service that turns share links into direct links.
const DefaultEndpoint = "https://ashlynn.serv00.net/Ashlynnterabox.php"

// response is the subset of the endpoint's JSON we look at.
type response struct {
	DirectLink string `json:"directLink"`
	URL        string `json:"url"`
}

// Resolver converts share links into direct media URLs.
type Resolver struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewResolver creates a resolver for the given endpoint.
// A nil client uses httputil.NewClient; a nil logger discards output.
func NewResolver(endpoint string, client *http.Client, logger *zap.Logger) *Resolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = httputil.NewClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// Endpoint returns the resolution endpoint in use.
func (r *Resolver) Endpoint() string { return r.endpoint }

// Resolve validates link and asks the endpoint for its direct URL.
// Invalid links fail with *InvalidInputError before any request is made.
func (r *Resolver) Resolve(ctx context.Context, link media.Link) (media.Direct, error) {
	if !IsValidLink(string(link)) {
		return media.Direct{}, &InvalidInputError{Link: link}
	}

	reqURL, err := httputil.WithQuery(r.endpoint, "url", string(link))
	if err != nil {
		return media.Direct{}, fmt.Errorf("building request URL: %w", err)
	}

	r.logger.Debug("resolving link", zap.String("link", string(link)), zap.String("endpoint", r.endpoint))

	body, err := httputil.GetJSON(ctx, r.client, reqURL)
	if err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) {
			return media.Direct{}, &RequestError{Status: statusErr.Code, Err: err}
		}
		return media.Direct{}, fmt.Errorf("resolving %s: %w", link, err)
	}

	found, err := Lookup(body)
	if err != nil {
		return media.Direct{}, err
	}

	direct, ok := found.Get()
	if !ok {
		return media.Direct{}, ErrNoLink
	}

	r.logger.Debug("resolved link",
		zap.String("link", string(link)),
		zap.Stringer("field", direct.Field),
	)
	return direct, nil
}

// Lookup picks the direct link out of an endpoint response.
// A non-empty directLink wins over a non-empty url; when neither is set the
// option is empty. A body that is not a JSON object yields *ParseError.
func Lookup(body []byte) (mo.Option[media.Direct], error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return mo.None[media.Direct](), &ParseError{Err: err}
	}

	switch {
	case resp.DirectLink != "":
		return mo.Some(media.Direct{URL: resp.DirectLink, Field: media.FieldDirectLink}), nil
	case resp.URL != "":
		return mo.Some(media.Direct{URL: resp.URL, Field: media.FieldURL}), nil
	default:
		return mo.None[media.Direct](), nil
	}
}
