package isbn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hjin-me/libraryms/internal/book"
)

// Client looks up book metadata by ISBN against a jike-style catalog API.
// It implements book.MetadataLookup.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// envelope is the service's response wrapper; ret != 0 signals an error
// described by msg.
type envelope struct {
	Ret  int64   `json:"ret"`
	Msg  string  `json:"msg"`
	Data rawBook `json:"data"`
}

type rawBook struct {
	Name       string  `json:"name"`
	Subname    string  `json:"subname"`
	Author     *string `json:"author"`
	Publishing string  `json:"publishing"`
	Published  string  `json:"published"`
	Code       string  `json:"code"`
	PhotoURL   *string `json:"photoUrl"`
}

func (c *Client) Lookup(ctx context.Context, code string) (*book.Metadata, error) {
	u := fmt.Sprintf("%s/situ/book/isbn/%s?apikey=%s", c.baseURL, url.PathEscape(code), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying isbn service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("isbn service returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding isbn response: %w", err)
	}

	if env.Ret != 0 {
		return nil, fmt.Errorf("isbn service rejected %s: %s", code, env.Msg)
	}

	return &book.Metadata{
		ISBN:      env.Data.Code,
		Title:     env.Data.Name,
		Authors:   splitAuthors(env.Data.Author),
		Publisher: env.Data.Publishing,
		Thumbnail: deref(env.Data.PhotoURL),
	}, nil
}

// The author field arrives as one string with "/" separators, sometimes null.
func splitAuthors(author *string) []string {
	if author == nil || *author == "" {
		return nil
	}

	parts := strings.Split(*author, "/")
	authors := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			authors = append(authors, p)
		}
	}

	return authors
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
