// Package keywords asks a local generative model to propose category tags for
// a project description. Everything here is best effort: failures degrade to
// an empty suggestion list and are never surfaced to callers.
package keywords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opensourcefinder/server/internal/logging"
)

type Client struct {
	baseURL string
	model   string
	http    *http.Client
	log     *logrus.Entry
}

func New(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logging.C("keywords"),
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Suggest returns single-word tags for the description. A blank description
// short-circuits without touching the network.
func (c *Client) Suggest(ctx context.Context, description string) []string {
	if strings.TrimSpace(description) == "" {
		return nil
	}

	prompt := fmt.Sprintf("Create themes as keywords (only one word) only separated by a comma for users to use from the following text:\n\n%q\n\nKeywords:", description)

	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Debug("keyword suggestion request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.WithField("status", resp.StatusCode).Debug("keyword suggestion request rejected")
		return nil
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.WithError(err).Debug("keyword suggestion response unreadable")
		return nil
	}

	return parseKeywords(out.Response)
}

// parseKeywords turns free-form model output into clean single-word tags. No
// schema is enforced upstream, so anything that is not a lone word is dropped.
func parseKeywords(raw string) []string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(strings.ToLower(raw), "keywords:"); i >= 0 {
		raw = raw[i+len("keywords:"):]
	}

	var tags []string
	seen := make(map[string]bool)
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.Trim(strings.TrimSpace(tok), `."'`+"`")
		if tok == "" || strings.ContainsAny(tok, " \t\n") {
			continue
		}
		key := strings.ToLower(tok)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tok)
	}
	return tags
}
