// Package username generates display names for signups that omit one.
//
// The shape is <Adjective><Animal>_<n>, e.g. "SwiftOtter_421". Words come
// from a public random-word API when it answers within the budget, otherwise
// from a built-in list. Generation never fails — the fallback is always
// available.
package username

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// apiBudget caps how long we wait for the remote word API before falling
// back to the local lists.
const apiBudget = 800 * time.Millisecond

const defaultBaseURL = "https://random-word-form.herokuapp.com"

var adjectives = []string{
	"Happy", "Lucky", "Sunny", "Clever", "Brave", "Calm", "Witty", "Jolly",
	"Fancy", "Swift", "Gentle", "Eager", "Proud", "Kind", "Lively", "Silly",
}

var animals = []string{
	"Panda", "Fox", "Koala", "Eagle", "Bear", "Otter", "Tiger", "Lion",
	"Wolf", "Rabbit", "Penguin", "Badger", "Falcon", "Hawk", "Owl", "Shark",
}

// Generator produces random usernames.
type Generator struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewGenerator creates a Generator backed by the public random-word API.
func NewGenerator(logger *slog.Logger) *Generator {
	return &Generator{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: apiBudget},
		logger:  logger,
	}
}

// NewGeneratorWithBaseURL is used by tests to point at an httptest server.
func NewGeneratorWithBaseURL(baseURL string, logger *slog.Logger) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: apiBudget},
		logger:  logger,
	}
}

// Generate returns a fresh username. The remote API is given apiBudget to
// answer; on timeout or any error the local word lists are used instead.
func (g *Generator) Generate(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, apiBudget)
	defer cancel()

	adj, animal, err := g.fetchWords(ctx)
	if err != nil {
		g.logger.Debug("word API unavailable, using local word list",
			slog.String("error", err.Error()),
		)
		return compose(pick(adjectives), pick(animals))
	}

	return compose(adj, capitalize(animal))
}

// fetchWords asks the word API for one adjective and one animal.
// The API returns a one-element JSON array of strings per call.
func (g *Generator) fetchWords(ctx context.Context) (adj, animal string, err error) {
	adj, err = g.fetchWord(ctx, "/random/adjective")
	if err != nil {
		return "", "", err
	}
	animal, err = g.fetchWord(ctx, "/random/animal")
	if err != nil {
		return "", "", err
	}
	return adj, animal, nil
}

func (g *Generator) fetchWord(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("username: building request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("username: calling word API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("username: word API returned status %d", resp.StatusCode)
	}

	var words []string
	if err := json.NewDecoder(resp.Body).Decode(&words); err != nil {
		return "", fmt.Errorf("username: decoding word API response: %w", err)
	}
	if len(words) == 0 || words[0] == "" {
		return "", fmt.Errorf("username: word API returned no words")
	}

	return words[0], nil
}

func compose(adj, animal string) string {
	// 10..999 matches the suffix range users already have.
	num := rand.Intn(990) + 10
	return fmt.Sprintf("%s%s_%d", adj, animal, num)
}

func pick(words []string) string {
	return words[rand.Intn(len(words))]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
