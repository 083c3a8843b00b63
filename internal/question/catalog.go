// Package question holds the trivia catalog: an opaque lookup from
// category id to questions. Content lives in a YAML file so it can be
// swapped without rebuilding the server.
package question

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCategory receives picks for unrecognized topic ids.
const DefaultCategory = "variety"

// Question pairs a prompt with its factually correct answer.
type Question struct {
	Prompt string `yaml:"q" json:"q"`
	Truth  string `yaml:"truth" json:"truth"`
}

// Catalog maps category id to its question list.
type Catalog map[string][]Question

// Load reads a catalog from a YAML file.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing question catalog: %w", err)
	}
	if len(c[DefaultCategory]) == 0 {
		return nil, fmt.Errorf("question catalog has no %q category", DefaultCategory)
	}
	return c, nil
}

// Categories returns the category ids present in the catalog.
func (c Catalog) Categories() []string {
	out := make([]string, 0, len(c))
	for id := range c {
		out = append(out, id)
	}
	return out
}

// Pick draws a question from the category (falling back to
// DefaultCategory for unknown ids), avoiding keys present in used.
// After 10 rejected draws the last draw is accepted even if repeated:
// a pragmatic bound, not a strict no-repeat guarantee.
func (c Catalog) Pick(category string, used map[string]bool) (Question, string) {
	list := c[category]
	if len(list) == 0 {
		category = DefaultCategory
		list = c[category]
	}

	var idx int
	var key string
	for attempts := 0; attempts < 10; attempts++ {
		idx = rand.Intn(len(list))
		key = fmt.Sprintf("%s-%d", category, idx)
		if !used[key] {
			break
		}
	}
	return list[idx], key
}
