// Package rubric holds the supplier evaluation questionnaire and the
// sub-category supplier lookup. A Catalog is built once at start-up and is
// read-only afterwards.
package rubric

import (
	_ "embed"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed rubric.yaml
var defaultRubric []byte

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type Choice struct {
	Score decimal.Decimal
	Label string
}

type Question struct {
	Key     string
	Label   string
	Choices []Choice
}

// Catalog is the immutable questionnaire plus supplier tables.
type Catalog struct {
	questions []Question
	byKey     map[string]int
	hidden    []string
	subs      []string
	suppliers map[string][]string
	scoreKeys []string
}

type fileChoice struct {
	Score string `yaml:"score"`
	Label string `yaml:"label"`
}

type fileQuestion struct {
	Key     string       `yaml:"key"`
	Label   string       `yaml:"label"`
	Choices []fileChoice `yaml:"choices"`
}

type fileSuppliers struct {
	SubCategory string   `yaml:"subCategory"`
	Names       []string `yaml:"names"`
}

type file struct {
	Questions []fileQuestion  `yaml:"questions"`
	Hidden    []string        `yaml:"hidden"`
	Suppliers []fileSuppliers `yaml:"suppliers"`
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultRubric)
	if err != nil {
		panic(fmt.Sprintf("rubric: embedded catalog: %v", err))
	}
	return c
}

// Parse decodes and validates a YAML catalog.
func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode rubric: %w", err)
	}
	if len(f.Questions) == 0 {
		return nil, fmt.Errorf("rubric has no questions")
	}

	c := &Catalog{
		byKey:     make(map[string]int, len(f.Questions)),
		suppliers: make(map[string][]string, len(f.Suppliers)),
	}
	seen := make(map[string]bool)
	claim := func(key string) error {
		if !keyPattern.MatchString(key) {
			return fmt.Errorf("invalid score key %q", key)
		}
		if seen[key] {
			return fmt.Errorf("duplicate score key %q", key)
		}
		seen[key] = true
		c.scoreKeys = append(c.scoreKeys, key)
		return nil
	}

	for _, fq := range f.Questions {
		if err := claim(fq.Key); err != nil {
			return nil, err
		}
		if fq.Label == "" {
			return nil, fmt.Errorf("question %q has no label", fq.Key)
		}
		if len(fq.Choices) == 0 {
			return nil, fmt.Errorf("question %q has no choices", fq.Key)
		}
		q := Question{Key: fq.Key, Label: fq.Label, Choices: make([]Choice, 0, len(fq.Choices))}
		for _, fc := range fq.Choices {
			score, err := decimal.NewFromString(fc.Score)
			if err != nil {
				return nil, fmt.Errorf("question %q: score %q: %w", fq.Key, fc.Score, err)
			}
			q.Choices = append(q.Choices, Choice{Score: score, Label: fc.Label})
		}
		c.byKey[q.Key] = len(c.questions)
		c.questions = append(c.questions, q)
	}

	for _, key := range f.Hidden {
		if err := claim(key); err != nil {
			return nil, err
		}
		c.hidden = append(c.hidden, key)
	}

	for _, s := range f.Suppliers {
		if s.SubCategory == "" {
			return nil, fmt.Errorf("supplier list without subCategory")
		}
		if _, dup := c.suppliers[s.SubCategory]; dup {
			return nil, fmt.Errorf("duplicate subCategory %q", s.SubCategory)
		}
		c.subs = append(c.subs, s.SubCategory)
		c.suppliers[s.SubCategory] = append([]string(nil), s.Names...)
	}
	return c, nil
}

// Questions returns the ordered questions to render for a category and
// sub-category. Every pair currently shares the same questionnaire.
func (c *Catalog) Questions(category, subCategory string) []Question {
	out := make([]Question, len(c.questions))
	for i, q := range c.questions {
		out[i] = Question{Key: q.Key, Label: q.Label, Choices: append([]Choice(nil), q.Choices...)}
	}
	return out
}

// Question looks up a rendered question by key. Hidden keys are not questions.
func (c *Catalog) Question(key string) (Question, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Suppliers lists the eligible supplier names for a sub-category. Unknown
// sub-categories yield an empty list.
func (c *Catalog) Suppliers(subCategory string) []string {
	return append([]string{}, c.suppliers[subCategory]...)
}

func (c *Catalog) SubCategories() []string {
	return append([]string(nil), c.subs...)
}

// HiddenKeys are scored fields without a form control.
func (c *Catalog) HiddenKeys() []string {
	return append([]string(nil), c.hidden...)
}

// ScoreKeys returns every scored field: question keys in order, then hidden keys.
func (c *Catalog) ScoreKeys() []string {
	return append([]string(nil), c.scoreKeys...)
}
