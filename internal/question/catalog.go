// Package question provides the deploy-time question catalog.
package question

import (
	"github.com/hanatore/api/internal/domain"
)

// Filter narrows a catalog listing. Zero values match everything.
type Filter struct {
	Mode         domain.TrainingMode
	TrainingType domain.TrainingType
	Difficulty   int
}

// Catalog is a read-only collection of questions, fixed at deploy time.
type Catalog struct {
	questions []domain.Question
	byID      map[string]int
}

// NewCatalog creates a catalog over the given questions. Order is
// preserved for listing and pagination.
func NewCatalog(questions []domain.Question) *Catalog {
	byID := make(map[string]int, len(questions))
	for i, q := range questions {
		byID[q.ID] = i
	}
	return &Catalog{questions: questions, byID: byID}
}

// Default returns the catalog with the built-in question bank.
func Default() *Catalog {
	return NewCatalog(defaultQuestions)
}

// Get returns the question with the given id.
func (c *Catalog) Get(id string) (domain.Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Question{}, false
	}
	return c.questions[i], true
}

// List returns the page of questions matching the filter plus the total
// match count before pagination.
func (c *Catalog) List(f Filter, limit, offset int) ([]domain.Question, int) {
	var matched []domain.Question
	for _, q := range c.questions {
		if f.Mode != "" && q.Mode != f.Mode {
			continue
		}
		if f.TrainingType != "" && q.TrainingType != f.TrainingType {
			continue
		}
		if f.Difficulty != 0 && q.Difficulty != f.Difficulty {
			continue
		}
		matched = append(matched, q)
	}

	total := len(matched)
	if offset >= total {
		return nil, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total
}

// Daily returns up to limit non-premium questions recommended for
// today's practice.
func (c *Catalog) Daily(limit int) []domain.Question {
	var daily []domain.Question
	for _, q := range c.questions {
		if q.IsPremium {
			continue
		}
		daily = append(daily, q)
		if len(daily) == limit {
			break
		}
	}
	return daily
}
