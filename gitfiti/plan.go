package gitfiti

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
)

const (
	// MaxCountPerDay is the darkest bracket the canvas can paint.
	MaxCountPerDay = 24
	// MaxDays covers one contribution graph.
	MaxDays = 366
	// MaxCommitsPerPush bounds the API calls a single push may trigger.
	MaxCommitsPerPush = 1000
)

// Commit asks for Count commits on the calendar day of Date.
type Commit struct {
	Date  time.Time `json:"date" validate:"required"`
	Count int       `json:"count" validate:"gte=0,lte=24"`
}

// Plan is the body posted by the canvas.
type Plan struct {
	Commits []Commit `json:"commits" validate:"required,min=1,max=366,dive"`
}

var validate = validator.New()

// Total returns the number of commits the plan asks for.
func (p Plan) Total() int {
	total := 0
	for _, c := range p.Commits {
		total += c.Count
	}
	return total
}

// Validate checks the plan's shape and bounds. Dates after the day of now are
// rejected since the provider would not show them.
func (p Plan) Validate(now time.Time) error {
	if err := validate.Struct(p); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidPlan, "%v", err)
	}
	total := p.Total()
	if total == 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidPlan, "nothing to push")
	}
	if total > MaxCommitsPerPush {
		return apperrors.Wrapf(apperrors.ErrInvalidPlan, "%d commits requested, at most %d allowed", total, MaxCommitsPerPush)
	}
	today := day(now)
	for _, c := range p.Commits {
		if day(c.Date).After(today) {
			return apperrors.Wrapf(apperrors.ErrInvalidPlan, "date %s is in the future", c.Date.Format(time.DateOnly))
		}
	}
	return nil
}

// days merges the plan into one entry per calendar day, oldest first, dropping
// empty days.
func (p Plan) days() []Commit {
	counts := make(map[time.Time]int)
	for _, c := range p.Commits {
		counts[day(c.Date)] += c.Count
	}
	out := make([]Commit, 0, len(counts))
	for d, n := range counts {
		if n > 0 {
			out = append(out, Commit{Date: d, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// day truncates t to midnight UTC.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
