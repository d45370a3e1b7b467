package filter

import (
	"strings"

	"github.com/amishk599/hirecall/internal/model"
)

// ApplicationFilter selects the applications of a job post that should get
// a screening call. An application matches when it is shortlisted (unless
// shortlisting is not required), scored at least minScore, has a phone
// number, and has not been called already.
type ApplicationFilter struct {
	minScore        int
	shortlistedOnly bool
	called          map[string]bool
}

// NewApplicationFilter returns a filter. called holds application ids that
// already have a call and are skipped.
func NewApplicationFilter(minScore int, shortlistedOnly bool, called []string) *ApplicationFilter {
	set := make(map[string]bool, len(called))
	for _, id := range called {
		set[id] = true
	}
	return &ApplicationFilter{
		minScore:        minScore,
		shortlistedOnly: shortlistedOnly,
		called:          set,
	}
}

// Match reports whether app should be called.
func (f *ApplicationFilter) Match(app *model.JobApplication) bool {
	if f.called[app.ID] {
		return false
	}
	if f.shortlistedOnly && !app.IsShortlisted {
		return false
	}
	if f.minScore > 0 {
		if app.ATSScore == nil || *app.ATSScore < f.minScore {
			return false
		}
	}
	return strings.TrimSpace(app.CandidatePhone) != ""
}

// Select returns the matching applications in input order.
func (f *ApplicationFilter) Select(apps []*model.JobApplication) []*model.JobApplication {
	var out []*model.JobApplication
	for _, a := range apps {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}
