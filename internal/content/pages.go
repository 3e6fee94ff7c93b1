package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"groundcms/internal/store"
)

// ErrUnknownSection is returned by UpdateSection for a section name
// outside the fixed set.
var ErrUnknownSection = errors.New("unknown page section")

// Page section names accepted by Pages.UpdateSection.
const (
	PageAbout    = "about"
	PageServices = "services"
	PageProjects = "projects"
)

// PageSection is one editable block of static page text.
type PageSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// PageContent is the full editable static text document, stored as one
// value under the content-data key.
type PageContent struct {
	About     PageSection `json:"about"`
	Services  PageSection `json:"services"`
	Projects  PageSection `json:"projects"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// DefaultPageContent returns the text served before an admin has edited
// anything.
func DefaultPageContent() PageContent {
	return PageContent{
		About: PageSection{
			Heading: "About Us",
			Body:    "Family-run plant hire and civil engineering, serving the region for over two decades.",
		},
		Services: PageSection{
			Heading: "Our Services",
			Body:    "Groundworks, earthmoving, drainage and site clearance, delivered by experienced operators.",
		},
		Projects: PageSection{
			Heading: "Recent Projects",
			Body:    "A selection of completed works for residential, commercial and public-sector clients.",
		},
	}
}

// Pages manages the editable static page text.
type Pages struct {
	deps Deps
	mu   sync.Mutex
}

// NewPages creates the page content module.
func NewPages(deps Deps) *Pages {
	return &Pages{deps: deps.withDefaults()}
}

// Get returns the current page content, falling back to the defaults on
// any read failure.
func (p *Pages) Get(ctx context.Context) PageContent {
	return store.GetJSON(ctx, p.deps.Store, KeyPages, DefaultPageContent())
}

// UpdateSection replaces one page section and persists the whole
// document. The section name doubles as the audit tag.
func (p *Pages) UpdateSection(ctx context.Context, section string, sec PageSection) (PageContent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc := store.GetJSON(ctx, p.deps.Store, KeyPages, DefaultPageContent())

	switch section {
	case PageAbout:
		doc.About = sec
	case PageServices:
		doc.Services = sec
	case PageProjects:
		doc.Projects = sec
	default:
		return PageContent{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	doc.UpdatedAt = p.deps.Clock.Now().UTC()

	if err := store.SetJSON(ctx, p.deps.Store, KeyPages, doc); err != nil {
		return PageContent{}, fmt.Errorf("updating page content: %w", err)
	}

	p.deps.Logger.Info("page content updated", "section", section)
	if p.deps.Changes != nil {
		details := fmt.Sprintf("Edited %s page text", section)
		if err := p.deps.Changes.RecordChange(ctx, "update", details, section, ""); err != nil {
			p.deps.Logger.Warn("recording change failed", "section", section, "error", err)
		}
	}
	return doc, nil
}
