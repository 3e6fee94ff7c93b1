// Package content implements the editable site content: the machine,
// service and project collections plus the static page text. Each
// collection is persisted as a single id-to-record document under one
// storage key, so every mutation is a whole-document read-modify-write.
package content

import "time"

// Storage keys, one JSON document each.
const (
	KeyMachines = "dynamic-machines"
	KeyServices = "dynamic-services"
	KeyProjects = "dynamic-projects"
	KeyPages    = "content-data"
)

// Audit section tags recorded with every change.
const (
	SectionMachines = "machines"
	SectionServices = "services"
	SectionProjects = "projects"
	SectionAbout    = "about"
)

// Meta is the base shape shared by every content record. ID and
// CreatedAt are assigned at creation and never change afterwards;
// UpdatedAt is refreshed on every mutation. Image is the URL of an
// externally hosted blob, empty when the record has no image.
type Meta struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Machine display sides.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Machine is one plant-hire machine shown on the machines page.
// Side is a display-layout hint; ForSale flags machines offered for
// purchase rather than hire only.
type Machine struct {
	Meta
	Features []string `json:"features"`
	Side     string   `json:"side"`
	ForSale  bool     `json:"forSale"`
}

// Service is one civil-engineering service. Icon is a symbolic name the
// frontend resolves to a glyph.
type Service struct {
	Meta
	FullDescription string   `json:"fullDescription"`
	Features        []string `json:"features"`
	Icon            string   `json:"icon"`
}

// Project is one completed project shown in the portfolio.
type Project struct {
	Meta
	Client        string   `json:"client"`
	CompletedDate string   `json:"completedDate"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
}

// ValidSide reports whether side is a recognized layout hint.
func ValidSide(side string) bool {
	return side == SideLeft || side == SideRight
}
