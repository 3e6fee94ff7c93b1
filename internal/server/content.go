package server

import (
	"errors"
	"fmt"
	"net/http"

	"groundcms/internal/content"
)

// maxUploadSize bounds multipart form memory for image uploads.
const maxUploadSize = 10 << 20

// resource wires the generic CRUD handler for one content domain.
// parseCreate validates and builds a new record from the submitted
// form; applyUpdate copies exactly the fields present in the form onto
// an existing record, preserving everything omitted.
type resource[T any] struct {
	srv         *Server
	repo        *content.Repository[T]
	parseCreate func(r *http.Request) (*T, error)
	applyUpdate func(r *http.Request, rec *T)
}

func (res *resource[T]) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		res.get(w, r)
	case http.MethodPost:
		res.create(w, r)
	case http.MethodPut:
		res.update(w, r)
	case http.MethodDelete:
		res.delete(w, r)
	default:
		handleMethodNotAllowed(w, r)
	}
}

func (res *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondData(w, http.StatusOK, res.repo.List(r.Context()))
		return
	}

	rec, ok := res.repo.GetByID(r.Context(), id)
	if !ok {
		respondError(w, http.StatusNotFound, "Record not found")
		return
	}
	respondData(w, http.StatusOK, rec)
}

func (res *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	rec, err := res.parseCreate(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := res.repo.Create(r.Context(), rec)
	if err != nil {
		res.srv.deps.Logger.Error("create failed", "section", res.repo.Section(), "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Image attachment is a follow-up write: the upload key needs the
	// id assigned by the create above.
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		id := res.repo.Meta(created).ID
		url, err := res.srv.deps.Blobs.Upload(r.Context(), res.repo.Section(), id, header.Filename, file)
		if err != nil {
			res.srv.deps.Logger.Error("image upload failed", "section", res.repo.Section(), "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Image upload failed")
			return
		}
		withImage, _, err := res.repo.SetImage(r.Context(), id, url)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		created = withImage
	case errors.Is(err, http.ErrMissingFile):
		// No image submitted.
	default:
		respondError(w, http.StatusBadRequest, "Invalid image upload")
		return
	}

	respondData(w, http.StatusCreated, created)
}

func (res *resource[T]) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	id := r.FormValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, ok := res.repo.GetByID(r.Context(), id)
	if !ok {
		respondError(w, http.StatusNotFound, "Record not found")
		return
	}
	oldURL := res.repo.Meta(existing).Image

	// removeImage is an explicit flag: omitting the image field leaves
	// the current image alone.
	removeImage := r.FormValue("removeImage") == "true"

	// Replacement uploads the new blob first; the old one is deleted
	// only after the record points at the new URL.
	var newURL string
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		newURL, err = res.srv.deps.Blobs.Upload(r.Context(), res.repo.Section(), id, header.Filename, file)
		if err != nil {
			res.srv.deps.Logger.Error("image upload failed", "section", res.repo.Section(), "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Image upload failed")
			return
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		respondError(w, http.StatusBadRequest, "Invalid image upload")
		return
	}

	updated, found, err := res.repo.Update(r.Context(), id, func(rec *T) {
		res.applyUpdate(r, rec)
		m := res.repo.Meta(rec)
		switch {
		case newURL != "":
			m.Image = newURL
		case removeImage:
			m.Image = ""
		}
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Record not found")
		return
	}

	if oldURL != "" && (newURL != "" && newURL != oldURL || removeImage && newURL == "") {
		if err := res.srv.deps.Blobs.Delete(r.Context(), oldURL); err != nil {
			res.srv.deps.Logger.Warn("deleting replaced blob failed", "url", oldURL, "error", err)
		}
	}

	respondData(w, http.StatusOK, updated)
}

func (res *resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	found, err := res.repo.Delete(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Record not found")
		return
	}
	respondMessage(w, http.StatusOK, "Record deleted")
}

// formHas reports whether the field was present in the submitted form,
// distinguishing "omitted" from "provided empty".
func formHas(r *http.Request, key string) bool {
	_, ok := r.Form[key]
	return ok
}

func requireFields(r *http.Request, fields ...string) error {
	for _, f := range fields {
		if r.FormValue(f) == "" {
			return fmt.Errorf("%s is required", f)
		}
	}
	return nil
}

func parseMachineCreate(r *http.Request) (*content.Machine, error) {
	if err := requireFields(r, "title", "description"); err != nil {
		return nil, err
	}

	side := r.FormValue("side")
	if side == "" {
		side = content.SideLeft
	}
	if !content.ValidSide(side) {
		return nil, fmt.Errorf("side must be %q or %q", content.SideLeft, content.SideRight)
	}

	return &content.Machine{
		Meta: content.Meta{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
		},
		Features: r.Form["features"],
		Side:     side,
		ForSale:  r.FormValue("forSale") == "true",
	}, nil
}

func applyMachineUpdate(r *http.Request, m *content.Machine) {
	if formHas(r, "title") {
		m.Title = r.FormValue("title")
	}
	if formHas(r, "description") {
		m.Description = r.FormValue("description")
	}
	if formHas(r, "features") {
		m.Features = r.Form["features"]
	}
	if side := r.FormValue("side"); content.ValidSide(side) {
		m.Side = side
	}
	if formHas(r, "forSale") {
		m.ForSale = r.FormValue("forSale") == "true"
	}
}

func parseServiceCreate(r *http.Request) (*content.Service, error) {
	if err := requireFields(r, "title", "description"); err != nil {
		return nil, err
	}

	return &content.Service{
		Meta: content.Meta{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
		},
		FullDescription: r.FormValue("fullDescription"),
		Features:        r.Form["features"],
		Icon:            r.FormValue("icon"),
	}, nil
}

func applyServiceUpdate(r *http.Request, s *content.Service) {
	if formHas(r, "title") {
		s.Title = r.FormValue("title")
	}
	if formHas(r, "description") {
		s.Description = r.FormValue("description")
	}
	if formHas(r, "fullDescription") {
		s.FullDescription = r.FormValue("fullDescription")
	}
	if formHas(r, "features") {
		s.Features = r.Form["features"]
	}
	if formHas(r, "icon") {
		s.Icon = r.FormValue("icon")
	}
}

func parseProjectCreate(r *http.Request) (*content.Project, error) {
	if err := requireFields(r, "title", "description"); err != nil {
		return nil, err
	}

	return &content.Project{
		Meta: content.Meta{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
		},
		Client:        r.FormValue("client"),
		CompletedDate: r.FormValue("completedDate"),
		Category:      r.FormValue("category"),
		Tags:          r.Form["tags"],
	}, nil
}

func applyProjectUpdate(r *http.Request, p *content.Project) {
	if formHas(r, "title") {
		p.Title = r.FormValue("title")
	}
	if formHas(r, "description") {
		p.Description = r.FormValue("description")
	}
	if formHas(r, "client") {
		p.Client = r.FormValue("client")
	}
	if formHas(r, "completedDate") {
		p.CompletedDate = r.FormValue("completedDate")
	}
	if formHas(r, "category") {
		p.Category = r.FormValue("category")
	}
	if formHas(r, "tags") {
		p.Tags = r.Form["tags"]
	}
}
