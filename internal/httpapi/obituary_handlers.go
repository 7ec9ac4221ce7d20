package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"thelastshow.org/internal/audit"
	"thelastshow.org/internal/auth"
	"thelastshow.org/internal/obituary"
)

type createObituaryRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	DeathDate string `json:"death_date"`
	IsPublic  bool   `json:"is_public"`
}

type listObituariesResponse struct {
	Obituaries []obituary.Obituary `json:"obituaries"`
	Total      int                 `json:"total"`
}

func (a *API) handleObituariesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createObituary(w, r)
	case http.MethodGet:
		a.listPublicObituaries(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleObituaryResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/obituaries/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if path == "my" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.listMyObituaries(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getObituary(w, r, path)
	case http.MethodDelete:
		a.deleteObituary(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) createObituary(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "missing bearer token")
		return
	}

	in, err := parseCreateInput(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if fields := validateCreateInput(in); len(fields) > 0 {
		writeValidationError(w, r, fields)
		return
	}

	o, err := a.obituaries.Create(r.Context(), user.ID, in)
	if err != nil {
		if errors.Is(err, obituary.ErrInvalidInput) {
			writeError(w, r, http.StatusBadRequest, "invalid obituary data")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "obituary.create", map[string]any{
		"obituary_id": o.ID,
		"is_public":   o.Public,
	})

	w.Header().Set("Location", "/obituaries/"+o.ID)
	writeJSON(w, http.StatusCreated, o)
}

// parseCreateInput accepts the multipart form the web client sends, or a
// plain JSON body for API callers. The image is multipart-only.
func parseCreateInput(w http.ResponseWriter, r *http.Request) (obituary.CreateInput, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		return parseMultipartCreate(r)
	}

	var req createObituaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return obituary.CreateInput{}, err
	}
	return obituary.CreateInput{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		DeathDate: req.DeathDate,
		Public:    req.IsPublic,
	}, nil
}

func parseMultipartCreate(r *http.Request) (obituary.CreateInput, error) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return obituary.CreateInput{}, errors.New("invalid multipart form")
	}

	in := obituary.CreateInput{
		Name:      r.FormValue("name"),
		BirthDate: r.FormValue("birth_date"),
		DeathDate: r.FormValue("death_date"),
	}
	if v := r.FormValue("is_public"); v != "" {
		public, err := strconv.ParseBool(v)
		if err != nil {
			return obituary.CreateInput{}, errors.New("is_public must be a boolean")
		}
		in.Public = public
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, nil
	case err != nil:
		return obituary.CreateInput{}, errors.New("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return obituary.CreateInput{}, errors.New("reading image upload failed")
	}
	in.ImageData = data
	in.ImageName = header.Filename
	return in, nil
}

func validateCreateInput(in obituary.CreateInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if strings.TrimSpace(in.BirthDate) == "" {
		fields["birth_date"] = "birth_date is required"
	}
	if strings.TrimSpace(in.DeathDate) == "" {
		fields["death_date"] = "death_date is required"
	}
	return fields
}

func (a *API) listPublicObituaries(w http.ResponseWriter, r *http.Request) {
	skip, err := parseNonNegativeInt(r.URL.Query().Get("skip"), 0, 1_000_000, "skip")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseNonNegativeInt(r.URL.Query().Get("limit"), 100, 1000, "limit")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	a.listObituaries(w, r, obituary.Filter{Skip: skip, Limit: limit})
}

func (a *API) listMyObituaries(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "missing bearer token")
		return
	}
	a.listObituaries(w, r, obituary.Filter{OwnerID: user.ID})
}

func (a *API) listObituaries(w http.ResponseWriter, r *http.Request, f obituary.Filter) {
	items, err := a.obituaries.List(r.Context(), f)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	total, err := a.obituaries.Count(r.Context(), f)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []obituary.Obituary{}
	}
	writeJSON(w, http.StatusOK, listObituariesResponse{
		Obituaries: items,
		Total:      total,
	})
}

func (a *API) getObituary(w http.ResponseWriter, r *http.Request, id string) {
	var viewerID string
	if user, ok := auth.UserFromContext(r.Context()); ok {
		viewerID = user.ID
	}

	o, err := a.obituaries.Get(r.Context(), id, viewerID)
	if err != nil {
		if errors.Is(err, obituary.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "obituary not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *API) deleteObituary(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "missing bearer token")
		return
	}

	if err := a.obituaries.Delete(r.Context(), id, user.ID); err != nil {
		// A foreign record and a missing one answer identically.
		if errors.Is(err, obituary.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "obituary not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "obituary.delete", map[string]any{
		"obituary_id": id,
	})

	w.WriteHeader(http.StatusNoContent)
}
