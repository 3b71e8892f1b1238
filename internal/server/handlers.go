package server

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/orgball2608/story-explorer/internal/domain"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	store := "memory"
	if s.local.Available() {
		store = string(s.local.Dialect)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": store})
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) observe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Online *bool `json:"online"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Online == nil {
		s.writeError(w, r, invalid(`body must be {"online": true|false}`))
		return
	}
	s.monitor.Observe(r.Context(), *body.Online)
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) listStories(w http.ResponseWriter, r *http.Request) {
	location := 1
	if raw := r.URL.Query().Get("location"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || (v != 0 && v != 1) {
			s.writeError(w, r, invalid("location must be 0 or 1"))
			return
		}
		location = v
	}

	page, err := s.explorer.LoadStories(r.Context(), bearer(r), location)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) submitStory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeError(w, r, invalid("body must be multipart/form-data within 10MB"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	lat, latErr := strconv.ParseFloat(r.FormValue("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.FormValue("lon"), 64)
	if latErr != nil || lonErr != nil {
		s.writeError(w, r, invalid("lat and lon are required"))
		return
	}

	draft := domain.StoryDraft{
		Description: r.FormValue("description"),
		Lat:         lat,
		Lon:         lon,
		Token:       bearer(r),
	}

	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		draft.Photo, err = io.ReadAll(file)
		if err != nil {
			s.writeError(w, r, invalid("photo could not be read"))
			return
		}
		draft.PhotoName = header.Filename
		draft.PhotoContentType = header.Header.Get("Content-Type")
	}

	out, err := s.explorer.SubmitStory(r.Context(), draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	entries, err := s.explorer.ListFavorites(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	story, ok := s.decodeStory(w, r)
	if !ok {
		return
	}
	story.ID = r.PathValue("id")

	entry, err := s.explorer.AddFavorite(r.Context(), story)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.explorer.RemoveFavorite(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) isFavorite(w http.ResponseWriter, r *http.Request) {
	ok, err := s.explorer.IsFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": ok})
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	story, ok := s.decodeStory(w, r)
	if !ok {
		return
	}
	if story.ID == "" {
		s.writeError(w, r, invalid("story id is required"))
		return
	}

	on, err := s.explorer.ToggleFavorite(r.Context(), story)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": on})
}

func (s *Server) clearFavorites(w http.ResponseWriter, r *http.Request) {
	if err := s.explorer.ClearFavorites(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPending(w http.ResponseWriter, r *http.Request) {
	items, err := s.explorer.ListPending(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) clearPending(w http.ResponseWriter, r *http.Request) {
	if err := s.explorer.ClearPending(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) syncNow(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientKey(r)) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: true, Message: "sync requested too often, try again shortly"})
		return
	}

	result, err := s.explorer.SyncNow(r.Context())
	s.state.SyncCompleted(result, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) decodeStory(w http.ResponseWriter, r *http.Request) (domain.Story, bool) {
	var story domain.Story
	if r.ContentLength == 0 {
		return story, true
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&story); err != nil && err != io.EOF {
		s.writeError(w, r, invalid("body must be a story object"))
		return story, false
	}
	return story, true
}

func bearer(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
