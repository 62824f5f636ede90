package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/pedrolhs/egressolink/repository"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

type PersonHandler struct {
	PersonRepo repository.PersonRepositoryInterface
}

func NewPersonHandler(personRepo repository.PersonRepositoryInterface) *PersonHandler {
	return &PersonHandler{PersonRepo: personRepo}
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// ListPeople returns a paginated page of the annotated dataset.
func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	people, total, err := ph.PersonRepo.List(offset, limit)
	if err != nil {
		log.Printf("Error listing people: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "list_failed", "Failed to list people")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"people": people,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// GetPerson returns one annotated person by numeric ID.
func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "personID")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid person ID format")
		return
	}

	person, err := ph.PersonRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Person not found")
			return
		}
		log.Printf("Error fetching person %d: %v", id, err)
		WriteAPIError(w, http.StatusInternalServerError, "fetch_failed", "Failed to fetch person")
		return
	}

	writeJSON(w, http.StatusOK, person)
}
