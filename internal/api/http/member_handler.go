package http

import (
	"errors"
	"net/http"
	"strings"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/service"
)

type memberHandler struct {
	svc            service.MemberService
	maxUploadBytes int64
}

type memberRequest struct {
	FullName    string  `json:"full_name"`
	PhoneNumber string  `json:"phone_number"`
	Password    string  `json:"password"`
	Birthdate   *string `json:"birthdate"`
	SpouseName  *string `json:"spouse_name"`
}

type memberUpdateRequest struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	Birthdate   *string `json:"birthdate"`
	SpouseName  *string `json:"spouse_name"`
}

func (h *memberHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	members, err := h.svc.ListMembers(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if members == nil {
		members = []domain.MemberSummary{}
	}
	writeJSON(w, http.StatusOK, members)
}

// add accepts either a JSON body or a multipart form with an optional
// "image" file part.
func (h *memberHandler) add(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())

	var (
		input service.MemberInput
		image *service.ImageUpload
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var cleanup func()
		var err error
		input, image, cleanup, err = h.parseMultipart(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer cleanup()
	} else {
		var req memberRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		input = service.MemberInput(req)
	}

	user, err := h.svc.AddMember(r.Context(), actor, input, image)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *memberHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (service.MemberInput, *service.ImageUpload, func(), error) {
	noop := func() {}
	if h.maxUploadBytes > 0 {
		// Leave headroom for the text fields.
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return service.MemberInput{}, nil, noop, &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	input := service.MemberInput{
		FullName:    r.FormValue("full_name"),
		PhoneNumber: r.FormValue("phone_number"),
		Password:    r.FormValue("password"),
		Birthdate:   optionalForm(r, "birthdate"),
		SpouseName:  optionalForm(r, "spouse_name"),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return input, nil, cleanup, nil
	}
	if err != nil {
		cleanup()
		return service.MemberInput{}, nil, noop, &domain.ValidationError{Field: "image", Reason: err.Error()}
	}

	image := &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}
	return input, image, func() {
		file.Close()
		cleanup()
	}, nil
}

func optionalForm(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := r.FormValue(key)
	return &v
}

func (h *memberHandler) profile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	user, err := h.svc.GetProfile(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *memberHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req memberUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	user, err := h.svc.UpdateMember(r.Context(), actor, id, service.MemberUpdate(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *memberHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	if err := h.svc.DeleteMember(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *memberHandler) details(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	details, err := h.svc.GetMemberDetails(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
