package clinic

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/pkg/logging"
)

// Handler serves the hospital directory.
type Handler struct {
	directory   *Directory
	defaultLang i18n.Language
	logger      *logging.Logger
}

// NewHandler creates the directory handler. A nil directory serves DefaultDirectory.
func NewHandler(directory *Directory, defaultLang i18n.Language, logger *logging.Logger) *Handler {
	if directory == nil {
		directory = DefaultDirectory
	}
	if !defaultLang.Valid() {
		defaultLang = i18n.DefaultLanguage
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{directory: directory, defaultLang: defaultLang, logger: logger}
}

// ListHospitals renders the directory in ?lang=, falling back to the
// Accept-Language header and then the default language.
// GET /api/hospitals
func (h *Handler) ListHospitals(w http.ResponseWriter, r *http.Request) {
	lang, err := i18n.ParseLanguage(r.URL.Query().Get("lang"))
	if err != nil {
		lang = i18n.Negotiate(r.Header.Get("Accept-Language"), h.defaultLang)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Language", lang.String())
	body := struct {
		Language  i18n.Language `json:"language"`
		Hospitals []View        `json:"hospitals"`
	}{Language: lang, Hospitals: h.directory.List(lang)}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("clinic: encode hospitals", "error", err)
	}
}
