// Package clinic serves the static list of partner hospitals.
package clinic

import (
	"github.com/wolfman30/medibook/internal/i18n"
)

// Hospital is a partner location with English and Korean copies of each
// display field.
type Hospital struct {
	ID         string
	Name       string
	NameKo     string
	Distance   string
	DistanceKo string
	Hours      string
	HoursKo    string
	Rating     float64
	Image      string
	Address    string
	AddressKo  string
}

// View is a hospital rendered in one language.
type View struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance string  `json:"distance"`
	Hours    string  `json:"hours"`
	Rating   float64 `json:"rating"`
	Image    string  `json:"image"`
	Address  string  `json:"address"`
	// Scheduled marks locations that have not opened yet.
	Scheduled bool `json:"scheduled"`
}

// Localize renders h in lang. Unknown languages render in Korean.
func (h Hospital) Localize(lang i18n.Language) View {
	v := View{
		ID:        h.ID,
		Rating:    h.Rating,
		Image:     h.Image,
		Scheduled: h.Rating == 0,
	}
	switch lang {
	case i18n.English:
		v.Name, v.Distance, v.Hours, v.Address = h.Name, h.Distance, h.Hours, h.Address
	case i18n.Korean:
		v.Name, v.Distance, v.Hours, v.Address = h.NameKo, h.DistanceKo, h.HoursKo, h.AddressKo
	default:
		v.Name, v.Distance, v.Hours, v.Address = h.NameKo, h.DistanceKo, h.HoursKo, h.AddressKo
	}
	return v
}

// Directory is an immutable, ordered list of hospitals.
type Directory struct {
	hospitals []Hospital
}

// NewDirectory copies hospitals into a directory.
func NewDirectory(hospitals []Hospital) *Directory {
	return &Directory{hospitals: append([]Hospital(nil), hospitals...)}
}

// List renders every hospital in lang, preserving order.
func (d *Directory) List(lang i18n.Language) []View {
	out := make([]View, len(d.hospitals))
	for i, h := range d.hospitals {
		out[i] = h.Localize(lang)
	}
	return out
}

// Get looks a hospital up by id.
func (d *Directory) Get(id string) (Hospital, bool) {
	for _, h := range d.hospitals {
		if h.ID == id {
			return h, true
		}
	}
	return Hospital{}, false
}

// DefaultDirectory holds the flagship clinic and the scheduled openings.
var DefaultDirectory = NewDirectory([]Hospital{
	{
		ID:         "1",
		Name:       "Gangnam Mitocell Clinic",
		NameKo:     "강남 미토셀의원",
		Distance:   "0.0km away",
		DistanceKo: "0.0km 거리",
		Hours:      "09:00 - 19:00",
		HoursKo:    "09:00 - 19:00",
		Rating:     4.9,
		Image:      "https://images.unsplash.com/photo-1629909613654-28e377c37b09?auto=format&fit=crop&q=80&w=800",
		Address:    "411, Eonju-ro, Gangnam-gu, Seoul",
		AddressKo:  "서울 강남구 언주로 411",
	},
	{
		ID:         "2",
		Name:       "Daejeon (Scheduled)",
		NameKo:     "대전 (예정)",
		Distance:   "-",
		DistanceKo: "-",
		Hours:      "Coming Soon",
		HoursKo:    "오픈 예정",
		Image:      "https://images.unsplash.com/photo-1519494026892-80bbd2d6fd0d?auto=format&fit=crop&q=80&w=800",
		Address:    "Daejeon, South Korea",
		AddressKo:  "대전광역시",
	},
	{
		ID:         "3",
		Name:       "Busan (Scheduled)",
		NameKo:     "부산 (예정)",
		Distance:   "-",
		DistanceKo: "-",
		Hours:      "Coming Soon",
		HoursKo:    "오픈 예정",
		Image:      "https://images.unsplash.com/photo-1538108149393-fbbd81895907?auto=format&fit=crop&q=80&w=800",
		Address:    "Busan, South Korea",
		AddressKo:  "부산광역시",
	},
	{
		ID:         "4",
		Name:       "Jeju (Scheduled)",
		NameKo:     "제주 (예정)",
		Distance:   "-",
		DistanceKo: "-",
		Hours:      "Coming Soon",
		HoursKo:    "오픈 예정",
		Image:      "https://images.unsplash.com/photo-1586773860418-d37222d8fce3?auto=format&fit=crop&q=80&w=800",
		Address:    "Jeju, South Korea",
		AddressKo:  "제주특별자치도",
	},
})
