package clinic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medibook/internal/i18n"
)

func TestDirectory_List(t *testing.T) {
	en := DefaultDirectory.List(i18n.English)
	ko := DefaultDirectory.List(i18n.Korean)

	require.Len(t, en, 4)
	require.Len(t, ko, 4)
	assert.Equal(t, "Gangnam Mitocell Clinic", en[0].Name)
	assert.Equal(t, "강남 미토셀의원", ko[0].Name)
	assert.Equal(t, "서울 강남구 언주로 411", ko[0].Address)
	assert.False(t, en[0].Scheduled)
	assert.True(t, en[3].Scheduled)
	assert.Equal(t, "오픈 예정", ko[1].Hours)
}

func TestDirectory_Immutable(t *testing.T) {
	src := []Hospital{{ID: "x", Name: "A", NameKo: "가"}}
	d := NewDirectory(src)
	src[0].Name = "changed"

	h, ok := d.Get("x")
	require.True(t, ok)
	assert.Equal(t, "A", h.Name)

	_, ok = d.Get("missing")
	assert.False(t, ok)
}

func TestHandler_ListHospitals(t *testing.T) {
	h := NewHandler(nil, i18n.Korean, nil)

	cases := []struct {
		name   string
		target string
		accept string
		want   i18n.Language
	}{
		{"query wins", "/api/hospitals?lang=en", "ko-KR", i18n.English},
		{"accept language", "/api/hospitals", "en-US,en;q=0.9", i18n.English},
		{"default", "/api/hospitals", "", i18n.Korean},
		{"bad query falls back", "/api/hospitals?lang=fr", "", i18n.Korean},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			rec := httptest.NewRecorder()
			h.ListHospitals(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want.String(), rec.Header().Get("Content-Language"))
			var body struct {
				Language  string `json:"language"`
				Hospitals []View `json:"hospitals"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.want.String(), body.Language)
			assert.Len(t, body.Hospitals, 4)
		})
	}
}
