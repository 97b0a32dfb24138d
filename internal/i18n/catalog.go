package i18n

// Key identifies a localized string.
type Key string

const (
	KeyFindBook        Key = "findBook"
	KeyScheduleVisit   Key = "scheduleVisit"
	KeyLocation        Key = "location"
	KeyGetDirections   Key = "getDirections"
	KeyPatientDetails  Key = "patientDetails"
	KeyFullName        Key = "fullName"
	KeyPhone           Key = "phone"
	KeyEmail           Key = "email"
	KeyAgree           Key = "agree"
	KeyTerms           Key = "terms"
	KeyPrivacy         Key = "privacy"
	KeyPrivacyConsent  Key = "privacyConsent"
	KeyBookBtn         Key = "bookBtn"
	KeyBooked          Key = "booked"
	KeyConfirmation    Key = "confirmation"
	KeyBookingNote     Key = "bookingNote"
	KeyChatHelp        Key = "chatHelp"
	KeyChatPlaceholder Key = "chatPlaceholder"
	KeyLoading         Key = "loading"
	KeyMenu            Key = "menu"
	KeyAlertConsent    Key = "alertConsent"
	KeyChatTitle       Key = "chatTitle"
	KeyNeedHelp        Key = "needHelp"
	KeyLanguage        Key = "language"
	KeyMissingFields   Key = "missingFields"
	KeyInputCheck      Key = "inputCheck"
	KeyConfirm         Key = "confirm"

	// Chat collaborator fallbacks.
	KeyChatUnavailable Key = "chatUnavailable"
	KeyChatError       Key = "chatError"
	KeyChatEmptyReply  Key = "chatEmptyReply"
)

// Catalog is an immutable language -> key -> text table.
type Catalog struct {
	tables map[Language]map[Key]string
}

// NewCatalog copies the given tables so later mutation by the caller has no effect.
func NewCatalog(tables map[Language]map[Key]string) *Catalog {
	c := &Catalog{tables: make(map[Language]map[Key]string, len(tables))}
	for lang, table := range tables {
		cp := make(map[Key]string, len(table))
		for k, v := range table {
			cp[k] = v
		}
		c.tables[lang] = cp
	}
	return c
}

// Text returns the string for key in lang. Missing entries fall back to the
// default language and finally to the key itself.
func (c *Catalog) Text(lang Language, key Key) string {
	if s, ok := c.tables[lang][key]; ok {
		return s
	}
	if s, ok := c.tables[DefaultLanguage][key]; ok {
		return s
	}
	return string(key)
}

// Table returns a copy of every string for lang.
func (c *Catalog) Table(lang Language) map[Key]string {
	src := c.tables[lang]
	out := make(map[Key]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// DefaultCatalog holds the site copy for both languages.
//
// English "loading" equals "bookBtn" as shipped in the site copy.
var DefaultCatalog = NewCatalog(map[Language]map[Key]string{
	Korean: {
		KeyFindBook:        "토마톡 120세 건강 지킴이 메디컬 및 웰니스 센터를 찾아 예약하세요",
		KeyScheduleVisit:   "가까운 병원 진료를 예약하세요.",
		KeyLocation:        "위치",
		KeyGetDirections:   "카카오맵",
		KeyPatientDetails:  "고객 정보",
		KeyFullName:        "성함",
		KeyPhone:           "전화번호",
		KeyEmail:           "이메일",
		KeyAgree:           "개인정보 처리에 동의합니다.",
		KeyTerms:           "이용약관",
		KeyPrivacy:         "개인정보처리방침",
		KeyPrivacyConsent:  "개인정보 수집 동의",
		KeyBookBtn:         "상담 및 예약하기",
		KeyBooked:          "예약 완료!",
		KeyConfirmation:    "osec0521@gmail.com으로 확인 메일이 발송되었습니다.",
		KeyBookingNote:     "상담 및 예약하기를 정상적으로 등록하신 분은 순서에 맞게 예약 담당자가 연락을 드립니다",
		KeyChatHelp:        "안녕하세요! 병원 예약이나 궁금한 점을 도와드릴까요?",
		KeyChatPlaceholder: "메시지를 입력하세요...",
		KeyLoading:         "처리중...",
		KeyMenu:            "메뉴",
		KeyAlertConsent:    "개인정보 처리방침에 동의해주세요.",
		KeyChatTitle:       "메디봇",
		KeyNeedHelp:        "예약 도움이 필요하신가요?",
		KeyLanguage:        "Language",
		KeyMissingFields:   "다음 정보를 입력해주세요:\n",
		KeyInputCheck:      "입력 확인",
		KeyConfirm:         "확인",
		KeyChatUnavailable: "죄송합니다. 서버 연결에 문제가 발생했습니다. API 설정을 확인해주세요.",
		KeyChatError:       "죄송합니다. 요청을 처리하는 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요.",
		KeyChatEmptyReply:  "죄송합니다. 다시 말씀해 주시겠어요?",
	},
	English: {
		KeyFindBook:        "Find & Book at Tomatalk 120-year Health Guardian Medical & Wellness Center",
		KeyScheduleVisit:   "Schedule your visit with top hospitals in your area.",
		KeyLocation:        "Location",
		KeyGetDirections:   "Kakao Map",
		KeyPatientDetails:  "Patient Details",
		KeyFullName:        "Full Name",
		KeyPhone:           "Phone Number",
		KeyEmail:           "Email Address",
		KeyAgree:           "I agree to the processing of my personal data.",
		KeyTerms:           "Terms",
		KeyPrivacy:         "Privacy Policy",
		KeyPrivacyConsent:  "Privacy Policy Consent",
		KeyBookBtn:         "Book Appointment",
		KeyBooked:          "Booked Successfully!",
		KeyConfirmation:    "Confirmation sent to osec0521@gmail.com",
		KeyBookingNote:     "Those who have successfully registered will be contacted by the reservation manager in order.",
		KeyChatHelp:        "Hi there! I can help you find a hospital or answer questions about booking.",
		KeyChatPlaceholder: "Ask for help...",
		KeyLoading:         "Book Appointment",
		KeyMenu:            "Menu",
		KeyAlertConsent:    "Please agree to the privacy policy to continue.",
		KeyChatTitle:       "MediBot",
		KeyNeedHelp:        "Need help booking? Chat with us!",
		KeyLanguage:        "언어",
		KeyMissingFields:   "Please enter the following fields:\n",
		KeyInputCheck:      "Check Input",
		KeyConfirm:         "OK",
		KeyChatUnavailable: "I'm sorry, I'm currently having trouble connecting to the server. Please check your API configuration.",
		KeyChatError:       "I apologize, but I encountered an error while processing your request. Please try again later.",
		KeyChatEmptyReply:  "I didn't quite catch that. Could you please rephrase?",
	},
})
