// Package content turns typed form input into the text payload of a QR code.
package content

import (
	"strings"
)

// Request is one validated-on-demand piece of QR content.
type Request interface {
	Kind() Kind
	Payload() (string, error)
}

// Encode validates r and returns its payload.
func Encode(r Request) (string, error) {
	if r == nil {
		return "", ErrInvalidContentType
	}
	return r.Payload()
}

// Values is the read side of url.Values, which is all FromValues needs.
type Values interface {
	Get(key string) string
}

// FromValues builds the Request for kind out of submitted form fields.
func FromValues(kind string, v Values) (Request, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case KindContact:
		return Contact{
			FirstName:    v.Get("firstName"),
			LastName:     v.Get("lastName"),
			Organization: v.Get("organization"),
			Position:     v.Get("position"),
			PhoneWork:    v.Get("phoneWork"),
			PhoneMobile:  v.Get("phoneMobile"),
			Email:        v.Get("email"),
			Website:      v.Get("website"),
			Street:       v.Get("street"),
			Zip:          v.Get("zip"),
			City:         v.Get("city"),
			Country:      v.Get("country"),
		}, nil
	case KindWiFi:
		return WiFi{
			SSID:       v.Get("wifi_ssid"),
			Password:   v.Get("wifi_password"),
			Encryption: v.Get("wifi_encryption"),
			Hidden:     truthy(v.Get("wifi_hidden")),
		}, nil
	case KindText:
		return Text{Body: v.Get("text")}, nil
	case KindEmail:
		return Email{
			Address: v.Get("email_address"),
			Subject: v.Get("email_subject"),
			Body:    v.Get("email_body"),
		}, nil
	case KindSMS:
		return SMS{Number: v.Get("sms_number"), Body: v.Get("sms_body")}, nil
	case KindWhatsApp:
		return WhatsApp{Number: v.Get("whatsapp_number"), Message: v.Get("whatsapp_message")}, nil
	default:
		url := v.Get(linkField[k])
		if k == KindReview && url == "" {
			url = v.Get("bewertung_url")
		}
		return Link{Type: k, URL: url}, nil
	}
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}
