package content

import (
	"fmt"
	"strings"
)

// Link is a URL-carrying kind: url, spotify, youtube or review.
type Link struct {
	Type Kind
	URL  string
}

func (l Link) Kind() Kind {
	if l.Type == "" {
		return KindURL
	}
	return l.Type
}

func (l Link) Payload() (string, error) {
	field, ok := linkField[l.Kind()]
	if !ok {
		return "", fmt.Errorf("%w: %q is not a link kind", ErrInvalidContentType, l.Type)
	}
	u := strings.TrimSpace(l.URL)
	if u == "" {
		return "", required(field)
	}
	return NormalizeURL(u), nil
}

// NormalizeURL prepends https:// unless u already starts with http:// or https://.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	return "https://" + u
}

// Contact is a vCard 3.0 business card.
type Contact struct {
	FirstName    string
	LastName     string
	Organization string
	Position     string
	PhoneWork    string
	PhoneMobile  string
	Email        string
	Website      string
	Street       string
	Zip          string
	City         string
	Country      string
}

func (Contact) Kind() Kind { return KindContact }

func (c Contact) Payload() (string, error) {
	first := strings.TrimSpace(c.FirstName)
	last := strings.TrimSpace(c.LastName)
	if last == "" {
		return "", required("lastName")
	}

	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		fmt.Sprintf("N:%s;%s;;;", last, first),
		"FN:" + strings.TrimSpace(first+" "+last),
	}
	add := func(prefix, value string) {
		if v := strings.TrimSpace(value); v != "" {
			lines = append(lines, prefix+v)
		}
	}
	add("ORG:", c.Organization)
	add("TITLE:", c.Position)
	add("TEL;TYPE=WORK:", c.PhoneWork)
	add("TEL;TYPE=CELL:", c.PhoneMobile)

	street, city := strings.TrimSpace(c.Street), strings.TrimSpace(c.City)
	zip, country := strings.TrimSpace(c.Zip), strings.TrimSpace(c.Country)
	if street != "" || city != "" || zip != "" || country != "" {
		lines = append(lines, fmt.Sprintf("ADR:;;%s;%s;%s;%s", street, city, zip, country))
	}
	add("EMAIL:", c.Email)
	add("URL:", c.Website)
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n"), nil
}

// WiFi is a network join code in the WIFI: URI format.
type WiFi struct {
	SSID       string
	Password   string
	Encryption string
	Hidden     bool
}

func (WiFi) Kind() Kind { return KindWiFi }

func (w WiFi) Payload() (string, error) {
	if strings.TrimSpace(w.SSID) == "" {
		return "", required("wifi_ssid")
	}
	var enc string
	switch strings.ToUpper(strings.TrimSpace(w.Encryption)) {
	case "", "WPA":
		enc = "WPA"
	case "WEP":
		enc = "WEP"
	case "NOPASS":
		enc = "nopass"
	default:
		return "", &ValidationError{Field: "wifi_encryption", Message: fmt.Sprintf("unsupported value %q", w.Encryption)}
	}
	password := escapeWiFi(w.Password)
	if enc == "nopass" {
		password = ""
	}
	return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;H:%t;;", enc, escapeWiFi(w.SSID), password, w.Hidden), nil
}

var wifiEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	`:`, `\:`,
	`"`, `\"`,
)

func escapeWiFi(s string) string { return wifiEscaper.Replace(s) }

// Text is carried verbatim; an empty body is allowed here and rejected later
// by the generator as "no content".
type Text struct {
	Body string
}

func (Text) Kind() Kind { return KindText }

func (t Text) Payload() (string, error) { return t.Body, nil }

// Email is a mailto: link with optional subject and body.
type Email struct {
	Address string
	Subject string
	Body    string
}

func (Email) Kind() Kind { return KindEmail }

func (e Email) Payload() (string, error) {
	addr := strings.TrimSpace(e.Address)
	if addr == "" {
		return "", required("email_address")
	}
	var params []string
	if e.Subject != "" {
		params = append(params, "subject="+EscapeComponent(e.Subject))
	}
	if e.Body != "" {
		params = append(params, "body="+EscapeComponent(e.Body))
	}
	if len(params) == 0 {
		return "mailto:" + addr, nil
	}
	return "mailto:" + addr + "?" + strings.Join(params, "&"), nil
}

// SMS is an smsto: link. The body may be empty, leaving a trailing colon.
type SMS struct {
	Number string
	Body   string
}

func (SMS) Kind() Kind { return KindSMS }

func (s SMS) Payload() (string, error) {
	number := strings.TrimSpace(s.Number)
	if number == "" {
		return "", required("sms_number")
	}
	return "smsto:" + number + ":" + EscapeComponent(s.Body), nil
}

// WhatsApp is a wa.me click-to-chat link.
type WhatsApp struct {
	Number  string
	Message string
}

func (WhatsApp) Kind() Kind { return KindWhatsApp }

func (w WhatsApp) Payload() (string, error) {
	if strings.TrimSpace(w.Number) == "" {
		return "", required("whatsapp_number")
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, w.Number)
	if digits == "" {
		return "", &ValidationError{Field: "whatsapp_number", Message: "must contain digits"}
	}
	link := "https://wa.me/" + digits
	if w.Message != "" {
		link += "?text=" + EscapeComponent(w.Message)
	}
	return link, nil
}
