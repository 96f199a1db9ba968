package content_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrstudio/internal/content"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  content.Request
		want string
	}{
		{
			name: "url gets https scheme",
			req:  content.Link{URL: "  example.com/path "},
			want: "https://example.com/path",
		},
		{
			name: "url keeps http scheme",
			req:  content.Link{Type: content.KindURL, URL: "http://example.com"},
			want: "http://example.com",
		},
		{
			name: "spotify passthrough",
			req:  content.Link{Type: content.KindSpotify, URL: "open.spotify.com/track/1"},
			want: "https://open.spotify.com/track/1",
		},
		{
			name: "wifi wpa",
			req:  content.WiFi{SSID: "Home", Password: "secret1", Encryption: "WPA"},
			want: "WIFI:T:WPA;S:Home;P:secret1;H:false;;",
		},
		{
			name: "wifi default encryption hidden",
			req:  content.WiFi{SSID: "Home", Password: "pw", Hidden: true},
			want: "WIFI:T:WPA;S:Home;P:pw;H:true;;",
		},
		{
			name: "wifi nopass drops password",
			req:  content.WiFi{SSID: "Cafe", Password: "ignored", Encryption: "nopass"},
			want: "WIFI:T:nopass;S:Cafe;P:;H:false;;",
		},
		{
			name: "wifi escapes special characters",
			req:  content.WiFi{SSID: `a;b,c`, Password: `p:"w\`, Encryption: "wep"},
			want: `WIFI:T:WEP;S:a\;b\,c;P:p\:\"w\\;H:false;;`,
		},
		{
			name: "text verbatim",
			req:  content.Text{Body: "  hello world  "},
			want: "  hello world  ",
		},
		{
			name: "email with subject and body",
			req:  content.Email{Address: "a@b.de", Subject: "Hi there", Body: "x&y"},
			want: "mailto:a@b.de?subject=Hi%20there&body=x%26y",
		},
		{
			name: "email with body only",
			req:  content.Email{Address: "a@b.de", Body: "hello"},
			want: "mailto:a@b.de?body=hello",
		},
		{
			name: "email bare",
			req:  content.Email{Address: "a@b.de"},
			want: "mailto:a@b.de",
		},
		{
			name: "sms with body",
			req:  content.SMS{Number: "+491701234567", Body: "see you"},
			want: "smsto:+491701234567:see%20you",
		},
		{
			name: "sms without body",
			req:  content.SMS{Number: "12345"},
			want: "smsto:12345:",
		},
		{
			name: "whatsapp strips non digits",
			req:  content.WhatsApp{Number: "+49 170 1234567", Message: "Hallo Welt!"},
			want: "https://wa.me/491701234567?text=Hallo%20Welt!",
		},
		{
			name: "whatsapp without message",
			req:  content.WhatsApp{Number: "(030) 123"},
			want: "https://wa.me/030123",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := content.Encode(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeContact(t *testing.T) {
	t.Parallel()

	t.Run("full card", func(t *testing.T) {
		t.Parallel()
		got, err := content.Encode(content.Contact{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Organization: "Analytical Engines",
			Position:     "Programmer",
			PhoneWork:    "+44 20 1234",
			PhoneMobile:  "+44 7700 900",
			Email:        "ada@example.com",
			Website:      "https://ada.example.com",
			Street:       "1 St James's Square",
			City:         "London",
			Zip:          "SW1Y",
			Country:      "UK",
		})
		require.NoError(t, err)
		assert.Equal(t, "BEGIN:VCARD\n"+
			"VERSION:3.0\n"+
			"N:Lovelace;Ada;;;\n"+
			"FN:Ada Lovelace\n"+
			"ORG:Analytical Engines\n"+
			"TITLE:Programmer\n"+
			"TEL;TYPE=WORK:+44 20 1234\n"+
			"TEL;TYPE=CELL:+44 7700 900\n"+
			"ADR:;;1 St James's Square;London;SW1Y;UK\n"+
			"EMAIL:ada@example.com\n"+
			"URL:https://ada.example.com\n"+
			"END:VCARD", got)
	})

	t.Run("minimal card omits empty lines", func(t *testing.T) {
		t.Parallel()
		got, err := content.Encode(content.Contact{LastName: "Turing"})
		require.NoError(t, err)
		assert.Equal(t, "BEGIN:VCARD\nVERSION:3.0\nN:Turing;;;;\nFN:Turing\nEND:VCARD", got)
	})

	t.Run("address with city only", func(t *testing.T) {
		t.Parallel()
		got, err := content.Encode(content.Contact{LastName: "Turing", City: "Wilmslow"})
		require.NoError(t, err)
		assert.Contains(t, got, "\nADR:;;;Wilmslow;;\n")
	})
}

func TestEncodeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		req   content.Request
		field string
	}{
		{"url empty", content.Link{URL: "   "}, "url"},
		{"youtube empty", content.Link{Type: content.KindYouTube}, "youtube_url"},
		{"review empty", content.Link{Type: content.KindReview}, "review_url"},
		{"contact without last name", content.Contact{FirstName: "Ada"}, "lastName"},
		{"wifi without ssid", content.WiFi{SSID: "", Password: "x"}, "wifi_ssid"},
		{"wifi bad encryption", content.WiFi{SSID: "Home", Encryption: "WPA3"}, "wifi_encryption"},
		{"email without address", content.Email{Subject: "hi"}, "email_address"},
		{"sms without number", content.SMS{Body: "hi"}, "sms_number"},
		{"whatsapp without number", content.WhatsApp{Message: "hi"}, "whatsapp_number"},
		{"whatsapp without digits", content.WhatsApp{Number: "+ -"}, "whatsapp_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := content.Encode(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, content.ErrValidation)

			var verr *content.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestEncodeRejectsNonLinkType(t *testing.T) {
	t.Parallel()

	_, err := content.Encode(content.Link{Type: content.KindText, URL: "x"})
	assert.ErrorIs(t, err, content.ErrInvalidContentType)

	_, err = content.Encode(nil)
	assert.ErrorIs(t, err, content.ErrInvalidContentType)
}

func TestFromValues(t *testing.T) {
	t.Parallel()

	t.Run("wifi form", func(t *testing.T) {
		t.Parallel()
		req, err := content.FromValues("wifi", url.Values{
			"wifi_ssid":       {"Home"},
			"wifi_password":   {"secret1"},
			"wifi_encryption": {"WPA"},
			"wifi_hidden":     {"on"},
		})
		require.NoError(t, err)
		assert.Equal(t, content.KindWiFi, req.Kind())
		got, err := content.Encode(req)
		require.NoError(t, err)
		assert.Equal(t, "WIFI:T:WPA;S:Home;P:secret1;H:true;;", got)
	})

	t.Run("bewertung alias", func(t *testing.T) {
		t.Parallel()
		req, err := content.FromValues("bewertung", url.Values{"review_url": {"g.page/r/abc"}})
		require.NoError(t, err)
		assert.Equal(t, content.KindReview, req.Kind())
		got, err := content.Encode(req)
		require.NoError(t, err)
		assert.Equal(t, "https://g.page/r/abc", got)
	})

	t.Run("contact form", func(t *testing.T) {
		t.Parallel()
		req, err := content.FromValues("contact", url.Values{
			"firstName": {"Grace"},
			"lastName":  {"Hopper"},
			"email":     {"grace@example.com"},
		})
		require.NoError(t, err)
		got, err := content.Encode(req)
		require.NoError(t, err)
		assert.Contains(t, got, "FN:Grace Hopper\n")
		assert.Contains(t, got, "EMAIL:grace@example.com\n")
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()
		_, err := content.FromValues("vcalendar", url.Values{})
		assert.ErrorIs(t, err, content.ErrInvalidContentType)
	})
}

func TestEscapeComponent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a%20b", content.EscapeComponent("a b"))
	assert.Equal(t, "-_.!~*'()", content.EscapeComponent("-_.!~*'()"))
	assert.Equal(t, "%26%3D%3F%2B%2F", content.EscapeComponent("&=?+/"))
	assert.Equal(t, "%C3%BC", content.EscapeComponent("ü"))
}
