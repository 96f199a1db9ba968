package content

import (
	"fmt"
	"strings"
)

// Kind identifies what a QR code carries.
type Kind string

const (
	KindURL      Kind = "url"
	KindContact  Kind = "contact"
	KindWiFi     Kind = "wifi"
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindSMS      Kind = "sms"
	KindWhatsApp Kind = "whatsapp"
	KindSpotify  Kind = "spotify"
	KindYouTube  Kind = "youtube"
	KindReview   Kind = "review"
)

// ParseKind maps a content_type form value to a Kind. "bewertung" is accepted
// as an alias of review.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindURL, KindContact, KindWiFi, KindText, KindEmail, KindSMS,
		KindWhatsApp, KindSpotify, KindYouTube, KindReview:
		return k, nil
	case "bewertung":
		return KindReview, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidContentType, s)
	}
}

// linkField is the form field holding the URL for each link-like kind.
var linkField = map[Kind]string{
	KindURL:     "url",
	KindSpotify: "spotify_url",
	KindYouTube: "youtube_url",
	KindReview:  "review_url",
}
