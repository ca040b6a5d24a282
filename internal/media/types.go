// Package media defines shared types for the teraview application.
package media

// Link is a user-supplied share link, taken as typed.
type Link string

func (l Link) String() string { return string(l) }

// Field identifies which response field a direct link was taken from.
type Field int

const (
	FieldDirectLink Field = iota
	FieldURL
)

func (f Field) String() string {
	switch f {
	case FieldDirectLink:
		return "directLink"
	case FieldURL:
		return "url"
	default:
		return "unknown"
	}
}

// Direct is a resolved direct media URL. It is used once and never cached.
type Direct struct {
	URL   string // URL pointing straight at the media bytes
	Field Field  // Response field the URL came from
}

// DefaultFilename is used when a download is requested without a name.
const DefaultFilename = "terabox-video.mp4"
