package components

import twmerge "github.com/Oudwins/tailwind-merge-go"

// ResultProps is what the HTMX result fragment needs to show a generated code.
type ResultProps struct {
	ID       string
	URL      string
	Style    string
	Format   string
	Fallback bool
	// Class is merged over the per-style wrapper classes.
	Class string
}

// ErrorProps describes a failed generation.
type ErrorProps struct {
	Message string
	Field   string
}

const (
	containerClass = "qr-result-container flex flex-col items-center gap-4 rounded-lg p-4 bg-white"
	glassClass     = "qr-result-glass bg-[#1a1a2e] text-white"
	pixelClass     = "qr-result-pixel bg-[#0f0f23] text-white [image-rendering:pixelated]"
)

// ResultClass returns the wrapper classes for a style with extra merged last.
func ResultClass(style, extra string) string {
	classes := []string{containerClass}
	switch style {
	case "glassmorphism-dots":
		classes = append(classes, glassClass)
	case "pixel-perfect":
		classes = append(classes, pixelClass)
	}
	return twmerge.Merge(append(classes, extra)...)
}

// downloadName is the suggested file name for the download link.
func downloadName(style, format string) string {
	if format == "" {
		format = "png"
	}
	return "qr-" + style + "." + format
}
