package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstudio/internal/content"
	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/imgenc"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/logo"
	"github.com/cristianadrielbraun/qrstudio/internal/qrgen"
	"github.com/cristianadrielbraun/qrstudio/internal/raster"
)

type renderOptions struct {
	kind        string
	url         string
	text        string
	fields      map[string]string
	style       string
	dark        string
	light       string
	transparent bool
	whiteMode   string
	level       string
	format      string
	size        int
	encoder     string
	logoPath    string
	out         string
}

func newRenderCmd() *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one QR code to a file",
		Example: `  qrstudio render --url example.com --style pixel-perfect --out qr.png
  qrstudio render --type wifi --set wifi_ssid=Home --set wifi_password=secret --out wifi.png
  qrstudio render --url example.com --logo logo.svg --out branded.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.kind, "type", "t", "url", "Content type (url, contact, wifi, text, email, sms, whatsapp, spotify, youtube, review)")
	f.StringVar(&o.url, "url", "", "URL for link content types")
	f.StringVar(&o.text, "text", "", "Text for the text content type")
	f.StringToStringVar(&o.fields, "set", nil, "Extra form fields as key=value, e.g. wifi_ssid=Home")
	f.StringVarP(&o.style, "style", "s", "classic", "classic, glassmorphism-dots or pixel-perfect")
	f.StringVar(&o.dark, "dark", "#000000", "Module color")
	f.StringVar(&o.light, "light", "#FFFFFF", "Background color")
	f.BoolVar(&o.transparent, "transparent", false, "Transparent background (classic only)")
	f.StringVar(&o.whiteMode, "white-mode", "", "Treatment for light modules on a transparent background")
	f.StringVar(&o.level, "level", "", "Error correction level L, M, Q or H")
	f.StringVar(&o.format, "format", "", "png or jpg (default from --out extension)")
	f.IntVar(&o.size, "size", raster.DefaultCanvasSize, "Canvas size in pixels")
	f.StringVar(&o.encoder, "encoder", "yeqown", "Matrix encoder: yeqown or skip2")
	f.StringVar(&o.logoPath, "logo", "", "PNG, JPEG or SVG logo for the classic style")
	f.StringVarP(&o.out, "out", "o", "", "Output file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runRender(ctx context.Context, o renderOptions) error {
	values := url.Values{}
	for k, v := range o.fields {
		values.Set(k, v)
	}
	if o.url != "" {
		values.Set("url", o.url)
		values.Set("spotify_url", o.url)
		values.Set("youtube_url", o.url)
		values.Set("review_url", o.url)
	}
	if o.text != "" {
		values.Set("text", o.text)
	}
	cr, err := content.FromValues(o.kind, values)
	if err != nil {
		return err
	}

	req, err := o.request(cr)
	if err != nil {
		return err
	}

	if o.logoPath != "" {
		data, err := os.ReadFile(o.logoPath)
		if err != nil {
			return fmt.Errorf("read logo: %w", err)
		}
		if int64(len(data)) > logo.DefaultMaxBytes {
			return fmt.Errorf("%w: %d bytes", logo.ErrTooLarge, len(data))
		}
		typ, err := logo.Sniff(data, o.logoPath)
		if err != nil {
			return err
		}
		if typ != logo.TypeSVG {
			if err := logo.CheckDimensions(data); err != nil {
				return err
			}
		}
		req.Logo = data
	}

	enc, err := qrgen.New(o.encoder)
	if err != nil {
		return err
	}
	log := logger.New(logger.WithFormat(logger.FormatText), logger.WithOutput(os.Stderr), logger.WithLevel(slog.LevelWarn))
	res, err := generator.New(enc, generator.WithLogger(log)).Render(ctx, req)
	if err != nil {
		return err
	}

	if err := os.WriteFile(o.out, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", o.out, err)
	}
	note := ""
	if res.Fallback {
		note = " (fallback rendering)"
	}
	fmt.Printf("wrote %s: %s %s, %d bytes%s\n", o.out, res.Style, res.Format, len(res.Data), note)
	return nil
}

func (o renderOptions) request(cr content.Request) (generator.Request, error) {
	id, err := raster.ParseStyleID(o.style)
	if err != nil {
		return generator.Request{}, err
	}
	mode, err := raster.ParseWhiteMode(o.whiteMode)
	if err != nil {
		return generator.Request{}, err
	}
	level, err := qrgen.ParseLevel(o.level)
	if err != nil {
		return generator.Request{}, err
	}
	format := o.format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(o.out)), ".")
	}
	imgFormat, err := imgenc.ParseFormat(format)
	if err != nil {
		return generator.Request{}, err
	}
	dark, err := hexFlag("dark", o.dark, raster.Black)
	if err != nil {
		return generator.Request{}, err
	}
	light, err := hexFlag("light", o.light, raster.White)
	if err != nil {
		return generator.Request{}, err
	}

	return generator.Request{
		Content: cr,
		Style: raster.Style{
			ID:          id,
			Dark:        dark,
			Light:       light,
			Transparent: o.transparent,
			CanvasSize:  o.size,
			WhiteMode:   mode,
		},
		Level:  level,
		Format: imgFormat,
	}, nil
}

func hexFlag(name, v string, def color.RGBA) (color.RGBA, error) {
	if v == "" {
		return def, nil
	}
	c, err := raster.ParseHex(v)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("--%s: %w", name, err)
	}
	return c, nil
}
