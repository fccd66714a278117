// Package convert turns the HTML stored in legacy notes into markdown.
//
// Two converters exist. Full handles arbitrary markup through
// html-to-markdown; Fallback only knows a fixed tag set and is used when the
// full converter cannot handle a note. Both keep anchors as [text](href).
package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"go.uber.org/zap"

	"github.com/lherron/mdnotes/internal/logging"
)

// ErrUnavailable marks a converter that could not handle its input.
var ErrUnavailable = errors.New("converter unavailable")

// UnavailableError reports why a converter could not be used.
type UnavailableError struct {
	Converter string
	Err       error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s converter unavailable: %v", e.Converter, e.Err)
}

func (e *UnavailableError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// Converter converts one note body to markdown.
type Converter interface {
	Name() string
	Convert(html string) (string, error)
}

// Mode selects the conversion strategy.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeFallback Mode = "fallback"
)

// New builds the converter for mode.
func New(mode Mode, logger *zap.Logger) (*Chain, error) {
	switch mode {
	case "", ModeAuto:
		return &Chain{Primary: Full{}, Fallback: Fallback{}, Logger: logger}, nil
	case ModeFallback:
		return &Chain{Primary: Fallback{}, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown converter %q (use auto or fallback)", mode)
	}
}

// fullConverter leaves markdown syntax already present in a note alone,
// so an existing [text](target) stays a link.
var fullConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
	converter.WithEscapeMode(converter.EscapeModeDisabled),
)

// Full converts arbitrary HTML. Links are kept and lines are never wrapped.
type Full struct{}

func (Full) Name() string { return "full" }

func (Full) Convert(html string) (string, error) {
	if html == "" {
		return "", nil
	}
	markdown, err := fullConverter.ConvertString(html)
	if err != nil {
		return "", &UnavailableError{Converter: "full", Err: err}
	}
	return strings.TrimSpace(markdown), nil
}

// Chain runs Primary and, when it reports ErrUnavailable, Fallback.
type Chain struct {
	Primary  Converter
	Fallback Converter
	Logger   *zap.Logger

	fallbacks int
}

func (c *Chain) Name() string {
	if c.Fallback == nil {
		return c.Primary.Name()
	}
	return c.Primary.Name() + "+" + c.Fallback.Name()
}

// Convert converts html, falling back when the primary converter is
// unavailable for this input.
func (c *Chain) Convert(html string) (string, error) {
	return c.ConvertNote("", html)
}

// ConvertNote is Convert with the note id attached to log lines.
func (c *Chain) ConvertNote(noteID, html string) (string, error) {
	out, err := c.Primary.Convert(html)
	if err == nil {
		return out, nil
	}
	if c.Fallback == nil || !errors.Is(err, ErrUnavailable) {
		return "", err
	}

	logging.OrNop(c.Logger).Warn("falling back to minimal converter",
		zap.String(logging.FieldNoteID, noteID),
		zap.String(logging.FieldConverter, c.Primary.Name()),
		zap.Error(err),
	)
	c.fallbacks++
	return c.Fallback.Convert(html)
}

// Fallbacks returns how many notes used the fallback converter.
func (c *Chain) Fallbacks() int {
	return c.fallbacks
}
