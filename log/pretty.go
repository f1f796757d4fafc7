package log

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type prettyStyles struct {
	key, str, num, dur, ts, yes, no, null lipgloss.Style
	levels                               [4]lipgloss.Style // error, warn, info, debug/trace
}

func makePrettyStyles(r *lipgloss.Renderer) prettyStyles {
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return prettyStyles{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		dur:  fg("5"),
		ts:   fg("4"),
		yes:  fg("2"),
		no:   fg("1"),
		null: fg("8"),
		levels: [4]lipgloss.Style{
			fg("1").Bold(true),
			fg("3").Bold(true),
			fg("2"),
			fg("4"),
		},
	}
}

func (s *prettyStyles) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return s.levels[0]
	case l >= slog.LevelWarn:
		return s.levels[1]
	case l >= slog.LevelInfo:
		return s.levels[2]
	default:
		return s.levels[3]
	}
}

// prettyHandler renders records for a terminal. With [FormatText] each
// record is a single line of key=value pairs; with [FormatJSON] each record
// is an indented object. Color is used only when the output supports it.
type prettyHandler struct {
	cfg    config
	styles *prettyStyles
	mu     *sync.Mutex
	attrs  []field
	prefix string
}

type field struct{ key, value string }

func newPrettyHandler(cfg config) *prettyHandler {
	styles := makePrettyStyles(lipgloss.NewRenderer(cfg.output))

	return &prettyHandler{cfg: cfg, styles: &styles, mu: &sync.Mutex{}}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.Level(h.cfg.level)
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.attrs)+r.NumAttrs())
	json := h.cfg.format == FormatJSON

	if !r.Time.IsZero() {
		if ts := h.cfg.formatTime(r.Time); ts != "" {
			fields = append(fields, h.field(slog.TimeKey, h.styles.ts.Render(quoteIf(json, ts))))
		}
	}

	level := strings.ToUpper(Level(r.Level).String())
	fields = append(fields, h.field(slog.LevelKey, h.styles.level(r.Level).Render(quoteIf(json, level))))

	if h.cfg.caller {
		if src := r.Source(); src != nil {
			fields = append(fields, h.field(slog.SourceKey, h.string(src.File+":"+strconv.Itoa(src.Line))))
		}
	}

	fields = append(fields, h.field(slog.MessageKey, h.string(r.Message)))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.prefix, a)

		return true
	})

	var buf bytes.Buffer

	if json {
		buf.WriteString("{\n")

		for i, f := range fields {
			buf.WriteString("  ")
			buf.WriteString(f.key)
			buf.WriteString(": ")
			buf.WriteString(f.value)

			if i < len(fields)-1 {
				buf.WriteByte(',')
			}

			buf.WriteByte('\n')
		}

		buf.WriteString("}\n")
	} else {
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(f.key)
			buf.WriteByte('=')
			buf.WriteString(f.value)
		}

		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.cfg.output.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clip(h.attrs)

	for _, a := range attrs {
		c.attrs = h.appendAttr(c.attrs, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) field(key, value string) field {
	if h.cfg.format == FormatJSON {
		key = strconv.Quote(key)
	}

	return field{key: h.styles.key.Render(key), value: value}
}

func (h *prettyHandler) string(s string) string {
	if h.cfg.format == FormatJSON {
		s = strconv.Quote(s)
	}

	return h.styles.str.Render(s)
}

// appendAttr flattens groups into dotted keys.
func (h *prettyHandler) appendAttr(fields []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			fields = h.appendAttr(fields, prefix, g)
		}

		return fields
	}

	return append(fields, h.field(prefix+a.Key, h.value(a.Value)))
}

func (h *prettyHandler) value(v slog.Value) string {
	s := h.styles

	switch v.Kind() {
	case slog.KindString:
		return h.string(v.String())
	case slog.KindInt64:
		return s.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return s.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		f := v.Float64()
		if h.cfg.format == FormatJSON && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return h.string(strconv.FormatFloat(f, 'g', -1, 64))
		}

		return s.num.Render(strconv.FormatFloat(f, 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return s.yes.Render("true")
		}

		return s.no.Render("false")
	case slog.KindDuration:
		return s.dur.Render(quoteIf(h.cfg.format == FormatJSON, v.Duration().String()))
	case slog.KindTime:
		return s.ts.Render(quoteIf(h.cfg.format == FormatJSON, v.Time().Format(time.RFC3339Nano)))
	}

	switch x := v.Any().(type) {
	case nil:
		return s.null.Render("null")
	case error:
		return s.no.Render(quoteIf(h.cfg.format == FormatJSON, x.Error()))
	case fmt.Stringer:
		return h.string(x.String())
	default:
		return h.string(fmt.Sprint(x))
	}
}

func quoteIf(cond bool, s string) string {
	if cond {
		return strconv.Quote(s)
	}

	return s
}
