package systems

import (
	"strconv"
	"strings"

	"github.com/mlange-42/ark/ecs"

	"github.com/lumen2d/lumen/components"
	"github.com/lumen2d/lumen/world"
)

// signalValue resolves a bound signal to its string form. Lookup order is
// integer, scalar, string, then flag ("true" when present); first match
// wins.
func signalValue(w *world.World, b *components.SignalBinding) (string, bool) {
	if b.HasSource {
		if !w.ECS.Alive(b.Source) || !w.EntitySignals.Has(b.Source) {
			return "", false
		}
		sig := w.EntitySignals.Get(b.Source)
		if v, ok := sig.Integers[b.Signal]; ok {
			return strconv.FormatInt(v, 10), true
		}
		if v, ok := sig.Scalars[b.Signal]; ok {
			return strconv.FormatFloat(float64(v), 'f', -1, 32), true
		}
		if v, ok := sig.Strings[b.Signal]; ok {
			return v, true
		}
		if sig.HasFlag(b.Signal) {
			return "true", true
		}
		return "", false
	}

	if v, ok := w.Signals.Integers[b.Signal]; ok {
		return strconv.FormatInt(v, 10), true
	}
	if v, ok := w.Signals.Scalars[b.Signal]; ok {
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	}
	if v, ok := w.Signals.Strings[b.Signal]; ok {
		return v, true
	}
	if w.Signals.HasFlag(b.Signal) {
		return "true", true
	}
	return "", false
}

// Bindings rewrites bound texts from their signal values. The content is
// only written when it actually changed so an unchanged value never
// invalidates the measure cache.
func Bindings(w *world.World) {
	filter := ecs.NewFilter2[components.DynamicText, components.SignalBinding](w.ECS)
	query := filter.Query()
	for query.Next() {
		text, binding := query.Get()
		value, ok := signalValue(w, binding)
		if !ok {
			continue
		}
		if binding.Format != "" {
			value = strings.Replace(binding.Format, "{}", value, 1)
		}
		if text.Content != value {
			text.Content = value
		}
	}
}

// MeasureTexts refreshes the size cache of texts whose content, font, or
// size changed since the last measure.
func MeasureTexts(w *world.World) {
	if w.Text == nil {
		return
	}
	filter := ecs.NewFilter1[components.DynamicText](w.ECS)
	query := filter.Query()
	for query.Next() {
		text := query.Get()
		if !text.NeedsMeasure() {
			continue
		}
		width, height := w.Text.Measure(text.Font, text.Content, text.Size)
		text.MeasuredW = width
		text.MeasuredH = height
		text.MeasuredContent = text.Content
		text.MeasuredSize = text.Size
		text.MeasuredFont = text.Font
	}
}

// GroupCounts publishes the population of every tracked group. Groups with
// no members still publish 0; game logic depends on seeing the zero.
func GroupCounts(w *world.World) {
	if len(w.Tracked.Names) == 0 {
		return
	}
	counts := make(map[string]int, len(w.Tracked.Names))
	for name := range w.Tracked.Names {
		counts[name] = 0
	}

	filter := ecs.NewFilter1[components.Group](w.ECS)
	query := filter.Query()
	for query.Next() {
		g := query.Get()
		if _, tracked := counts[g.Name]; tracked {
			counts[g.Name]++
		}
	}

	for name, n := range counts {
		w.Signals.GroupCounts[name] = n
		w.Signals.Integers["group_count:"+name] = int64(n)
	}
}
