package state

import (
	"encoding/json"
	"fmt"
	"strconv"

	"cmemo/internal/logger"
)

// FormatError reports a malformed top-level persisted structure. A load that
// hits one aborts for the whole file; the application then starts from a
// fresh empty state.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid storage format: " + e.Reason
}

// Codec converts between the in-memory AppState and the versioned JSON wire
// shape. Two wire shapes are accepted: the current envelope
// {"global": {...}, "memos": {...}} and the legacy flat id-to-settings map
// written by early releases.
type Codec struct {
	log logger.Logger
}

func NewCodec(log logger.Logger) *Codec {
	return &Codec{log: log}
}

// Normalize upgrades a raw decoded payload into an AppState. The presence of
// the literal "global" key selects the current envelope; otherwise the whole
// payload is treated as a legacy memo map. Individual malformed memo entries
// are skipped with a warning so one corrupt record cannot block the rest of
// the file from loading.
func (c *Codec) Normalize(raw map[string]interface{}) (AppState, error) {
	st := NewAppState()
	if raw == nil {
		return st, &FormatError{Reason: "top-level value is not an object"}
	}

	var memosRaw map[string]interface{}
	if globalVal, ok := raw["global"]; ok {
		globalMap, ok := globalVal.(map[string]interface{})
		if !ok {
			return st, &FormatError{Reason: `"global" is not an object`}
		}
		c.normalizeGlobal(globalMap, &st.Global)

		if memosVal, ok := raw["memos"]; ok {
			memosRaw, ok = memosVal.(map[string]interface{})
			if !ok {
				return st, &FormatError{Reason: `"memos" is not an object`}
			}
		}
	} else {
		// Legacy shape: the payload itself is the memo map.
		memosRaw = raw
	}

	for id, entry := range memosRaw {
		entryMap, ok := entry.(map[string]interface{})
		if !ok {
			c.log.Warning("StateCodec", "skipping malformed memo entry", map[string]interface{}{
				"memo_id": id,
			})
			continue
		}
		st.Memos[id] = normalizeMemo(entryMap)
	}

	return st, nil
}

func (c *Codec) normalizeGlobal(raw map[string]interface{}, g *GlobalSettings) {
	g.Theme = stringOr(raw, "theme", g.Theme)
	g.FontFamily = stringOr(raw, "font_family", g.FontFamily)
	g.TitleFontSize = intOr(raw, "title_font_size", g.TitleFontSize)
	g.TitleBold = boolOr(raw, "title_bold", g.TitleBold)

	if rawSize, ok := raw["font_size"]; ok {
		size, ok := coerceInt(rawSize)
		if !ok {
			c.log.Warning("StateCodec", "unparseable font size, using default", map[string]interface{}{
				"value": rawSize,
			})
			size = DefaultFontSize
		}
		if size < MinFontSize {
			size = MinFontSize
		}
		g.FontSize = size
	}
}

func normalizeMemo(raw map[string]interface{}) MemoRecord {
	rec := MemoRecord{
		BgColor:     PastelColors[0],
		X:           100,
		Y:           100,
		W:           320,
		H:           280,
		SavedWidth:  320,
		SavedHeight: 420,
	}
	rec.Title = stringOr(raw, "title", rec.Title)
	rec.Content = stringOr(raw, "content", rec.Content)
	rec.BgColor = stringOr(raw, "bg_color", rec.BgColor)
	rec.X = intOr(raw, "x", rec.X)
	rec.Y = intOr(raw, "y", rec.Y)
	rec.W = intOr(raw, "w", rec.W)
	rec.H = intOr(raw, "h", rec.H)
	rec.IsCollapsed = boolOr(raw, "is_collapsed", rec.IsCollapsed)
	rec.SavedWidth = intOr(raw, "saved_width", rec.SavedWidth)
	rec.SavedHeight = intOr(raw, "saved_height", rec.SavedHeight)
	rec.IsPinned = boolOr(raw, "is_pinned", rec.IsPinned)
	rec.LastModified = stringOr(raw, "last_modified", rec.LastModified)

	if rec.W < MinMemoWidth {
		rec.W = MinMemoWidth
	}
	if rec.H < MinMemoHeight {
		rec.H = MinMemoHeight
	}
	return rec
}

// Serialize is the strict inverse of Normalize for internally constructed
// state.
func (c *Codec) Serialize(st AppState) map[string]interface{} {
	memos := make(map[string]interface{}, len(st.Memos))
	for id, rec := range st.Memos {
		memos[id] = map[string]interface{}{
			"title":         rec.Title,
			"content":       rec.Content,
			"bg_color":      rec.BgColor,
			"x":             rec.X,
			"y":             rec.Y,
			"w":             rec.W,
			"h":             rec.H,
			"is_collapsed":  rec.IsCollapsed,
			"saved_width":   rec.SavedWidth,
			"saved_height":  rec.SavedHeight,
			"is_pinned":     rec.IsPinned,
			"last_modified": rec.LastModified,
		}
	}
	return map[string]interface{}{
		"global": map[string]interface{}{
			"theme":           st.Global.Theme,
			"font_family":     st.Global.FontFamily,
			"font_size":       st.Global.FontSize,
			"title_font_size": st.Global.TitleFontSize,
			"title_bold":      st.Global.TitleBold,
		},
		"memos": memos,
	}
}

// Decode parses raw JSON bytes and normalizes them.
func (c *Codec) Decode(data []byte) (AppState, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewAppState(), &FormatError{Reason: fmt.Sprintf("top-level value is not an object: %v", err)}
	}
	return c.Normalize(raw)
}

func (c *Codec) Encode(st AppState) ([]byte, error) {
	return json.MarshalIndent(c.Serialize(st), "", "    ")
}

func stringOr(raw map[string]interface{}, key, fallback string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return fallback
}

func boolOr(raw map[string]interface{}, key string, fallback bool) bool {
	if v, ok := raw[key].(bool); ok {
		return v
	}
	return fallback
}

func intOr(raw map[string]interface{}, key string, fallback int) int {
	if v, ok := raw[key]; ok {
		if n, ok := coerceInt(v); ok {
			return n
		}
	}
	return fallback
}

func coerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}
