package state

import (
	"math/rand"
	"time"
)

const (
	MinFontSize     = 6
	DefaultFontSize = 14

	// Minimum window bounds; the collapsed height is the floor.
	MinMemoWidth  = 320
	MinMemoHeight = 80
)

// GlobalSettings holds the style settings shared by every memo window.
type GlobalSettings struct {
	Theme         string `json:"theme"`
	FontFamily    string `json:"font_family"`
	FontSize      int    `json:"font_size"`
	TitleFontSize int    `json:"title_font_size"`
	TitleBold     bool   `json:"title_bold"`
}

func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		Theme:         "classic",
		FontFamily:    "Pretendard",
		FontSize:      DefaultFontSize,
		TitleFontSize: 13,
		TitleBold:     true,
	}
}

// MemoRecord is the persisted state of one floating memo window.
type MemoRecord struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	BgColor      string `json:"bg_color"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	W            int    `json:"w"`
	H            int    `json:"h"`
	IsCollapsed  bool   `json:"is_collapsed"`
	SavedWidth   int    `json:"saved_width"`
	SavedHeight  int    `json:"saved_height"`
	IsPinned     bool   `json:"is_pinned"`
	LastModified string `json:"last_modified"`
}

// NewMemoRecord builds a fresh record with the stock window geometry.
// The title defaults to the creation time, matching what users see on a
// brand-new memo.
func NewMemoRecord(now time.Time, bgColor string) MemoRecord {
	return MemoRecord{
		Title:       now.Format("2006-01-02 15:04"),
		BgColor:     bgColor,
		X:           100,
		Y:           100,
		W:           320,
		H:           280,
		SavedWidth:  320,
		SavedHeight: 420,
	}
}

// PastelColors is the palette new memos draw their background from.
var PastelColors = []string{
	"rgba(255,253,190,255)", // yellow
	"rgba(255,204,213,255)", // pink
	"rgba(189,224,254,255)", // blue
	"rgba(204,255,204,255)", // light green
	"rgba(234,196,213,255)", // purple
	"rgba(255,229,180,255)", // orange
	"rgba(186,255,201,255)", // mint
	"rgba(160,210,235,255)", // sky blue
}

func RandomPastel() string {
	return PastelColors[rand.Intn(len(PastelColors))]
}

// AppState is the root persisted object: global style settings plus the
// id-to-record mapping for every open memo.
type AppState struct {
	Global GlobalSettings
	Memos  map[string]MemoRecord
}

func NewAppState() AppState {
	return AppState{
		Global: DefaultGlobalSettings(),
		Memos:  make(map[string]MemoRecord),
	}
}
