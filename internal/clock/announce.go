package clock

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects one of the fixed announcement sentences.
type Kind string

const (
	KindTime      Kind = "time"
	KindName      Kind = "name"
	KindStart     Kind = "start"
	KindEnd       Kind = "end"
	KindRemaining Kind = "remaining"
)

// Kinds lists every announcement kind in button order.
func Kinds() []Kind {
	return []Kind{KindTime, KindName, KindStart, KindEnd, KindRemaining}
}

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("clock: unknown announcement kind %q", s)
}

// Lang selects the template set.
type Lang string

const (
	LangJapanese Lang = "ja"
	LangEnglish  Lang = "en"
)

// ParseLang maps a config value to a Lang, defaulting to Japanese.
func ParseLang(s string) Lang {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "en-us", "en-gb", "english":
		return LangEnglish
	default:
		return LangJapanese
	}
}

type templateSet struct {
	clock     func(now time.Time) string
	digital   func(now time.Time) string
	name      func(name string) string
	start     func(name, start string) string
	end       func(name, end string) string
	remaining func(name string, minutes int) string
	loaded    func(source string) string

	noName, noStart, noEnd, noRemaining string
	loadFailed                          string
	unknown                             string
}

// hour12 maps 0..23 onto 1..12.
func hour12(h int) int {
	if h%12 == 0 {
		return 12
	}
	return h % 12
}

var templates = map[Lang]templateSet{
	LangJapanese: {
		clock: func(now time.Time) string {
			return fmt.Sprintf("今の時刻は、%s%d時%d分です", ampmJa(now.Hour()), hour12(now.Hour()), now.Minute())
		},
		digital: func(now time.Time) string {
			return fmt.Sprintf("%s%d:%02d", ampmJa(now.Hour()), hour12(now.Hour()), now.Minute())
		},
		name:  func(name string) string { return name },
		start: func(name, start string) string { return fmt.Sprintf("%sは、%sから始まりました", name, start) },
		end:   func(name, end string) string { return fmt.Sprintf("%sは、%sに終わります", name, end) },
		remaining: func(name string, n int) string {
			return fmt.Sprintf("%sは、あと%d分で終わります", name, n)
		},
		loaded:      func(source string) string { return fmt.Sprintf("%sを読み込みました", source) },
		noName:      "今は授業時間ではありません",
		noStart:     "現在、開始時刻の情報はありません",
		noEnd:       "現在、終了時刻の情報はありません",
		noRemaining: "現在、残り時間を計算できる授業はありません",
		loadFailed:  "時刻表の読み込みに失敗しました",
		unknown:     "その情報はありません",
	},
	LangEnglish: {
		clock: func(now time.Time) string {
			return fmt.Sprintf("The time is %d:%02d %s.", hour12(now.Hour()), now.Minute(), ampmEn(now.Hour()))
		},
		digital: func(now time.Time) string {
			return fmt.Sprintf("%d:%02d %s", hour12(now.Hour()), now.Minute(), ampmEn(now.Hour()))
		},
		name:  func(name string) string { return name },
		start: func(name, start string) string { return fmt.Sprintf("%s started at %s.", name, start) },
		end:   func(name, end string) string { return fmt.Sprintf("%s ends at %s.", name, end) },
		remaining: func(name string, n int) string {
			if n == 1 {
				return fmt.Sprintf("%s ends in 1 minute.", name)
			}
			return fmt.Sprintf("%s ends in %d minutes.", name, n)
		},
		loaded:      func(source string) string { return fmt.Sprintf("Loaded %s.", source) },
		noName:      "There is no class right now.",
		noStart:     "There is no start time right now.",
		noEnd:       "There is no end time right now.",
		noRemaining: "There is no class to count down right now.",
		loadFailed:  "Failed to load the timetable.",
		unknown:     "No information is available.",
	},
}

func ampmJa(h int) string {
	if h < 12 {
		return "午前"
	}
	return "午後"
}

func ampmEn(h int) string {
	if h < 12 {
		return "AM"
	}
	return "PM"
}

func templatesFor(l Lang) templateSet {
	if t, ok := templates[l]; ok {
		return t
	}
	return templates[LangJapanese]
}

// Announcement renders the sentence for kind given cur and now.
func Announcement(l Lang, kind Kind, cur Current, now time.Time) string {
	t := templatesFor(l)
	p := cur.Period
	switch kind {
	case KindTime:
		return t.clock(now)
	case KindName:
		if !cur.Active() {
			return t.noName
		}
		return t.name(p.Name)
	case KindStart:
		if !cur.Active() {
			return t.noStart
		}
		return t.start(p.Name, p.Start)
	case KindEnd:
		if !cur.Active() {
			return t.noEnd
		}
		return t.end(p.Name, p.End)
	case KindRemaining:
		n, ok := Remaining(cur, now)
		if !ok {
			return t.noRemaining
		}
		return t.remaining(p.Name, n)
	default:
		return t.unknown
	}
}

// Digital formats now as the 12-hour readout shown under the face.
func Digital(l Lang, now time.Time) string {
	return templatesFor(l).digital(now)
}

// LoadedText is spoken after a timetable loads.
func LoadedText(l Lang, source string) string {
	return templatesFor(l).loaded(source)
}

// LoadFailedText is spoken when a timetable cannot be loaded.
func LoadFailedText(l Lang) string {
	return templatesFor(l).loadFailed
}
