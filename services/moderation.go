package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Daftar istilah terlarang untuk deskripsi project, cover letter dan review.
var bannedTerms = []string{
	"damn", "shit", "fuck", "bastard", "asshole",
	"scam", "fraudster",
	"дурак", "идиот", "чёрт", "сволочь",
	"bangsat", "anjing", "goblok", "tolol",
}

// Span menandai satu kemunculan istilah terlarang (offset dalam rune).
type Span struct {
	Word  string `json:"word"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ScanResult adalah hasil mentah scanner sebelum dibungkus ModerationResult.
type ScanResult struct {
	Spans       []Span
	UniqueTerms []string
}

// ScanText memindai teks dan mengembalikan posisi istilah terlarang.
// Murni dan deterministik; teks kosong menghasilkan hasil kosong,
// tidak ada kondisi error.
func ScanText(text string) ScanResult {
	var result ScanResult
	if text == "" {
		return result
	}

	runes := []rune(text)
	seen := make(map[string]bool)

	wordStart := -1
	flush := func(end int) {
		if wordStart < 0 {
			return
		}
		word := strings.ToLower(string(runes[wordStart:end]))
		for _, term := range bannedTerms {
			if word == term {
				result.Spans = append(result.Spans, Span{
					Word:  word,
					Start: wordStart,
					End:   end,
				})
				if !seen[word] {
					seen[word] = true
					result.UniqueTerms = append(result.UniqueTerms, word)
				}
				break
			}
		}
		wordStart = -1
	}

	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if wordStart < 0 {
				wordStart = i
			}
		} else {
			flush(i)
		}
	}
	flush(len(runes))

	sort.Strings(result.UniqueTerms)
	return result
}

// ModerationStats selalu dihitung ulang dari teks input saat ini,
// bukan dari entri cache.
type ModerationStats struct {
	WordCount  int `json:"word_count"`
	TextLength int `json:"text_length"`
}

type ModerationResult struct {
	IsClean     bool            `json:"is_clean"`
	Errors      []string        `json:"errors,omitempty"`
	Positions   []Span          `json:"positions,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Statistics  ModerationStats `json:"statistics"`
}

type cacheEntry struct {
	spans       []Span
	uniqueTerms []string
	timestamp   time.Time
}

// ModerationCache memoisasi hasil scan per teks (setelah trim+lowercase)
// selama jendela TTL. Sweep entri kadaluarsa hanya terjadi saat ukuran map
// melewati kapasitas setelah insert; entri yang masih hidup tidak dibuang
// walau map besar, jadi kapasitas adalah batas lunak.
type ModerationCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int

	// Bisa diganti di test untuk mengontrol waktu dan simulasi
	// perubahan scanner.
	Now  func() time.Time
	Scan func(text string) ScanResult
}

const (
	defaultModerationTTL      = 5 * time.Minute
	defaultModerationCapacity = 1000
)

func NewModerationCache() *ModerationCache {
	return NewModerationCacheWith(defaultModerationTTL, defaultModerationCapacity)
}

func NewModerationCacheWith(ttl time.Duration, capacity int) *ModerationCache {
	return &ModerationCache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		Now:      time.Now,
		Scan:     ScanText,
	}
}

// Check mengembalikan hasil moderasi untuk teks, dari cache bila entri
// masih hidup. Posisi/istilah yang di-cache dipakai apa adanya; statistik
// dihitung segar dari input.
func (mc *ModerationCache) Check(text string) ModerationResult {
	key := strings.ToLower(strings.TrimSpace(text))

	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.Now()

	if entry, ok := mc.entries[key]; ok && now.Sub(entry.timestamp) < mc.ttl {
		return mc.buildResult(text, entry.spans, entry.uniqueTerms)
	}

	scanned := mc.Scan(text)
	mc.entries[key] = cacheEntry{
		spans:       scanned.Spans,
		uniqueTerms: scanned.UniqueTerms,
		timestamp:   now,
	}

	if len(mc.entries) > mc.capacity {
		mc.sweep(now)
	}

	return mc.buildResult(text, scanned.Spans, scanned.UniqueTerms)
}

// Len mengembalikan jumlah entri saat ini (untuk observability dan test).
func (mc *ModerationCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.entries)
}

func (mc *ModerationCache) buildResult(text string, spans []Span, terms []string) ModerationResult {
	result := ModerationResult{
		IsClean:    len(spans) == 0,
		Positions:  spans,
		Errors:     terms,
		Statistics: computeStats(text),
	}
	for _, term := range terms {
		result.Suggestions = append(result.Suggestions, fmt.Sprintf("consider rephrasing %q", term))
	}
	return result
}

func (mc *ModerationCache) sweep(now time.Time) {
	for key, entry := range mc.entries {
		if now.Sub(entry.timestamp) >= mc.ttl {
			delete(mc.entries, key)
		}
	}
}

func computeStats(text string) ModerationStats {
	return ModerationStats{
		WordCount:  len(strings.Fields(text)),
		TextLength: len([]rune(text)),
	}
}
