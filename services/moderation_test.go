package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/freelance-market/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func TestScanTextFindsBannedTerms(t *testing.T) {
	result := ScanText("this is a damn scam, a total scam")

	assert.Len(t, result.Spans, 3)
	assert.Equal(t, []string{"damn", "scam"}, result.UniqueTerms)

	// Offset dalam rune, cocok dengan posisi kata di teks
	assert.Equal(t, Span{Word: "damn", Start: 10, End: 14}, result.Spans[0])
	assert.Equal(t, Span{Word: "scam", Start: 15, End: 19}, result.Spans[1])
}

func TestScanTextCaseInsensitive(t *testing.T) {
	result := ScanText("DAMN it")
	assert.Len(t, result.Spans, 1)
	assert.Equal(t, "damn", result.Spans[0].Word)
}

func TestScanTextEmptyAndClean(t *testing.T) {
	assert.Empty(t, ScanText("").Spans)
	assert.Empty(t, ScanText("perfectly polite text").Spans)

	// Substring bukan kata utuh tidak boleh kena
	assert.Empty(t, ScanText("scampi is delicious").Spans)
}

func TestScanTextCyrillic(t *testing.T) {
	result := ScanText("ты идиот")
	assert.Len(t, result.Spans, 1)
	assert.Equal(t, "идиот", result.Spans[0].Word)
	assert.Equal(t, 3, result.Spans[0].Start)
	assert.Equal(t, 8, result.Spans[0].End)
}

// newTestCache mengembalikan cache dengan jam yang bisa digeser manual.
func newTestCache(ttl time.Duration, capacity int) (*ModerationCache, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewModerationCacheWith(ttl, capacity)
	cache.Now = func() time.Time { return now }
	return cache, &now
}

func TestModerationCacheServesCachedPositions(t *testing.T) {
	cache, _ := newTestCache(5*time.Minute, 1000)

	first := cache.Check("this damn project")
	assert.False(t, first.IsClean)
	assert.Equal(t, []string{"damn"}, first.Errors)

	// Ganti scanner untuk mensimulasikan update logika; hasil kedua harus
	// tetap identik karena dilayani dari cache, bukan scan ulang
	cache.Scan = func(text string) ScanResult {
		return ScanResult{} // scanner "baru" tidak menemukan apa-apa
	}

	second := cache.Check("this damn project")
	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, first.Positions, second.Positions)
	assert.Equal(t, first.IsClean, second.IsClean)
}

func TestModerationCacheCleanTextStaysByteIdentical(t *testing.T) {
	cache, _ := newTestCache(5*time.Minute, 1000)

	text := "Это тестовый текст"
	first := cache.Check(text)
	assert.True(t, first.IsClean)
	assert.Nil(t, first.Errors)

	// Scanner diganti agar menandai semuanya; cache harus tetap menjawab
	cache.Scan = func(text string) ScanResult {
		return ScanResult{
			Spans:       []Span{{Word: "это", Start: 0, End: 3}},
			UniqueTerms: []string{"это"},
		}
	}

	second := cache.Check(text)
	assert.True(t, second.IsClean)
	assert.Nil(t, second.Errors)
	assert.Equal(t, first.Positions, second.Positions)
}

func TestModerationCacheStatisticsAlwaysFresh(t *testing.T) {
	cache, _ := newTestCache(5*time.Minute, 1000)

	first := cache.Check("damn text")
	assert.Equal(t, 9, first.Statistics.TextLength)
	assert.Equal(t, 2, first.Statistics.WordCount)

	// Key dinormalisasi (trim+lowercase), jadi varian berikut kena cache
	// yang sama, tapi statistiknya dihitung dari input saat ini
	second := cache.Check("  DAMN TEXT  ")
	assert.Equal(t, first.Positions, second.Positions)
	assert.Equal(t, 13, second.Statistics.TextLength)
	assert.Equal(t, 2, second.Statistics.WordCount)
}

func TestModerationCacheExpiresAfterTTL(t *testing.T) {
	cache, now := newTestCache(5*time.Minute, 1000)

	cache.Check("some damn text")

	cache.Scan = func(text string) ScanResult { return ScanResult{} }

	// Masih dalam TTL: hasil lama
	*now = now.Add(4 * time.Minute)
	assert.False(t, cache.Check("some damn text").IsClean)

	// Lewat TTL: scan ulang dengan scanner baru
	*now = now.Add(2 * time.Minute)
	assert.True(t, cache.Check("some damn text").IsClean)
}

func TestModerationCacheSweepIsSoftBound(t *testing.T) {
	cache, now := newTestCache(5*time.Minute, 3)

	// Tiga entri tua
	for i := 0; i < 3; i++ {
		cache.Check(fmt.Sprintf("old text %d", i))
	}
	assert.Equal(t, 3, cache.Len())

	// Entri keempat saat semuanya kadaluarsa -> sweep membuang yang tua
	*now = now.Add(6 * time.Minute)
	cache.Check("new text")
	assert.Equal(t, 1, cache.Len())

	// Entri muda tidak dibuang walau kapasitas terlampaui
	cache.Check("another one")
	cache.Check("yet another")
	cache.Check("fourth entry")
	assert.Equal(t, 4, cache.Len())
}
