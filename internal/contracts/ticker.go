package contracts

import "strings"

// Ticker is a raw user-supplied stock symbol.
// Korean symbols circulate in three spellings (005930, 005930.KS, 005930.KQ);
// all alias knowledge lives on this type so callers never re-derive variants.
// ⭐ SSOT: 티커 표기 변환은 이 타입에서만 수행
type Ticker string

// String returns the raw symbol
func (t Ticker) String() string {
	return string(t)
}

// Normalized returns the canonical spelling: the bare 6-digit code for
// Korean symbols, the uppercased raw symbol otherwise.
func (t Ticker) Normalized() string {
	s := strings.ToUpper(strings.TrimSpace(string(t)))
	if code, ok := koreanCode(s); ok {
		return code
	}
	return s
}

// IsKorean reports whether the symbol is a 6-digit Korean code,
// with or without a .KS/.KQ exchange suffix.
func (t Ticker) IsKorean() bool {
	_, ok := koreanCode(strings.ToUpper(strings.TrimSpace(string(t))))
	return ok
}

// Candidates returns every on-disk spelling an artifact for this symbol
// may have been saved under, most specific first. The locator searches
// all of them.
func (t Ticker) Candidates(market Market) []string {
	raw := strings.ToUpper(strings.TrimSpace(string(t)))
	if !market.IsKorean() {
		return []string{raw}
	}

	code, ok := koreanCode(raw)
	if !ok {
		return []string{raw}
	}

	candidates := []string{raw, code, code + ".KS", code + ".KQ"}
	return dedupeStrings(candidates)
}

// YahooSymbols returns the exchange-suffixed spellings to try against
// Yahoo Finance, in priority order for the given market. KOSDAQ tries
// .KQ before .KS, KOSPI the reverse. Non-Korean symbols pass through.
func (t Ticker) YahooSymbols(market Market) []string {
	raw := strings.ToUpper(strings.TrimSpace(string(t)))
	code, ok := koreanCode(raw)
	if !ok || !market.IsKorean() {
		return []string{raw}
	}

	if market == MarketKOSDAQ {
		return []string{code + ".KQ", code + ".KS"}
	}
	return []string{code + ".KS", code + ".KQ"}
}

// koreanCode extracts the bare 6-digit code from s, stripping a .KS/.KQ
// suffix if present. ok is false when s is not a Korean-style symbol.
func koreanCode(s string) (code string, ok bool) {
	base := s
	if strings.HasSuffix(s, ".KS") || strings.HasSuffix(s, ".KQ") {
		base = s[:len(s)-3]
	}
	if len(base) != 6 {
		return "", false
	}
	for _, r := range base {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return base, true
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
