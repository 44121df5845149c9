package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Market identifies an exchange grouping and its storage folder
// ⭐ SSOT: 시장별 폴더명/타임존/거래시간은 여기서만 정의
type Market string

const (
	// MarketUS US-listed equities (NYSE/NASDAQ)
	MarketUS Market = "US"

	// MarketKOSPI Korea Exchange main board
	MarketKOSPI Market = "KOSPI"

	// MarketKOSDAQ Korea Exchange growth board
	MarketKOSDAQ Market = "KOSDAQ"
)

var (
	seoulLoc   *time.Location
	newYorkLoc *time.Location
)

func init() {
	var err error
	seoulLoc, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		seoulLoc = time.FixedZone("KST", 9*3600)
	}
	newYorkLoc, err = time.LoadLocation("America/New_York")
	if err != nil {
		newYorkLoc = time.FixedZone("EST", -5*3600)
	}
}

// String returns the market name
func (m Market) String() string {
	return string(m)
}

// Folder returns the artifact folder name under the data root
func (m Market) Folder() string {
	return string(m)
}

// IsKorean reports whether the market trades in Seoul
func (m Market) IsKorean() bool {
	return m == MarketKOSPI || m == MarketKOSDAQ
}

// Location returns the market's local timezone
func (m Market) Location() *time.Location {
	if m.IsKorean() {
		return seoulLoc
	}
	return newYorkLoc
}

// TZLabel returns the timezone label used in artifact filenames
func (m Market) TZLabel() string {
	if m.IsKorean() {
		return "KST"
	}
	return "EST"
}

// TradingHours returns the session open/close as minutes from local midnight.
// KR: 09:00-15:30, US: 09:30-16:00. Holidays are not modeled.
func (m Market) TradingHours() (openMin, closeMin int) {
	if m.IsKorean() {
		return 9 * 60, 15*60 + 30
	}
	return 9*60 + 30, 16 * 60
}

// AllMarkets returns every supported market
func AllMarkets() []Market {
	return []Market{MarketUS, MarketKOSPI, MarketKOSDAQ}
}

// ParseMarket converts a string to a Market
func ParseMarket(s string) (Market, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "US":
		return MarketUS, nil
	case "KOSPI":
		return MarketKOSPI, nil
	case "KOSDAQ":
		return MarketKOSDAQ, nil
	default:
		return "", fmt.Errorf("unknown market: %q", s)
	}
}
