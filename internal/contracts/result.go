package contracts

import "time"

// Processing stage names, in pipeline order.
// 모든 로그와 결과 리포트에서 이 상수를 사용해야 함
const (
	StagePrecheck   = "precheck"
	StageStrategy   = "strategy"
	StageDownload   = "download"
	StageValidation = "validation"
	StageDailySave  = "daily_save"
	StageIndicators = "indicators"
)

// ProcessingResult is the per-ticker outcome of a pipeline run
type ProcessingResult struct {
	Ticker  Ticker `json:"ticker"`
	Market  Market `json:"market"`
	Success bool   `json:"success"`

	// Strategy chosen by the freshness policy ("use_existing" / "download_fresh")
	Strategy string `json:"strategy,omitempty"`

	// Stage reached; on failure, the stage that failed
	Stage string `json:"stage"`

	// Saved artifact paths keyed by "<kind>_<timeframe>" (e.g. "ohlcv_d")
	Paths map[string]string `json:"paths,omitempty"`

	// Daily row count after cleaning
	Rows int `json:"rows"`

	// Indicator timeframes computed vs attempted
	IndicatorsDone  int `json:"indicators_done"`
	IndicatorsTotal int `json:"indicators_total"`

	Skipped bool          `json:"skipped,omitempty"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Fail marks the result failed at a stage with an error message
func (r *ProcessingResult) Fail(stage string, err error) *ProcessingResult {
	r.Success = false
	r.Stage = stage
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// AddPath records a saved artifact path
func (r *ProcessingResult) AddPath(kind Kind, tf Timeframe, path string) {
	if r.Paths == nil {
		r.Paths = make(map[string]string)
	}
	r.Paths[string(kind)+"_"+string(tf)] = path
}
