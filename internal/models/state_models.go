package models

// AppState holds both interaction histories, newest entry first.
type AppState struct {
	AnalysisHistory   []AnalysisResult   `json:"analysis_history"`
	BrainstormHistory []BrainstormResult `json:"brainstorm_history"`
}

func NewAppState() AppState {
	return AppState{
		AnalysisHistory:   []AnalysisResult{},
		BrainstormHistory: []BrainstormResult{},
	}
}

// RecordAnalysis prepends r to the analysis history.
func (s *AppState) RecordAnalysis(r AnalysisResult) {
	s.AnalysisHistory = append([]AnalysisResult{r}, s.AnalysisHistory...)
}

// RecordBrainstorm prepends r to the brainstorm history.
func (s *AppState) RecordBrainstorm(r BrainstormResult) {
	s.BrainstormHistory = append([]BrainstormResult{r}, s.BrainstormHistory...)
}

// Clone returns a deep copy whose slices share nothing with s. Nil
// histories come back as empty slices so they serialise as [].
func (s AppState) Clone() AppState {
	out := NewAppState()
	for _, r := range s.AnalysisHistory {
		out.AnalysisHistory = append(out.AnalysisHistory, r.Clone())
	}
	out.BrainstormHistory = append(out.BrainstormHistory, s.BrainstormHistory...)
	return out
}

// LatestAnalysis returns the most recent analysis, if any.
func (s AppState) LatestAnalysis() (AnalysisResult, bool) {
	if len(s.AnalysisHistory) == 0 {
		return AnalysisResult{}, false
	}
	return s.AnalysisHistory[0], true
}
