package clients

import "time"

const (
	MAX_RETRIES     = 5
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "insightsyn-client/1.0 (+https://github.com/spacesedan/insightsyn)"
)

// Generation bounds used by the summarizer.
const (
	SUMMARY_MIN_LENGTH = 10
	SUMMARY_MAX_LENGTH = 50
)
