package tui

type focusArea int

const (
	focusComposer focusArea = iota
	focusRecommendations
)

const heroTagline = "Search arXiv, pick a paper, talk it through."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	summaryPreviewLimit       = 320
	maxRecommendationRows     = 5
)

const (
	topicPlaceholder    = "Search papers by topic, e.g. graph neural networks…"
	composerPlaceholder = "Ask about this paper…"
)
