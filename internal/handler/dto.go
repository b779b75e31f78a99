package handler

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type NewsItemResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	Date        string   `json:"date"`
	ArticleURL  string   `json:"articleUrl,omitempty"`
	Description string   `json:"description,omitempty"`
	Tickers     []string `json:"tickers"`
}

type NewsResponse struct {
	News   []NewsItemResponse `json:"news"`
	Count  int                `json:"count"`
	Ticker string             `json:"ticker"`
}

type PredictRequest struct {
	ID    string `json:"id" binding:"required"`
	Title string `json:"title" binding:"required"`
}

type PredictionResponse struct {
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
	IsOutlier bool    `json:"isOutlier"`
}

type PredictResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Prediction PredictionResponse `json:"prediction"`
}

type SessionRequest struct {
	Ticker string `json:"ticker"`
}

type SessionNewsItemResponse struct {
	NewsItemResponse
	Prediction *PredictionResponse `json:"prediction,omitempty"`
	IsLoading  bool                `json:"isLoading"`
	Error      string              `json:"error,omitempty"`
}

type DistributionResponse struct {
	Total           int     `json:"total"`
	Positive        int     `json:"positive"`
	Negative        int     `json:"negative"`
	Neutral         int     `json:"neutral"`
	Other           int     `json:"other"`
	Normal          int     `json:"normal"`
	Outlier         int     `json:"outlier"`
	PositivePercent float64 `json:"positivePercent"`
	NegativePercent float64 `json:"negativePercent"`
	NeutralPercent  float64 `json:"neutralPercent"`
	NormalPercent   float64 `json:"normalPercent"`
	OutlierPercent  float64 `json:"outlierPercent"`
}

type KeywordResponse struct {
	Text  string  `json:"text"`
	Count int     `json:"count"`
	Size  float64 `json:"size,omitempty"`
}

type SessionResponse struct {
	SessionID     string                    `json:"sessionId"`
	Ticker        string                    `json:"ticker"`
	Phase         string                    `json:"phase"`
	PollingActive bool                      `json:"pollingActive"`
	FetchedAt     string                    `json:"fetchedAt,omitempty"`
	News          []SessionNewsItemResponse `json:"news"`
	Distribution  DistributionResponse      `json:"distribution"`
	Keywords      []KeywordResponse         `json:"keywords"`
	Cloud         []KeywordResponse         `json:"cloud"`
	Error         *ErrorResponse            `json:"error,omitempty"`
}

type PredictionRecordResponse struct {
	ID           int64   `json:"id"`
	SessionID    string  `json:"sessionId"`
	ArticleID    string  `json:"articleId"`
	Ticker       string  `json:"ticker"`
	Title        string  `json:"title"`
	Label        string  `json:"label"`
	Score        float64 `json:"score"`
	IsOutlier    bool    `json:"isOutlier"`
	ClassifiedAt string  `json:"classifiedAt"`
}

type PredictionsResponse struct {
	Predictions []PredictionRecordResponse `json:"predictions"`
	Count       int                        `json:"count"`
	Limit       int                        `json:"limit"`
}
