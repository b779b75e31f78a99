package news

import (
	"fmt"
	"time"
)

const (
	ProviderMassive      = "massive"
	ProviderFinnHub      = "finnhub"
	ProviderAlphaVantage = "alphavantage"
)

// Credentials carries the per-provider API keys. Empty keys are allowed here;
// the client reports them when it is first used.
type Credentials struct {
	MassiveAPIKey      string
	MassiveBaseURL     string
	FinnHubAPIKey      string
	AlphaVantageAPIKey string
	Timeout            time.Duration
}

func NewClient(provider string, creds Credentials) (NewsClient, error) {
	timeout := creds.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	switch provider {
	case "", ProviderMassive:
		return NewMassiveClient(creds.MassiveAPIKey, creds.MassiveBaseURL, timeout), nil
	case ProviderFinnHub:
		return NewFinnHubClient(creds.FinnHubAPIKey, timeout), nil
	case ProviderAlphaVantage:
		return NewAlphaVantageClient(creds.AlphaVantageAPIKey, timeout), nil
	default:
		return nil, fmt.Errorf("unknown news provider %q", provider)
	}
}
