package stats

import (
	"regexp"
	"sort"
	"strings"
	"tickerpulse/internal/model"
)

const (
	TableKeywords = 10
	CloudKeywords = 50

	minCloudSize = 10
	maxCloudSize = 60
	midCloudSize = 30
)

var (
	nonWord   = regexp.MustCompile(`\W+`)
	allDigits = regexp.MustCompile(`^\d+$`)
)

// stopWords are dropped before counting: English function words plus terms
// that appear in almost every market headline.
var stopWords = toSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with",
	"by", "from", "as", "is", "was", "are", "were", "been", "be", "have", "has", "had",
	"do", "does", "did", "will", "would", "should", "could", "may", "might", "must",
	"can", "this", "that", "these", "those", "i", "you", "he", "she", "it", "we", "they",
	"what", "which", "who", "whom", "whose", "where", "when", "why", "how", "all", "each",
	"every", "both", "few", "more", "most", "other", "some", "such", "no", "nor", "not",
	"only", "own", "same", "so", "than", "too", "very", "s", "t", "just",
	"don", "now", "stock", "stocks", "company", "companies", "market", "markets",
	"news", "report", "reports", "says", "said", "saying", "year", "years", "day", "days",
	"time", "times", "new", "first", "last", "next", "previous", "after", "before",
)

type Keyword struct {
	Text  string
	Count int
	Size  float64
}

// KeywordFrequency ranks title words by count, most frequent first. Equal
// counts keep the order in which the words first appeared. When sized is
// set, counts are mapped linearly onto the cloud font range.
func KeywordFrequency(items []model.NewsItem, topK int, sized bool) []Keyword {
	counts := make(map[string]int)
	var order []string

	for _, item := range items {
		for _, word := range nonWord.Split(strings.ToLower(item.Title), -1) {
			if len(word) <= 2 || allDigits.MatchString(word) || stopWords[word] {
				continue
			}
			if _, seen := counts[word]; !seen {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	keywords := make([]Keyword, len(order))
	for i, word := range order {
		keywords[i] = Keyword{Text: word, Count: counts[word]}
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].Count > keywords[j].Count
	})

	if topK >= 0 && len(keywords) > topK {
		keywords = keywords[:topK]
	}

	if sized {
		scaleSizes(keywords)
	}

	return keywords
}

func scaleSizes(keywords []Keyword) {
	if len(keywords) == 0 {
		return
	}

	maxCount, minCount := keywords[0].Count, keywords[0].Count
	for _, k := range keywords {
		if k.Count > maxCount {
			maxCount = k.Count
		}
		if k.Count < minCount {
			minCount = k.Count
		}
	}

	for i := range keywords {
		if maxCount == minCount {
			keywords[i].Size = midCloudSize
			continue
		}
		ratio := float64(keywords[i].Count-minCount) / float64(maxCount-minCount)
		keywords[i].Size = minCloudSize + ratio*(maxCloudSize-minCloudSize)
	}
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
