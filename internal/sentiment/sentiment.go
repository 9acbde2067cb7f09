// Package sentiment scores free text on a negative-to-positive scale.
package sentiment

import (
	"errors"
	"strings"

	"github.com/jonreiter/govader"
)

// Scores holds VADER polarity proportions and the normalized compound
// score in [-1, 1].
type Scores struct {
	Negative float64
	Neutral  float64
	Positive float64
	Compound float64
}

// Analyzer scores text.
type Analyzer interface {
	Score(text string) (Scores, error)
}

// Vader is a lexicon-based Analyzer. The zero value is not usable; call NewVader.
type Vader struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVader loads the VADER lexicon. Loading is relatively expensive, so a
// single instance should be shared.
func NewVader() *Vader {
	return &Vader{sia: govader.NewSentimentIntensityAnalyzer()}
}

func (v *Vader) Score(text string) (s Scores, err error) {
	if v == nil || v.sia == nil {
		return Scores{}, errors.New("sentiment analyzer not initialized")
	}
	if strings.TrimSpace(text) == "" {
		return Scores{}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			s, err = Scores{}, errors.New("sentiment analysis failed")
		}
	}()
	p := v.sia.PolarityScores(text)
	return Scores{
		Negative: p.Negative,
		Neutral:  p.Neutral,
		Positive: p.Positive,
		Compound: p.Compound,
	}, nil
}
