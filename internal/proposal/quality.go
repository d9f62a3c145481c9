package proposal

import (
	"fmt"
	"strings"
)

// QualityLevel is a coarse bucket of a proposal's quality score.
// QualityUnknown doubles as "no minimum" in filter criteria.
type QualityLevel int

const (
	QualityUnknown QualityLevel = iota
	QualityLow
	QualityMedium
	QualityHigh
)

const (
	qualityHighThreshold   = 2.0
	qualityMediumThreshold = 1.0
)

var qualityLevelNames = map[QualityLevel]string{
	QualityUnknown: "unknown",
	QualityLow:     "low",
	QualityMedium:  "medium",
	QualityHigh:    "high",
}

func (l QualityLevel) String() string {
	if name, ok := qualityLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("QualityLevel(%d)", int(l))
}

// ParseQualityLevel accepts the names returned by String, case-insensitive.
// The empty string parses as QualityUnknown.
func ParseQualityLevel(s string) (QualityLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return QualityUnknown, nil
	}
	for level, name := range qualityLevelNames {
		if name == s {
			return level, nil
		}
	}
	return QualityUnknown, fmt.Errorf("unknown quality level: %q", s)
}

// LevelOf buckets a quality record. A missing record is QualityUnknown.
func LevelOf(q *Quality) QualityLevel {
	if q == nil {
		return QualityUnknown
	}
	switch {
	case q.Quality >= qualityHighThreshold:
		return QualityHigh
	case q.Quality >= qualityMediumThreshold:
		return QualityMedium
	default:
		return QualityLow
	}
}
