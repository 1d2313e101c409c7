package sanitizer

import "strings"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var keyPipeline = Pipeline{TrimAndNormalize, strings.ToLower}

// NormalizeKey folds s for case-insensitive matching.
func NormalizeKey(s string) string {
	return keyPipeline.Apply(s)
}
