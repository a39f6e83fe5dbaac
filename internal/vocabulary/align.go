package vocabulary

import "wallet-feature-lab/internal/domain"

// Align maps dominant sent/received tokens onto the vocabulary's indicator
// columns. Output holds every sent column then every received column, in
// vocabulary order, each 0 or 1.
//
// Per side: the templated column is set to 1 if present; otherwise the
// side's None column is set to 1 if present; all other columns stay 0.
// A nil vocabulary aligns like an empty one.
func Align(dominantSent, dominantReceived string, vocab *Vocabulary) []domain.Feature {
	if vocab == nil {
		vocab = Empty()
	}
	out := make([]domain.Feature, 0, len(vocab.sent)+len(vocab.received))
	out = append(out, alignSide(vocab.sent, vocab.sentSet, SentColumn(dominantSent), SentColumn(NoneToken))...)
	out = append(out, alignSide(vocab.received, vocab.receivedSet, ReceivedColumn(dominantReceived), ReceivedColumn(NoneToken))...)
	return out
}

func alignSide(columns []string, set map[string]struct{}, live, none string) []domain.Feature {
	active := live
	if _, ok := set[live]; !ok {
		active = none
	}

	features := make([]domain.Feature, len(columns))
	for i, c := range columns {
		features[i] = domain.Feature{Name: c}
		if c == active {
			features[i].Value = 1
		}
	}
	return features
}
