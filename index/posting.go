package index

import "sort"

// PostingList maps a document id to the term frequency (TF) of one term in that document.
// TF is the number of occurrences of the term divided by the document's indexed term count.
type PostingList map[int]float64

// DocIDs returns the ids in the posting list in ascending order.
func (pl PostingList) DocIDs() []int {
	ids := make([]int, 0, len(pl))
	for id := range pl {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
