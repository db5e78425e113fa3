package pipeline

import (
	"github.com/ajitpratap0/typesplit/internal/classify"
	"github.com/ajitpratap0/typesplit/pkg/config"
	"github.com/ajitpratap0/typesplit/pkg/models"
)

// MergeResult is everything a merge produces. It owns its Partition.
type MergeResult struct {
	Partition  models.Partition
	Rejections []models.Rejection
	// Unconsumed counts lines the merge never visited. Only the keyed
	// policy leaves any.
	Unconsumed int
}

// Merge interleaves sources round-robin and classifies every emitted line.
//
// Each round visits the sources in argument order and takes the next line
// from every source that still has one. Under MergeDrain rounds continue
// until all sources are exhausted. Under MergeKeyed no further round starts
// once the source at index 1 is exhausted; with fewer than two sources it
// behaves like MergeDrain.
//
// Merge performs no I/O and does not modify sources.
func Merge(sources []models.Source, policy config.MergePolicy) MergeResult {
	var res MergeResult

	cursors := make([]int, len(sources))
	remaining := 0
	for _, src := range sources {
		remaining += len(src.Lines)
	}

	for remaining > 0 {
		if policy == config.MergeKeyed && len(sources) >= 2 && cursors[1] >= len(sources[1].Lines) {
			break
		}

		for i := range sources {
			src := &sources[i]
			if cursors[i] >= len(src.Lines) {
				continue
			}
			text := src.Lines[cursors[i]]
			cursors[i]++
			remaining--

			line, err := classify.Classify(text)
			if err != nil {
				res.Rejections = append(res.Rejections, models.Rejection{
					Path:   src.Path,
					LineNo: cursors[i],
					Text:   text,
					Err:    err,
				})
				continue
			}
			res.Partition.Add(line)
		}
	}

	res.Unconsumed = remaining
	return res
}
