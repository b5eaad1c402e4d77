// Package sorter reorganizes a tree of files into a destination tree in three
// phases: by extension, images by capture-date event, and the remainder by
// size or resolution tier.
//
// Layout produced under the destination:
//
//	<ext>/...                              files routed by extension
//	PROCESSED/<year>/[<MM>/]<event>/...    dated images
//	PROCESSED/unknown[-to-sort]/...        images captured today or undated
//	<threshold>/...                        remainder tiers
//
// A Sorter is safe to reuse, but only one run per destination may be active
// at a time.
package sorter
