// Package internal holds small helpers shared by the xjx packages.
package internal

import (
	"iter"
)

// IterSeq2Concat chains several key/value sequences into one. Later
// sequences may repeat keys; consumers that build maps from the result get
// last-wins semantics.
func IterSeq2Concat[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}

// IterSeq2Map adapts every value of a sequence, keeping the keys.
func IterSeq2Map[K any, V any, W any](seq iter.Seq2[K, V], fn func(V) W) iter.Seq2[K, W] {
	return func(yield func(K, W) bool) {
		for key, value := range seq {
			if !yield(key, fn(value)) {
				return
			}
		}
	}
}
