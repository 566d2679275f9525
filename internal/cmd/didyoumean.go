package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// levenshtein computes the Levenshtein edit distance between two strings.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	row := make([]int, lb+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= la; i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			val := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = val
		}
	}
	return row[lb]
}

// closest picks a candidate for input: the nearest one within edit
// distance 3, otherwise the best fuzzy subsequence match ("fav" finds
// "favorites").
func closest(input string, candidates []string) string {
	input = strings.ToLower(input)
	if input == "" || len(candidates) == 0 {
		return ""
	}

	bestDist := 4
	bestMatch := ""
	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
		if d := levenshtein(input, lowered[i]); d < bestDist {
			bestDist = d
			bestMatch = c
		}
	}
	if bestMatch != "" {
		return bestMatch
	}

	matches := fuzzy.Find(input, lowered)
	if len(matches) == 0 {
		return ""
	}
	return candidates[matches[0].Index]
}

// suggestCommand finds the closest command name to the unknown input.
func suggestCommand(unknown string, commands []string) string {
	return closest(unknown, commands)
}

// suggestFlag finds the closest flag name, comparing without leading dashes
// but returning the match with its prefix.
func suggestFlag(unknown string, flagNames []string) string {
	stripped := strings.TrimLeft(unknown, "-")
	if stripped == "" {
		return ""
	}
	bare := make([]string, len(flagNames))
	for i, f := range flagNames {
		bare[i] = strings.TrimLeft(f, "-")
	}
	match := closest(stripped, bare)
	if match == "" {
		return ""
	}
	for i, b := range bare {
		if b == match {
			return flagNames[i]
		}
	}
	return ""
}
