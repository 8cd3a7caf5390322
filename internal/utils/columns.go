package utils

import "fmt"

const columnPrefixFmt = "%s.%s"

// PrefixSliceOfStrings qualifies each column with a table alias, dropping
// the ignored ones.
func PrefixSliceOfStrings(prefix string, input []string, ignore ...string) []string {
	out := make([]string, 0, len(input))

inputloop:
	for _, v := range input {
		for _, ignored := range ignore {
			if v == ignored {
				continue inputloop
			}
		}

		out = append(out, fmt.Sprintf(columnPrefixFmt, prefix, v))
	}
	return out
}
