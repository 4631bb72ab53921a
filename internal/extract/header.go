package extract

import "github.com/joseph-ayodele/nstp-roster/internal/common"

// locateHeader returns the index of the first row whose trimmed cells contain
// every required column, and the column index of each schema column found.
func locateHeader(grid [][]string, schema HeaderSchema) (int, map[string]int, error) {
	for i, row := range grid {
		cols := make(map[string]int, len(row))
		for j, cell := range row {
			key := normalizeHeader(cell)
			if key == "" {
				continue
			}
			if _, dup := cols[key]; !dup {
				cols[key] = j
			}
		}

		found := make(map[string]int, len(schema.Required)+len(schema.Optional))
		complete := true
		for _, name := range schema.Required {
			j, ok := cols[normalizeHeader(name)]
			if !ok {
				complete = false
				break
			}
			found[name] = j
		}
		if !complete {
			continue
		}
		for _, name := range schema.Optional {
			if j, ok := cols[normalizeHeader(name)]; ok {
				found[name] = j
			}
		}
		return i, found, nil
	}
	return -1, nil, &common.HeaderNotFoundError{Expected: schema.Required, Scanned: len(grid)}
}
