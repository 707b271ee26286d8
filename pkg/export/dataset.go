package export

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
	// Weights sizes PDF columns relative to each other; missing entries count as 1.
	Weights []float64
}

// Records returns the rows ordered by Headers.
func (d Dataset) Records() [][]string {
	records := make([][]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}
	return records
}

func (d Dataset) weight(i int) float64 {
	if i < len(d.Weights) && d.Weights[i] > 0 {
		return d.Weights[i]
	}
	return 1
}
