package analysis

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/bytedance/sonic"
)

// WriteTable prints s as an aligned two-column table.
func WriteTable(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		name  string
		value string
	}{
		{"n", strconv.Itoa(s.N)},
		{"min", formatSeconds(s.Min)},
		{"max", formatSeconds(s.Max)},
		{"mean", formatSeconds(s.Mean)},
		{"median", formatSeconds(s.Median)},
		{"std", formatSeconds(s.Std)},
		{"q25", formatSeconds(s.Q25)},
		{"q75", formatSeconds(s.Q75)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", r.name, r.value); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteJSON prints s as a JSON object. NaN values are written as null.
func WriteJSON(w io.Writer, s Summary) error {
	out := map[string]any{
		"n":      s.N,
		"min":    jsonFloat(s.Min),
		"max":    jsonFloat(s.Max),
		"mean":   jsonFloat(s.Mean),
		"median": jsonFloat(s.Median),
		"std":    jsonFloat(s.Std),
		"q25":    jsonFloat(s.Q25),
		"q75":    jsonFloat(s.Q75),
	}
	enc := sonic.ConfigStd.NewEncoder(w)
	return enc.Encode(out)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func jsonFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
