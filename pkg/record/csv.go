package record

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVHeader is the column layout of lumps_out.csv.
var CSVHeader = []string{
	"graph_name", "n_nodes", "M_edges", "aut_grp_order", "rho",
	"avg_support", "tot_support", "delta",
}

// WriteCSV writes one row per record under CSVHeader. Missing support values
// are empty cells.
func WriteCSV(w io.Writer, records []*Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.GraphName,
			strconv.Itoa(r.NNodes),
			strconv.Itoa(r.MEdges),
			r.AutGrpOrder,
			r.Rho.String(),
			formatSupport(r.AvgSupport),
			formatSupport(r.TotSupport),
			r.Delta.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatSupport(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
