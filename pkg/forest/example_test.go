package forest_test

import (
	"fmt"

	"github.com/matzehuels/forestplot/pkg/forest"
)

func ExampleParse() {
	input := `{
	  "data": {
	    "scale": "log",
	    "rows": [
	      {"id": "acme", "label": "ACME 2019", "point": 0.82, "lower": 0.61, "upper": 1.1}
	    ]
	  },
	  "columns": [
	    {"field": "label", "header": "Study"},
	    {"type": "interval", "header": "OR (95% CI)"}
	  ]
	}`

	spec, err := forest.Parse([]byte(input))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	est := spec.Data.Rows[0].Estimate(nil)
	fmt.Println(spec.Data.Scale)
	fmt.Println(est.Point, est.Lower, est.Upper)
	// Output:
	// log
	// 0.82 0.61 1.1
}

func ExampleRow_Estimate() {
	row := forest.Row{
		Meta: map[string]any{"rr": 1.4, "rr_lo": 1.05, "rr_hi": 1.86},
	}
	effect := &forest.Effect{Field: "rr", Lower: "rr_lo", Upper: "rr_hi"}

	est := row.Estimate(effect)
	fmt.Printf("%.2f (%.2f, %.2f)\n", est.Point, est.Lower, est.Upper)
	// Output:
	// 1.40 (1.05, 1.86)
}

func ExampleSpec_Validate() {
	spec := &forest.Spec{}
	fmt.Println(spec.Validate())
	// Output:
	// MISSING_FIELD: missing required field: data.rows
}
