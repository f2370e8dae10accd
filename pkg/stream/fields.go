package stream

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/yumyai/uniref90/pkg/model"
)

// valueOf decides, once, whether an upstream field is a list or a scalar.
func valueOf(r gjson.Result) model.Value {
	if !r.IsArray() {
		return model.Scalar(r.String())
	}
	items := r.Array()
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.String()
	}
	return model.Sequence(out)
}

// rowFromJSON turns one upstream row object into a validated Row.
func rowFromJSON(obj gjson.Result) (*model.Row, error) {
	if !obj.IsObject() {
		return nil, fmt.Errorf("row is %s, want object", obj.Type)
	}

	fields := make(map[string]model.Value, len(model.RowFields))
	for _, name := range model.RowFields {
		f := obj.Get(name)
		if !f.Exists() {
			return nil, fmt.Errorf("row has no %q field", name)
		}
		fields[name] = valueOf(f)
	}
	return model.NewRow(fields)
}

// truncatedCells lists the row fields the rows endpoint replaced with a cut
// down string. Such a row keeps its position but its arrays are lost.
func truncatedCells(item gjson.Result) []string {
	var cells []string
	for _, c := range item.Get("truncated_cells").Array() {
		for _, name := range model.RowFields {
			if c.String() == name {
				cells = append(cells, name)
			}
		}
	}
	return cells
}
