package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/taskbell/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Check rejects the fields missing from allowed.
func (ord *Ordering) Check(allowed map[string]bool) error {
	var unknown []string
	for _, o := range ord.Orderings {
		if !allowed[o.Field] {
			unknown = append(unknown, o.Field)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return core.NewValidationError(
		errors.New("invalid ordering"),
		core.FieldError{Field: orderingParam, Error: "cannot order by: " + strings.Join(unknown, ", ")},
	)
}
