package source

import (
	"fmt"
	"math/rand/v2"

	"github.com/JonMunkholm/tablesorter/internal/view"
)

var demoCities = []string{"Madrid", "Barcelona", "Valencia", "Sevilla", "Zaragoza", "Málaga", "Murcia", "Palma", "Bilbao", "Alicante"}

var demoPeople = []struct {
	name string
	age  int
	city string
	on   bool
}{
	{"Juan Pérez", 25, "Madrid", true},
	{"Ana García", 30, "Barcelona", true},
	{"Carlos López", 22, "Valencia", false},
	{"María Rodríguez", 28, "Sevilla", true},
	{"Pedro Sánchez", 35, "Zaragoza", true},
	{"Laura Martínez", 26, "Málaga", false},
	{"David Fernández", 32, "Murcia", true},
	{"Sofía Gómez", 29, "Palma", true},
	{"Javier Ruiz", 31, "Bilbao", false},
	{"Elena Díaz", 27, "Alicante", true},
	{"Miguel Torres", 24, "Madrid", true},
	{"Isabel Castro", 33, "Barcelona", false},
	{"Francisco Romero", 40, "Valencia", true},
	{"Carmen Vargas", 26, "Sevilla", true},
	{"Raúl Navarro", 38, "Zaragoza", false},
}

func status(on bool) string {
	if on {
		return "activo"
	}
	return "inactivo"
}

// Demo returns a small people table with a select-filtered status column
// and custom cell text for age and status.
func Demo() view.Options {
	records := make([]view.Record, len(demoPeople))
	for i, p := range demoPeople {
		records[i] = view.Record{
			"id":     i + 1,
			"nombre": p.name,
			"edad":   p.age,
			"ciudad": p.city,
			"estado": status(p.on),
		}
	}

	statusOptions := []view.SelectOption{
		{Value: "activo", Label: "Activo"},
		{Value: "inactivo", Label: "Inactivo"},
	}

	return view.Options{
		Data: records,
		Columns: []view.Column{
			{Key: "id", Title: "ID", Width: "80px", Sortable: true, Filterable: true},
			{Key: "nombre", Title: "Nombre completo", Sortable: true, Filterable: true},
			{Key: "edad", Title: "Edad", Sortable: true, Filterable: true, Render: func(v any, _ view.Record) string {
				s, _ := view.Stringify(v)
				return s + " años"
			}},
			{Key: "ciudad", Title: "Ciudad", Sortable: true, Filterable: true},
			{Key: "estado", Title: "Estado", Sortable: true, Filterable: true, Options: statusOptions, Render: func(v any, _ view.Record) string {
				s, _ := view.Stringify(v)
				for _, o := range statusOptions {
					if o.Value == s {
						return o.Label
					}
				}
				return s
			}},
		},
		RowsPerPage: view.DefaultPageSize,
		SortOrder:   view.Asc,
		ShowSearch:  true,
		Locale:      "es",
	}
}

var (
	demoFirst = []string{"Alex", "Beatriz", "Daniel", "Eva", "Fernando", "Gabriela", "Héctor", "Irene", "Jorge"}
	demoLast  = []string{"González", "Silva", "Mendoza", "Rojas", "Vega"}
)

// DemoRecord generates a random demo person with the given id.
func DemoRecord(id int, rnd *rand.Rand) view.Record {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(id), 0))
	}
	return view.Record{
		"id":     id,
		"nombre": fmt.Sprintf("%s %s", demoFirst[rnd.IntN(len(demoFirst))], demoLast[rnd.IntN(len(demoLast))]),
		"edad":   rnd.IntN(40) + 18,
		"ciudad": demoCities[rnd.IntN(len(demoCities))],
		"estado": status(rnd.Float64() > 0.3),
	}
}
